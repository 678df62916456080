package dto

import (
	"time"

	"blogapi/internal/domain"
)

// CreateCategoryRequest is the category creation payload
type CreateCategoryRequest struct {
	Title       string `json:"title" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
}

// UpdateCategoryRequest is the category update payload
type UpdateCategoryRequest struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

// ListCategoriesRequest binds the category listing query parameters
type ListCategoriesRequest struct {
	Page           int      `form:"page,default=1"`
	Size           int      `form:"size,default=20"`
	SortBy         string   `form:"sortBy"`
	Sort           string   `form:"sort"`
	CreatedUserIDs []string `form:"createdUserIds"`
	UpdatedUserIDs []string `form:"updatedUserIds"`
	CreatedAtStart *string  `form:"createdAtStart"`
	CreatedAtEnd   *string  `form:"createdAtEnd"`
	UpdatedAtStart *string  `form:"updatedAtStart"`
	UpdatedAtEnd   *string  `form:"updatedAtEnd"`
	Q              string   `form:"q"`
}

// CategoryResponse is the public view of a category
type CategoryResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewCategoryResponse maps a domain category
func NewCategoryResponse(category *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          category.ID,
		Title:       category.Title,
		Slug:        category.Slug,
		Description: category.Description,
		CreatedAt:   category.CreatedAt,
		UpdatedAt:   category.UpdatedAt,
	}
}

// NewCategoryResponses maps a slice of domain categories
func NewCategoryResponses(categories []*domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, NewCategoryResponse(category))
	}
	return out
}

// CreateTagRequest is the tag creation payload
type CreateTagRequest struct {
	Title string `json:"title" binding:"required"`
	Slug  string `json:"slug" binding:"required"`
}

// UpdateTagRequest is the tag update payload
type UpdateTagRequest struct {
	Title *string `json:"title"`
	Slug  *string `json:"slug"`
}

// ListTagsRequest binds the tag listing query parameters
type ListTagsRequest struct {
	Page           int      `form:"page,default=1"`
	Size           int      `form:"size,default=20"`
	SortBy         string   `form:"sortBy"`
	Sort           string   `form:"sort"`
	CreatedUserIDs []string `form:"createdUserIds"`
	UpdatedUserIDs []string `form:"updatedUserIds"`
	CreatedAtStart *string  `form:"createdAtStart"`
	CreatedAtEnd   *string  `form:"createdAtEnd"`
	UpdatedAtStart *string  `form:"updatedAtStart"`
	UpdatedAtEnd   *string  `form:"updatedAtEnd"`
	Q              string   `form:"q"`
}

// TagResponse is the public view of a tag
type TagResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewTagResponse maps a domain tag
func NewTagResponse(tag *domain.Tag) TagResponse {
	return TagResponse{
		ID:        tag.ID,
		Title:     tag.Title,
		Slug:      tag.Slug,
		CreatedAt: tag.CreatedAt,
		UpdatedAt: tag.UpdatedAt,
	}
}

// NewTagResponses maps a slice of domain tags
func NewTagResponses(tags []*domain.Tag) []TagResponse {
	out := make([]TagResponse, 0, len(tags))
	for _, tag := range tags {
		out = append(out, NewTagResponse(tag))
	}
	return out
}

// CreatePostRequest is the post creation payload
type CreatePostRequest struct {
	Title       string   `json:"title" binding:"required"`
	Slug        string   `json:"slug" binding:"required"`
	Content     string   `json:"content" binding:"required"`
	Publish     bool     `json:"publish"`
	CategoryIDs []string `json:"categoryIds"`
	TagIDs      []string `json:"tagIds"`
}

// UpdatePostRequest is the post update payload
type UpdatePostRequest struct {
	Title       *string  `json:"title"`
	Slug        *string  `json:"slug"`
	Content     *string  `json:"content"`
	Publish     *bool    `json:"publish"`
	CategoryIDs []string `json:"categoryIds"`
	TagIDs      []string `json:"tagIds"`
}

// ListPostsRequest binds the post listing query parameters
type ListPostsRequest struct {
	Page           int      `form:"page,default=1"`
	Size           int      `form:"size,default=20"`
	SortBy         string   `form:"sortBy"`
	Sort           string   `form:"sort"`
	UserIDs        []string `form:"userIds"`
	CategoryIDs    []string `form:"categoryIds"`
	TagIDs         []string `form:"tagIds"`
	IsPublished    *bool    `form:"isPublished"`
	CreatedAtStart *string  `form:"createdAtStart"`
	CreatedAtEnd   *string  `form:"createdAtEnd"`
	Q              string   `form:"q"`
}

// PostResponse is the public view of a post
type PostResponse struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	PublishedAt *time.Time `json:"publishedAt,omitempty"`
	CategoryIDs []string   `json:"categoryIds"`
	TagIDs      []string   `json:"tagIds"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewPostResponse maps a domain post
func NewPostResponse(post *domain.Post) PostResponse {
	return PostResponse{
		ID:          post.ID,
		UserID:      post.UserID,
		Title:       post.Title,
		Slug:        post.Slug,
		Content:     post.Content,
		PublishedAt: post.PublishedAt,
		CategoryIDs: post.CategoryIDs,
		TagIDs:      post.TagIDs,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
}

// NewPostResponses maps a slice of domain posts
func NewPostResponses(posts []*domain.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, NewPostResponse(post))
	}
	return out
}

// CreateCommentRequest is the comment creation payload
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// UpdateCommentRequest is the comment update payload
type UpdateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CommentResponse is the public view of a comment
type CommentResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	UserID    string    `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewCommentResponse maps a domain comment
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		PostID:    comment.PostID,
		UserID:    comment.UserID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

// NewCommentResponses maps a slice of domain comments
func NewCommentResponses(comments []*domain.Comment) []CommentResponse {
	out := make([]CommentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, NewCommentResponse(comment))
	}
	return out
}
