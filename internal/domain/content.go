package domain

import "time"

// Category groups posts
type Category struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Description   string    `json:"description"`
	CreatedUserID *string   `json:"created_user_id,omitempty"`
	UpdatedUserID *string   `json:"updated_user_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Tag labels posts
type Tag struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	CreatedUserID *string   `json:"created_user_id,omitempty"`
	UpdatedUserID *string   `json:"updated_user_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Post is a blog entry. Category and tag relations are flat id lists
// resolved by explicit joins, never lazy loading.
type Post struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Content       string     `json:"content"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	CategoryIDs   []string   `json:"category_ids"`
	TagIDs        []string   `json:"tag_ids"`
	CreatedUserID *string    `json:"created_user_id,omitempty"`
	UpdatedUserID *string    `json:"updated_user_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsPublished reports whether the post is visible to non-authors
func (p *Post) IsPublished() bool {
	return p.PublishedAt != nil && !p.PublishedAt.After(time.Now())
}

// Comment is a user comment under a post
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
