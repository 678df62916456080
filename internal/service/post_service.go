package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"blogapi/internal/domain"
	"blogapi/internal/dto"
	"blogapi/internal/query"
	"blogapi/internal/repository"
	"blogapi/pkg/telemetry"
)

var postSortColumns = []string{"id", "title", "slug", "published_at", "created_at", "updated_at"}

// PostService defines post operations. Writes are restricted to the
// author or an admin.
type PostService interface {
	Create(ctx context.Context, principal domain.Principal, req *dto.CreatePostRequest) (*domain.Post, error)
	GetByID(ctx context.Context, principal *domain.Principal, id string) (*domain.Post, error)
	Update(ctx context.Context, principal domain.Principal, id string, req *dto.UpdatePostRequest) (*domain.Post, error)
	Delete(ctx context.Context, principal domain.Principal, id string) error
	List(ctx context.Context, principal *domain.Principal, req *dto.ListPostsRequest) ([]*domain.Post, int64, query.PageRequest, error)
}

// postService implements PostService
type postService struct {
	postRepo     repository.PostRepository
	categoryRepo repository.CategoryRepository
	tagRepo      repository.TagRepository
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo repository.PostRepository,
	categoryRepo repository.CategoryRepository,
	tagRepo repository.TagRepository,
) PostService {
	return &postService{
		postRepo:     postRepo,
		categoryRepo: categoryRepo,
		tagRepo:      tagRepo,
	}
}

func (s *postService) Create(ctx context.Context, principal domain.Principal, req *dto.CreatePostRequest) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.create")
	defer span.End()

	if err := s.checkSlug(ctx, req.Slug, ""); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := s.checkLinks(ctx, req.CategoryIDs, req.TagIDs); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	post := &domain.Post{
		ID:            uuid.New().String(),
		UserID:        principal.UserID,
		Title:         req.Title,
		Slug:          req.Slug,
		Content:       req.Content,
		CategoryIDs:   req.CategoryIDs,
		TagIDs:        req.TagIDs,
		CreatedUserID: &principal.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.Publish {
		post.PublishedAt = &now
	}

	if err := s.postRepo.Create(ctx, post); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("post_id", post.ID))
	span.SetStatus(codes.Ok, "")
	return post, nil
}

// GetByID retrieves a post. Unpublished posts are visible only to
// their author and admins.
func (s *postService) GetByID(ctx context.Context, principal *domain.Principal, id string) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", id))

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !post.IsPublished() && !canEditPost(principal, post) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}

	span.SetStatus(codes.Ok, "")
	return post, nil
}

func (s *postService) Update(ctx context.Context, principal domain.Principal, id string, req *dto.UpdatePostRequest) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.update")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", id))

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !canEditPost(&principal, post) {
		span.SetStatus(codes.Error, "access denied")
		return nil, ErrAccessDenied
	}

	if req.Slug != nil && *req.Slug != post.Slug {
		if err := s.checkSlug(ctx, *req.Slug, id); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		post.Slug = *req.Slug
	}
	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.Publish != nil {
		if *req.Publish && post.PublishedAt == nil {
			now := time.Now()
			post.PublishedAt = &now
		}
		if !*req.Publish {
			post.PublishedAt = nil
		}
	}
	if req.CategoryIDs != nil || req.TagIDs != nil {
		if req.CategoryIDs != nil {
			post.CategoryIDs = req.CategoryIDs
		}
		if req.TagIDs != nil {
			post.TagIDs = req.TagIDs
		}
		if err := s.checkLinks(ctx, post.CategoryIDs, post.TagIDs); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	post.UpdatedUserID = &principal.UserID
	post.UpdatedAt = time.Now()
	if err := s.postRepo.Update(ctx, post); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return post, nil
}

func (s *postService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.post.delete")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", id))

	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "not found")
			return ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if !canEditPost(&principal, post) {
		span.SetStatus(codes.Error, "access denied")
		return ErrAccessDenied
	}

	if err := s.postRepo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// List returns a filtered page of posts. Anonymous callers and plain
// users only see published posts unless they filter their own.
func (s *postService) List(ctx context.Context, principal *domain.Principal, req *dto.ListPostsRequest) ([]*domain.Post, int64, query.PageRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.post.list")
	defer span.End()

	page, err := query.BuildPageRequest(req.Page, req.Size, req.SortBy, req.Sort, postSortColumns)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, page, fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
	}

	criteria := query.PostCriteria{
		UserIDs:     req.UserIDs,
		CategoryIDs: req.CategoryIDs,
		TagIDs:      req.TagIDs,
		IsPublished: req.IsPublished,
		Q:           req.Q,
	}
	if criteria.CreatedAtStart, err = parseTime(req.CreatedAtStart); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, page, fmt.Errorf("%w: invalid createdAtStart", ErrBadRequest)
	}
	if criteria.CreatedAtEnd, err = parseTime(req.CreatedAtEnd); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, page, fmt.Errorf("%w: invalid createdAtEnd", ErrBadRequest)
	}

	if !isAdmin(principal) {
		// Authors may list their own drafts, everyone else sees
		// published posts only.
		ownOnly := principal != nil && len(criteria.UserIDs) == 1 && criteria.UserIDs[0] == principal.UserID
		if !ownOnly {
			published := true
			criteria.IsPublished = &published
		}
	}

	posts, total, err := s.postRepo.List(ctx, criteria, page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, page, err
	}

	span.SetAttributes(attribute.Int64("total", total))
	span.SetStatus(codes.Ok, "")
	return posts, total, page, nil
}

func (s *postService) checkSlug(ctx context.Context, slug, selfID string) error {
	existing, err := s.postRepo.GetBySlug(ctx, slug)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return ErrSlugTaken
}

func (s *postService) checkLinks(ctx context.Context, categoryIDs, tagIDs []string) error {
	for _, id := range categoryIDs {
		if _, err := s.categoryRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: unknown category %s", ErrBadRequest, id)
			}
			return err
		}
	}
	for _, id := range tagIDs {
		if _, err := s.tagRepo.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: unknown tag %s", ErrBadRequest, id)
			}
			return err
		}
	}
	return nil
}

func canEditPost(principal *domain.Principal, post *domain.Post) bool {
	if principal == nil {
		return false
	}
	return post.UserID == principal.UserID || isAdmin(principal)
}

func isAdmin(principal *domain.Principal) bool {
	return principal != nil && principal.HasAnyRole(string(domain.RoleAdmin))
}
