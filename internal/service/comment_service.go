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

var commentSortColumns = []string{"id", "created_at", "updated_at"}

// CommentService defines comment operations. Edits are restricted to
// the comment author or an admin.
type CommentService interface {
	Create(ctx context.Context, principal domain.Principal, postID string, req *dto.CreateCommentRequest) (*domain.Comment, error)
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Update(ctx context.Context, principal domain.Principal, id string, req *dto.UpdateCommentRequest) (*domain.Comment, error)
	Delete(ctx context.Context, principal domain.Principal, id string) error
	ListByPostID(ctx context.Context, postID string, page, size int, sortBy, sort string) ([]*domain.Comment, int64, query.PageRequest, error)
}

// commentService implements CommentService
type commentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
}

// NewCommentService creates a new CommentService
func NewCommentService(commentRepo repository.CommentRepository, postRepo repository.PostRepository) CommentService {
	return &commentService{commentRepo: commentRepo, postRepo: postRepo}
}

// Create adds a comment under a published post
func (s *commentService) Create(ctx context.Context, principal domain.Principal, postID string, req *dto.CreateCommentRequest) (*domain.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.comment.create")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", postID))

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "post not found")
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !post.IsPublished() && post.UserID != principal.UserID {
		span.SetStatus(codes.Error, "post not found")
		return nil, ErrNotFound
	}

	now := time.Now()
	comment := &domain.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    principal.UserID,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("comment_id", comment.ID))
	span.SetStatus(codes.Ok, "")
	return comment, nil
}

func (s *commentService) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.comment.get_by_id")
	defer span.End()

	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return comment, nil
}

func (s *commentService) Update(ctx context.Context, principal domain.Principal, id string, req *dto.UpdateCommentRequest) (*domain.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.comment.update")
	defer span.End()

	span.SetAttributes(attribute.String("comment_id", id))

	comment, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if comment.UserID != principal.UserID && !isAdmin(&principal) {
		span.SetStatus(codes.Error, "access denied")
		return nil, ErrAccessDenied
	}

	comment.Content = req.Content
	comment.UpdatedAt = time.Now()
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return comment, nil
}

func (s *commentService) Delete(ctx context.Context, principal domain.Principal, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.comment.delete")
	defer span.End()

	span.SetAttributes(attribute.String("comment_id", id))

	comment, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if comment.UserID != principal.UserID && !isAdmin(&principal) {
		span.SetStatus(codes.Error, "access denied")
		return ErrAccessDenied
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *commentService) ListByPostID(ctx context.Context, postID string, page, size int, sortBy, sort string) ([]*domain.Comment, int64, query.PageRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.comment.list_by_post")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", postID))

	pageReq, err := query.BuildPageRequest(page, size, sortBy, sort, commentSortColumns)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, pageReq, fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
	}

	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "post not found")
			return nil, 0, pageReq, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, pageReq, err
	}

	comments, total, err := s.commentRepo.ListByPostID(ctx, postID, pageReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, pageReq, err
	}

	span.SetAttributes(attribute.Int64("total", total))
	span.SetStatus(codes.Ok, "")
	return comments, total, pageReq, nil
}
