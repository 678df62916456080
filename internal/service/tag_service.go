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

var tagSortColumns = []string{"id", "title", "slug", "created_at", "updated_at"}

// TagService defines tag operations
type TagService interface {
	Create(ctx context.Context, principal domain.Principal, req *dto.CreateTagRequest) (*domain.Tag, error)
	GetByID(ctx context.Context, id string) (*domain.Tag, error)
	Update(ctx context.Context, principal domain.Principal, id string, req *dto.UpdateTagRequest) (*domain.Tag, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req *dto.ListTagsRequest) ([]*domain.Tag, int64, query.PageRequest, error)
}

// tagService implements TagService
type tagService struct {
	tagRepo repository.TagRepository
}

// NewTagService creates a new TagService
func NewTagService(tagRepo repository.TagRepository) TagService {
	return &tagService{tagRepo: tagRepo}
}

func (s *tagService) Create(ctx context.Context, principal domain.Principal, req *dto.CreateTagRequest) (*domain.Tag, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.tag.create")
	defer span.End()

	if err := s.checkSlug(ctx, req.Slug, ""); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	tag := &domain.Tag{
		ID:            uuid.New().String(),
		Title:         req.Title,
		Slug:          req.Slug,
		CreatedUserID: &principal.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.tagRepo.Create(ctx, tag); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("tag_id", tag.ID))
	span.SetStatus(codes.Ok, "")
	return tag, nil
}

func (s *tagService) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.tag.get_by_id")
	defer span.End()

	tag, err := s.tagRepo.GetByID(ctx, id)
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
	return tag, nil
}

func (s *tagService) Update(ctx context.Context, principal domain.Principal, id string, req *dto.UpdateTagRequest) (*domain.Tag, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.tag.update")
	defer span.End()

	span.SetAttributes(attribute.String("tag_id", id))

	tag, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != tag.Slug {
		if err := s.checkSlug(ctx, *req.Slug, id); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		tag.Slug = *req.Slug
	}
	if req.Title != nil {
		tag.Title = *req.Title
	}

	tag.UpdatedUserID = &principal.UserID
	tag.UpdatedAt = time.Now()
	if err := s.tagRepo.Update(ctx, tag); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return tag, nil
}

func (s *tagService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.tag.delete")
	defer span.End()

	span.SetAttributes(attribute.String("tag_id", id))

	if err := s.tagRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "not found")
			return ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *tagService) List(ctx context.Context, req *dto.ListTagsRequest) ([]*domain.Tag, int64, query.PageRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.tag.list")
	defer span.End()

	pageReq, err := query.BuildPageRequest(req.Page, req.Size, req.SortBy, req.Sort, tagSortColumns)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, pageReq, fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
	}

	criteria := query.TagCriteria{
		CreatedUserIDs: req.CreatedUserIDs,
		UpdatedUserIDs: req.UpdatedUserIDs,
		Q:              req.Q,
	}
	if criteria.CreatedAtStart, err = parseTime(req.CreatedAtStart); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, pageReq, fmt.Errorf("%w: invalid createdAtStart", ErrBadRequest)
	}
	if criteria.CreatedAtEnd, err = parseTime(req.CreatedAtEnd); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, pageReq, fmt.Errorf("%w: invalid createdAtEnd", ErrBadRequest)
	}
	if criteria.UpdatedAtStart, err = parseTime(req.UpdatedAtStart); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, pageReq, fmt.Errorf("%w: invalid updatedAtStart", ErrBadRequest)
	}
	if criteria.UpdatedAtEnd, err = parseTime(req.UpdatedAtEnd); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, pageReq, fmt.Errorf("%w: invalid updatedAtEnd", ErrBadRequest)
	}

	tags, total, err := s.tagRepo.List(ctx, criteria, pageReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, pageReq, err
	}

	span.SetAttributes(attribute.Int64("total", total))
	span.SetStatus(codes.Ok, "")
	return tags, total, pageReq, nil
}

func (s *tagService) checkSlug(ctx context.Context, slug, selfID string) error {
	existing, err := s.tagRepo.GetBySlug(ctx, slug)
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
