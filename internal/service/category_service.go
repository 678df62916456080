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

var categorySortColumns = []string{"id", "title", "slug", "created_at", "updated_at"}

// CategoryService defines category operations
type CategoryService interface {
	Create(ctx context.Context, principal domain.Principal, req *dto.CreateCategoryRequest) (*domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Update(ctx context.Context, principal domain.Principal, id string, req *dto.UpdateCategoryRequest) (*domain.Category, error)
	// Delete removes a category unless posts still reference it
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req *dto.ListCategoriesRequest) ([]*domain.Category, int64, query.PageRequest, error)
}

// categoryService implements CategoryService
type categoryService struct {
	categoryRepo repository.CategoryRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) Create(ctx context.Context, principal domain.Principal, req *dto.CreateCategoryRequest) (*domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.category.create")
	defer span.End()

	if err := s.checkSlug(ctx, req.Slug, ""); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	category := &domain.Category{
		ID:            uuid.New().String(),
		Title:         req.Title,
		Slug:          req.Slug,
		Description:   req.Description,
		CreatedUserID: &principal.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("category_id", category.ID))
	span.SetStatus(codes.Ok, "")
	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.category.get_by_id")
	defer span.End()

	category, err := s.categoryRepo.GetByID(ctx, id)
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
	return category, nil
}

func (s *categoryService) Update(ctx context.Context, principal domain.Principal, id string, req *dto.UpdateCategoryRequest) (*domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.category.update")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", id))

	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Slug != nil && *req.Slug != category.Slug {
		if err := s.checkSlug(ctx, *req.Slug, id); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		category.Slug = *req.Slug
	}
	if req.Title != nil {
		category.Title = *req.Title
	}
	if req.Description != nil {
		category.Description = *req.Description
	}

	category.UpdatedUserID = &principal.UserID
	category.UpdatedAt = time.Now()
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.category.delete")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", id))

	inUse, err := s.categoryRepo.HasPosts(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if inUse {
		span.SetStatus(codes.Error, "category has posts")
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
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

func (s *categoryService) List(ctx context.Context, req *dto.ListCategoriesRequest) ([]*domain.Category, int64, query.PageRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.category.list")
	defer span.End()

	pageReq, err := query.BuildPageRequest(req.Page, req.Size, req.SortBy, req.Sort, categorySortColumns)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, pageReq, fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
	}

	criteria := query.CategoryCriteria{
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

	categories, total, err := s.categoryRepo.List(ctx, criteria, pageReq)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, pageReq, err
	}

	span.SetAttributes(attribute.Int64("total", total))
	span.SetStatus(codes.Ok, "")
	return categories, total, pageReq, nil
}

func (s *categoryService) checkSlug(ctx context.Context, slug, selfID string) error {
	existing, err := s.categoryRepo.GetBySlug(ctx, slug)
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
