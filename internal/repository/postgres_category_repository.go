package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"blogapi/internal/domain"
	"blogapi/internal/query"
	"blogapi/pkg/telemetry"
)

// PostgresCategoryRepository implements CategoryRepository using
// PostgreSQL with pgxpool
type PostgresCategoryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCategoryRepository creates a new PostgresCategoryRepository
func NewPostgresCategoryRepository(pool *pgxpool.Pool) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{pool: pool}
}

const categoryColumns = `
	id, title, slug, description,
	created_user_id, updated_user_id, created_at, updated_at
`

// Create inserts a new category record
func (r *PostgresCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.create")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", category.ID))

	insertQuery := `
		INSERT INTO categories (
			id, title, slug, description,
			created_user_id, updated_user_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, insertQuery,
		category.ID,
		category.Title,
		category.Slug,
		category.Description,
		category.CreatedUserID,
		category.UpdatedUserID,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create category: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a category by id
func (r *PostgresCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", id))

	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM categories WHERE id = $1", categoryColumns), id)
	category, err := scanCategory(row)
	return getResult(span, category, err)
}

// GetBySlug retrieves a category by slug
func (r *PostgresCategoryRepository) GetBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.get_by_slug")
	defer span.End()

	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM categories WHERE slug = $1", categoryColumns), slug)
	category, err := scanCategory(row)
	return getResult(span, category, err)
}

// Update rewrites the mutable fields of a category
func (r *PostgresCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.update")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", category.ID))

	updateQuery := `
		UPDATE categories SET
			title = $2, slug = $3, description = $4,
			updated_user_id = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, updateQuery,
		category.ID,
		category.Title,
		category.Slug,
		category.Description,
		category.UpdatedUserID,
		category.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes a category record
func (r *PostgresCategoryRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.delete")
	defer span.End()

	span.SetAttributes(attribute.String("category_id", id))

	tag, err := r.pool.Exec(ctx, "DELETE FROM categories WHERE id = $1", id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// List returns one page of categories matching the criteria with the
// unpaged total.
func (r *PostgresCategoryRepository) List(ctx context.Context, criteria query.CategoryCriteria, page query.PageRequest) ([]*domain.Category, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.list")
	defer span.End()

	builder := query.NewBuilder().
		In("created_user_id", criteria.CreatedUserIDs).
		In("updated_user_id", criteria.UpdatedUserIDs).
		DateFrom("created_at", criteria.CreatedAtStart).
		DateTo("created_at", criteria.CreatedAtEnd).
		DateFrom("updated_at", criteria.UpdatedAtStart).
		DateTo("updated_at", criteria.UpdatedAtEnd).
		Search(criteria.Q, "title", "slug", "description")

	where, args := builder.Build()

	var total int64
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM categories %s", where), args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	order := page.OrderClause()
	if order == "" {
		order = "ORDER BY created_at DESC"
	}
	listQuery := fmt.Sprintf("SELECT %s FROM categories %s %s LIMIT %d OFFSET %d",
		categoryColumns, where, order, page.Size, page.Offset())

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]*domain.Category, 0)
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to read categories: %w", err)
	}

	span.SetAttributes(attribute.Int64("total", total))
	span.SetStatus(codes.Ok, "")
	return categories, total, nil
}

// HasPosts reports whether any post is linked to the category
func (r *PostgresCategoryRepository) HasPosts(ctx context.Context, id string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.category.has_posts")
	defer span.End()

	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM post_categories WHERE category_id = $1)", id).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check category posts: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	category := &domain.Category{}
	err := row.Scan(
		&category.ID,
		&category.Title,
		&category.Slug,
		&category.Description,
		&category.CreatedUserID,
		&category.UpdatedUserID,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	return category, nil
}

// Ensure PostgresCategoryRepository implements CategoryRepository
var _ CategoryRepository = (*PostgresCategoryRepository)(nil)
