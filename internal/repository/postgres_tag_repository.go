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

// PostgresTagRepository implements TagRepository using PostgreSQL with
// pgxpool
type PostgresTagRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTagRepository creates a new PostgresTagRepository
func NewPostgresTagRepository(pool *pgxpool.Pool) *PostgresTagRepository {
	return &PostgresTagRepository{pool: pool}
}

const tagColumns = `
	id, title, slug,
	created_user_id, updated_user_id, created_at, updated_at
`

// Create inserts a new tag record
func (r *PostgresTagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.tag.create")
	defer span.End()

	span.SetAttributes(attribute.String("tag_id", tag.ID))

	insertQuery := `
		INSERT INTO tags (
			id, title, slug,
			created_user_id, updated_user_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, insertQuery,
		tag.ID,
		tag.Title,
		tag.Slug,
		tag.CreatedUserID,
		tag.UpdatedUserID,
		tag.CreatedAt,
		tag.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create tag: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a tag by id
func (r *PostgresTagRepository) GetByID(ctx context.Context, id string) (*domain.Tag, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.tag.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("tag_id", id))

	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM tags WHERE id = $1", tagColumns), id)
	tag, err := scanTag(row)
	return getResult(span, tag, err)
}

// GetBySlug retrieves a tag by slug
func (r *PostgresTagRepository) GetBySlug(ctx context.Context, slug string) (*domain.Tag, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.tag.get_by_slug")
	defer span.End()

	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM tags WHERE slug = $1", tagColumns), slug)
	tag, err := scanTag(row)
	return getResult(span, tag, err)
}

// Update rewrites the mutable fields of a tag
func (r *PostgresTagRepository) Update(ctx context.Context, tag *domain.Tag) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.tag.update")
	defer span.End()

	span.SetAttributes(attribute.String("tag_id", tag.ID))

	updateQuery := `
		UPDATE tags SET
			title = $2, slug = $3, updated_user_id = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.pool.Exec(ctx, updateQuery,
		tag.ID,
		tag.Title,
		tag.Slug,
		tag.UpdatedUserID,
		tag.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes a tag record and its post links
func (r *PostgresTagRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.tag.delete")
	defer span.End()

	span.SetAttributes(attribute.String("tag_id", id))

	result, err := r.pool.Exec(ctx, "DELETE FROM tags WHERE id = $1", id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// List returns one page of tags matching the criteria with the
// unpaged total.
func (r *PostgresTagRepository) List(ctx context.Context, criteria query.TagCriteria, page query.PageRequest) ([]*domain.Tag, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.tag.list")
	defer span.End()

	builder := query.NewBuilder().
		In("created_user_id", criteria.CreatedUserIDs).
		In("updated_user_id", criteria.UpdatedUserIDs).
		DateFrom("created_at", criteria.CreatedAtStart).
		DateTo("created_at", criteria.CreatedAtEnd).
		DateFrom("updated_at", criteria.UpdatedAtStart).
		DateTo("updated_at", criteria.UpdatedAtEnd).
		Search(criteria.Q, "title", "slug")

	where, args := builder.Build()

	var total int64
	if err := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM tags %s", where), args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count tags: %w", err)
	}

	order := page.OrderClause()
	if order == "" {
		order = "ORDER BY created_at DESC"
	}
	listQuery := fmt.Sprintf("SELECT %s FROM tags %s %s LIMIT %d OFFSET %d",
		tagColumns, where, order, page.Size, page.Offset())

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	tags := make([]*domain.Tag, 0)
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, err
		}
		tags = append(tags, tag)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to read tags: %w", err)
	}

	span.SetAttributes(attribute.Int64("total", total))
	span.SetStatus(codes.Ok, "")
	return tags, total, nil
}

func scanTag(row rowScanner) (*domain.Tag, error) {
	tag := &domain.Tag{}
	err := row.Scan(
		&tag.ID,
		&tag.Title,
		&tag.Slug,
		&tag.CreatedUserID,
		&tag.UpdatedUserID,
		&tag.CreatedAt,
		&tag.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan tag: %w", err)
	}
	return tag, nil
}

// Ensure PostgresTagRepository implements TagRepository
var _ TagRepository = (*PostgresTagRepository)(nil)
