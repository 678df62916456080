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

// PostgresCommentRepository implements CommentRepository using
// PostgreSQL with pgxpool
type PostgresCommentRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(pool *pgxpool.Pool) *PostgresCommentRepository {
	return &PostgresCommentRepository{pool: pool}
}

const commentColumns = `
	id, post_id, user_id, content, created_at, updated_at
`

// Create inserts a new comment record
func (r *PostgresCommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.comment.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("comment_id", comment.ID),
		attribute.String("post_id", comment.PostID),
	)

	insertQuery := `
		INSERT INTO comments (id, post_id, user_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, insertQuery,
		comment.ID,
		comment.PostID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create comment: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a comment by id
func (r *PostgresCommentRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.comment.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("comment_id", id))

	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM comments WHERE id = $1", commentColumns), id)
	comment, err := scanComment(row)
	return getResult(span, comment, err)
}

// Update rewrites the comment content
func (r *PostgresCommentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.comment.update")
	defer span.End()

	span.SetAttributes(attribute.String("comment_id", comment.ID))

	tag, err := r.pool.Exec(ctx,
		"UPDATE comments SET content = $2, updated_at = $3 WHERE id = $1",
		comment.ID, comment.Content, comment.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes a comment record
func (r *PostgresCommentRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.comment.delete")
	defer span.End()

	span.SetAttributes(attribute.String("comment_id", id))

	tag, err := r.pool.Exec(ctx, "DELETE FROM comments WHERE id = $1", id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// ListByPostID returns one page of a post's comments with the unpaged
// total, newest first unless the page requests otherwise.
func (r *PostgresCommentRepository) ListByPostID(ctx context.Context, postID string, page query.PageRequest) ([]*domain.Comment, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.comment.list_by_post")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", postID))

	var total int64
	if err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM comments WHERE post_id = $1", postID).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count comments: %w", err)
	}

	order := page.OrderClause()
	if order == "" {
		order = "ORDER BY created_at DESC"
	}
	listQuery := fmt.Sprintf("SELECT %s FROM comments WHERE post_id = $1 %s LIMIT %d OFFSET %d",
		commentColumns, order, page.Size, page.Offset())

	rows, err := r.pool.Query(ctx, listQuery, postID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, err
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to read comments: %w", err)
	}

	span.SetAttributes(attribute.Int64("total", total))
	span.SetStatus(codes.Ok, "")
	return comments, total, nil
}

func scanComment(row rowScanner) (*domain.Comment, error) {
	comment := &domain.Comment{}
	err := row.Scan(
		&comment.ID,
		&comment.PostID,
		&comment.UserID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan comment: %w", err)
	}
	return comment, nil
}

// Ensure PostgresCommentRepository implements CommentRepository
var _ CommentRepository = (*PostgresCommentRepository)(nil)
