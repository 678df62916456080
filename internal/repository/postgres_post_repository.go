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

// PostgresPostRepository implements PostRepository using PostgreSQL
// with pgxpool. Category and tag links live in the post_categories and
// post_tags join tables and are written in the same transaction as the
// post row.
type PostgresPostRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(pool *pgxpool.Pool) *PostgresPostRepository {
	return &PostgresPostRepository{pool: pool}
}

const postColumns = `
	p.id, p.user_id, p.title, p.slug, p.content, p.published_at,
	p.created_user_id, p.updated_user_id, p.created_at, p.updated_at
`

// Create inserts a post together with its category and tag links
func (r *PostgresPostRepository) Create(ctx context.Context, post *domain.Post) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.post.create")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", post.ID))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertQuery := `
		INSERT INTO posts (
			id, user_id, title, slug, content, published_at,
			created_user_id, updated_user_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = tx.Exec(ctx, insertQuery,
		post.ID,
		post.UserID,
		post.Title,
		post.Slug,
		post.Content,
		post.PublishedAt,
		post.CreatedUserID,
		post.UpdatedUserID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create post: %w", err)
	}

	if err := writePostLinks(ctx, tx, post); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit post: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a post with its category and tag ids
func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.post.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", id))

	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM posts p WHERE p.id = $1", postColumns), id)
	post, err := scanPost(row)
	if err != nil {
		return getResult(span, post, err)
	}
	if err := r.loadLinks(ctx, []*domain.Post{post}); err != nil {
		return getResult(span, (*domain.Post)(nil), err)
	}
	return getResult(span, post, nil)
}

// GetBySlug retrieves a post by slug with its category and tag ids
func (r *PostgresPostRepository) GetBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.post.get_by_slug")
	defer span.End()

	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM posts p WHERE p.slug = $1", postColumns), slug)
	post, err := scanPost(row)
	if err != nil {
		return getResult(span, post, err)
	}
	if err := r.loadLinks(ctx, []*domain.Post{post}); err != nil {
		return getResult(span, (*domain.Post)(nil), err)
	}
	return getResult(span, post, nil)
}

// Update rewrites the post and replaces its category and tag links
func (r *PostgresPostRepository) Update(ctx context.Context, post *domain.Post) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.post.update")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", post.ID))

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	updateQuery := `
		UPDATE posts SET
			title = $2, slug = $3, content = $4, published_at = $5,
			updated_user_id = $6, updated_at = $7
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, updateQuery,
		post.ID,
		post.Title,
		post.Slug,
		post.Content,
		post.PublishedAt,
		post.UpdatedUserID,
		post.UpdatedAt,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, "DELETE FROM post_categories WHERE post_id = $1", post.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to clear post categories: %w", err)
	}
	if _, err := tx.Exec(ctx, "DELETE FROM post_tags WHERE post_id = $1", post.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to clear post tags: %w", err)
	}
	if err := writePostLinks(ctx, tx, post); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit post: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes a post. Links and comments go with it through foreign
// key cascade.
func (r *PostgresPostRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.post.delete")
	defer span.End()

	span.SetAttributes(attribute.String("post_id", id))

	tag, err := r.pool.Exec(ctx, "DELETE FROM posts WHERE id = $1", id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// List returns one page of posts matching the criteria with the
// unpaged total. Category and tag filters join the link tables, so the
// selection is made distinct.
func (r *PostgresPostRepository) List(ctx context.Context, criteria query.PostCriteria, page query.PageRequest) ([]*domain.Post, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.post.list")
	defer span.End()

	builder := query.NewBuilder().
		In("p.user_id", criteria.UserIDs).
		DateFrom("p.created_at", criteria.CreatedAtStart).
		DateTo("p.created_at", criteria.CreatedAtEnd).
		Search(criteria.Q, "p.title", "p.slug", "p.content")

	if criteria.IsPublished != nil {
		wantNull := !*criteria.IsPublished
		builder.NullCheck("p.published_at", &wantNull)
	}

	joins := ""
	if len(criteria.CategoryIDs) > 0 {
		joins += " JOIN post_categories pc ON pc.post_id = p.id"
		builder.In("pc.category_id", criteria.CategoryIDs)
		builder.Distinct()
	}
	if len(criteria.TagIDs) > 0 {
		joins += " JOIN post_tags pt ON pt.post_id = p.id"
		builder.In("pt.tag_id", criteria.TagIDs)
		builder.Distinct()
	}

	where, args := builder.Build()

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(DISTINCT p.id) FROM posts p%s %s", joins, where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	order := page.OrderClause()
	if order == "" {
		order = "ORDER BY p.created_at DESC"
	}
	selectKeyword := "SELECT"
	if builder.IsDistinct() {
		selectKeyword = "SELECT DISTINCT"
	}
	listQuery := fmt.Sprintf("%s %s FROM posts p%s %s %s LIMIT %d OFFSET %d",
		selectKeyword, postColumns, joins, where, order, page.Size, page.Offset())

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*domain.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to read posts: %w", err)
	}

	if err := r.loadLinks(ctx, posts); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, err
	}

	span.SetAttributes(attribute.Int64("total", total))
	span.SetStatus(codes.Ok, "")
	return posts, total, nil
}

func (r *PostgresPostRepository) loadLinks(ctx context.Context, posts []*domain.Post) error {
	if len(posts) == 0 {
		return nil
	}

	ids := make([]string, 0, len(posts))
	byID := make(map[string]*domain.Post, len(posts))
	for _, post := range posts {
		ids = append(ids, post.ID)
		byID[post.ID] = post
	}

	rows, err := r.pool.Query(ctx,
		"SELECT post_id, category_id FROM post_categories WHERE post_id = ANY($1)", ids)
	if err != nil {
		return fmt.Errorf("failed to load post categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var postID, categoryID string
		if err := rows.Scan(&postID, &categoryID); err != nil {
			return fmt.Errorf("failed to scan post category: %w", err)
		}
		byID[postID].CategoryIDs = append(byID[postID].CategoryIDs, categoryID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read post categories: %w", err)
	}

	rows, err = r.pool.Query(ctx,
		"SELECT post_id, tag_id FROM post_tags WHERE post_id = ANY($1)", ids)
	if err != nil {
		return fmt.Errorf("failed to load post tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var postID, tagID string
		if err := rows.Scan(&postID, &tagID); err != nil {
			return fmt.Errorf("failed to scan post tag: %w", err)
		}
		byID[postID].TagIDs = append(byID[postID].TagIDs, tagID)
	}
	return rows.Err()
}

func writePostLinks(ctx context.Context, tx pgx.Tx, post *domain.Post) error {
	for _, categoryID := range post.CategoryIDs {
		_, err := tx.Exec(ctx,
			"INSERT INTO post_categories (post_id, category_id) VALUES ($1, $2)", post.ID, categoryID)
		if err != nil {
			return fmt.Errorf("failed to link post category: %w", err)
		}
	}
	for _, tagID := range post.TagIDs {
		_, err := tx.Exec(ctx,
			"INSERT INTO post_tags (post_id, tag_id) VALUES ($1, $2)", post.ID, tagID)
		if err != nil {
			return fmt.Errorf("failed to link post tag: %w", err)
		}
	}
	return nil
}

func scanPost(row rowScanner) (*domain.Post, error) {
	post := &domain.Post{}
	err := row.Scan(
		&post.ID,
		&post.UserID,
		&post.Title,
		&post.Slug,
		&post.Content,
		&post.PublishedAt,
		&post.CreatedUserID,
		&post.UpdatedUserID,
		&post.CreatedAt,
		&post.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan post: %w", err)
	}
	return post, nil
}

// Ensure PostgresPostRepository implements PostRepository
var _ PostRepository = (*PostgresPostRepository)(nil)
