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
	"blogapi/pkg/telemetry"
)

// PostgresAccountTokenRepository implements AccountTokenRepository
// using PostgreSQL with pgxpool. A user holds at most one live token
// per kind; creating a new one replaces the previous.
type PostgresAccountTokenRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAccountTokenRepository creates a new PostgresAccountTokenRepository
func NewPostgresAccountTokenRepository(pool *pgxpool.Pool) *PostgresAccountTokenRepository {
	return &PostgresAccountTokenRepository{pool: pool}
}

// Create stores an account token, replacing any previous token of the
// same kind for the user.
func (r *PostgresAccountTokenRepository) Create(ctx context.Context, token *domain.AccountToken) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.account_token.create")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", token.UserID),
		attribute.String("kind", string(token.Kind)),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"DELETE FROM account_tokens WHERE user_id = $1 AND kind = $2",
		token.UserID, string(token.Kind))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to clear previous tokens: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO account_tokens (id, user_id, kind, token, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		token.ID, token.UserID, string(token.Kind), token.Token, token.ExpiresAt, token.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create account token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to commit account token: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByToken retrieves a token of the given kind by its value
func (r *PostgresAccountTokenRepository) GetByToken(ctx context.Context, kind domain.AccountTokenKind, value string) (*domain.AccountToken, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.account_token.get_by_token")
	defer span.End()

	span.SetAttributes(attribute.String("kind", string(kind)))

	token := &domain.AccountToken{}
	var tokenKind string
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, kind, token, expires_at, created_at
		 FROM account_tokens WHERE kind = $1 AND token = $2`,
		string(kind), value).Scan(
		&token.ID,
		&token.UserID,
		&tokenKind,
		&token.Token,
		&token.ExpiresAt,
		&token.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Error, "not found")
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to get account token: %w", err)
	}

	token.Kind = domain.AccountTokenKind(tokenKind)
	span.SetStatus(codes.Ok, "")
	return token, nil
}

// DeleteByUserID removes all tokens of a kind belonging to a user
func (r *PostgresAccountTokenRepository) DeleteByUserID(ctx context.Context, userID string, kind domain.AccountTokenKind) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.account_token.delete_by_user")
	defer span.End()

	span.SetAttributes(
		attribute.String("user_id", userID),
		attribute.String("kind", string(kind)),
	)

	_, err := r.pool.Exec(ctx,
		"DELETE FROM account_tokens WHERE user_id = $1 AND kind = $2", userID, string(kind))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete account tokens: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure PostgresAccountTokenRepository implements AccountTokenRepository
var _ AccountTokenRepository = (*PostgresAccountTokenRepository)(nil)
