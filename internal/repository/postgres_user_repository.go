package repository

import (
	"context"
	"encoding/json"
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

// PostgresUserRepository implements UserRepository using PostgreSQL
// with pgxpool. Roles live in a jsonb column so role filters can use
// containment.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `
	id, email, password_hash, firstname, lastname, gender, roles,
	blocked_at, email_verified_at, created_user_id, updated_user_id,
	created_at, updated_at
`

// Create inserts a new user record
func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.create")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", user.ID))

	roles, err := json.Marshal(user.Roles)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal roles: %w", err)
	}

	insertQuery := `
		INSERT INTO users (
			id, email, password_hash, firstname, lastname, gender, roles,
			blocked_at, email_verified_at, created_user_id, updated_user_id,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13
		)
	`

	_, err = r.pool.Exec(ctx, insertQuery,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Firstname,
		user.Lastname,
		string(user.Gender),
		roles,
		user.BlockedAt,
		user.EmailVerifiedAt,
		user.CreatedUserID,
		user.UpdatedUserID,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to create user: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a user by id
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.get_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM users WHERE id = $1", userColumns), id)
	user, err := r.scanUser(row)
	return getResult(span, user, err)
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.get_by_email")
	defer span.End()

	row := r.pool.QueryRow(ctx, fmt.Sprintf("SELECT %s FROM users WHERE lower(email) = lower($1)", userColumns), email)
	user, err := r.scanUser(row)
	return getResult(span, user, err)
}

// Update rewrites the mutable fields of a user record
func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.update")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", user.ID))

	roles, err := json.Marshal(user.Roles)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal roles: %w", err)
	}

	updateQuery := `
		UPDATE users SET
			email = $2, password_hash = $3, firstname = $4, lastname = $5,
			gender = $6, roles = $7, blocked_at = $8, email_verified_at = $9,
			updated_user_id = $10, updated_at = $11
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, updateQuery,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Firstname,
		user.Lastname,
		string(user.Gender),
		roles,
		user.BlockedAt,
		user.EmailVerifiedAt,
		user.UpdatedUserID,
		user.UpdatedAt,
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Delete removes a user record
func (r *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.delete")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	tag, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "not found")
		return ErrNotFound
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// List returns one page of users matching the criteria together with
// the unpaged total.
func (r *PostgresUserRepository) List(ctx context.Context, criteria query.UserCriteria, page query.PageRequest) ([]*domain.User, int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.list")
	defer span.End()

	builder := query.NewBuilder().
		ContainsAny("roles", criteria.Roles).
		In("gender", criteria.Genders).
		In("created_user_id", criteria.CreatedUserIDs).
		In("updated_user_id", criteria.UpdatedUserIDs).
		DateFrom("created_at", criteria.CreatedAtStart).
		DateTo("created_at", criteria.CreatedAtEnd).
		DateFrom("updated_at", criteria.UpdatedAtStart).
		DateTo("updated_at", criteria.UpdatedAtEnd).
		Search(criteria.Q, "id::text", "email", "firstname", "lastname")

	if criteria.IsBlocked != nil {
		wantNull := !*criteria.IsBlocked
		builder.NullCheck("blocked_at", &wantNull)
	}

	where, args := builder.Build()

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM users %s", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	order := page.OrderClause()
	if order == "" {
		order = "ORDER BY created_at DESC"
	}
	listQuery := fmt.Sprintf("SELECT %s FROM users %s %s LIMIT %d OFFSET %d",
		userColumns, where, order, page.Size, page.Offset())

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user, err := r.scanUser(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, fmt.Errorf("failed to read users: %w", err)
	}

	span.SetAttributes(attribute.Int64("total", total))
	span.SetStatus(codes.Ok, "")
	return users, total, nil
}

// ExistsByEmail reports whether a user with the email already exists
func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.user.exists_by_email")
	defer span.End()

	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM users WHERE lower(email) = lower($1))", email).Scan(&exists)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to check email: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return exists, nil
}

func (r *PostgresUserRepository) scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	var gender string
	var roles []byte

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Firstname,
		&user.Lastname,
		&gender,
		&roles,
		&user.BlockedAt,
		&user.EmailVerifiedAt,
		&user.CreatedUserID,
		&user.UpdatedUserID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.Gender = domain.Gender(gender)
	if len(roles) > 0 {
		if err := json.Unmarshal(roles, &user.Roles); err != nil {
			return nil, fmt.Errorf("failed to unmarshal roles: %w", err)
		}
	}
	return user, nil
}

// Ensure PostgresUserRepository implements UserRepository
var _ UserRepository = (*PostgresUserRepository)(nil)
