package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"blogapi/internal/domain"
	pkgredis "blogapi/pkg/redis"
	"blogapi/pkg/telemetry"
)

//go:embed scripts/session_save.lua
var sessionSaveScript string

//go:embed scripts/session_delete.lua
var sessionDeleteScript string

// Script names for caching
const (
	scriptSessionSave   = "session_save"
	scriptSessionDelete = "session_delete"
)

// RedisSessionRepository implements SessionRepository on Redis. Each
// session is a JSON record plus three lookup keys, all expiring
// together. Writes go through Lua scripts so the record and its
// indexes never disagree.
type RedisSessionRepository struct {
	client *pkgredis.Client
}

// NewRedisSessionRepository creates a new RedisSessionRepository
func NewRedisSessionRepository(client *pkgredis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

// LoadScripts loads the session Lua scripts into Redis
func (r *RedisSessionRepository) LoadScripts(ctx context.Context) error {
	scripts := map[string]string{
		scriptSessionSave:   sessionSaveScript,
		scriptSessionDelete: sessionDeleteScript,
	}

	for name, script := range scripts {
		if _, err := r.client.LoadScript(ctx, name, script); err != nil {
			return fmt.Errorf("failed to load script %s: %w", name, err)
		}
	}

	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

func sessionTokenKey(token string) string {
	return fmt.Sprintf("session:token:%s", token)
}

func sessionRefreshKey(refreshToken string) string {
	return fmt.Sprintf("session:refresh:%s", refreshToken)
}

func sessionUserKey(userID, refreshToken string) string {
	return fmt.Sprintf("session:user:%s:%s", userID, refreshToken)
}

func sessionKeys(session *domain.Session) []string {
	return []string{
		sessionKey(session.ID),
		sessionTokenKey(session.Token),
		sessionRefreshKey(session.RefreshToken),
		sessionUserKey(session.UserID, session.RefreshToken),
	}
}

// Save stores the session record and its lookup indexes with a shared
// TTL.
func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.session.save")
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", session.ID),
		attribute.String("user_id", session.UserID),
	)

	payload, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	args := []interface{}{
		string(payload),            // ARGV[1]: session JSON
		session.ID,                 // ARGV[2]: session id
		session.TTL.Milliseconds(), // ARGV[3]: ttl millis
	}

	result := r.client.EvalWithFallback(ctx, scriptSessionSave, sessionSaveScript, sessionKeys(session), args...)
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return fmt.Errorf("failed to execute session_save script: %w", result.Err())
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// FindByID retrieves a session by its id
func (r *RedisSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.session.find_by_id")
	defer span.End()

	span.SetAttributes(attribute.String("session_id", id))

	return r.load(ctx, id)
}

// FindByTokenOrRefreshToken retrieves the session holding the given
// value as either its access or its refresh token.
func (r *RedisSessionRepository) FindByTokenOrRefreshToken(ctx context.Context, value string) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.session.find_by_token")
	defer span.End()

	id, err := r.client.Get(ctx, sessionTokenKey(value)).Result()
	if errors.Is(err, redis.Nil) {
		id, err = r.client.Get(ctx, sessionRefreshKey(value)).Result()
	}
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetStatus(codes.Error, "not found")
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to look up session index: %w", err)
	}

	return r.load(ctx, id)
}

// FindByUserIDAndRefreshToken retrieves the session a refresh token
// belongs to, scoped to its owner.
func (r *RedisSessionRepository) FindByUserIDAndRefreshToken(ctx context.Context, userID, refreshToken string) (*domain.Session, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.session.find_by_user_refresh")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	id, err := r.client.Get(ctx, sessionUserKey(userID, refreshToken)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			span.SetStatus(codes.Error, "not found")
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to look up session index: %w", err)
	}

	return r.load(ctx, id)
}

// Delete removes the session and its indexes. The returned bool
// reports whether the record was still present, which lets refresh
// rotation detect a token that was already consumed.
func (r *RedisSessionRepository) Delete(ctx context.Context, session *domain.Session) (bool, error) {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.session.delete")
	defer span.End()

	span.SetAttributes(
		attribute.String("session_id", session.ID),
		attribute.String("user_id", session.UserID),
	)

	result := r.client.EvalWithFallback(ctx, scriptSessionDelete, sessionDeleteScript, sessionKeys(session))
	if result.Err() != nil {
		span.RecordError(result.Err())
		span.SetStatus(codes.Error, result.Err().Error())
		return false, fmt.Errorf("failed to execute session_delete script: %w", result.Err())
	}

	removed, err := result.Int64()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, fmt.Errorf("failed to parse script result: %w", err)
	}

	span.SetAttributes(attribute.Bool("removed", removed == 1))
	span.SetStatus(codes.Ok, "")
	return removed == 1, nil
}

// DeleteAllByUserID removes every session belonging to a user
func (r *RedisSessionRepository) DeleteAllByUserID(ctx context.Context, userID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.redis.session.delete_all_by_user")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", userID))

	pattern := fmt.Sprintf("session:user:%s:*", userID)
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return fmt.Errorf("failed to scan user sessions: %w", err)
		}

		for _, key := range keys {
			id, err := r.client.Get(ctx, key).Result()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return fmt.Errorf("failed to resolve user session: %w", err)
			}

			session, err := r.load(ctx, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if _, err := r.Delete(ctx, session); err != nil {
				return err
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (r *RedisSessionRepository) load(ctx context.Context, id string) (*domain.Session, error) {
	payload, err := r.client.Get(ctx, sessionKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session := &domain.Session{}
	if err := json.Unmarshal([]byte(payload), session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return session, nil
}

// Ensure RedisSessionRepository implements SessionRepository
var _ SessionRepository = (*RedisSessionRepository)(nil)
