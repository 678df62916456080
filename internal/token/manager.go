package token

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"blogapi/internal/domain"
	"blogapi/pkg/logger"
	"blogapi/pkg/telemetry"
)

// BearerPrefix is the scheme expected in Authorization headers
const BearerPrefix = "Bearer "

// Reason tags why validation failed. The HTTP entry point turns the
// tag into a precise message without leaking internals.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonExpired     Reason = "expired"
	ReasonUnsupported Reason = "unsupported"
	ReasonInvalid     Reason = "invalid"
	ReasonIllegal     Reason = "illegal"
	ReasonNotFound    Reason = "notfound"
)

// Client identifies the device a token was issued to
type Client struct {
	IPAddress string
	UserAgent string
}

// Pair is an issued access/refresh token pair
type Pair struct {
	Token           string
	RefreshToken    string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
}

// SessionStore persists active token pairs. Implemented by the Redis
// session repository.
type SessionStore interface {
	Save(ctx context.Context, session *domain.Session) error
	FindByTokenOrRefreshToken(ctx context.Context, value string) (*domain.Session, error)
	FindByUserIDAndRefreshToken(ctx context.Context, userID, refreshToken string) (*domain.Session, error)
	// Delete removes the session and reports whether it was present.
	// Deleting an absent session is not an error.
	Delete(ctx context.Context, session *domain.Session) (bool, error)
}

// ManagerConfig holds token lifetimes and validation behaviour
type ManagerConfig struct {
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
	RememberMeTTL   time.Duration
	// BindClient enables the IP/User-Agent check on validation.
	// Disabling it trades replay resistance for client mobility.
	BindClient bool
}

// Manager issues token pairs and validates presented tokens against
// both cryptographic validity and session store presence.
type Manager struct {
	provider *Provider
	sessions SessionStore
	config   *ManagerConfig
}

// NewManager creates a Manager
func NewManager(provider *Provider, sessions SessionStore, config *ManagerConfig) *Manager {
	if config.TokenTTL == 0 {
		config.TokenTTL = time.Hour
	}
	if config.RefreshTokenTTL == 0 {
		config.RefreshTokenTTL = 24 * time.Hour
	}
	if config.RememberMeTTL == 0 {
		config.RememberMeTTL = 30 * 24 * time.Hour
	}
	return &Manager{provider: provider, sessions: sessions, config: config}
}

// TokenTTL returns the access token lifetime
func (m *Manager) TokenTTL() time.Duration {
	return m.config.TokenTTL
}

// RefreshTokenTTL returns the refresh lifetime effective for the
// remember-me choice. Remember-me substitutes the longer TTL at
// issuance time only.
func (m *Manager) RefreshTokenTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return m.config.RememberMeTTL
	}
	return m.config.RefreshTokenTTL
}

// IssuePair generates an access/refresh pair for the user and persists
// the session bound to the requesting client.
func (m *Manager) IssuePair(ctx context.Context, userID string, rememberMe bool, client Client) (*Pair, error) {
	ctx, span := telemetry.StartSpan(ctx, "token.issue_pair")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", userID))

	accessToken, err := m.provider.Generate(userID, m.config.TokenTTL)
	if err != nil {
		return nil, err
	}

	refreshTTL := m.RefreshTokenTTL(rememberMe)
	refreshToken, err := m.provider.Generate(userID, refreshTTL)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:           uuid.New().String(),
		UserID:       userID,
		Token:        accessToken,
		RefreshToken: refreshToken,
		RememberMe:   rememberMe,
		IPAddress:    client.IPAddress,
		UserAgent:    client.UserAgent,
		TTL:          refreshTTL,
		CreatedAt:    time.Now(),
	}
	if err := m.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	logger.Get().Info("token pair issued",
		zap.String("user_id", userID),
		zap.Bool("remember_me", rememberMe))

	return &Pair{
		Token:           accessToken,
		RefreshToken:    refreshToken,
		TokenTTL:        m.config.TokenTTL,
		RefreshTokenTTL: refreshTTL,
	}, nil
}

// Validate reports whether the presented token may be trusted. It
// fails closed: a codec failure, a missing session record, or a client
// fingerprint mismatch all yield false with a tagged reason.
func (m *Manager) Validate(ctx context.Context, raw string, client Client) (bool, Reason) {
	ctx, span := telemetry.StartSpan(ctx, "token.validate")
	defer span.End()

	if raw == "" {
		return false, ReasonIllegal
	}

	if _, err := m.provider.Parse(raw); err != nil {
		span.SetAttributes(attribute.String("reason", string(reasonForParseError(err))))
		return false, reasonForParseError(err)
	}

	session, err := m.sessions.FindByTokenOrRefreshToken(ctx, raw)
	if err != nil {
		logger.Get().Warn("token not found in session store", zap.Error(err))
		return false, ReasonNotFound
	}

	if m.config.BindClient {
		if session.IPAddress != client.IPAddress {
			logger.Get().Warn("token presented from different IP",
				zap.String("user_id", session.UserID))
			return false, ReasonNotFound
		}
		if session.UserAgent != client.UserAgent {
			logger.Get().Warn("token presented with different user agent",
				zap.String("user_id", session.UserID))
			return false, ReasonNotFound
		}
	}

	return true, ReasonNone
}

// Subject returns the user id carried by a valid token
func (m *Manager) Subject(raw string) (string, error) {
	return m.provider.Subject(raw)
}

// ExtractFromHeader strips the bearer scheme from an Authorization
// header value. Returns "" when absent or malformed; an unauthenticated
// request is not an error.
func ExtractFromHeader(header string) string {
	if len(header) > len(BearerPrefix) && strings.HasPrefix(header, BearerPrefix) {
		return header[len(BearerPrefix):]
	}
	return ""
}

func reasonForParseError(err error) Reason {
	switch {
	case errors.Is(err, ErrExpired):
		return ReasonExpired
	case errors.Is(err, ErrUnsupported):
		return ReasonUnsupported
	default:
		return ReasonInvalid
	}
}
