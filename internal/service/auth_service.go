package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/domain"
	"blogapi/internal/dto"
	"blogapi/internal/repository"
	"blogapi/internal/token"
	"blogapi/pkg/logger"
	"blogapi/pkg/telemetry"
)

// AuthService defines the authentication operations
type AuthService interface {
	// Login verifies credentials and issues a token pair
	Login(ctx context.Context, req *dto.LoginRequest, client token.Client) (*dto.TokenResponse, error)
	// Refresh rotates a refresh token into a fresh pair
	Refresh(ctx context.Context, refreshToken string, client token.Client) (*dto.TokenResponse, error)
	// Logout revokes the session holding the given token
	Logout(ctx context.Context, principal domain.Principal, raw string) error
	// LogoutAll revokes every session of the user
	LogoutAll(ctx context.Context, principal domain.Principal) error
	// IsAuthorized checks the principal against required roles
	IsAuthorized(principal *domain.Principal, roles ...string) error
}

// authService implements AuthService
type authService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	tokens      *token.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	tokens *token.Manager,
) AuthService {
	return &authService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
	}
}

// Login verifies credentials and issues a token pair. Unknown email,
// wrong password, and blocked account all fail with ErrBadCredentials.
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, client token.Client) (*dto.TokenResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "bad credentials")
			return nil, ErrBadCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if user.IsBlocked() {
		span.SetStatus(codes.Error, "bad credentials")
		return nil, ErrBadCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		span.SetStatus(codes.Error, "bad credentials")
		return nil, ErrBadCredentials
	}

	pair, err := s.tokens.IssuePair(ctx, user.ID, req.RememberMe, client)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")

	logger.Get().Info("user logged in", zap.String("user_id", user.ID))
	return tokenResponse(pair), nil
}

// Refresh rotates a refresh token. The presented token must be
// cryptographically valid, belong to a live session of its subject,
// and not have been consumed before. The old session is removed and a
// fresh pair issued carrying the remember-me choice forward.
func (s *authService) Refresh(ctx context.Context, refreshToken string, client token.Client) (*dto.TokenResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.refresh")
	defer span.End()

	userID, err := s.tokens.Subject(refreshToken)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			span.SetStatus(codes.Error, "token expired")
			return nil, ErrTokenExpired
		}
		span.SetStatus(codes.Error, "invalid token")
		return nil, ErrInvalidToken
	}

	session, err := s.sessionRepo.FindByUserIDAndRefreshToken(ctx, userID, refreshToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "session not found")
			return nil, ErrInvalidToken
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	// Consume the old session. Losing the race to a concurrent
	// refresh of the same token means it was already used.
	removed, err := s.sessionRepo.Delete(ctx, session)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !removed {
		span.SetStatus(codes.Error, "refresh token already used")
		return nil, ErrInvalidToken
	}

	pair, err := s.tokens.IssuePair(ctx, userID, session.RememberMe, client)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", userID))
	span.SetStatus(codes.Ok, "")
	return tokenResponse(pair), nil
}

// Logout revokes the session holding the presented token. The session
// must belong to the principal. Revoking an already absent session
// succeeds.
func (s *authService) Logout(ctx context.Context, principal domain.Principal, raw string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.logout")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", principal.UserID))

	session, err := s.sessionRepo.FindByTokenOrRefreshToken(ctx, raw)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Ok, "already revoked")
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if session.UserID != principal.UserID {
		span.SetStatus(codes.Error, "session owner mismatch")
		return ErrBadCredentials
	}

	if _, err := s.sessionRepo.Delete(ctx, session); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// LogoutAll revokes every session of the principal
func (s *authService) LogoutAll(ctx context.Context, principal domain.Principal) error {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.logout_all")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", principal.UserID))

	if err := s.sessionRepo.DeleteAllByUserID(ctx, principal.UserID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// IsAuthorized checks role membership. A nil principal is
// unauthenticated and gets ErrInvalidToken; an authenticated principal
// lacking every required role gets ErrAccessDenied.
func (s *authService) IsAuthorized(principal *domain.Principal, roles ...string) error {
	if principal == nil {
		return ErrInvalidToken
	}
	if len(roles) == 0 {
		return nil
	}
	if !principal.HasAnyRole(roles...) {
		return ErrAccessDenied
	}
	return nil
}

func tokenResponse(pair *token.Pair) *dto.TokenResponse {
	return &dto.TokenResponse{
		Token:        pair.Token,
		RefreshToken: pair.RefreshToken,
		ExpiresIn: dto.ExpiresIn{
			Token:        int64(pair.TokenTTL.Seconds()),
			RefreshToken: int64(pair.RefreshTokenTTL.Seconds()),
		},
	}
}
