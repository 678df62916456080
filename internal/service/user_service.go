package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/domain"
	"blogapi/internal/dto"
	"blogapi/internal/mailer"
	"blogapi/internal/query"
	"blogapi/internal/repository"
	"blogapi/pkg/logger"
	"blogapi/pkg/telemetry"
)

// Token lengths in hex characters
const (
	emailVerificationTokenLength = 64
	passwordResetTokenLength     = 32
)

// userSortColumns lists the columns user listings may sort by
var userSortColumns = []string{"id", "email", "firstname", "lastname", "gender", "created_at", "updated_at"}

// UserServiceConfig holds configuration for UserService
type UserServiceConfig struct {
	BcryptCost           int
	EmailVerificationTTL time.Duration
	PasswordResetTTL     time.Duration
}

// UserService defines user account operations
type UserService interface {
	// Register creates a user account and sends a verification email
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
	// VerifyEmail marks the account of a verification token as verified
	VerifyEmail(ctx context.Context, rawToken string) error
	// ResendVerification issues a fresh verification token
	ResendVerification(ctx context.Context, email string) error
	// RequestPasswordReset issues a reset token and mails it
	RequestPasswordReset(ctx context.Context, email string) error
	// ResetPassword sets a new password using a reset token
	ResetPassword(ctx context.Context, rawToken, password string) error
	// ChangePassword sets a new password after checking the current one
	ChangePassword(ctx context.Context, principal domain.Principal, req *dto.ChangePasswordRequest) error
	// GetByID retrieves a user
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Create creates a user on behalf of an admin
	Create(ctx context.Context, principal domain.Principal, req *dto.CreateUserRequest) (*domain.User, error)
	// Update modifies a user on behalf of an admin
	Update(ctx context.Context, principal domain.Principal, id string, req *dto.UpdateUserRequest) (*domain.User, error)
	// UpdateProfile modifies the principal's own profile
	UpdateProfile(ctx context.Context, principal domain.Principal, req *dto.UpdateProfileRequest) (*domain.User, error)
	// Delete removes a user
	Delete(ctx context.Context, id string) error
	// List returns a filtered page of users
	List(ctx context.Context, req *dto.ListUsersRequest) ([]*domain.User, int64, query.PageRequest, error)
}

// userService implements UserService
type userService struct {
	userRepo    repository.UserRepository
	tokenRepo   repository.AccountTokenRepository
	sessionRepo repository.SessionRepository
	mail        mailer.Mailer
	mailConfig  *mailer.Config
	config      *UserServiceConfig
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repository.UserRepository,
	tokenRepo repository.AccountTokenRepository,
	sessionRepo repository.SessionRepository,
	mail mailer.Mailer,
	mailConfig *mailer.Config,
	config *UserServiceConfig,
) UserService {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	if config.EmailVerificationTTL == 0 {
		config.EmailVerificationTTL = 24 * time.Hour
	}
	if config.PasswordResetTTL == 0 {
		config.PasswordResetTTL = time.Hour
	}
	return &userService{
		userRepo:    userRepo,
		tokenRepo:   tokenRepo,
		sessionRepo: sessionRepo,
		mail:        mail,
		mailConfig:  mailConfig,
		config:      config,
	}
}

// Register creates a user account and sends a verification email
func (s *userService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.register")
	defer span.End()

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if exists {
		span.SetStatus(codes.Error, "email taken")
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Firstname:    req.Firstname,
		Lastname:     req.Lastname,
		Gender:       domain.ParseGender(req.Gender),
		Roles:        []string{string(domain.RoleUser)},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.sendVerification(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")

	logger.Get().Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// VerifyEmail marks the token's account as verified and consumes the
// token.
func (s *userService) VerifyEmail(ctx context.Context, rawToken string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.user.verify_email")
	defer span.End()

	record, err := s.tokenRepo.GetByToken(ctx, domain.TokenKindEmailVerification, rawToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "token not found")
			return ErrInvalidToken
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if record.IsExpired() {
		span.SetStatus(codes.Error, "token expired")
		return ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, record.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	now := time.Now()
	user.EmailVerifiedAt = &now
	user.UpdatedAt = now
	if err := s.userRepo.Update(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.tokenRepo.DeleteByUserID(ctx, user.ID, domain.TokenKindEmailVerification); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return nil
}

// ResendVerification issues a fresh verification token for an
// unverified account.
func (s *userService) ResendVerification(ctx context.Context, email string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.user.resend_verification")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "not found")
			return ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if user.EmailVerifiedAt != nil {
		span.SetStatus(codes.Error, "already verified")
		return ErrAlreadyVerified
	}

	if err := s.sendVerification(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// RequestPasswordReset issues a reset token and mails it. An unknown
// email succeeds silently.
func (s *userService) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.user.request_password_reset")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Ok, "unknown email")
			return nil
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	value, err := randomToken(passwordResetTokenLength)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	record := &domain.AccountToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Kind:      domain.TokenKindPasswordReset,
		Token:     value,
		ExpiresAt: time.Now().Add(s.config.PasswordResetTTL),
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	body := fmt.Sprintf("Reset your password: %s", s.mailConfig.PasswordResetURL(value))
	if err := s.mail.Send(ctx, user.Email, "Reset your password", body); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return nil
}

// ResetPassword sets a new password using a reset token. All sessions
// of the account are revoked.
func (s *userService) ResetPassword(ctx context.Context, rawToken, password string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.user.reset_password")
	defer span.End()

	record, err := s.tokenRepo.GetByToken(ctx, domain.TokenKindPasswordReset, rawToken)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "token not found")
			return ErrInvalidToken
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	if record.IsExpired() {
		span.SetStatus(codes.Error, "token expired")
		return ErrTokenExpired
	}

	user, err := s.userRepo.GetByID(ctx, record.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.tokenRepo.DeleteByUserID(ctx, user.ID, domain.TokenKindPasswordReset); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.sessionRepo.DeleteAllByUserID(ctx, user.ID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")

	logger.Get().Info("password reset", zap.String("user_id", user.ID))
	return nil
}

// ChangePassword sets a new password after checking the current one
func (s *userService) ChangePassword(ctx context.Context, principal domain.Principal, req *dto.ChangePasswordRequest) error {
	ctx, span := telemetry.StartSpan(ctx, "service.user.change_password")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", principal.UserID))

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		span.SetStatus(codes.Error, "bad credentials")
		return ErrBadCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// GetByID retrieves a user
func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.get_by_id")
	defer span.End()

	user, err := s.userRepo.GetByID(ctx, id)
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
	return user, nil
}

// Create creates a user on behalf of an admin. The account can be
// created blocked or pre-verified.
func (s *userService) Create(ctx context.Context, principal domain.Principal, req *dto.CreateUserRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.create")
	defer span.End()

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if exists {
		span.SetStatus(codes.Error, "email taken")
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		ID:            uuid.New().String(),
		Email:         req.Email,
		PasswordHash:  string(hash),
		Firstname:     req.Firstname,
		Lastname:      req.Lastname,
		Gender:        domain.ParseGender(req.Gender),
		Roles:         req.Roles,
		CreatedUserID: &principal.UserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if req.IsBlocked {
		user.BlockedAt = &now
	}
	if req.MarkAsVerified {
		user.EmailVerifiedAt = &now
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !req.MarkAsVerified {
		if err := s.sendVerification(ctx, user); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	span.SetAttributes(attribute.String("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return user, nil
}

// Update modifies a user on behalf of an admin
func (s *userService) Update(ctx context.Context, principal domain.Principal, id string, req *dto.UpdateUserRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.update")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			span.SetStatus(codes.Error, "not found")
			return nil, ErrNotFound
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.Email != nil && *req.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		if exists {
			span.SetStatus(codes.Error, "email taken")
			return nil, ErrEmailTaken
		}
		user.Email = *req.Email
		user.EmailVerifiedAt = nil
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), s.config.BcryptCost)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	if req.Firstname != nil {
		user.Firstname = *req.Firstname
	}
	if req.Lastname != nil {
		user.Lastname = *req.Lastname
	}
	if req.Gender != nil {
		user.Gender = domain.ParseGender(*req.Gender)
	}
	if req.Roles != nil {
		user.Roles = req.Roles
	}
	if req.IsBlocked != nil {
		if *req.IsBlocked && user.BlockedAt == nil {
			now := time.Now()
			user.BlockedAt = &now
		}
		if !*req.IsBlocked {
			user.BlockedAt = nil
		}
	}

	user.UpdatedUserID = &principal.UserID
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// UpdateProfile modifies the principal's own profile
func (s *userService) UpdateProfile(ctx context.Context, principal domain.Principal, req *dto.UpdateProfileRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.update_profile")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", principal.UserID))

	user, err := s.userRepo.GetByID(ctx, principal.UserID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.Firstname != nil {
		user.Firstname = *req.Firstname
	}
	if req.Lastname != nil {
		user.Lastname = *req.Lastname
	}
	if req.Gender != nil {
		user.Gender = domain.ParseGender(*req.Gender)
	}

	user.UpdatedUserID = &principal.UserID
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// Delete removes a user
func (s *userService) Delete(ctx context.Context, id string) error {
	ctx, span := telemetry.StartSpan(ctx, "service.user.delete")
	defer span.End()

	span.SetAttributes(attribute.String("user_id", id))

	if err := s.sessionRepo.DeleteAllByUserID(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
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

// List returns a filtered page of users
func (s *userService) List(ctx context.Context, req *dto.ListUsersRequest) ([]*domain.User, int64, query.PageRequest, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.user.list")
	defer span.End()

	page, err := query.BuildPageRequest(req.Page, req.Size, req.SortBy, req.Sort, userSortColumns)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, page, fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
	}

	criteria := query.UserCriteria{
		Roles:          req.Roles,
		Genders:        req.Genders,
		CreatedUserIDs: req.CreatedUserIDs,
		UpdatedUserIDs: req.UpdatedUserIDs,
		IsBlocked:      req.IsBlocked,
		Q:              req.Q,
	}
	if criteria.CreatedAtStart, err = parseTime(req.CreatedAtStart); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, page, fmt.Errorf("%w: invalid createdAtStart", ErrBadRequest)
	}
	if criteria.CreatedAtEnd, err = parseTime(req.CreatedAtEnd); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, page, fmt.Errorf("%w: invalid createdAtEnd", ErrBadRequest)
	}
	if criteria.UpdatedAtStart, err = parseTime(req.UpdatedAtStart); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, page, fmt.Errorf("%w: invalid updatedAtStart", ErrBadRequest)
	}
	if criteria.UpdatedAtEnd, err = parseTime(req.UpdatedAtEnd); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, page, fmt.Errorf("%w: invalid updatedAtEnd", ErrBadRequest)
	}

	users, total, err := s.userRepo.List(ctx, criteria, page)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, 0, page, err
	}

	span.SetAttributes(attribute.Int64("total", total))
	span.SetStatus(codes.Ok, "")
	return users, total, page, nil
}

func (s *userService) sendVerification(ctx context.Context, user *domain.User) error {
	value, err := randomToken(emailVerificationTokenLength)
	if err != nil {
		return err
	}

	record := &domain.AccountToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Kind:      domain.TokenKindEmailVerification,
		Token:     value,
		ExpiresAt: time.Now().Add(s.config.EmailVerificationTTL),
		CreatedAt: time.Now(),
	}
	if err := s.tokenRepo.Create(ctx, record); err != nil {
		return err
	}

	body := fmt.Sprintf("Verify your email address: %s", s.mailConfig.VerificationURL(value))
	return s.mail.Send(ctx, user.Email, "Verify your email address", body)
}

// randomToken returns a hex token of the given character length
func randomToken(length int) (string, error) {
	buf := make([]byte, length/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func parseTime(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
