package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"blogapi/internal/domain"
	"blogapi/internal/dto"
	"blogapi/internal/mailer"
)

func newTestUserService() (*userService, *mockUserRepository, *mockAccountTokenRepository, *mockSessionRepository, *mockMailer) {
	userRepo := newMockUserRepository()
	tokenRepo := newMockAccountTokenRepository()
	sessionRepo := newMockSessionRepository()
	mail := &mockMailer{}

	svc := NewUserService(userRepo, tokenRepo, sessionRepo, mail,
		&mailer.Config{FromAddress: "noreply@example.com", FrontendURL: "http://localhost:3000"},
		&UserServiceConfig{
			BcryptCost:           bcrypt.MinCost,
			EmailVerificationTTL: 24 * time.Hour,
			PasswordResetTTL:     time.Hour,
		})
	return svc.(*userService), userRepo, tokenRepo, sessionRepo, mail
}

func TestUserService_Register(t *testing.T) {
	svc, userRepo, tokenRepo, _, mail := newTestUserService()

	req := &dto.RegisterRequest{
		Email:     "new@example.com",
		Password:  "Password1!",
		Firstname: "New",
		Lastname:  "User",
		Gender:    "female",
	}

	user, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if user.Email != req.Email {
		t.Errorf("Register() Email = %v, want %v", user.Email, req.Email)
	}
	if !user.HasRole(string(domain.RoleUser)) {
		t.Errorf("Register() Roles = %v, want user", user.Roles)
	}
	if user.EmailVerifiedAt != nil {
		t.Error("Register() account starts unverified")
	}
	if _, ok := userRepo.users[user.ID]; !ok {
		t.Error("Register() user not persisted")
	}

	record := tokenRepo.byUser(user.ID, domain.TokenKindEmailVerification)
	if record == nil {
		t.Fatal("Register() no verification token created")
	}
	if len(record.Token) != 64 {
		t.Errorf("Register() verification token length = %d, want 64", len(record.Token))
	}
	if len(mail.sent) != 1 {
		t.Fatalf("Register() mails sent = %d, want 1", len(mail.sent))
	}
	if !strings.Contains(mail.sent[0].Body, record.Token) {
		t.Error("Register() mail does not carry the verification token")
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(context.Background(), req)
		if !errors.Is(err, ErrEmailTaken) {
			t.Errorf("Register() error = %v, want %v", err, ErrEmailTaken)
		}
	})
}

func TestUserService_VerifyEmail(t *testing.T) {
	svc, userRepo, tokenRepo, _, _ := newTestUserService()

	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "verify@example.com",
		Password:  "Password1!",
		Firstname: "Verify",
		Lastname:  "Me",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	record := tokenRepo.byUser(user.ID, domain.TokenKindEmailVerification)

	t.Run("marks the account verified and consumes the token", func(t *testing.T) {
		if err := svc.VerifyEmail(context.Background(), record.Token); err != nil {
			t.Fatalf("VerifyEmail() error = %v", err)
		}
		if userRepo.users[user.ID].EmailVerifiedAt == nil {
			t.Error("VerifyEmail() account still unverified")
		}
		if tokenRepo.byUser(user.ID, domain.TokenKindEmailVerification) != nil {
			t.Error("VerifyEmail() token not consumed")
		}
	})

	t.Run("consumed token is invalid", func(t *testing.T) {
		err := svc.VerifyEmail(context.Background(), record.Token)
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("VerifyEmail() error = %v, want %v", err, ErrInvalidToken)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := &domain.AccountToken{
			ID:        "expired-token",
			UserID:    user.ID,
			Kind:      domain.TokenKindEmailVerification,
			Token:     "expired-value",
			ExpiresAt: time.Now().Add(-time.Minute),
			CreatedAt: time.Now().Add(-time.Hour),
		}
		tokenRepo.tokens[expired.ID] = expired

		err := svc.VerifyEmail(context.Background(), expired.Token)
		if !errors.Is(err, ErrTokenExpired) {
			t.Errorf("VerifyEmail() error = %v, want %v", err, ErrTokenExpired)
		}
	})
}

func TestUserService_PasswordReset(t *testing.T) {
	svc, userRepo, tokenRepo, sessionRepo, mail := newTestUserService()

	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "reset@example.com",
		Password:  "OldPassword1!",
		Firstname: "Reset",
		Lastname:  "Me",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	sessionRepo.Save(context.Background(), &domain.Session{ID: "s1", UserID: user.ID})

	t.Run("unknown email succeeds silently", func(t *testing.T) {
		sent := len(mail.sent)
		if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
			t.Fatalf("RequestPasswordReset() error = %v", err)
		}
		if len(mail.sent) != sent {
			t.Error("RequestPasswordReset() sent mail for unknown email")
		}
	})

	t.Run("issues a reset token and mails it", func(t *testing.T) {
		if err := svc.RequestPasswordReset(context.Background(), "reset@example.com"); err != nil {
			t.Fatalf("RequestPasswordReset() error = %v", err)
		}
		record := tokenRepo.byUser(user.ID, domain.TokenKindPasswordReset)
		if record == nil {
			t.Fatal("RequestPasswordReset() no token created")
		}
		if len(record.Token) != 32 {
			t.Errorf("RequestPasswordReset() token length = %d, want 32", len(record.Token))
		}
	})

	t.Run("resets the password and revokes sessions", func(t *testing.T) {
		record := tokenRepo.byUser(user.ID, domain.TokenKindPasswordReset)
		if err := svc.ResetPassword(context.Background(), record.Token, "NewPassword1!"); err != nil {
			t.Fatalf("ResetPassword() error = %v", err)
		}

		updated := userRepo.users[user.ID]
		if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("NewPassword1!")); err != nil {
			t.Error("ResetPassword() new password does not verify")
		}
		if len(sessionRepo.sessions) != 0 {
			t.Errorf("ResetPassword() sessions = %d, want 0", len(sessionRepo.sessions))
		}
		if tokenRepo.byUser(user.ID, domain.TokenKindPasswordReset) != nil {
			t.Error("ResetPassword() token not consumed")
		}
	})
}

func TestUserService_ChangePassword(t *testing.T) {
	svc, userRepo, _, _, _ := newTestUserService()

	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "change@example.com",
		Password:  "OldPassword1!",
		Firstname: "Change",
		Lastname:  "Me",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	principal := domain.Principal{UserID: user.ID}

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), principal, &dto.ChangePasswordRequest{
			CurrentPassword: "wrong",
			Password:        "NewPassword1!",
		})
		if !errors.Is(err, ErrBadCredentials) {
			t.Errorf("ChangePassword() error = %v, want %v", err, ErrBadCredentials)
		}
	})

	t.Run("successful change", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), principal, &dto.ChangePasswordRequest{
			CurrentPassword: "OldPassword1!",
			Password:        "NewPassword1!",
		})
		if err != nil {
			t.Fatalf("ChangePassword() error = %v", err)
		}
		updated := userRepo.users[user.ID]
		if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("NewPassword1!")); err != nil {
			t.Error("ChangePassword() new password does not verify")
		}
	})
}

func TestUserService_AdminCreateAndUpdate(t *testing.T) {
	svc, userRepo, _, _, _ := newTestUserService()
	admin := domain.Principal{UserID: "admin-id", Roles: []string{"admin"}}

	user, err := svc.Create(context.Background(), admin, &dto.CreateUserRequest{
		Email:          "managed@example.com",
		Password:       "Password1!",
		Firstname:      "Managed",
		Lastname:       "User",
		Roles:          []string{"user"},
		MarkAsVerified: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if user.EmailVerifiedAt == nil {
		t.Error("Create() MarkAsVerified ignored")
	}
	if user.CreatedUserID == nil || *user.CreatedUserID != admin.UserID {
		t.Error("Create() CreatedUserID not set to the acting admin")
	}

	t.Run("block and unblock", func(t *testing.T) {
		blocked := true
		if _, err := svc.Update(context.Background(), admin, user.ID, &dto.UpdateUserRequest{IsBlocked: &blocked}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if !userRepo.users[user.ID].IsBlocked() {
			t.Error("Update() user not blocked")
		}

		blocked = false
		if _, err := svc.Update(context.Background(), admin, user.ID, &dto.UpdateUserRequest{IsBlocked: &blocked}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if userRepo.users[user.ID].IsBlocked() {
			t.Error("Update() user still blocked")
		}
	})

	t.Run("email change resets verification", func(t *testing.T) {
		email := "renamed@example.com"
		updated, err := svc.Update(context.Background(), admin, user.ID, &dto.UpdateUserRequest{Email: &email})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Email != email {
			t.Errorf("Update() Email = %v, want %v", updated.Email, email)
		}
		if updated.EmailVerifiedAt != nil {
			t.Error("Update() email change must reset verification")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Update(context.Background(), admin, "missing-id", &dto.UpdateUserRequest{})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("Update() error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestUserService_Delete(t *testing.T) {
	svc, _, _, sessionRepo, _ := newTestUserService()

	user, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "delete@example.com",
		Password:  "Password1!",
		Firstname: "Delete",
		Lastname:  "Me",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	sessionRepo.Save(context.Background(), &domain.Session{ID: "s1", UserID: user.ID})

	if err := svc.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(sessionRepo.sessions) != 0 {
		t.Error("Delete() sessions not revoked")
	}

	if err := svc.Delete(context.Background(), user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() second call error = %v, want %v", err, ErrNotFound)
	}
}

func TestUserService_ListValidation(t *testing.T) {
	svc, _, _, _, _ := newTestUserService()

	_, _, _, err := svc.List(context.Background(), &dto.ListUsersRequest{Page: 0, Size: 20})
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("List() error = %v, want %v", err, ErrBadRequest)
	}

	bad := "not-a-date"
	_, _, _, err = svc.List(context.Background(), &dto.ListUsersRequest{Page: 1, Size: 20, CreatedAtStart: &bad})
	if !errors.Is(err, ErrBadRequest) {
		t.Errorf("List() error = %v, want %v", err, ErrBadRequest)
	}
}

func TestUserService_ListCriteria(t *testing.T) {
	svc, userRepo, _, _, _ := newTestUserService()

	start := "2026-01-01T00:00:00Z"
	_, _, _, err := svc.List(context.Background(), &dto.ListUsersRequest{
		Page:           1,
		Size:           20,
		Roles:          []string{"admin"},
		CreatedUserIDs: []string{"creator-1", "creator-2"},
		UpdatedUserIDs: []string{"editor-1"},
		CreatedAtStart: &start,
	})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	got := userRepo.lastCriteria
	if len(got.CreatedUserIDs) != 2 || got.CreatedUserIDs[0] != "creator-1" {
		t.Errorf("CreatedUserIDs not passed through, got %v", got.CreatedUserIDs)
	}
	if len(got.UpdatedUserIDs) != 1 || got.UpdatedUserIDs[0] != "editor-1" {
		t.Errorf("UpdatedUserIDs not passed through, got %v", got.UpdatedUserIDs)
	}
	if got.CreatedAtStart == nil {
		t.Error("CreatedAtStart not passed through")
	}
}
