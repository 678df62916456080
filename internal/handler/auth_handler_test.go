package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"blogapi/internal/domain"
	"blogapi/internal/dto"
	"blogapi/internal/service"
	"blogapi/internal/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthService struct {
	loginFunc   func(ctx context.Context, req *dto.LoginRequest, client token.Client) (*dto.TokenResponse, error)
	refreshFunc func(ctx context.Context, refreshToken string, client token.Client) (*dto.TokenResponse, error)
	logoutFunc  func(ctx context.Context, principal domain.Principal, raw string) error
}

func (s *stubAuthService) Login(ctx context.Context, req *dto.LoginRequest, client token.Client) (*dto.TokenResponse, error) {
	return s.loginFunc(ctx, req, client)
}

func (s *stubAuthService) Refresh(ctx context.Context, refreshToken string, client token.Client) (*dto.TokenResponse, error) {
	return s.refreshFunc(ctx, refreshToken, client)
}

func (s *stubAuthService) Logout(ctx context.Context, principal domain.Principal, raw string) error {
	return s.logoutFunc(ctx, principal, raw)
}

func (s *stubAuthService) LogoutAll(ctx context.Context, principal domain.Principal) error {
	return nil
}

func (s *stubAuthService) IsAuthorized(principal *domain.Principal, roles ...string) error {
	return nil
}

func postJSON(t *testing.T, h gin.HandlerFunc, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", path, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		c.Request.Header.Set(k, v)
	}

	h(c)
	return w
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &stubAuthService{
			loginFunc: func(ctx context.Context, req *dto.LoginRequest, client token.Client) (*dto.TokenResponse, error) {
				if req.Email != "jane@example.com" {
					t.Errorf("Expected bound email, got %q", req.Email)
				}
				return &dto.TokenResponse{Token: "access", RefreshToken: "refresh"}, nil
			},
		}
		handler := NewAuthHandler(svc)

		w := postJSON(t, handler.Login, "/api/v1/auth/login", `{"email":"jane@example.com","password":"secret123"}`, nil)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), `"access"`) {
			t.Errorf("Expected token in body, got %s", w.Body.String())
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthService{})

		w := postJSON(t, handler.Login, "/api/v1/auth/login", `{"email":`, nil)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("missing password", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthService{})

		w := postJSON(t, handler.Login, "/api/v1/auth/login", `{"email":"jane@example.com"}`, nil)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		svc := &stubAuthService{
			loginFunc: func(ctx context.Context, req *dto.LoginRequest, client token.Client) (*dto.TokenResponse, error) {
				return nil, service.ErrBadCredentials
			},
		}
		handler := NewAuthHandler(svc)

		w := postJSON(t, handler.Login, "/api/v1/auth/login", `{"email":"jane@example.com","password":"wrong1234"}`, nil)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}

func TestAuthHandler_Refresh(t *testing.T) {
	t.Run("token from header", func(t *testing.T) {
		var got string
		svc := &stubAuthService{
			refreshFunc: func(ctx context.Context, refreshToken string, client token.Client) (*dto.TokenResponse, error) {
				got = refreshToken
				return &dto.TokenResponse{Token: "rotated"}, nil
			},
		}
		handler := NewAuthHandler(svc)

		w := postJSON(t, handler.Refresh, "/api/v1/auth/refresh", "", map[string]string{
			"Authorization": "Bearer header-token",
		})

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if got != "header-token" {
			t.Errorf("Expected header token, got %q", got)
		}
	})

	t.Run("token from body", func(t *testing.T) {
		var got string
		svc := &stubAuthService{
			refreshFunc: func(ctx context.Context, refreshToken string, client token.Client) (*dto.TokenResponse, error) {
				got = refreshToken
				return &dto.TokenResponse{Token: "rotated"}, nil
			},
		}
		handler := NewAuthHandler(svc)

		w := postJSON(t, handler.Refresh, "/api/v1/auth/refresh", `{"refreshToken":"body-token"}`, nil)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if got != "body-token" {
			t.Errorf("Expected body token, got %q", got)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		svc := &stubAuthService{
			refreshFunc: func(ctx context.Context, refreshToken string, client token.Client) (*dto.TokenResponse, error) {
				return nil, service.ErrTokenExpired
			},
		}
		handler := NewAuthHandler(svc)

		w := postJSON(t, handler.Refresh, "/api/v1/auth/refresh", `{"refreshToken":"stale"}`, nil)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		handler := NewAuthHandler(&stubAuthService{})

		w := postJSON(t, handler.Logout, "/api/v1/auth/logout", "", nil)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("authenticated", func(t *testing.T) {
		svc := &stubAuthService{
			logoutFunc: func(ctx context.Context, principal domain.Principal, raw string) error {
				if principal.UserID != "user-1" {
					t.Errorf("Expected principal user-1, got %q", principal.UserID)
				}
				return nil
			},
		}
		handler := NewAuthHandler(svc)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("POST", "/api/v1/auth/logout", nil)
		c.Request.Header.Set("Authorization", "Bearer some-token")
		c.Set("principal", &domain.Principal{UserID: "user-1", Email: "jane@example.com"})

		handler.Logout(c)

		if w.Code != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", w.Code)
		}
	})
}
