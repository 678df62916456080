package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"blogapi/internal/domain"
	"blogapi/internal/query"
	"blogapi/internal/repository"
	"blogapi/internal/token"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSessionStore struct {
	sessions map[string]*domain.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *fakeSessionStore) Save(ctx context.Context, session *domain.Session) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *fakeSessionStore) FindByTokenOrRefreshToken(ctx context.Context, value string) (*domain.Session, error) {
	for _, session := range s.sessions {
		if session.Token == value || session.RefreshToken == value {
			return session, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeSessionStore) FindByUserIDAndRefreshToken(ctx context.Context, userID, refreshToken string) (*domain.Session, error) {
	for _, session := range s.sessions {
		if session.UserID == userID && session.RefreshToken == refreshToken {
			return session, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeSessionStore) Delete(ctx context.Context, session *domain.Session) (bool, error) {
	if _, ok := s.sessions[session.ID]; !ok {
		return false, nil
	}
	delete(s.sessions, session.ID)
	return true, nil
}

type fakeUserRepository struct {
	users map[string]*domain.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepository) Delete(ctx context.Context, id string) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepository) List(ctx context.Context, criteria query.UserCriteria, page query.PageRequest) ([]*domain.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *token.Manager, *fakeUserRepository) {
	t.Helper()

	store := newFakeSessionStore()
	users := newFakeUserRepository()
	tokens := token.NewManager(token.NewProvider("test-secret-key"), store, &token.ManagerConfig{
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
		RememberMeTTL:   720 * time.Hour,
		BindClient:      false,
	})

	router := gin.New()
	router.Use(Authenticate(tokens, users))
	router.GET("/public", func(c *gin.Context) {
		c.String(http.StatusOK, "public")
	})
	router.GET("/private", RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, PrincipalFrom(c).UserID)
	})
	router.GET("/admin", RequireRoles("admin"), func(c *gin.Context) {
		c.String(http.StatusOK, "admin area")
	})

	return router, tokens, users
}

func issueToken(t *testing.T, tokens *token.Manager, userID string) string {
	t.Helper()

	pair, err := tokens.IssuePair(context.Background(), userID, false, token.Client{})
	if err != nil {
		t.Fatalf("IssuePair() error = %v", err)
	}
	return pair.Token
}

func TestAuthenticate(t *testing.T) {
	router, tokens, users := newTestRouter(t)
	users.users["user-1"] = &domain.User{ID: "user-1", Email: "jane@example.com", Roles: []string{"user"}}

	t.Run("anonymous passes public routes", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/public", nil))

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("anonymous rejected on private routes", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/private", nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("valid token sets principal", func(t *testing.T) {
		raw := issueToken(t, tokens, "user-1")

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", token.BearerPrefix+raw)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
		if w.Body.String() != "user-1" {
			t.Errorf("Expected principal user-1, got %q", w.Body.String())
		}
	})

	t.Run("forged token rejected", func(t *testing.T) {
		forged := token.NewProvider("other-secret")
		raw, err := forged.Generate("user-1", time.Hour)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", token.BearerPrefix+raw)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("token without session rejected", func(t *testing.T) {
		provider := token.NewProvider("test-secret-key")
		raw, err := provider.Generate("user-1", time.Hour)
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", token.BearerPrefix+raw)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})

	t.Run("blocked user rejected", func(t *testing.T) {
		now := time.Now()
		users.users["user-2"] = &domain.User{ID: "user-2", Email: "blocked@example.com", BlockedAt: &now}
		raw := issueToken(t, tokens, "user-2")

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", token.BearerPrefix+raw)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}

func TestRequireRoles(t *testing.T) {
	router, tokens, users := newTestRouter(t)
	users.users["user-1"] = &domain.User{ID: "user-1", Email: "jane@example.com", Roles: []string{"user"}}
	users.users["admin-1"] = &domain.User{ID: "admin-1", Email: "root@example.com", Roles: []string{"admin"}}

	t.Run("admin allowed", func(t *testing.T) {
		raw := issueToken(t, tokens, "admin-1")

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", token.BearerPrefix+raw)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("plain user forbidden", func(t *testing.T) {
		raw := issueToken(t, tokens, "user-1")

		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", token.BearerPrefix+raw)
		router.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
	})

	t.Run("anonymous unauthorized", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Expected status 401, got %d", w.Code)
		}
	})
}
