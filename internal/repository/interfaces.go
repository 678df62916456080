package repository

import (
	"context"
	"errors"

	"blogapi/internal/domain"
	"blogapi/internal/query"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("record not found")

// SessionRepository stores active token sessions
type SessionRepository interface {
	Save(ctx context.Context, session *domain.Session) error
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	FindByTokenOrRefreshToken(ctx context.Context, value string) (*domain.Session, error)
	FindByUserIDAndRefreshToken(ctx context.Context, userID, refreshToken string) (*domain.Session, error)
	// Delete removes the session and reports whether it was present
	Delete(ctx context.Context, session *domain.Session) (bool, error)
	DeleteAllByUserID(ctx context.Context, userID string) error
}

// UserRepository stores users
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, criteria query.UserCriteria, page query.PageRequest) ([]*domain.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// AccountTokenRepository stores single-use account action tokens
type AccountTokenRepository interface {
	Create(ctx context.Context, token *domain.AccountToken) error
	GetByToken(ctx context.Context, kind domain.AccountTokenKind, token string) (*domain.AccountToken, error)
	DeleteByUserID(ctx context.Context, userID string, kind domain.AccountTokenKind) error
}

// CategoryRepository stores post categories
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, criteria query.CategoryCriteria, page query.PageRequest) ([]*domain.Category, int64, error)
	HasPosts(ctx context.Context, id string) (bool, error)
}

// TagRepository stores post tags
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	GetByID(ctx context.Context, id string) (*domain.Tag, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Tag, error)
	Update(ctx context.Context, tag *domain.Tag) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, criteria query.TagCriteria, page query.PageRequest) ([]*domain.Tag, int64, error)
}

// PostRepository stores posts and their category/tag links
type PostRepository interface {
	Create(ctx context.Context, post *domain.Post) error
	GetByID(ctx context.Context, id string) (*domain.Post, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, criteria query.PostCriteria, page query.PageRequest) ([]*domain.Post, int64, error)
}

// CommentRepository stores post comments
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id string) error
	ListByPostID(ctx context.Context, postID string, page query.PageRequest) ([]*domain.Comment, int64, error)
}
