package di

import (
	"blogapi/internal/handler"
	"blogapi/internal/mailer"
	"blogapi/internal/repository"
	"blogapi/internal/service"
	"blogapi/internal/token"
	"blogapi/pkg/config"
	"blogapi/pkg/database"
	"blogapi/pkg/redis"
)

// Container holds all dependencies for the blog API
type Container struct {
	// Infrastructure
	DB    *database.PostgresDB
	Redis *redis.Client

	// Repositories
	UserRepo         repository.UserRepository
	SessionRepo      *repository.RedisSessionRepository
	AccountTokenRepo repository.AccountTokenRepository
	CategoryRepo     repository.CategoryRepository
	TagRepo          repository.TagRepository
	PostRepo         repository.PostRepository
	CommentRepo      repository.CommentRepository

	// Token management
	Tokens *token.Manager

	// Services
	AuthService     service.AuthService
	UserService     service.UserService
	CategoryService service.CategoryService
	TagService      service.TagService
	PostService     service.PostService
	CommentService  service.CommentService

	// Handlers
	HealthHandler   *handler.HealthHandler
	AuthHandler     *handler.AuthHandler
	AccountHandler  *handler.AccountHandler
	UserHandler     *handler.UserHandler
	CategoryHandler *handler.CategoryHandler
	TagHandler      *handler.TagHandler
	PostHandler     *handler.PostHandler
	CommentHandler  *handler.CommentHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config *config.Config
	DB     *database.PostgresDB
	Redis  *redis.Client
	Mail   mailer.Mailer
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:    cfg.DB,
		Redis: cfg.Redis,
	}

	// Initialize repositories
	sessionRepo := repository.NewRedisSessionRepository(cfg.Redis)
	c.SessionRepo = sessionRepo
	c.UserRepo = repository.NewPostgresUserRepository(cfg.DB.Pool())
	c.AccountTokenRepo = repository.NewPostgresAccountTokenRepository(cfg.DB.Pool())
	c.CategoryRepo = repository.NewPostgresCategoryRepository(cfg.DB.Pool())
	c.TagRepo = repository.NewPostgresTagRepository(cfg.DB.Pool())
	c.PostRepo = repository.NewPostgresPostRepository(cfg.DB.Pool())
	c.CommentRepo = repository.NewPostgresCommentRepository(cfg.DB.Pool())

	// Initialize token management
	c.Tokens = token.NewManager(
		token.NewProvider(cfg.Config.App.Secret),
		sessionRepo,
		&token.ManagerConfig{
			TokenTTL:        cfg.Config.JWT.TokenTTL,
			RefreshTokenTTL: cfg.Config.JWT.RefreshTokenTTL,
			RememberMeTTL:   cfg.Config.JWT.RememberMeTTL,
			BindClient:      cfg.Config.Auth.BindClient,
		},
	)

	// Initialize services
	c.AuthService = service.NewAuthService(c.UserRepo, c.SessionRepo, c.Tokens)
	c.UserService = service.NewUserService(
		c.UserRepo,
		c.AccountTokenRepo,
		c.SessionRepo,
		cfg.Mail,
		&mailer.Config{
			FromAddress: cfg.Config.Mail.FromAddress,
			FrontendURL: cfg.Config.Mail.FrontendURL,
		},
		&service.UserServiceConfig{
			BcryptCost:           cfg.Config.Auth.BcryptCost,
			EmailVerificationTTL: cfg.Config.Auth.EmailVerificationTTL,
			PasswordResetTTL:     cfg.Config.Auth.PasswordResetTTL,
		},
	)
	c.CategoryService = service.NewCategoryService(c.CategoryRepo)
	c.TagService = service.NewTagService(c.TagRepo)
	c.PostService = service.NewPostService(c.PostRepo, c.CategoryRepo, c.TagRepo)
	c.CommentService = service.NewCommentService(c.CommentRepo, c.PostRepo)

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.DB, c.Redis)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService)
	c.AccountHandler = handler.NewAccountHandler(c.UserService)
	c.UserHandler = handler.NewUserHandler(c.UserService)
	c.CategoryHandler = handler.NewCategoryHandler(c.CategoryService)
	c.TagHandler = handler.NewTagHandler(c.TagService)
	c.PostHandler = handler.NewPostHandler(c.PostService)
	c.CommentHandler = handler.NewCommentHandler(c.CommentService)

	return c
}
