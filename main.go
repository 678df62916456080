package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"blogapi/internal/di"
	"blogapi/internal/mailer"
	"blogapi/internal/middleware"
	"blogapi/pkg/config"
	"blogapi/pkg/database"
	"blogapi/pkg/logger"
	"blogapi/pkg/redis"
	"blogapi/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logCfg := &logger.Config{
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	}
	if err := logger.Init(logCfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting Blog API...")

	ctx := context.Background()

	// Initialize tracing
	if _, err := telemetry.Init(ctx, &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    cfg.OTel.ServiceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}); err != nil {
		appLog.Fatal(fmt.Sprintf("Telemetry initialization failed: %v", err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			appLog.Warn(fmt.Sprintf("Telemetry shutdown failed: %v", err))
		}
	}()

	// Initialize database connection
	dbCfg := &database.PostgresConfig{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.ConnMaxLifetime,
		MaxConnIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Second,
		EnableTracing:   cfg.OTel.Enabled,
	}
	db, err := database.NewPostgres(ctx, dbCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Database connection failed: %v", err))
	}
	defer db.Close()
	appLog.Info(fmt.Sprintf("Database connected (pool: min=%d, max=%d)", dbCfg.MinConns, dbCfg.MaxConns))

	// Initialize Redis connection
	redisCfg := &redis.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	}
	redisClient, err := redis.NewClient(ctx, redisCfg)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Redis connection failed: %v", err))
	}
	defer redisClient.Close()
	appLog.Info(fmt.Sprintf("Redis connected at %s", redisCfg.Addr()))

	// Build dependency injection container
	container := di.NewContainer(&di.ContainerConfig{
		Config: cfg,
		DB:     db,
		Redis:  redisClient,
		Mail: mailer.NewLogMailer(&mailer.Config{
			FromAddress: cfg.Mail.FromAddress,
			FrontendURL: cfg.Mail.FrontendURL,
		}),
	})

	// Preload the session Lua scripts
	if err := container.SessionRepo.LoadScripts(ctx); err != nil {
		appLog.Warn(fmt.Sprintf("Session script preload failed, falling back to EVAL: %v", err))
	}

	// Setup Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, container)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		ReadHeaderTimeout: 2 * time.Second,
	}

	// Start server in goroutine
	go func() {
		appLog.Info(fmt.Sprintf("Blog API listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal(fmt.Sprintf("Failed to start server: %v", err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLog.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLog.Fatal(fmt.Sprintf("Server forced to shutdown: %v", err))
	}

	appLog.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, container *di.Container) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Get()))
	router.Use(middleware.CORS())
	if cfg.OTel.Enabled {
		router.Use(telemetry.TracingMiddleware(cfg.OTel.ServiceName))
	}

	// Health check endpoints
	router.GET("/health", container.HealthHandler.Health)
	router.GET("/ready", container.HealthHandler.Ready)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Authenticate(container.Tokens, container.UserRepo))
	{
		auth := v1.Group("/auth")
		{
			// Public endpoints
			auth.POST("/register", container.AccountHandler.Register)
			auth.POST("/login", container.AuthHandler.Login)
			auth.POST("/refresh", container.AuthHandler.Refresh)
			auth.GET("/email-verification/:token", container.AccountHandler.VerifyEmail)
			auth.POST("/password", container.AccountHandler.RequestPasswordReset)
			auth.POST("/password/reset", container.AccountHandler.ResetPassword)

			// Protected endpoints
			protected := auth.Group("")
			protected.Use(middleware.RequireAuth())
			{
				protected.POST("/email-verification", container.AccountHandler.ResendVerification)
				protected.POST("/logout", container.AuthHandler.Logout)
				protected.POST("/logout-all", container.AuthHandler.LogoutAll)
			}
		}

		account := v1.Group("/account")
		account.Use(middleware.RequireAuth())
		{
			account.GET("/me", container.AccountHandler.Me)
			account.PATCH("/me", container.AccountHandler.UpdateProfile)
			account.POST("/password", container.AccountHandler.ChangePassword)
		}

		users := v1.Group("/users")
		users.Use(middleware.RequireRoles("admin"))
		{
			users.GET("", container.UserHandler.List)
			users.GET("/:id", container.UserHandler.Get)
			users.POST("", container.UserHandler.Create)
			users.PATCH("/:id", container.UserHandler.Update)
			users.DELETE("/:id", container.UserHandler.Delete)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", container.CategoryHandler.List)
			categories.GET("/:id", container.CategoryHandler.Get)

			editors := categories.Group("")
			editors.Use(middleware.RequireRoles("admin"))
			{
				editors.POST("", container.CategoryHandler.Create)
				editors.PATCH("/:id", container.CategoryHandler.Update)
				editors.DELETE("/:id", container.CategoryHandler.Delete)
			}
		}

		tags := v1.Group("/tags")
		{
			tags.GET("", container.TagHandler.List)
			tags.GET("/:id", container.TagHandler.Get)

			editors := tags.Group("")
			editors.Use(middleware.RequireRoles("admin"))
			{
				editors.POST("", container.TagHandler.Create)
				editors.PATCH("/:id", container.TagHandler.Update)
				editors.DELETE("/:id", container.TagHandler.Delete)
			}
		}

		posts := v1.Group("/posts")
		{
			posts.GET("", container.PostHandler.List)
			posts.GET("/:id", container.PostHandler.Get)
			posts.GET("/:id/comments", container.CommentHandler.List)

			authed := posts.Group("")
			authed.Use(middleware.RequireAuth())
			{
				authed.POST("", container.PostHandler.Create)
				authed.PATCH("/:id", container.PostHandler.Update)
				authed.DELETE("/:id", container.PostHandler.Delete)
				authed.POST("/:id/comments", container.CommentHandler.Create)
			}
		}

		comments := v1.Group("/comments")
		{
			comments.GET("/:id", container.CommentHandler.Get)

			authed := comments.Group("")
			authed.Use(middleware.RequireAuth())
			{
				authed.PATCH("/:id", container.CommentHandler.Update)
				authed.DELETE("/:id", container.CommentHandler.Delete)
			}
		}
	}

	return router
}
