package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"minisocial/internal/cache"
	"minisocial/internal/config"
	"minisocial/internal/database"
	"minisocial/internal/handler"
	"minisocial/internal/redis"
	"minisocial/internal/repository"
	"minisocial/internal/service"
)

// Options tweak how Run boots the server.
type Options struct {
	SkipMigrate bool
}

// NewHandler wires repositories, services and handlers into a router.
// feedCache may be nil, in which case the feed reads the database only.
func NewHandler(cfg *config.Config, db *sqlx.DB, feedCache cache.FeedCache) stdhttp.Handler {
	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	followService := service.NewFollowService(followRepo, userRepo, db)
	userService := service.NewUserService(userRepo, followService)
	authService := service.NewAuthService(cfg)
	postService := service.NewPostService(postRepo, userRepo, feedCache, db)
	commentService := service.NewCommentService(commentRepo, postRepo, userRepo, db)
	feedService := service.NewFeedService(postRepo, userRepo, feedCache)

	return NewRouter(RouterConfig{
		AuthHandler:    handler.NewAuthHandler(userService, authService),
		UserHandler:    handler.NewUserHandler(userService),
		FollowHandler:  handler.NewFollowHandler(followService),
		FeedHandler:    handler.NewFeedHandler(feedService),
		PostHandler:    handler.NewPostHandler(postService),
		CommentHandler: handler.NewCommentHandler(commentService),
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	})
}

// Run migrates, connects, serves and shuts down gracefully on SIGINT/SIGTERM.
func Run(cfg *config.Config, opts Options) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Schema
	if !opts.SkipMigrate {
		if err := database.MigrateUp(cfg); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	// 2. Database
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// 3. Optional timeline cache
	var feedCache cache.FeedCache
	if cfg.RedisURL != "" {
		client, err := redis.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		feedCache = cache.NewFeedCache(client.Client)
	} else {
		log.Println("REDIS_URL not set, feed cache disabled")
	}

	// 4. Server
	srv := &stdhttp.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      NewHandler(cfg, db, feedCache),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down (timeout %v)...", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped gracefully")
	return nil
}
