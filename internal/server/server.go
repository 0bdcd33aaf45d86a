// Package server contains the HTTP handlers and route wiring for the API.
package server

import (
	"context"
	"fmt"
	"time"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/middleware"
	"ripple/internal/notifications"
	"ripple/internal/repository"
	"ripple/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	notifier       *notifications.Notifier

	userRepo         repository.UserRepository
	postRepo         repository.PostRepository
	followRepo       repository.FollowRepository
	notificationRepo repository.NotificationRepository
	hashtagRepo      repository.HashtagRepository
	apiKeyRepo       repository.APIKeyRepository

	userService         *service.UserService
	postService         *service.PostService
	notificationService *service.NotificationService
	hashtagService      *service.HashtagService
	apiKeyService       *service.APIKeyService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	middleware.InitMiddleware(cfg)

	server := &Server{
		config:           cfg,
		db:               db,
		redis:            redisClient,
		promMiddleware:   fiberprometheus.New("ripple-api"),
		userRepo:         repository.NewUserRepository(db),
		postRepo:         repository.NewPostRepository(db),
		followRepo:       repository.NewFollowRepository(db),
		notificationRepo: repository.NewNotificationRepository(db),
		hashtagRepo:      repository.NewHashtagRepository(db),
		apiKeyRepo:       repository.NewAPIKeyRepository(db),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}

	logger := middleware.Logger
	server.notificationService = service.NewNotificationService(
		server.notificationRepo, server.userRepo, server.notifier, logger)
	server.postService = service.NewPostService(
		server.postRepo, server.userRepo, server.notificationService, logger)
	server.userService = service.NewUserService(
		server.userRepo, server.followRepo, server.notificationService, logger)
	server.hashtagService = service.NewHashtagService(server.hashtagRepo)
	server.apiKeyService = service.NewAPIKeyService(server.apiKeyRepo, logger)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(s.promMiddleware.Middleware)
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS must run before middlewares that can short-circuit so browser
	// clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Key",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting, per IP. Preflight requests are never limited.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	s.promMiddleware.RegisterAt(app, "/metrics")

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/session", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "session"), s.CreateSession)
	auth.Delete("/session", s.DestroySession)
	auth.Get("/session", middleware.AuthRequired, s.CurrentSession)

	// Public read routes
	publicPosts := api.Group("/posts")
	publicPosts.Get("/", s.GetTimeline)
	publicPosts.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchPosts)
	publicPosts.Get("/:id/replies", s.GetReplies)
	publicPosts.Get("/:id", s.GetPost)

	hashtags := api.Group("/hashtags")
	hashtags.Get("/trending", s.GetTrendingHashtags)
	hashtags.Get("/search", s.SearchHashtags)
	hashtags.Get("/:tag/posts", s.GetHashtagPosts)

	publicUsers := api.Group("/users")
	publicUsers.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchUsers)
	publicUsers.Get("/:username/posts", s.GetUserPosts)
	publicUsers.Get("/:username/followers", s.GetFollowers)
	publicUsers.Get("/:username/following", s.GetFollowing)
	publicUsers.Get("/:username", s.GetUserProfile)

	// Protected routes
	protected := api.Group("", middleware.AuthRequired)

	me := protected.Group("/me")
	me.Get("/", s.GetMyProfile)
	me.Put("/", s.UpdateMyProfile)
	me.Delete("/", s.DeactivateMyAccount)
	me.Get("/bookmarks", s.GetMyBookmarks)
	me.Get("/mentions", s.GetMyMentions)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(
		s.redis, 20, time.Minute, "create_post"), s.CreatePost)
	posts.Post("/:id/like", s.LikePost)
	posts.Delete("/:id/like", s.UnlikePost)
	posts.Post("/:id/bookmark", s.BookmarkPost)
	posts.Delete("/:id/bookmark", s.UnbookmarkPost)
	posts.Post("/:id/reply", middleware.RateLimit(
		s.redis, 20, time.Minute, "create_post"), s.ReplyToPost)
	posts.Post("/:id/repost", middleware.RateLimit(
		s.redis, 20, time.Minute, "create_post"), s.RepostPost)
	posts.Delete("/:id", s.DeletePost)

	protected.Post("/follow", s.FollowAction)
	protected.Get("/follow/status", s.GetFollowStatus)

	nots := protected.Group("/notifications")
	nots.Get("/", s.GetNotifications)
	nots.Patch("/", s.MarkNotificationsRead)
	nots.Post("/read-all", s.MarkAllNotificationsRead)
	nots.Get("/unread-count", s.GetUnreadCount)

	keys := protected.Group("/api-keys")
	keys.Post("/", s.CreateAPIKey)
	keys.Get("/", s.ListAPIKeys)
	keys.Delete("/:id", s.RevokeAPIKey)

	// External routes authenticate via X-API-Key instead of a session.
	external := api.Group("/external", middleware.APIKeyAuth(s.apiKeyService))
	external.Post("/posts", middleware.RateLimit(
		s.redis, 60, time.Minute, "external_post"), s.CreatePost)
	external.Get("/mentions", s.GetMyMentions)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// The server runs without Redis; readiness only degrades, it does
		// not fail.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus == "unhealthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start builds the Fiber app and begins listening on the configured port.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:      "ripple",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully stops the HTTP server and closes shared resources.
func (s *Server) Shutdown(ctx context.Context) error {
	var firstErr error
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			firstErr = err
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if sqlDB, err := s.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
