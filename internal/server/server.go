// Package server contains the HTTP handlers, routing, and middleware wiring
// for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/middleware"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/service"
	"ripple/internal/token"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config      *config.Config
	db          *gorm.DB
	redis       *redis.Client
	app         *fiber.App
	shutdownCtx context.Context
	shutdownFn  context.CancelFunc

	codec       *token.Codec
	rateLimiter *middleware.RateLimiter

	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository

	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	feedService    *service.FeedService
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	ctx, cancel := context.WithCancel(context.Background())

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	server := &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		shutdownCtx: ctx,
		shutdownFn:  cancel,
		codec:       token.NewCodec([]byte(cfg.JWTSecret), "ripple-api", cfg.JWTTTL()),
		rateLimiter: middleware.NewRateLimiter(ctx,
			middleware.Tier{RPS: cfg.RateLimitAuthRPS, Burst: cfg.RateLimitAuthBurst},
			middleware.Tier{RPS: cfg.RateLimitAnonRPS, Burst: cfg.RateLimitAnonBurst},
		),
		userRepo:    userRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		followRepo:  followRepo,
	}

	server.userService = service.NewUserService(userRepo)
	server.postService = service.NewPostService(postRepo, userRepo)
	server.commentService = service.NewCommentService(commentRepo, postRepo, userRepo)
	server.followService = service.NewFollowService(followRepo, userRepo)
	server.feedService = service.NewFeedService(postRepo, followRepo)

	return server, nil
}

// SetupMiddleware configures the middleware chain for the Fiber app.
// Order matters: identity has to be resolved per route group, so the domain
// rate limiter runs per group after auth; only the coarse per-IP guard is
// global.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for log correlation
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	// Security headers
	app.Use(helmet.New())

	// Structured logging (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// API version negotiation headers
	app.Use(middleware.Versioning())

	// CORS before middlewares that can short-circuit, so browser clients
	// still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-API-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Coarse global guard (300 requests per minute per IP) in front of the
	// domain token-bucket limiter.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, models.NewRateLimitedError(60))
		},
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	rateLimit := s.rateLimiter.Limit()

	// Auth routes (anonymous bucket keyed by IP)
	auth := api.Group("/auth", rateLimit)
	auth.Post("/register", s.Register)
	auth.Post("/login", s.Login)
	auth.Post("/logout", s.Logout)

	// Public reads personalize when a valid token is present but never
	// require one. Middleware is attached per route so the group-level auth
	// chain below does not also run for these.
	optionalAuth := s.OptionalAuth()
	api.Get("/users/:username/followers", optionalAuth, rateLimit, s.GetFollowers)
	api.Get("/users/:username/following", optionalAuth, rateLimit, s.GetFollowing)
	api.Get("/users/:username/posts", optionalAuth, rateLimit, s.GetUserPosts)
	api.Get("/users/:username", optionalAuth, rateLimit, s.GetUserProfile)
	api.Get("/posts", optionalAuth, rateLimit, s.GetPosts)
	api.Get("/posts/:id", optionalAuth, rateLimit, s.GetPost)
	api.Get("/comments/posts/:id", optionalAuth, rateLimit, s.GetComments)
	api.Get("/likes/posts/:id/users", optionalAuth, rateLimit, s.GetLikingUsers)

	// Protected routes (authenticated bucket keyed by user ID). Registered
	// last: earlier matches terminate before this group's middleware runs.
	protected := api.Group("", s.AuthRequired(), rateLimit)

	users := protected.Group("/users")
	users.Get("/", s.GetAllUsers)
	users.Put("/:username", s.UpdateProfile)
	users.Delete("/:username", s.DeleteProfile)

	posts := protected.Group("/posts")
	posts.Post("/", s.CreatePost)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	comments := protected.Group("/comments")
	comments.Post("/posts/:id", s.CreateComment)
	// Registered for route parity; the service rejects every call.
	comments.Delete("/:id", s.DeleteComment)

	likes := protected.Group("/likes")
	likes.Post("/posts/:id", s.LikePost)
	likes.Delete("/posts/:id", s.UnlikePost)

	follow := protected.Group("/follow")
	follow.Get("/status/:username", s.GetFollowStatus)
	follow.Post("/:username", s.FollowUser)
	follow.Delete("/:username", s.UnfollowUser)

	protected.Get("/feed", s.GetFeed)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return models.Respond(c, fiber.StatusOK, "up", nil)
}

// ReadinessCheck handles readiness probe requests.
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
		// The cache is optional; report but do not fail readiness.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	message := "ready"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		message = "not ready"
	}

	return c.Status(status).JSON(models.Envelope{
		Success: status == fiber.StatusOK,
		Message: message,
		Data: fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		Timestamp: time.Now().UTC(),
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// resolveIdentity verifies the token and loads the subject's user record.
// The credential store is the source of truth: a token whose subject no
// longer exists or is inactive does not authenticate.
func (s *Server) resolveIdentity(c *fiber.Ctx, tokenString string) (*models.User, error) {
	subject, err := s.codec.Verify(tokenString)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrExpired):
			return nil, models.NewTokenExpiredError()
		default:
			return nil, models.NewUnauthenticatedError("Invalid token")
		}
	}

	user, err := s.userRepo.GetByUsername(c.Context(), subject)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.Active {
		return nil, models.NewUnauthenticatedError("Account no longer active")
	}
	return user, nil
}

// AuthRequired returns the authentication middleware for protected routes.
// It gates every request on a valid bearer token and populates the
// request-scoped identity (fiber locals plus user context for logging).
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return models.RespondWithError(c,
				models.NewUnauthenticatedError("Authorization required"))
		}

		user, err := s.resolveIdentity(c, tokenString)
		if err != nil {
			return models.RespondWithError(c, err)
		}

		s.setIdentity(c, user)
		return c.Next()
	}
}

// OptionalAuth resolves the identity when a valid bearer token is present
// but lets anonymous requests through untouched.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, ok := bearerToken(c)
		if !ok {
			return c.Next()
		}
		user, err := s.resolveIdentity(c, tokenString)
		if err != nil {
			// Invalid credentials on a public route degrade to anonymous.
			return c.Next()
		}
		s.setIdentity(c, user)
		return c.Next()
	}
}

// setIdentity stores the resolved user in fiber locals and syncs the user ID
// into the request context for the context-aware logger.
func (s *Server) setIdentity(c *fiber.Ctx, user *models.User) {
	c.Locals("userID", user.ID)
	c.Locals("username", user.Username)
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
	c.SetUserContext(ctx)
}

// newApp builds the Fiber app with the full middleware chain and route table.
func (s *Server) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "Ripple API",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, err)
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server.
func (s *Server) Start() error {
	app := s.newApp()

	log.Printf("Server starting on %s...", s.config.Port)
	return app.Listen(s.config.Port)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
