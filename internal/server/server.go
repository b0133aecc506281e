// Package server contains the HTTP handlers for the application's API
// endpoints.
package server

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/HannaFrangi/Lynx/internal/cache"
	"github.com/HannaFrangi/Lynx/internal/config"
	"github.com/HannaFrangi/Lynx/internal/database"
	"github.com/HannaFrangi/Lynx/internal/middleware"
	"github.com/HannaFrangi/Lynx/internal/models"
	"github.com/HannaFrangi/Lynx/internal/repository"
	"github.com/HannaFrangi/Lynx/internal/service"
	"github.com/HannaFrangi/Lynx/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	tokenIssuer   = "lynx-api"
	tokenAudience = "lynx-client"
	authCookie    = "jwt"
	tokenLifetime = 7 * 24 * time.Hour
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	mongo          *database.Mongo
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	store          storage.ObjectStore

	userRepo  repository.UserRepository
	postRepo  repository.PostRepository
	replyRepo repository.ReplyRepository

	authService  *service.AuthService
	userService  *service.UserService
	postService  *service.PostService
	replyService *service.ReplyService
	feedService  *service.FeedService
}

// NewServer creates a server instance and establishes its dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	mongo, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)

	store, err := storage.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		return nil, err
	}

	return NewServerWithDeps(cfg, mongo, cache.GetClient(), store), nil
}

// NewServerWithDeps creates a Server using already-initialized
// dependencies. Use this in tests or when a bootstrap layer establishes
// the database and Redis.
func NewServerWithDeps(cfg *config.Config, mongo *database.Mongo, redisClient *redis.Client, store storage.ObjectStore) *Server {
	s := &Server{
		config:         cfg,
		mongo:          mongo,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("lynx-api"),
		store:          store,
	}

	s.userRepo = repository.NewUserRepository(mongo.DB)
	s.postRepo = repository.NewPostRepository(mongo.DB)
	s.replyRepo = repository.NewReplyRepository(mongo.DB)

	s.authService = service.NewAuthService(s.userRepo)
	s.userService = service.NewUserService(s.userRepo, mongo, store)
	s.postService = service.NewPostService(s.postRepo, s.userRepo, mongo, store)
	s.replyService = service.NewReplyService(s.replyRepo, s.postRepo, mongo)
	s.feedService = service.NewFeedService(s.postRepo, s.userRepo)

	return s
}

// SetupMiddleware configures the middleware stack for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Propagate request ID and user ID into the request context.
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	// CORS before anything that can short-circuit, so browser clients
	// still get headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8081,http://localhost:19006"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limit: 100 requests per minute per IP.
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: time.Minute,
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

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Uploaded media is served straight from disk.
	app.Static(s.config.MediaBaseURL, s.config.MediaDir)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Get("/user/:id", s.GetUserByID)

	// Global feed is browsable without an account.
	api.Get("/feed/all", s.GlobalFeed)

	protected := api.Group("", s.AuthRequired())

	user := protected.Group("/user")
	user.Put("/profile", s.UpdateProfile)
	user.Post("/follow/:id", s.FollowUnfollow)
	user.Get("/:id/:kind", s.GetRelations)

	post := protected.Group("/post")
	post.Post("/", middleware.RateLimit(
		s.redis, 5, 5*time.Minute, "create_post"), s.CreatePost)
	// Reply item routes before the generic /:id routes.
	post.Put("/reply/:replyId", s.UpdateReply)
	post.Delete("/reply/:replyId", s.DeleteReply)
	post.Post("/:id/like", s.LikePost)
	post.Post("/:id/view", s.ViewPost)
	post.Post("/:id/reply", middleware.RateLimit(
		s.redis, 15, time.Minute, "create_reply"), s.CreateReply)
	post.Get("/:id", s.GetPost)
	post.Put("/:id", s.UpdatePost)
	post.Delete("/:id", s.DeletePost)

	protected.Get("/feed", s.UserFeed)
}

// LivenessCheck handles liveness probe requests.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.mongo == nil || s.mongo.Client.Ping(ctx, readpref.Primary()) != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	// Redis is an accelerator here, not a dependency; only the database
	// gates readiness.
	status := fiber.StatusOK
	overall := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overall = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overall,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It accepts the jwt
// cookie first and falls back to a Bearer Authorization header, then
// resolves the account so deactivated users are cut off even with a
// valid token.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(authCookie)
		if tokenString == "" {
			authHeader := c.Get("Authorization")
			if parts := strings.Split(authHeader, " "); len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Not authorized"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Not authorized"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Not authorized"))
		}
		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Not authorized"))
		}
		userID, err := primitive.ObjectIDFromHex(sub)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			// A store outage must not look like a bad credential.
			var appErr *models.AppError
			if errors.As(err, &appErr) && appErr.Code == "NOT_FOUND" {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("user not found"))
			}
			return models.RespondError(c, err)
		}
		if !user.IsActive {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("user is inactive"))
		}

		c.Locals("user", user)
		c.Locals("userID", userID)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID.Hex())
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// Start starts the server.
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Lynx API",
		BodyLimit: service.MaxUploadSize + 1<<20,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fiberErr, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fiberErr.Code, err)
			}
			return models.RespondError(c, models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server and its connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if s.mongo != nil {
		if err := s.mongo.Close(ctx); err != nil {
			log.Printf("error closing mongo client: %v", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Printf("error closing redis: %v", err)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
