// Package server contains the HTTP handlers for the forum engine's API endpoints.
package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	_ "github.com/AlexBaum-ai/NEURM-sub006/docs" // swagger docs
	"github.com/AlexBaum-ai/NEURM-sub006/internal/cache"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/config"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/database"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/featureflags"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/middleware"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/models"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/notifications"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/repository"
	"github.com/AlexBaum-ai/NEURM-sub006/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
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
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc

	auth         *middleware.Authenticator
	throttle     *middleware.Throttle
	featureFlags *featureflags.Manager
	notifier     *notifications.Notifier

	reputation *service.ReputationService
	votes      *service.VoteService
	threads    *service.ThreadService
	topics     *service.TopicService
	unanswered *service.UnansweredService
}

// NewServer wires repositories and services over already-initialized storage handles.
// redisClient may be nil; quotas then follow VOTE_QUOTA_FAIL_CLOSED and caching is skipped.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	var (
		universal redis.UniversalClient
		cmdable   redis.Cmdable
	)
	if redisClient != nil {
		universal, cmdable = redisClient, redisClient
	}

	userRepo := repository.NewUserRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	replyRepo := repository.NewReplyRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	reputationRepo := repository.NewReputationRepository(db)

	store := cache.NewStore(universal)
	flags := featureflags.NewManager(cfg.FeatureFlags)
	notifier := notifications.NewNotifier(universal)

	reputation := service.NewReputationService(reputationRepo, service.WithRetryWorkers(cfg.ReputationRetryWorkers)).WithUsers(userRepo)
	access := service.NewAccessPolicy(userRepo, reputation)
	unanswered := service.NewUnansweredService(topicRepo, store, time.Duration(cfg.UnansweredCacheTTLSeconds)*time.Second)

	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("forum-engine"),
		auth:           middleware.NewAuthenticator(cfg.JWTSecret),
		throttle:       middleware.NewThrottle(cmdable, cfg.Env),
		featureFlags:   flags,
		notifier:       notifier,
		reputation:     reputation,
		unanswered:     unanswered,
	}
	s.votes = service.NewVoteService(service.VoteServiceDeps{
		Votes:      voteRepo,
		Quota:      service.NewVoteQuota(cmdable, cfg.VoteDailyLimit, cfg.VoteQuotaFailClosed),
		Reputation: reputation,
		Access:     access,
		Cache:      store,
		Notifier:   notifier,
		Flags:      flags,
	})
	s.threads = service.NewThreadService(service.ThreadServiceDeps{
		Replies:    replyRepo,
		Topics:     topicRepo,
		Reputation: reputation,
		Access:     access,
		Cache:      store,
		Notifier:   notifier,
		Flags:      flags,
		EditWindow: time.Duration(cfg.ReplyEditWindowMinutes) * time.Minute,
	})
	s.topics = service.NewTopicService(service.TopicServiceDeps{
		Topics:     topicRepo,
		Replies:    replyRepo,
		Reputation: reputation,
		Access:     access,
		Unanswered: unanswered,
		Cache:      store,
		Notifier:   notifier,
		Flags:      flags,
	})

	return s, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
				Code:  models.CodeRateLimited,
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

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/swagger/*", swagger.HandlerDefault)

	required := s.auth.Required()
	optional := s.auth.Optional()

	// Votes
	votes := api.Group("/votes", required)
	votes.Post("/", s.throttle.Limit("vote", 30, time.Minute, middleware.FailOpen), s.CastVote)
	votes.Get("/me", s.GetMyVotes)
	votes.Get("/:type/:id", s.GetVoteState)

	// Topics: specific routes before generic /:id
	topics := api.Group("/topics")
	topics.Get("/unanswered", s.GetUnanswered)
	topics.Post("/", required, s.throttle.Limit("create_topic", 5, 5*time.Minute, middleware.FailOpen), s.CreateTopic)
	topics.Get("/:id/replies", s.GetThread)
	topics.Post("/:id/replies", required, s.throttle.Limit("create_reply", 10, time.Minute, middleware.FailOpen), s.CreateReply)
	topics.Post("/:id/accept/:replyId", required, s.AcceptAnswer)
	topics.Post("/:id/lock", required, s.LockTopic)
	topics.Delete("/:id/lock", required, s.UnlockTopic)
	topics.Put("/:id/status", required, s.SetTopicStatus)
	topics.Get("/:id", optional, s.GetTopic)

	// Replies
	replies := api.Group("/replies", required)
	replies.Put("/:id", s.UpdateReply)
	replies.Delete("/:id", s.DeleteReply)
	replies.Get("/:id/edits", s.GetReplyEdits)

	// Reputation
	users := api.Group("/users")
	users.Get("/:id/reputation", s.GetReputation)
	users.Get("/:id/reputation/events", s.GetReputationEvents)

	api.Get("/feature-flags", required, s.GetFeatureFlags)
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
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis backs quotas and caches; without it the engine degrades but still serves.
	redisStatus := "healthy"
	if s.redis == nil {
		redisStatus = "unavailable"
	} else if err := s.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unhealthy"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	switch {
	case dbStatus != "healthy":
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	case redisStatus != "healthy":
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

// App builds a Fiber app with middleware and routes installed.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "Forum Engine API",
		BodyLimit: 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, models.StatusFor(err), err)
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts background workers and the HTTP listener.
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.reputation.Start()
	s.app = s.App()

	if s.redis != nil {
		if err := s.notifier.StartPatternSubscriber(s.shutdownCtx, func(channel, _ string) {
			middleware.Logger.Debug("forum event published", slog.String("channel", channel))
		}); err != nil {
			middleware.Logger.Warn("failed to start event subscriber", slog.String("error", err.Error()))
		}
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	// Drain reputation retries before the database goes away.
	s.reputation.Close()

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
