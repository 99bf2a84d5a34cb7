package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"staybook/api/routes"
	"staybook/internal/bookings"
	"staybook/internal/notifications"
	"staybook/internal/shared/config"
	"staybook/internal/shared/database"
	"staybook/pkg/logger"
	"staybook/pkg/ratelimit"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	appLogger := logger.NewWithLevel(cfg.LogLevel)
	logger.SetDefault(appLogger)

	if envErr != nil {
		if os.Getenv("GIN_MODE") == "release" || os.Getenv("DOCKER_CONTAINER") == "true" {
			appLogger.Info("Production environment: using container environment variables")
		} else {
			appLogger.Info("No .env file found, using system environment variables")
		}
	} else {
		appLogger.Info("Development environment: loaded .env file")
	}

	appLogger.Info("Starting staybook",
		slog.String("version", Version),
		slog.String("build_time", BuildTime),
		slog.String("commit", GitCommit),
	)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	db, err := database.InitDB(rootCtx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize databases", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	var rateLimiter *ratelimit.RateLimiter
	if cfg.RateLimit.Enabled && db.Redis != nil {
		var scripter redis.Scripter = db.Redis
		rateLimiter = ratelimit.NewRateLimiter(scripter, ratelimit.FromConfig(cfg.RateLimit))
		appLogger.Info("Rate limiter initialized",
			slog.Duration("window", cfg.RateLimit.WindowDuration),
			slog.Int("default_requests", cfg.RateLimit.DefaultRequests),
		)
	} else {
		appLogger.Info("Rate limiting disabled")
	}

	notificationService, err := notifications.NewService(cfg.Kafka, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize notification service", slog.Any("error", err))
		os.Exit(1)
	}
	if err := notificationService.Start(rootCtx); err != nil {
		appLogger.Error("Failed to start notification service", slog.Any("error", err))
	}
	defer func() {
		appLogger.Info("Stopping notification service...")
		if err := notificationService.Stop(); err != nil {
			appLogger.Error("Error stopping notification service", slog.Any("error", err))
		}
	}()

	appRouter := routes.NewRouter(cfg, db, notificationService.Publisher(), appLogger)

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		appLogger.Error("Failed to create scheduler", slog.Any("error", err))
		os.Exit(1)
	}
	jobs := bookings.NewJobProcessor(appRouter.BookingService(), scheduler, &bookings.JobConfig{
		CompletionInterval: cfg.Booking.CompletionInterval,
		BatchSize:          cfg.Booking.CompletionBatch,
	}, appLogger)
	if err := jobs.Start(rootCtx); err != nil {
		appLogger.Error("Failed to schedule booking jobs", slog.Any("error", err))
		os.Exit(1)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			appLogger.Error("Error stopping scheduler", slog.Any("error", err))
		}
	}()

	router := setupRouter(cfg, appRouter, rateLimiter, appLogger)

	srv := &http.Server{
		Addr:           cfg.GetServerAddress(),
		Handler:        router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}

	go func() {
		appLogger.Info("Server running",
			slog.String("address", cfg.GetServerAddress()),
			slog.String("health_check", fmt.Sprintf("http://localhost:%s/health", cfg.Port)),
			slog.String("version", cfg.APIVersion),
			slog.Bool("redis", db.Redis != nil),
			slog.Bool("kafka", cfg.Kafka.Enabled),
			slog.Bool("rate_limiting", rateLimiter != nil),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed", slog.Any("error", err))
			stop()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-rootCtx.Done():
	}
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Forced shutdown", slog.Any("error", err))
	}
	stop()

	appLogger.Info("Server exited gracefully")
}

func setupRouter(cfg *config.Config, appRouter *routes.Router, rateLimiter *ratelimit.RateLimiter, appLogger *logger.Logger) *gin.Engine {
	engine := gin.New()

	engine.Use(RequestLoggerMiddleware(appLogger), gin.Recovery())

	engine.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if rateLimiter != nil {
		engine.Use(ratelimit.Middleware(rateLimiter, appLogger))
	}

	appRouter.SetupRoutes(engine)

	return engine
}

func RequestLoggerMiddleware(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)
		if len(c.Errors) > 0 {
			l.LogHTTPError(c, c.Errors.Last(), c.Writer.Status())
			return
		}
		l.LogHTTPRequest(c, duration)
	}
}
