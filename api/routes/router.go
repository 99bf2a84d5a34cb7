package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"staybook/internal/analytics"
	"staybook/internal/auth"
	"staybook/internal/availability"
	"staybook/internal/bookings"
	"staybook/internal/hotels"
	"staybook/internal/inventory"
	"staybook/internal/notifications"
	"staybook/internal/shared/config"
	"staybook/internal/shared/database"
	"staybook/internal/shared/transaction"
	"staybook/pkg/cache"
	"staybook/pkg/logger"
)

const serviceName = "staybook-api"

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher
	log       *logger.Logger

	cacheService        cache.Service
	hotelService        hotels.Service
	availabilityService *availability.Service
	bookingService      bookings.Service
	analyticsService    analytics.Service
}

// NewRouter builds the services in dependency order. Redis-backed pieces
// (cache, room locks) are only wired when a Redis client is present.
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher, log *logger.Logger) *Router {
	if log == nil {
		log = logger.GetDefault()
	}
	r := &Router{config: cfg, db: db, publisher: publisher, log: log}
	r.buildServices()
	return r
}

func (r *Router) buildServices() {
	pg := r.db.GetPostgreSQL()
	tx := transaction.NewGormTransactor(pg)

	if client := r.db.GetRedisClient(); client != nil {
		r.cacheService = cache.NewService(client, r.log)
	}

	r.hotelService = hotels.NewService(hotels.NewRepository(pg), tx, r.log)
	if r.cacheService != nil {
		r.hotelService.SetCacheService(r.cacheService)
	}

	ledger := inventory.NewLedger(inventory.NewRepository(pg), r.config.Booking.CASAttempts, r.log)
	r.availabilityService = availability.NewService(r.hotelService, ledger, r.log)
	if client := r.db.GetRedisClient(); client != nil {
		r.availabilityService.SetLocker(availability.NewRedisRoomLocker(client, r.config.Redis.RoomLockTTL, r.config.Booking.LockAttempts))
	}

	r.bookingService = bookings.NewService(
		bookings.NewRepository(pg),
		r.availabilityService,
		tx,
		r.publisher,
		r.config.Booking,
		r.log,
	)
	r.hotelService.SetBookingCanceller(r.bookingService)

	r.analyticsService = analytics.NewService(analytics.NewRepository(pg), r.log)
	if r.cacheService != nil {
		r.analyticsService.SetCacheService(r.cacheService)
	}
}

// BookingService exposes the booking engine to background jobs.
func (r *Router) BookingService() bookings.Service {
	return r.bookingService
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)

		hotels.SetupHotelRoutes(api, hotels.NewController(r.hotelService), r.config)
		availability.SetupAvailabilityRoutes(api, availability.NewController(r.availabilityService), r.config)
		bookings.SetupBookingRoutes(api, bookings.NewController(r.bookingService), r.config)
		analytics.SetupAnalyticsRoutes(api, analytics.NewController(r.analyticsService), r.config)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			r.log.WarnContext(c.Request.Context(), "Health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   serviceName,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   serviceName,
			"redis":     r.db.GetRedisClient() != nil,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, r.config, r.log)
	authController := auth.NewController(authService, r.log)
	auth.NewRouter(authController, r.config).SetupRoutes(rg)
}
