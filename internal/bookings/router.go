package bookings

import (
	"github.com/gin-gonic/gin"

	"staybook/internal/shared/config"
	"staybook/internal/shared/middleware"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// Public: /api/v1/hotels/:hotelId/rooms/:roomId/availability
	rg.GET("/hotels/:hotelId/rooms/:roomId/availability", controller.CheckAvailability)

	// Guest bookings: /api/v1/bookings
	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuthWithConfig(cfg))
	{
		bookings.POST("", controller.CreateBooking)
		bookings.GET("", controller.ListMyBookings)
		bookings.GET("/:id", controller.GetBooking)
		bookings.GET("/:id/timeline", controller.GetTimeline)
		bookings.GET("/:id/cancellation", controller.GetCancellationTerms)
		bookings.POST("/:id/cancel", controller.CancelBooking)
	}

	// Front desk: /api/v1/admin/bookings
	admin := rg.Group("/admin/bookings")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireStaff())
	{
		admin.GET("", controller.ListAllBookings)
		admin.POST("/:id/confirm", controller.ConfirmBooking)
		admin.POST("/:id/complete", controller.CompleteBooking)
		admin.POST("/:id/no-show", controller.MarkNoShow)
		admin.PUT("/:id/payment-status", controller.UpdatePaymentStatus)
		admin.DELETE("/:id", middleware.RequireAdmin(), controller.DeleteBooking)
	}
}
