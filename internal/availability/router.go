package availability

import (
	"github.com/gin-gonic/gin"

	"staybook/internal/shared/config"
	"staybook/internal/shared/middleware"
)

func SetupAvailabilityRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// Public: /api/v1/hotels/:hotelId/rooms/:roomId/calendar
	rg.GET("/hotels/:hotelId/rooms/:roomId/calendar", controller.GetCalendar)

	// Inventory management: /api/v1/admin/hotels/:hotelId/rooms/:roomId/inventory
	admin := rg.Group("/admin/hotels/:hotelId/rooms/:roomId/inventory")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireStaff())
	{
		admin.PUT("/:date", controller.UpsertDay)
		admin.PUT("/:date/status", controller.SetDayStatus)
	}
}
