package analytics

import (
	"github.com/gin-gonic/gin"

	"staybook/internal/shared/config"
	"staybook/internal/shared/middleware"
)

func SetupAnalyticsRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Admin reports: /api/v1/admin/reports
	reports := rg.Group("/admin/reports")
	reports.Use(middleware.JWTAuthWithConfig(cfg))
	reports.Use(middleware.RequireAdmin())
	{
		reports.GET("/occupancy", controller.GetOccupancyReport)
		reports.GET("/bookings", controller.GetBookingReport)
		reports.DELETE("/cache", controller.InvalidateReports)
	}
}
