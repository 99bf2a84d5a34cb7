package hotels

import (
	"github.com/gin-gonic/gin"

	"staybook/internal/shared/config"
	"staybook/internal/shared/middleware"
)

func SetupHotelRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	// Public catalog: /api/v1/hotels
	hotels := rg.Group("/hotels")
	{
		hotels.GET("", controller.ListHotels)
		hotels.GET("/:hotelId", controller.GetHotel)
		hotels.GET("/:hotelId/rooms", controller.ListRooms)
		hotels.GET("/:hotelId/rooms/:roomId", controller.GetRoom)
	}

	// Catalog management: /api/v1/admin/hotels
	admin := rg.Group("/admin/hotels")
	admin.Use(middleware.JWTAuthWithConfig(cfg), middleware.RequireStaff())
	{
		admin.POST("", controller.CreateHotel)
		admin.PUT("/:hotelId", controller.UpdateHotel)
		admin.DELETE("/:hotelId", middleware.RequireAdmin(), controller.DeleteHotel)
		admin.POST("/:hotelId/rooms", controller.CreateRoom)
		admin.PUT("/:hotelId/rooms/:roomId", controller.UpdateRoom)
	}
}
