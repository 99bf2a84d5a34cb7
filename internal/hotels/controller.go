package hotels

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staybook/internal/shared/utils/params"
	"staybook/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// HOTELS

func (c *Controller) CreateHotel(ctx *gin.Context) {
	var req CreateHotelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	hotel, err := c.service.CreateHotel(ctx.Request.Context(), req)
	if err != nil {
		response.RespondError(ctx, "Failed to create hotel", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Hotel created successfully", hotel, nil)
}

func (c *Controller) GetHotel(ctx *gin.Context) {
	hotelID, ok := params.UUID(ctx, "hotelId")
	if !ok {
		return
	}

	hotel, err := c.service.GetHotel(ctx.Request.Context(), hotelID)
	if err != nil {
		response.RespondError(ctx, "Failed to get hotel", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hotel retrieved successfully", hotel, nil)
}

func (c *Controller) ListHotels(ctx *gin.Context) {
	var query HotelListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	result, err := c.service.ListHotels(ctx.Request.Context(), query)
	if err != nil {
		response.RespondError(ctx, "Failed to list hotels", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hotels retrieved successfully", result, nil)
}

func (c *Controller) UpdateHotel(ctx *gin.Context) {
	hotelID, ok := params.UUID(ctx, "hotelId")
	if !ok {
		return
	}

	var req UpdateHotelRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	hotel, err := c.service.UpdateHotel(ctx.Request.Context(), hotelID, req)
	if err != nil {
		response.RespondError(ctx, "Failed to update hotel", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hotel updated successfully", hotel, nil)
}

func (c *Controller) DeleteHotel(ctx *gin.Context) {
	hotelID, ok := params.UUID(ctx, "hotelId")
	if !ok {
		return
	}

	result, err := c.service.DeleteHotel(ctx.Request.Context(), hotelID)
	if err != nil {
		response.RespondError(ctx, "Failed to delete hotel", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Hotel deleted successfully", result, nil)
}

// ROOMS

func (c *Controller) CreateRoom(ctx *gin.Context) {
	hotelID, ok := params.UUID(ctx, "hotelId")
	if !ok {
		return
	}

	var req CreateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	room, err := c.service.CreateRoom(ctx.Request.Context(), hotelID, req)
	if err != nil {
		response.RespondError(ctx, "Failed to create room", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Room created successfully", room, nil)
}

func (c *Controller) ListRooms(ctx *gin.Context) {
	hotelID, ok := params.UUID(ctx, "hotelId")
	if !ok {
		return
	}

	rooms, err := c.service.ListRooms(ctx.Request.Context(), hotelID)
	if err != nil {
		response.RespondError(ctx, "Failed to list rooms", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Rooms retrieved successfully", rooms, nil)
}

func (c *Controller) GetRoom(ctx *gin.Context) {
	hotelID, ok := params.UUID(ctx, "hotelId")
	if !ok {
		return
	}
	roomID, ok := params.UUID(ctx, "roomId")
	if !ok {
		return
	}

	room, err := c.service.GetRoom(ctx.Request.Context(), hotelID, roomID)
	if err != nil {
		response.RespondError(ctx, "Failed to get room", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Room retrieved successfully", room, nil)
}

func (c *Controller) UpdateRoom(ctx *gin.Context) {
	hotelID, ok := params.UUID(ctx, "hotelId")
	if !ok {
		return
	}
	roomID, ok := params.UUID(ctx, "roomId")
	if !ok {
		return
	}

	var req UpdateRoomRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	room, err := c.service.UpdateRoom(ctx.Request.Context(), hotelID, roomID, req)
	if err != nil {
		response.RespondError(ctx, "Failed to update room", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Room updated successfully", room, nil)
}
