package availability

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/inventory"
	"staybook/internal/shared/utils/params"
	"staybook/internal/shared/utils/response"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

func (c *Controller) GetCalendar(ctx *gin.Context) {
	hotelID, roomID, ok := roomParams(ctx)
	if !ok {
		return
	}

	var query CalendarQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}
	from, err := inventory.ParseDate(query.From)
	if err != nil {
		badDate(ctx, err)
		return
	}
	to, err := inventory.ParseDate(query.To)
	if err != nil {
		badDate(ctx, err)
		return
	}

	nights, err := c.service.Calendar(ctx.Request.Context(), hotelID, roomID, from, to)
	if err != nil {
		response.RespondError(ctx, "Failed to load calendar", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Calendar retrieved successfully", nights, nil)
}

func (c *Controller) UpsertDay(ctx *gin.Context) {
	hotelID, roomID, ok := roomParams(ctx)
	if !ok {
		return
	}
	date, ok := dateParam(ctx)
	if !ok {
		return
	}

	var req UpsertDayRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	day, err := c.service.UpsertDay(ctx.Request.Context(), hotelID, roomID, date, inventory.DayUpdate{
		TotalQuantity:  req.TotalQuantity,
		Price:          req.Price,
		SpecialPrice:   req.SpecialPrice,
		IsSpecialPrice: req.IsSpecialPrice,
	})
	if err != nil {
		response.RespondError(ctx, "Failed to update inventory", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Inventory updated successfully", day, nil)
}

func (c *Controller) SetDayStatus(ctx *gin.Context) {
	hotelID, roomID, ok := roomParams(ctx)
	if !ok {
		return
	}
	date, ok := dateParam(ctx)
	if !ok {
		return
	}

	var req SetDayStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	day, err := c.service.SetDayStatus(ctx.Request.Context(), hotelID, roomID, date, inventory.Status(req.Status))
	if err != nil {
		response.RespondError(ctx, "Failed to update inventory status", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Inventory status updated successfully", day, nil)
}

func roomParams(ctx *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	hotelID, ok := params.UUID(ctx, "hotelId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	roomID, ok := params.UUID(ctx, "roomId")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return hotelID, roomID, true
}

func dateParam(ctx *gin.Context) (time.Time, bool) {
	date, err := inventory.ParseDate(ctx.Param("date"))
	if err != nil {
		badDate(ctx, err)
		return time.Time{}, false
	}
	return date, true
}

func badDate(ctx *gin.Context, err error) {
	response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid date", nil, map[string]interface{}{
		"kind":   "validation",
		"reason": err.Error(),
	})
}
