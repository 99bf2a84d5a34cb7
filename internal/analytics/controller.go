package analytics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/inventory"
	"staybook/internal/shared/utils/response"
)

// Controller defines the analytics controller interface
type Controller interface {
	GetOccupancyReport(c *gin.Context)
	GetBookingReport(c *gin.Context)
	InvalidateReports(c *gin.Context)
}

type controller struct {
	service Service
}

// NewController creates a new analytics controller instance
func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetOccupancyReport handles GET /api/v1/admin/reports/occupancy
func (ctrl *controller) GetOccupancyReport(c *gin.Context) {
	var query OccupancyQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	hotelID := uuid.MustParse(query.HotelID)
	from, _ := inventory.ParseDate(query.From)
	to, _ := inventory.ParseDate(query.To)

	report, err := ctrl.service.GetOccupancyReport(c.Request.Context(), hotelID, from, to)
	if err != nil {
		response.RespondError(c, "Failed to get occupancy report", err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Occupancy report retrieved successfully", report, nil)
}

// GetBookingReport handles GET /api/v1/admin/reports/bookings
func (ctrl *controller) GetBookingReport(c *gin.Context) {
	var query BookingReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	report, err := ctrl.service.GetBookingReport(c.Request.Context(), optionalDate(query.From), optionalDate(query.To))
	if err != nil {
		response.RespondError(c, "Failed to get booking report", err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking report retrieved successfully", report, nil)
}

// InvalidateReports handles DELETE /api/v1/admin/reports/cache
func (ctrl *controller) InvalidateReports(c *gin.Context) {
	deleted, err := ctrl.service.InvalidateReports(c.Request.Context())
	if err != nil {
		response.RespondError(c, "Failed to invalidate reports", err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Cached reports invalidated", gin.H{"deleted": deleted}, nil)
}

// optionalDate parses a binding-validated date, nil when absent.
func optionalDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	t, err := inventory.ParseDate(raw)
	if err != nil {
		return nil
	}
	return &t
}
