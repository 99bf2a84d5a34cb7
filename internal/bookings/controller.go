package bookings

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staybook/internal/inventory"
	"staybook/internal/shared/middleware"
	"staybook/internal/shared/utils/params"
	"staybook/internal/shared/utils/response"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CheckAvailability handles GET /api/v1/hotels/:hotelId/rooms/:roomId/availability
func (c *Controller) CheckAvailability(ctx *gin.Context) {
	hotelID, ok := params.UUID(ctx, "hotelId")
	if !ok {
		return
	}
	roomID, ok := params.UUID(ctx, "roomId")
	if !ok {
		return
	}

	var query AvailabilityQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}
	checkIn, checkOut, ok := stayDates(ctx, query.CheckIn, query.CheckOut)
	if !ok {
		return
	}

	guests := Guests{Adults: query.Adults, Children: query.Children, Infants: query.Infants}
	result, err := c.service.CheckAvailability(ctx.Request.Context(), hotelID, roomID, checkIn, checkOut, guests, query.Rooms)
	if err != nil {
		response.RespondError(ctx, "Failed to check availability", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Availability retrieved successfully", result, nil)
}

// CreateBooking handles POST /api/v1/bookings
func (c *Controller) CreateBooking(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}
	checkIn, checkOut, ok := stayDates(ctx, req.CheckIn, req.CheckOut)
	if !ok {
		return
	}

	input := CreateBookingInput{
		UserID:   actor.UserID,
		HotelID:  uuid.MustParse(req.HotelID),
		RoomID:   uuid.MustParse(req.RoomID),
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Rooms:    req.Rooms,
		Guests: Guests{
			Adults:   req.Guests.Adults,
			Children: req.Guests.Children,
			Infants:  req.Guests.Infants,
		},
		Contact: GuestContact{
			FirstName: req.GuestContact.FirstName,
			LastName:  req.GuestContact.LastName,
			Email:     req.GuestContact.Email,
			Phone:     req.GuestContact.Phone,
		},
		Policy:          CancellationPolicy(req.CancellationPolicy),
		SpecialRequests: req.SpecialRequests,
	}
	// Price overrides are a front-desk tool.
	if actor.Staff {
		input.Taxes, input.Fees, input.Discount = req.Taxes, req.Fees, req.Discount
	}

	booking, err := c.service.CreateBooking(ctx.Request.Context(), input)
	if err != nil {
		response.RespondError(ctx, "Failed to create booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created successfully", booking, nil)
}

// ListMyBookings handles GET /api/v1/bookings
func (c *Controller) ListMyBookings(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}
	query.UserID = actor.UserID.String()

	result, err := c.service.ListBookings(ctx.Request.Context(), query)
	if err != nil {
		response.RespondError(ctx, "Failed to list bookings", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", result, nil)
}

// ListAllBookings handles GET /api/v1/admin/bookings
func (c *Controller) ListAllBookings(ctx *gin.Context) {
	var query BookingListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}
	query.UserID = ctx.Query("user_id")
	if query.UserID != "" {
		if _, err := uuid.Parse(query.UserID); err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid query parameters", nil, "user_id must be a valid UUID")
			return
		}
	}

	result, err := c.service.ListBookings(ctx.Request.Context(), query)
	if err != nil {
		response.RespondError(ctx, "Failed to list bookings", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", result, nil)
}

// GetBooking handles GET /api/v1/bookings/:id
func (c *Controller) GetBooking(ctx *gin.Context) {
	id, actor, ok := bookingRequest(ctx)
	if !ok {
		return
	}

	booking, err := c.service.GetBooking(ctx.Request.Context(), id, actor)
	if err != nil {
		response.RespondError(ctx, "Failed to get booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

// GetTimeline handles GET /api/v1/bookings/:id/timeline
func (c *Controller) GetTimeline(ctx *gin.Context) {
	id, actor, ok := bookingRequest(ctx)
	if !ok {
		return
	}

	timeline, err := c.service.GetTimeline(ctx.Request.Context(), id, actor)
	if err != nil {
		response.RespondError(ctx, "Failed to get booking timeline", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking timeline retrieved successfully", timeline, nil)
}

// GetCancellationTerms handles GET /api/v1/bookings/:id/cancellation
func (c *Controller) GetCancellationTerms(ctx *gin.Context) {
	id, actor, ok := bookingRequest(ctx)
	if !ok {
		return
	}

	check, err := c.service.GetCancellationTerms(ctx.Request.Context(), id, actor)
	if err != nil {
		response.RespondError(ctx, "Failed to get cancellation terms", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Cancellation terms retrieved successfully", check, nil)
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel
func (c *Controller) CancelBooking(ctx *gin.Context) {
	id, actor, ok := bookingRequest(ctx)
	if !ok {
		return
	}

	var req CancelBookingRequest
	// The body is optional.
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
			return
		}
	}

	result, err := c.service.CancelBooking(ctx.Request.Context(), id, actor, req.Reason)
	if err != nil {
		response.RespondError(ctx, "Failed to cancel booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking cancelled successfully", result, nil)
}

// ConfirmBooking handles POST /api/v1/admin/bookings/:id/confirm
func (c *Controller) ConfirmBooking(ctx *gin.Context) {
	c.transition(ctx, c.service.ConfirmBooking, "Booking confirmed successfully")
}

// CompleteBooking handles POST /api/v1/admin/bookings/:id/complete
func (c *Controller) CompleteBooking(ctx *gin.Context) {
	c.transition(ctx, c.service.CompleteBooking, "Booking completed successfully")
}

// MarkNoShow handles POST /api/v1/admin/bookings/:id/no-show
func (c *Controller) MarkNoShow(ctx *gin.Context) {
	c.transition(ctx, c.service.MarkNoShow, "Booking marked as no-show")
}

// UpdatePaymentStatus handles PUT /api/v1/admin/bookings/:id/payment-status
func (c *Controller) UpdatePaymentStatus(ctx *gin.Context) {
	id, ok := params.UUID(ctx, "id")
	if !ok {
		return
	}

	var req UpdatePaymentStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	booking, err := c.service.UpdatePaymentStatus(ctx.Request.Context(), id, PaymentStatus(req.PaymentStatus))
	if err != nil {
		response.RespondError(ctx, "Failed to update payment status", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment status updated successfully", booking, nil)
}

// DeleteBooking handles DELETE /api/v1/admin/bookings/:id
func (c *Controller) DeleteBooking(ctx *gin.Context) {
	id, ok := params.UUID(ctx, "id")
	if !ok {
		return
	}

	if err := c.service.ForceDelete(ctx.Request.Context(), id); err != nil {
		response.RespondError(ctx, "Failed to delete booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Booking deleted successfully", nil, nil)
}

type transitionFunc func(ctx context.Context, id uuid.UUID) (*Booking, error)

func (c *Controller) transition(ctx *gin.Context, apply transitionFunc, message string) {
	id, ok := params.UUID(ctx, "id")
	if !ok {
		return
	}

	booking, err := apply(ctx.Request.Context(), id)
	if err != nil {
		response.RespondError(ctx, "Failed to update booking", err)
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, message, booking, nil)
}

func currentActor(ctx *gin.Context) (Actor, bool) {
	userID, ok := middleware.CurrentUserID(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return Actor{}, false
	}
	return Actor{UserID: userID, Staff: middleware.IsStaff(ctx)}, true
}

func bookingRequest(ctx *gin.Context) (uuid.UUID, Actor, bool) {
	id, ok := params.UUID(ctx, "id")
	if !ok {
		return uuid.Nil, Actor{}, false
	}
	actor, ok := currentActor(ctx)
	if !ok {
		return uuid.Nil, Actor{}, false
	}
	return id, actor, true
}

func stayDates(ctx *gin.Context, rawCheckIn, rawCheckOut string) (time.Time, time.Time, bool) {
	checkIn, err := inventory.ParseDate(rawCheckIn)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid check-in date", nil, err.Error())
		return time.Time{}, time.Time{}, false
	}
	checkOut, err := inventory.ParseDate(rawCheckOut)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid check-out date", nil, err.Error())
		return time.Time{}, time.Time{}, false
	}
	return checkIn, checkOut, true
}
