package bookings

import "staybook/internal/availability"

type BookingListResponse struct {
	Bookings   []Booking `json:"bookings"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"total_pages"`
}

// AvailabilityResponse is a range check plus the guest capacity check.
type AvailabilityResponse struct {
	*availability.Result
	Guests         int      `json:"guests"`
	MaxGuests      int      `json:"max_guests"`
	NumberOfNights int      `json:"number_of_nights"`
	Estimate       *Pricing `json:"estimated_pricing,omitempty"`
}

type CancelBookingResponse struct {
	Booking      *Booking          `json:"booking"`
	Cancellation CancellationCheck `json:"cancellation"`
}

func CalculateTotalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
