package bookings

import "time"

// Timeline is a view of a booking relative to now. It touches no store.
type Timeline struct {
	IsUpcoming        bool              `json:"is_upcoming"`
	IsActive          bool              `json:"is_active"`
	IsPast            bool              `json:"is_past"`
	DaysUntilCheckIn  int               `json:"days_until_check_in"`
	DaysUntilCheckOut int               `json:"days_until_check_out"`
	NightsRemaining   int               `json:"nights_remaining"`
	CanCancel         bool              `json:"can_cancel"`
	Cancellation      CancellationCheck `json:"cancellation"`
	Status            Status            `json:"status"`
	PaymentStatus     PaymentStatus     `json:"payment_status"`
}

func BuildTimeline(b *Booking, now time.Time) Timeline {
	check := CanBeCancelled(b, now)
	t := Timeline{
		IsUpcoming:        now.Before(b.CheckIn),
		IsActive:          !now.Before(b.CheckIn) && now.Before(b.CheckOut),
		IsPast:            !now.Before(b.CheckOut),
		DaysUntilCheckIn:  DaysUntil(b.CheckIn, now),
		DaysUntilCheckOut: DaysUntil(b.CheckOut, now),
		CanCancel:         check.CanCancel,
		Cancellation:      check,
		Status:            b.Status,
		PaymentStatus:     b.PaymentStatus,
	}

	switch {
	case t.IsUpcoming:
		t.NightsRemaining = b.NumberOfNights
	case t.IsActive:
		t.NightsRemaining = t.DaysUntilCheckOut
	}
	return t
}
