package bookings

import (
	"math"
	"time"
)

const day = 24 * time.Hour

// CancellationCheck is the outcome of CanBeCancelled. Fee is nil when
// cancelling is free. Deadline is exclusive: a cancellation has to happen
// strictly before it, at the deadline itself the stricter rule applies.
type CancellationCheck struct {
	CanCancel bool       `json:"can_cancel"`
	Reason    string     `json:"reason"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	Fee       *float64   `json:"fee,omitempty"`
}

// DaysUntil counts whole-or-partial days from now to t, rounded up.
func DaysUntil(t, now time.Time) int {
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}

// CanBeCancelled applies the booking's cancellation policy at now. It has no
// side effects.
func CanBeCancelled(b *Booking, now time.Time) CancellationCheck {
	switch b.Status {
	case StatusCancelled:
		return CancellationCheck{Reason: "already cancelled"}
	case StatusCompleted:
		return CancellationCheck{Reason: "cannot cancel completed booking"}
	}

	checkIn := b.CheckIn
	d := DaysUntil(checkIn, now)

	switch b.CancellationPolicy {
	case PolicyFreeCancellation:
		return CancellationCheck{CanCancel: true, Reason: "free cancellation", Deadline: &checkIn}

	case PolicyPartialRefund:
		switch {
		case d <= 0:
			return CancellationCheck{Reason: "cancellation deadline has passed", Deadline: &checkIn}
		case d <= 1:
			return CancellationCheck{CanCancel: true, Reason: "50% cancellation fee applies", Deadline: &checkIn, Fee: fee(b, 0.50)}
		case d <= 2:
			return CancellationCheck{CanCancel: true, Reason: "25% cancellation fee applies", Deadline: &checkIn, Fee: fee(b, 0.25)}
		default:
			return CancellationCheck{CanCancel: true, Reason: "free cancellation", Deadline: &checkIn}
		}

	case PolicyNoRefund:
		deadline := checkIn.Add(-3 * day)
		if d <= 3 {
			return CancellationCheck{Reason: "no cancellation within 72 hours of check-in", Deadline: &deadline}
		}
		return CancellationCheck{CanCancel: true, Reason: "10% cancellation fee applies", Deadline: &deadline, Fee: fee(b, 0.10)}
	}

	return CancellationCheck{CanCancel: true, Reason: "cancellation allowed"}
}

func fee(b *Booking, rate float64) *float64 {
	v := roundMoney(b.Pricing.FinalPrice * rate)
	return &v
}

// Settlement is the money side of a cancellation.
type Settlement struct {
	Fee           *float64
	Refund        *float64
	PaymentStatus PaymentStatus
}

// Settle works out the refund for a cancellation. Only paid bookings are
// refunded; unpaid ones keep their payment status.
func Settle(b *Booking, check CancellationCheck) Settlement {
	if b.PaymentStatus != PaymentPaid {
		return Settlement{Fee: check.Fee}
	}

	charged := 0.0
	if check.Fee != nil {
		charged = *check.Fee
	}
	refund := roundMoney(b.Pricing.FinalPrice - charged)

	status := PaymentRefunded
	if charged > 0 {
		status = PaymentPartiallyRefunded
	}
	return Settlement{Fee: check.Fee, Refund: &refund, PaymentStatus: status}
}
