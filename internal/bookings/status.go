package bookings

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// transitions lists the only allowed status moves. Anything else is rejected.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// IsValid checks if the booking status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves this status.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// HoldsInventory reports whether a booking in this status still has its
// room-nights committed in the ledger.
func (s Status) HoldsInventory() bool {
	return s == StatusPending || s == StatusConfirmed
}

// CanTransitionTo checks the forward-only booking state machine.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded, PaymentPartiallyRefunded:
		return true
	}
	return false
}

func (p PaymentStatus) String() string {
	return string(p)
}

type CancellationPolicy string

const (
	PolicyFreeCancellation CancellationPolicy = "free_cancellation"
	PolicyPartialRefund    CancellationPolicy = "partial_refund"
	PolicyNoRefund         CancellationPolicy = "no_refund"
)

func (p CancellationPolicy) IsValid() bool {
	switch p {
	case PolicyFreeCancellation, PolicyPartialRefund, PolicyNoRefund:
		return true
	}
	return false
}
