package inventory

// Status is the sellability state of a ledger day.
type Status string

const (
	StatusAvailable   Status = "available"
	StatusFullyBooked Status = "fully_booked"
	StatusMaintenance Status = "maintenance"
	StatusBlocked     Status = "blocked"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusFullyBooked, StatusMaintenance, StatusBlocked:
		return true
	}
	return false
}

// IsHold reports whether the status is an operator-imposed hold. Holds are
// sticky: quantity changes never move a day out of them.
func (s Status) IsHold() bool {
	return s == StatusMaintenance || s == StatusBlocked
}

func (s Status) String() string {
	return string(s)
}
