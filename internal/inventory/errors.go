package inventory

import "errors"

var (
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrInvalidRelease        = errors.New("release exceeds booked quantity")
	ErrDayOnHold             = errors.New("day is on operator hold")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidUpdate         = errors.New("invalid inventory update")
	ErrInvalidStatus         = errors.New("invalid inventory status")
	ErrDayNotFound           = errors.New("inventory day not found")
	ErrConcurrencyConflict   = errors.New("inventory day modified concurrently")
)
