package bookings

import "errors"

var (
	ErrBookingNotFound        = errors.New("booking not found")
	ErrBookingNumberTaken     = errors.New("booking number already exists")
	ErrBookingNumberExhausted = errors.New("could not generate a unique booking number")
	ErrStatusChanged          = errors.New("booking status changed concurrently")
)
