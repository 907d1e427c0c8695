package bookings

import "errors"

var (
	ErrNotFound                = errors.New("booking not found")
	ErrEventNotFound           = errors.New("event not found")
	ErrSoldOut                 = errors.New("not enough seats available")
	ErrForbidden               = errors.New("booking belongs to another user")
	ErrUnknownStatus           = errors.New("unknown booking status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
