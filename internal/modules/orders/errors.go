package orders

import "errors"

var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrNotFound                = errors.New("order not found")
	ErrForbidden               = errors.New("order belongs to another user")
	ErrUnknownStatus           = errors.New("unknown order status")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
)
