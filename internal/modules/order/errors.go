package order

import "errors"

var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrCardUnavailable         = errors.New("vendor card no longer available")
	ErrNotFound                = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrConflict                = errors.New("order changed concurrently")
	ErrVendorInactive          = errors.New("vendor account is not active")
)
