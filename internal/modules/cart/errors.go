package cart

import "errors"

var (
	ErrCardNotFound     = errors.New("vendor card not found")
	ErrItemNotFound     = errors.New("cart item not found")
	ErrEventDateInPast  = errors.New("event date is in the past")
	ErrQuantityTooLarge = errors.New("quantity too large")
)
