package domain

import "errors"

var (
	ErrInvalidQuantity   = errors.New("quantity must be greater than zero")
	ErrInvalidPrice      = errors.New("unit price must not be negative")
	ErrInvalidOrder      = errors.New("invalid order")
	ErrInvalidSession    = errors.New("invalid session id")
	ErrItemNotFound      = errors.New("item not found")
	ErrLineNotFound      = errors.New("item is not in the order")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOrderNotOpen      = errors.New("order is no longer open for changes")
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no items")
)

// IsRejection reports whether err is a business rule rejection rather than
// an infrastructure failure.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidQuantity, ErrInvalidPrice, ErrInvalidOrder, ErrInvalidSession,
		ErrItemNotFound, ErrLineNotFound, ErrInvalidTransition, ErrOrderNotOpen,
		ErrOrderNotFound, ErrEmptyOrder,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
