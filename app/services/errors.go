package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the requested order does not exist.
	ErrNotFound = errors.New("order not found")

	// ErrForbidden means the caller does not own the order they addressed.
	ErrForbidden = errors.New("order does not belong to the requesting user")

	// ErrInvalidTransition means the order's current status forbids the
	// requested lifecycle change.
	ErrInvalidTransition = errors.New("cannot cancel a delivered order")

	// ErrInvalidStatus means the supplied status value is not one of the
	// known order statuses.
	ErrInvalidStatus = errors.New("invalid order status")

	// ErrStatusConflict means a concurrent writer kept changing the order's
	// status and the update could not be applied atomically.
	ErrStatusConflict = errors.New("order status changed concurrently, retry")
)

// ValidationError reports a business-rule violation on order input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}
