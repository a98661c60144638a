package booking

import (
	"errors"
	"fmt"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrPackageNotFound   = errors.New("tour package not found")
	ErrForbidden         = errors.New("not authorized to access this booking")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidTransition = errors.New("a cancelled booking cannot be reopened")
	ErrConflict          = errors.New("booking was modified concurrently")
)

// ValidationError is a rejected booking request.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// InsufficientSpotsError reports how many spots were left when a reservation failed.
type InsufficientSpotsError struct {
	Available int
}

func (e *InsufficientSpotsError) Error() string {
	return fmt.Sprintf("Only %d spots available", e.Available)
}
