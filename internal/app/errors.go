package app

import (
	"errors"
	"fmt"
)

// Error categories surfaced to transports. Validation errors also wrap the
// originating domain error.
var (
	ErrValidation         = errors.New("validation rejected")
	ErrNotFound           = errors.New("not found")
	ErrPersistence        = errors.New("persistence failure")
	ErrUnauthenticated    = errors.New("no authenticated user")
	ErrInsightUnavailable = errors.New("insight unavailable")
)

func validationError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
