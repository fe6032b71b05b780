package domain

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrValidation           = errors.New("validation failed")
	ErrRateLimited          = errors.New("too many requests")
	ErrPersistence          = errors.New("persistence failure")
	ErrInvalidLimiterConfig = errors.New("rate limiter quota and window must be positive")
)

// ValidationError describes a malformed request. Field is empty when the
// failure concerns the whole body.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrValidation) match any *ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a validation error for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// PersistenceError wraps cause so that it matches ErrPersistence
func PersistenceError(op string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, cause)
}
