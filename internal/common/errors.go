package common

import (
	"errors"
	"fmt"
)

var (
	// Store-level errors.
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation error")
	ErrStorage    = errors.New("storage error")

	// ErrImmutableField is returned when a patch tries to change an
	// identity-bearing or bookkeeping field. It is a validation error.
	ErrImmutableField = fmt.Errorf("%w: field is immutable", ErrValidation)

	// Notification errors (transport exhausted retries).
	ErrNotification = errors.New("notification failed")

	// Auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Invalid is a shorthand for building a *ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// StorageError wraps an I/O failure with the operation and path it hit.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() []error {
	return []error{ErrStorage, e.Err}
}

// NotificationError is returned after a transport exhausted its retries.
type NotificationError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification via %s failed after %d attempts: %v", e.Provider, e.Attempts, e.Err)
}

func (e *NotificationError) Unwrap() []error {
	return []error{ErrNotification, e.Err}
}
