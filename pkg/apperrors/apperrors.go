package apperrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for the request path and background jobs. Handlers map
// these onto HTTP statuses; everything else is treated as internal.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrValidation       = errors.New("validation failed")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Error is a wrapping error carrying an optional machine-readable code.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new error with a message.
func New(message string) error {
	return &Error{Message: message}
}

// Wrap wraps an error with an additional message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Message: message, Err: err}
}

// NotFound builds an error that IsNotFound reports true for.
func NotFound(message string) error {
	return &Error{Message: message, Err: ErrNotFound}
}

// Forbidden builds an error that IsForbidden reports true for.
func Forbidden(message string) error {
	return &Error{Message: message, Err: ErrForbidden}
}

// Validation builds an error that IsValidation reports true for.
func Validation(message string) error {
	return &Error{Message: message, Err: ErrValidation}
}

// Unavailable marks err as a retryable store failure.
func Unavailable(err error, message string) error {
	return &Error{Message: message, Err: fmt.Errorf("%w: %w", ErrStoreUnavailable, err)}
}

// IsNotFound returns true if the error chain contains ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsForbidden returns true if the error chain contains ErrForbidden.
func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

// IsValidation returns true if the error chain contains ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsStoreUnavailable returns true if the error chain contains ErrStoreUnavailable.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// GetMessage returns the wrapped message when err is an *Error.
func GetMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
