package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation indicates missing or malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrUnauthenticated indicates bad credentials or a missing/invalid session token.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the resource exists but belongs to someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrTooManyAttempts indicates the login limiter rejected the request.
	ErrTooManyAttempts = errors.New("too many attempts")
)

// Error pairs a taxonomy sentinel with the message shown to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Validation builds an ErrValidation with a client-facing message.
func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Message: fmt.Sprintf(format, args...)}
}

// Unauthenticated builds an ErrUnauthenticated with a client-facing message.
func Unauthenticated(message string) error {
	return &Error{Kind: ErrUnauthenticated, Message: message}
}

// NotFound builds an ErrNotFound with a client-facing message.
func NotFound(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

// Forbidden builds an ErrForbidden with a client-facing message.
func Forbidden(message string) error {
	return &Error{Kind: ErrForbidden, Message: message}
}

// TooManyAttempts builds an ErrTooManyAttempts with a client-facing message.
func TooManyAttempts(message string) error {
	return &Error{Kind: ErrTooManyAttempts, Message: message}
}

// UserMessage returns the client-facing message carried by err. Errors outside the
// taxonomy fall back to err.Error(), matching how the API has always reported them.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
