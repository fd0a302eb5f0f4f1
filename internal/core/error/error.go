package errx

import (
	"errors"
	"fmt"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage describes lookups of absent Redis keys.
	RedisNotFoundMessage = "redis key not found"
	// ProviderErrorMessage describes failures of the flight-search collaborator.
	ProviderErrorMessage = "flight provider request failed"
	// ProviderDecodeMessage describes unreadable flight-search responses.
	ProviderDecodeMessage = "flight provider response unreadable"
)

// ErrProvidersExhausted is returned by the search router when every configured
// provider is out of quota or has failed for the current request.
var ErrProvidersExhausted = errors.New("all flight providers unavailable or out of quota")

// AppError wraps an underlying error with an HTTP-like status and safe message.
type AppError struct {
	Err     error
	Status  int
	Message string
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

// Unwrap exposes the underlying error for errors.Is / errors.As support.
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError with the provided information.
func New(err error, status int, message string) *AppError {
	return &AppError{
		Err:     err,
		Status:  status,
		Message: message,
	}
}

// Is reports whether the target matches the underlying error or the AppError itself.
func (e *AppError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// As allows casting to AppError or the wrapped error in a chain.
func (e *AppError) As(target any) bool {
	if errors.As(e.Err, target) {
		return true
	}
	if t, ok := target.(**AppError); ok {
		*t = e
		return true
	}
	return false
}

// WrapProvider maps a flight-search collaborator failure to the unified error
// type, preserving the HTTP-ish status the provider surfaced.
func WrapProvider(err error, status int) *AppError {
	if err == nil {
		return nil
	}
	return New(err, status, ProviderErrorMessage)
}
