package errx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"
)

const (
	// SystemErrorMessage is a user-facing fallback when internal errors occur.
	SystemErrorMessage = "internal server error"
	// RedisErrorMessage describes Redis related failures.
	RedisErrorMessage = "redis operation failed"
	// RedisNotFoundMessage is returned when a key does not exist.
	RedisNotFoundMessage = "record not found"
)

// Kind classifies an AppError independently of its HTTP status.
type Kind string

const (
	KindInternal    Kind = "internal"
	KindInvalid     Kind = "invalid_input"
	KindUnavailable Kind = "external_service_unavailable"
	KindNotFound    Kind = "not_found"
)

// AppError wraps an underlying error with a kind, an HTTP status and a safe message.
type AppError struct {
	Kind    Kind
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

// InvalidInput rejects a single call. The message is shown to the caller.
func InvalidInput(format string, args ...any) *AppError {
	return &AppError{
		Kind:    KindInvalid,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf(format, args...),
	}
}

// Unavailable marks a failed call to an external collaborator. Callers are
// expected to recover from it with their documented fallback.
func Unavailable(service string, err error) *AppError {
	return &AppError{
		Kind:    KindUnavailable,
		Err:     err,
		Status:  http.StatusBadGateway,
		Message: service + " unavailable",
	}
}

// NotFound reports a missing record.
func NotFound(message string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: message,
	}
}

// WrapRedis maps Redis errors to an AppError with an appropriate status code.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return &AppError{
			Kind:    KindNotFound,
			Err:     err,
			Status:  http.StatusNotFound,
			Message: RedisNotFoundMessage,
		}
	}
	return &AppError{
		Kind:    KindInternal,
		Err:     err,
		Status:  http.StatusBadGateway,
		Message: RedisErrorMessage,
	}
}

// KindOf returns the kind of the first AppError in the chain, or KindInternal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// StatusOf returns the HTTP status carried by err, defaulting to 500.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// IsInvalid reports whether err rejects the caller's input.
func IsInvalid(err error) bool {
	return KindOf(err) == KindInvalid
}

// IsNotFound reports whether err describes a missing record.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}
