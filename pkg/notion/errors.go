package notion

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotExist is returned when the referenced page or database does
	// not exist, or the integration cannot see it.
	ErrNotExist = errors.New("not exists")
	// ErrPermissionDenied is returned when the object exists but the
	// integration is not allowed to read it.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnauthorized is returned on a bad or missing API key. Never
	// retried.
	ErrUnauthorized = errors.New("unauthorized")
)

// ThrottleError signals a rate limit response. RetryAfter is the server
// supplied delay, zero when the header was absent.
type ThrottleError struct {
	RetryAfter time.Duration
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

// ServerError is a 5xx response.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error, status %d", e.StatusCode)
}

// APIError is the error payload the service returns on non-2xx responses.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.StatusCode, e.Message)
}

// Retryable reports whether err is a transient fault worth retrying:
// throttling, server errors, and transport failures. Authentication and
// not-found conditions are permanent.
func Retryable(err error) bool {
	var throttle *ThrottleError
	if errors.As(err, &throttle) {
		return true
	}

	var server *ServerError
	if errors.As(err, &server) {
		return true
	}

	var transport *TransportError
	return errors.As(err, &transport)
}

// TransportError wraps a network level failure, before any response was
// received.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
