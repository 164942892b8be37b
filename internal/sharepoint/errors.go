package sharepoint

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/preston-bernstein/games-list-service/internal/domain/games"
)

// StatusError is returned for any non-2xx response from the list API.
// It unwraps to games.ErrNotFound for 404 and games.ErrPreconditionFailed for
// 412 so callers can tell a stale etag apart from other rejections.
type StatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sharepoint: %s: unexpected status %d", e.Operation, e.StatusCode)
	}
	return fmt.Sprintf("sharepoint: %s: unexpected status %d: %s", e.Operation, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return games.ErrNotFound
	case http.StatusPreconditionFailed:
		return games.ErrPreconditionFailed
	default:
		return nil
	}
}

// ThrottleError captures 429/503 responses carrying a Retry-After hint.
// The client never waits or retries; the hint is surfaced to the caller.
type ThrottleError struct {
	Operation  string
	StatusCode int
	RetryAfter time.Duration
	Message    string
}

func (e *ThrottleError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "list api throttled request"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("sharepoint: %s: %s (status=%d)", e.Operation, msg, e.StatusCode)
	}
	return fmt.Sprintf("sharepoint: %s: %s", e.Operation, msg)
}

// DecodeError wraps a JSON decode failure of a list API response.
type DecodeError struct {
	Operation string
	Err       error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("sharepoint: %s: decode response: %v", e.Operation, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// AsThrottleError attempts to unwrap an error into a ThrottleError.
func AsThrottleError(err error) (*ThrottleError, bool) {
	var tErr *ThrottleError
	if errors.As(err, &tErr) {
		return tErr, true
	}
	return nil, false
}

// AsStatusError attempts to unwrap an error into a StatusError.
func AsStatusError(err error) (*StatusError, bool) {
	var sErr *StatusError
	if errors.As(err, &sErr) {
		return sErr, true
	}
	return nil, false
}

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, games.ErrNotFound)
}

// IsPreconditionFailed reports whether err is a rejected etag.
func IsPreconditionFailed(err error) bool {
	return errors.Is(err, games.ErrPreconditionFailed)
}

func isThrottleStatus(code int) bool {
	return code == http.StatusTooManyRequests || code == http.StatusServiceUnavailable
}
