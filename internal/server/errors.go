package server

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-jobform/pkg/apispec"
	"github.com/goliatone/go-jobform/pkg/form"
)

var (
	// ErrBadCSRF is returned when an HTML post carries a missing or stale
	// anti-forgery token.
	ErrBadCSRF = errors.New("server: invalid csrf token")
	// ErrTooManySessions is returned when the store is full of live sessions.
	ErrTooManySessions = errors.New("server: too many active sessions")
)

// StatusError attaches an HTTP status to an error.
type StatusError struct {
	Code  int
	Field string
	Err   error
}

func (e StatusError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return http.StatusText(e.Code)
}

func (e StatusError) Unwrap() error { return e.Err }

func (e StatusError) StatusCode() int {
	if e.Code <= 0 {
		return http.StatusInternalServerError
	}
	return e.Code
}

// statusFor maps domain errors onto response codes.
func statusFor(err error) int {
	var statusErr StatusError
	switch {
	case errors.As(err, &statusErr):
		return statusErr.StatusCode()
	case errors.Is(err, form.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, apispec.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, ErrBadCSRF):
		return http.StatusForbidden
	case errors.Is(err, ErrTooManySessions):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// problem is the JSON error body.
type problem struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}
