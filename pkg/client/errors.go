package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by APIError. Use errors.Is() to check.
var (
	ErrBadRequest   = errors.New("pasttense: bad request")
	ErrUnauthorized = errors.New("pasttense: unauthorized")
	ErrUnavailable  = errors.New("pasttense: service unavailable")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("pasttense: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("pasttense: %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the sentinel matching the status class, or nil.
func (e *APIError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case e.StatusCode >= 500:
		return ErrUnavailable
	case e.StatusCode >= 400 && e.StatusCode != http.StatusTooManyRequests:
		return ErrBadRequest
	default:
		return nil
	}
}

func (e *APIError) retryable() bool {
	return e.StatusCode >= 500
}
