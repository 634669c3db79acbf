package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is returned (wrapped in an *APIError) when the backend
// rejects the bearer token. The client has already invoked its
// OnUnauthorized hook by the time callers see this.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is the normalized form of every non-2xx backend response.
// Message is taken from the response body when the backend provides one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend error (status %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend error (status %d)", e.Status)
}

func (e *APIError) Unwrap() error {
	if e.Status == 401 {
		return ErrUnauthorized
	}
	return nil
}

// retryable reports whether the response status warrants another attempt.
// Only server-side failures are transient; 4xx means the request is wrong.
func (e *APIError) retryable() bool {
	return e.Status >= 500
}
