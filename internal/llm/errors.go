package llm

import (
	"fmt"
	"time"
)

// ErrRateLimit indicates the vendor returned 429.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrBadEnvelope indicates the model output did not conform to the
// requested envelope schema.
type ErrBadEnvelope struct {
	Text string
	Err  error
}

func (e *ErrBadEnvelope) Error() string {
	return fmt.Sprintf("malformed model envelope: %v", e.Err)
}

func (e *ErrBadEnvelope) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the vendor is down or unreachable.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("model provider unavailable: %v", e.Err)
	}
	return "model provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrTruncated indicates the response hit the MaxTokens limit.
type ErrTruncated struct {
	Text string
}

func (e *ErrTruncated) Error() string {
	return "model response truncated: max tokens exceeded"
}
