package llm

import (
	"errors"
	"fmt"
)

// Every failed Generate call wraps exactly one of these. The coach treats
// all of them the same way and falls back to the scripted reply.
var (
	// ErrModelUnavailable means the model server could not be reached.
	ErrModelUnavailable = errors.New("coaching model unavailable")

	// ErrModelRejected means the server refused the request (unknown model,
	// bad options). Retrying cannot help.
	ErrModelRejected = errors.New("coaching model rejected the request")

	// ErrTimeout means an attempt or the caller's context ran out of time.
	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput means the reply was empty or not the structure asked for.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRetryExhausted means every attempt failed for a retryable reason
	// other than the ones above.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)

// StatusError is a non-200 answer from the model server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("model server returned status %d: %s", e.Code, e.Body)
}

// retryable reports whether another attempt could succeed. Client errors
// other than rate limiting are final.
func (e *StatusError) retryable() bool {
	return e.Code >= 500 || e.Code == 429
}
