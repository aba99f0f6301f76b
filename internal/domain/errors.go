package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrReentrantPatch is returned when a store listener tries to apply a
	// patch while it is being notified.
	ErrReentrantPatch = errors.New("state patch applied from inside a listener")

	// ErrInvariantViolation is returned when a patch would break a
	// ConversationState invariant. The patch is not applied.
	ErrInvariantViolation = errors.New("conversation state invariant violated")

	// ErrNoPendingConfirmation is returned by confirm/refine when nothing
	// is waiting for a decision.
	ErrNoPendingConfirmation = errors.New("no pending confirmation")
)

// UnknownStageError reports a lookup of a stage id the registry does not hold.
type UnknownStageError struct {
	StageID StageID
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("unknown stage %q", string(e.StageID))
}

// InvalidInputSourceError reports an unrecognized input source string.
type InvalidInputSourceError struct {
	Value string
}

func (e *InvalidInputSourceError) Error() string {
	return fmt.Sprintf("invalid input source %q (want typed, suggestion or refinement)", e.Value)
}

// ResponseCode classifies a structured, non-fatal failure returned to callers.
type ResponseCode string

const (
	CodeNone             ResponseCode = ""
	CodeValidationFailed ResponseCode = "VALIDATION_FAILED"
	CodeSessionTerminal  ResponseCode = "SESSION_TERMINAL"
)
