package engine

import (
	"errors"
	"fmt"
)

// Completion failures surfaced to the caller. Stale ids and double
// completions are recoverable; the operation is a no-op.
var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrTaskAlreadyCompleted = errors.New("task is already completed")
	ErrEvidenceRequired     = errors.New("photo evidence is required to complete this task")
	ErrGiftNotFound         = errors.New("gift not found")
	ErrEpicNotFound         = errors.New("epic not found")
)

// ValidationError rejects authoring input before any mutation happens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InvalidStateError marks a contract violation such as negative XP input or
// a backward gift status transition. These indicate a logic error in the
// caller, not bad user data.
type InvalidStateError struct {
	Op     string
	Reason string
}

func (e InvalidStateError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}
