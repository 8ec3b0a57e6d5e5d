package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrReadOnly          = errors.New("storage is in read-only mode")
	ErrCorruptCollection = errors.New("persisted collection is corrupt")
	ErrValidation        = errors.New("validation failed")
	ErrCollaborator      = errors.New("collaborator failed")
)

// ValidationError reports a malformed record, for instance an imported deck without
// a name. Deck is "Unknown" when the record carries no usable name.
type ValidationError struct {
	Deck   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid deck %q: %s", e.Deck, e.Reason)
}

// Is makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// CollaboratorError wraps a failure of an external capability (text generation,
// speech, clipboard) with a message suitable for a transient user notification.
type CollaboratorError struct {
	Op      string
	Message string
	Err     error
}

func (e *CollaboratorError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s Details: %v", e.Message, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrCollaborator) hold for every CollaboratorError.
func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaborator
}
