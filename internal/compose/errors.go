package compose

import (
	"errors"
	"fmt"
)

// ErrSourceVideoNotFound indicates a scene referenced a source video
// that matches nothing in the input list.
var ErrSourceVideoNotFound = errors.New("compose: source video not found")

// CompositionError wraps any failure during timeline composition so
// callers can distinguish render failures from planning failures.
type CompositionError struct {
	Cause error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("composition failed: %v", e.Cause)
}

func (e *CompositionError) Unwrap() error {
	return e.Cause
}
