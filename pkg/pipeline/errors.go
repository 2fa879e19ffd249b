package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskPanic marks a year task that panicked
	ErrTaskPanic = errors.New("year task panicked")
)

// TaskError describes the failure of one year task. Family is empty when
// the failure is not specific to one address family.
type TaskError struct {
	Year   int
	Family string
	File   string
	Cause  error
}

// Error implements the error interface.
func (e *TaskError) Error() string {
	if e.Family != "" {
		return fmt.Sprintf("year %d (%s, %s): %v", e.Year, e.Family, e.File, e.Cause)
	}
	return fmt.Sprintf("year %d (%s): %v", e.Year, e.File, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *TaskError) Unwrap() error {
	return e.Cause
}
