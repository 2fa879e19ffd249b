package snapshot

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound means no snapshot is stored under the key
	ErrNotFound = errors.New("snapshot not found")
	// ErrCorrupt means a stored snapshot could not be decoded
	ErrCorrupt = errors.New("snapshot corrupt")
	// ErrStoreClosed is returned by stores used after Close
	ErrStoreClosed = errors.New("snapshot store is closed")
)

// Error provides structured error information for store operations.
type Error struct {
	Op      string // Operation that failed ("get", "put")
	Backend string // Store backend ("file", "badger")
	Key     Key
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s snapshot %s (%s): %v", e.Op, e.Key, e.Backend, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsMiss reports whether err means the snapshot has to be recomputed
func IsMiss(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt)
}
