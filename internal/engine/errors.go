package engine

import (
	"errors"
	"fmt"
)

// ErrLoopClosed is returned when posting to a loop that has stopped.
var ErrLoopClosed = errors.New("event loop closed")

// RuntimeError describes a failure while executing a loop event.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Event is the name of the event that failed.
	Event string

	// Seq is the logical clock stamp of the event.
	Seq int64

	// Err is the underlying handler error, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeHandlerFailed indicates a handler returned an error.
	ErrCodeHandlerFailed RuntimeErrorCode = "HANDLER_FAILED"

	// ErrCodeHandlerPanic indicates a handler panicked.
	ErrCodeHandlerPanic RuntimeErrorCode = "HANDLER_PANIC"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: event %s (seq=%d): %v", e.Code, e.Event, e.Seq, e.Err)
	}
	return fmt.Sprintf("%s: event %s (seq=%d)", e.Code, e.Event, e.Seq)
}

// Unwrap returns the handler error.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsPanic reports whether err wraps a handler panic.
// Uses errors.As to handle wrapped errors.
func IsPanic(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == ErrCodeHandlerPanic
	}
	return false
}
