// Package toolerrors provides a structured, chainable error type for
// capability adapters (tools, workers, model clients) so failures carry a
// stable message independent of whatever underlying library produced them,
// while still preserving the original cause for logging.
package toolerrors

import "fmt"

// ToolError is a structured error with an optional wrapped cause. Message
// is meant to be stable and safe to surface to an LLM or end user; Cause,
// when present, carries the lower-level detail for logs and traces only.
type ToolError struct {
	Message string
	Cause   error
}

// New returns a ToolError with no underlying cause.
func New(message string) *ToolError {
	return &ToolError{Message: message}
}

// NewWithCause returns a ToolError wrapping cause.
func NewWithCause(message string, cause error) *ToolError {
	return &ToolError{Message: message, Cause: cause}
}

// Errorf returns a ToolError with a formatted message and no cause.
func Errorf(format string, args ...any) *ToolError {
	return &ToolError{Message: fmt.Sprintf(format, args...)}
}

// FromError wraps an arbitrary error as a ToolError, passing ToolError
// values through unchanged rather than double-wrapping them.
func FromError(err error) *ToolError {
	if err == nil {
		return nil
	}
	if te, ok := err.(*ToolError); ok {
		return te
	}
	return &ToolError{Message: err.Error(), Cause: err}
}

func (e *ToolError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes Cause to errors.Is / errors.As.
func (e *ToolError) Unwrap() error {
	return e.Cause
}
