// Package apperrors defines structured application error types for the
// goodness-of-fit engine, allowing a clear distinction between error classes
// (configuration, initialization, evaluation) and carrying the underlying
// cause.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with
// %w. All error types implement the Unwrap() method to support errors.Is()
// and errors.As().
package apperrors

import (
	"context"
	"errors"
	"fmt"
)

// Application exit codes define the standard exit statuses for the demo
// command. These codes signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorTimeout  = 2   // Indicates the operation timed out.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ErrSplitFailed is the sentinel for a dataset that could not be partitioned
// along the requested category axis. This is a structural setup failure: a
// simultaneous objective cannot be initialized and evaluation must not
// proceed with partial state.
var ErrSplitFailed = errors.New("category split failed")

// ConfigError represents a user configuration error, such as invalid flags
// or values. It indicates that the application cannot proceed due to
// incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// EvaluationError encapsulates an objective-evaluation error while
// preserving the original cause. Carrying the objective name allows a caller
// combining many partial results to report which partition or category
// failed.
type EvaluationError struct {
	// Objective is the name of the objective instance that failed.
	Objective string
	// Cause is the underlying error that triggered this evaluation error.
	Cause error
}

// Error returns the error message including the failing objective's name.
func (e EvaluationError) Error() string {
	return fmt.Sprintf("objective %q: %v", e.Objective, e.Cause)
}

// Unwrap returns the original wrapped error, allowing for error chain
// inspection (e.g., using errors.Is or errors.As).
func (e EvaluationError) Unwrap() error { return e.Cause }

// NewEvaluationError creates a new EvaluationError.
//
// Parameters:
//   - objective: The name of the failing objective instance.
//   - cause: The underlying error.
//
// Returns:
//   - error: A new EvaluationError, or nil if cause is nil.
func NewEvaluationError(objective string, cause error) error {
	if cause == nil {
		return nil
	}
	return EvaluationError{Objective: objective, Cause: cause}
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline
// exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
