package code

import (
	"errors"
	"fmt"
)

// Sentinel errors for error classification.
var (
	// ErrSyntax indicates the script could not be parsed.
	ErrSyntax = errors.New("syntax error")

	// ErrPolicy indicates the vetter refused the script.
	ErrPolicy = errors.New("forbidden")

	// ErrCodeExecution indicates a runtime fault raised by the script,
	// such as a type error, a bad index or an explicit raise.
	ErrCodeExecution = errors.New("code execution error")

	// ErrConfiguration indicates an invalid or incomplete configuration.
	ErrConfiguration = errors.New("configuration error")

	// ErrLimitExceeded indicates that an execution budget was reached,
	// such as the timeout, the step count or the action count.
	ErrLimitExceeded = errors.New("limit exceeded")
)

// ErrorKind classifies a CodeError.
type ErrorKind string

const (
	KindSyntax  ErrorKind = "syntax"
	KindPolicy  ErrorKind = "policy"
	KindRuntime ErrorKind = "runtime"
	KindBudget  ErrorKind = "budget"
	KindTimeout ErrorKind = "timeout"
)

// sentinel returns the error a kind matches with errors.Is.
func (k ErrorKind) sentinel() error {
	switch k {
	case KindSyntax:
		return ErrSyntax
	case KindPolicy:
		return ErrPolicy
	case KindBudget, KindTimeout:
		return ErrLimitExceeded
	default:
		return ErrCodeExecution
	}
}

// CodeError represents a failure attributed to the script itself.
// It includes optional source location information for debugging.
type CodeError struct {
	// Kind classifies the failure. The zero value is treated as KindRuntime.
	Kind ErrorKind

	// Message describes the error.
	Message string

	// Line is the 1-based line number where the error occurred.
	// Zero indicates the line is unknown.
	Line int

	// Column is the 1-based column number where the error occurred.
	// Zero indicates the column is unknown.
	Column int

	// Err is the underlying error, if any.
	Err error
}

// Error returns the error message, including line and column if available.
func (e *CodeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s (line %d, col %d)", e.Message, e.Line, e.Column)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *CodeError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target.
// A CodeError matches the sentinel of its Kind.
func (e *CodeError) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// kindOf classifies err. Errors that are not CodeErrors count as runtime
// faults unless they wrap ErrLimitExceeded.
func kindOf(err error) ErrorKind {
	var ce *CodeError
	if errors.As(err, &ce) && ce.Kind != "" {
		return ce.Kind
	}
	if errors.Is(err, ErrLimitExceeded) {
		return KindBudget
	}
	return KindRuntime
}
