package script

import (
	"errors"
	"fmt"
)

// Sentinel errors for classifying script failures with errors.Is.
var (
	// ErrSyntax indicates the source could not be parsed.
	ErrSyntax = errors.New("syntax error")

	// ErrPolicy indicates the parsed program contains a forbidden construct.
	ErrPolicy = errors.New("policy violation")

	// ErrRuntime indicates the program failed while running.
	ErrRuntime = errors.New("runtime fault")

	// ErrBudget indicates a run exceeded a step, time, depth, size or
	// action limit, or its context was cancelled.
	ErrBudget = errors.New("budget exceeded")
)

// ErrorKind classifies an Error.
type ErrorKind uint8

const (
	SyntaxError ErrorKind = iota + 1
	PolicyError
	RuntimeError
	BudgetError
)

// String returns the lowercase kind name.
func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax"
	case PolicyError:
		return "policy"
	case RuntimeError:
		return "runtime"
	case BudgetError:
		return "budget"
	default:
		return "unknown"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case SyntaxError:
		return ErrSyntax
	case PolicyError:
		return ErrPolicy
	case RuntimeError:
		return ErrRuntime
	case BudgetError:
		return ErrBudget
	default:
		return nil
	}
}

// Error is a positioned script failure.
type Error struct {
	Kind ErrorKind
	Msg  string
	Pos  Pos
	// Err is an optional underlying cause, such as context.Canceled.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s at line %d, column %d: %s", e.Kind.sentinel(), e.Pos.Line, e.Pos.Col, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind.sentinel(), e.Msg)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func errorf(kind ErrorKind, pos Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
