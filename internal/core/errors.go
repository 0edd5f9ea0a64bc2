// Package core holds cross-cutting error and primitive types shared by the
// rest of the engine. It intentionally carries no dependency on any other
// internal package so that every other package can depend on it.
package core

import "fmt"

// Kind classifies an error into one of the five categories from the
// error-handling design: ParseError and MatchFailure are recoverable control
// flow, CompileError aborts a single compile, RuntimeError fails only the
// current pattern attempt, and Invariant is fatal.
type Kind int

const (
	KindParseError Kind = iota
	KindCompileError
	KindMatchFailure
	KindRuntimeError
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindParseError:
		return "ParseError"
	case KindCompileError:
		return "CompileError"
	case KindMatchFailure:
		return "MatchFailure"
	case KindRuntimeError:
		return "RuntimeError"
	case KindInvariant:
		return "Invariant"
	default:
		return "Unknown"
	}
}

// Position is a 1-based line/column location in a source string, used to
// locate parse and compile errors.
type Position struct {
	Line   int
	Column int
	Byte   int
}

// Error is the uniform error payload produced by the compiler and matcher.
// It carries a Kind so callers can decide whether to trap it (MatchFailure,
// RuntimeError) or propagate it (CompileError, Invariant).
type Error struct {
	Kind    Kind
	Message string
	Pos     *Position
	Cause   error
}

func (e *Error) Error() string {
	loc := ""
	if e.Pos != nil {
		loc = fmt.Sprintf(" at %d:%d", e.Pos.Line, e.Pos.Column)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %s: %v", e.Kind, loc, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s%s: %s", e.Kind, loc, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no position.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap builds an Error around a cause.
func Wrap(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// At attaches a position to an error in place and returns it, for chaining
// at the call site: `return core.At(core.New(core.KindParseError, "..."), pos)`.
func At(err *Error, pos Position) *Error {
	err.Pos = &pos
	return err
}

// IsRecoverable reports whether the enclosing pattern predicate should trap
// this error and turn it into a boolean false rather than aborting the run.
func IsRecoverable(err error) bool {
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		return false
	}
	switch e.Kind {
	case KindMatchFailure, KindRuntimeError, KindParseError:
		return true
	default:
		return false
	}
}
