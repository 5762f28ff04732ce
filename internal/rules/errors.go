package rules

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingOp is returned for a rule without an "op" member.
	ErrMissingOp = errors.New(`missing "op"`)
	// ErrUnknownClass is returned when a class names no entity type.
	ErrUnknownClass = errors.New("unknown entity type")
	// ErrUnknownOp is returned when a factory or transform names no registered op.
	ErrUnknownOp = errors.New("unknown op")
	// ErrWrongKind is returned when a registered op does not fit where it is used.
	ErrWrongKind = errors.New("op has the wrong kind")
)

// SyntaxError reports a rule line that is malformed.
type SyntaxError struct {
	Line int
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("rule syntax error on line %d: %v: %s", e.Line, e.Err, e.Text)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// RuntimeError reports a well-formed rule naming something that cannot be
// resolved or instantiated.
type RuntimeError struct {
	Line int
	Text string
	Name string
	Err  error

	// Suggestion is the known name closest to Name, if any is close.
	Suggestion string
}

func (e *RuntimeError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("rule error on line %d: %s: %v (did you mean %q?): %s", e.Line, e.Name, e.Err, e.Suggestion, e.Text)
	}

	return fmt.Sprintf("rule error on line %d: %s: %v: %s", e.Line, e.Name, e.Err, e.Text)
}

func (e *RuntimeError) Unwrap() error { return e.Err }
