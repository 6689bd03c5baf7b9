// runtime/errors.go
package runtime

import (
	"errors"
	"fmt"
)

// Kind classifies a runtime error per the error-handling design: callers
// branch on kind with IsKind rather than parsing messages.
type Kind int

const (
	MalformedContainer Kind = iota
	OutOfResource
	InvalidReference
	ScriptError
	BackendSurfaceLost
	DirectiveMisuse
)

func (k Kind) String() string {
	switch k {
	case MalformedContainer:
		return "MalformedContainer"
	case OutOfResource:
		return "OutOfResource"
	case InvalidReference:
		return "InvalidReference"
	case ScriptError:
		return "ScriptError"
	case BackendSurfaceLost:
		return "BackendSurfaceLost"
	case DirectiveMisuse:
		return "DirectiveMisuse"
	default:
		return "UnknownKind"
	}
}

// Error pairs a Kind with a wrapped cause so IsKind(err, SomeKind)
// works without string inspection, and Unwrap still reaches the real
// cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("runtime: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("runtime: %s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(op string, kind Kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// IsKind reports whether err (or any error it wraps) carries the given
// Kind, so callers can write runtime.IsKind(err, runtime.ScriptError)
// instead of parsing messages.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
