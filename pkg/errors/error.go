package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPath        = errors.New("invalid path")
	ErrKeyNotFound        = errors.New("key not found")
	ErrUnsupportedOperand = errors.New("unsupported operand")
	ErrPersistence        = errors.New("persistence failure")
	ErrInconsistentRecord = errors.New("inconsistent record")
)

// Error carries one of the error kinds above together with an optional cause.
// Both the kind and the cause can be matched with errors.Is and errors.As.
type Error struct {
	Kind  error
	Text  string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("coda: %v: %s: %v", e.Kind, e.Text, e.Cause)
	}
	return fmt.Sprintf("coda: %v: %s", e.Kind, e.Text)
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func newError(kind, err error, format string, args ...any) error {
	return &Error{
		Kind:  kind,
		Text:  fmt.Sprintf(format, args...),
		Cause: err,
	}
}
