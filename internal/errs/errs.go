// Package errs defines the error kinds returned by the editorial services.
package errs

import (
	"errors"
	"fmt"
)

type Kind int

const (
	Unknown Kind = iota
	Unauthorized
	NotFound
	ValidationFailed
	Conflict
	Infrastructure
)

func (k Kind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not found"
	case ValidationFailed:
		return "validation failed"
	case Conflict:
		return "conflict"
	case Infrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// Error carries the kind of failure together with the operation that produced it.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func E(op string, kind Kind, message string) *Error {
	return &Error{Op: op, Kind: kind, Message: message}
}

func Wrap(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the kind of the first *Error in the chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
