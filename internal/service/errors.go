package service

import (
	"errors"
	"fmt"

	"shareit/internal/database"
)

// Kind classifies a service failure for transport-level translation.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindInvalid
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalid:
		return "invalid"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) *Error {
	return &Error{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err; anything that is not a service Error is internal.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// repoErr wraps a repository failure, turning ErrNotFound into a not-found
// error with msg and ErrDuplicate into a conflict.
func repoErr(err error, msg string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, database.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: msg, Err: err}
	case errors.Is(err, database.ErrDuplicate):
		return &Error{Kind: KindConflict, Message: err.Error(), Err: err}
	default:
		return err
	}
}
