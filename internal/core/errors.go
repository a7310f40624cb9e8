package core

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers that need to map it to a status.
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unexpected"
	}
}

// Error is the domain error. Msg is safe to show to clients; Err is the
// underlying cause, if any, and is never shown.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...any) error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

// Unexpected wraps an infrastructure failure. msg is what the client sees.
func Unexpected(msg string, err error) error {
	return &Error{Kind: KindUnexpected, Msg: msg, Err: err}
}

// KindOf reports the kind of the first *Error in err's chain.
// Errors outside the taxonomy are unexpected.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnexpected
}

// Message returns the client-facing message, or fallback when err carries
// none or is unexpected.
func Message(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindUnexpected && e.Msg != "" {
		return e.Msg
	}
	return fallback
}

func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
