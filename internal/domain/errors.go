package domain

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindInvalidInput
	KindConflict
	KindPaymentDeclined
	KindAuthorizationDenied
	KindInvalidStateTransition
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidInput:
		return "invalid_input"
	case KindConflict:
		return "conflict"
	case KindPaymentDeclined:
		return "payment_declined"
	case KindAuthorizationDenied:
		return "authorization_denied"
	case KindInvalidStateTransition:
		return "invalid_state_transition"
	default:
		return "internal"
	}
}

// Error is the typed failure returned by the booking and payment operations.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return newError(KindNotFound, format, args...)
}

func InvalidInput(format string, args ...any) error {
	return newError(KindInvalidInput, format, args...)
}

func Conflict(format string, args ...any) error {
	return newError(KindConflict, format, args...)
}

func PaymentDeclined(format string, args ...any) error {
	return newError(KindPaymentDeclined, format, args...)
}

func AuthorizationDenied(format string, args ...any) error {
	return newError(KindAuthorizationDenied, format, args...)
}

func InvalidStateTransition(format string, args ...any) error {
	return newError(KindInvalidStateTransition, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
