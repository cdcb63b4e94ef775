package store

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// Kind is one of the stable error kinds enumerated in spec §7. Surfaces
// (SessionBus dispatch, ConfirmationPipeline) switch on Kind, never on
// message text.
type Kind string

const (
	KindInvalidMessage Kind = "InvalidMessage"
	KindUnauthorized   Kind = "Unauthorized"
	KindNotFound       Kind = "NotFound"
	KindNoRate         Kind = "NoRate"
	KindStoreError     Kind = "StoreError"
	KindUpstreamError  Kind = "UpstreamError"
	KindTimeout        Kind = "Timeout"
)

// Error is the typed error every core component returns so that callers
// can recover the Kind without parsing message strings.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.cause
}

// New builds an Error of the given kind with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a StoreError (or any other kind) wrapping cause, retaining a
// stack trace via go-errors/errors the way the teacher's
// routing/ann_validation.go reaches for go-errors instead of fmt.Errorf
// when the failure crosses a trust boundary.
func Wrap(kind Kind, message string, cause error) *Error {
	if cause == nil {
		return New(kind, message)
	}
	return &Error{Kind: kind, Message: message, cause: goerrors.Wrap(cause, 1)}
}

// StoreErrorf wraps a store I/O or deserialization failure.
func StoreErrorf(format string, args ...interface{}) *Error {
	msg := fmt.Sprintf(format, args...)
	return &Error{
		Kind:    KindStoreError,
		Message: msg,
		cause:   goerrors.New(msg),
	}
}

// KindOf extracts the Kind from err if it is (or wraps) a *Error, defaulting
// to KindStoreError for unrecognized errors crossing the store boundary.
func KindOf(err error) Kind {
	var e *Error
	if ok := As(err, &e); ok {
		return e.Kind
	}
	return KindStoreError
}

// As is a tiny local alias so this file does not need a second stdlib
// errors import purely for errors.As.
func As(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
