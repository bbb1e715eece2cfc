// Package apperr classifies domain errors so the HTTP layer can map them
// to a status and a safe static message without leaking internals.
package apperr

import "errors"

// Kind partitions errors by how the caller should be answered.
type Kind string

const (
	// KindValidation marks missing or malformed client input.
	KindValidation Kind = "validation"
	// KindConflict marks a duplicate-email registration attempt.
	KindConflict Kind = "conflict"
	// KindAuth marks bad credentials or a bad/expired reset token. The
	// message is always generic and never distinguishes the cause.
	KindAuth Kind = "auth"
	// KindUnauthorized marks a missing, invalid or expired session token.
	KindUnauthorized Kind = "unauthorized"
	// KindInternal marks store or hashing failures. The wrapped cause is
	// logged server-side only; clients see an opaque message.
	KindInternal Kind = "internal"
)

// Error is a classified domain error.
type Error struct {
	Kind    Kind
	Message string // safe to return to the client
	Err     error  // underlying cause, never surfaced
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error with a client-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a classification and safe message to an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the classification of err. Unclassified errors are
// treated as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-safe message for err. Unclassified errors
// get a fixed opaque message.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		return e.Message
	}
	return "Internal server error"
}
