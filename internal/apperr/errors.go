package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an application error so transport layers can map it to a
// wire status without inspecting message text.
type Kind int

const (
	// Unauthenticated means no actor identity was present where one is required.
	Unauthenticated Kind = iota + 1
	// Unauthorized means the actor is known but does not own the resource.
	Unauthorized
	// NotFound means a referenced entity does not exist.
	NotFound
	// InvalidArgument means the input was malformed (bad cursor, bad direction).
	InvalidArgument
	// Conflict means a transaction serialization failure or uniqueness clash;
	// callers may retry.
	Conflict
	// StoreUnavailable means the persistence layer could not be reached.
	StoreUnavailable
)

// String returns the canonical name for the kind.
func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Unauthorized:
		return "unauthorized"
	case NotFound:
		return "not_found"
	case InvalidArgument:
		return "invalid_argument"
	case Conflict:
		return "conflict"
	case StoreUnavailable:
		return "store_unavailable"
	default:
		return "unknown"
	}
}

// Error is a typed application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New creates a new application error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates a new application error with a formatted message.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying error for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the Kind from an error chain. Errors that carry no kind
// are treated as StoreUnavailable, the catch-all for unexpected store
// failures.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return StoreUnavailable
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
