package errors

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error so callers can branch without string matching.
type Kind string

const (
	KindAuth         Kind = "AUTH"
	KindValidation   Kind = "VALIDATION"
	KindNetwork      Kind = "NETWORK"
	KindStorage      Kind = "STORAGE"
	KindPayment      Kind = "PAYMENT"
	KindNotFound     Kind = "NOT_FOUND"
	KindForbidden    Kind = "FORBIDDEN"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindConflict     Kind = "CONFLICT"
	KindUnknown      Kind = "UNKNOWN"
)

// defaultUserMessages keeps gateway and store internals out of user-facing text.
var defaultUserMessages = map[Kind]string{
	KindAuth:         "Authentication is required.",
	KindValidation:   "The request is invalid.",
	KindNetwork:      "A network error occurred. Please try again.",
	KindStorage:      "A storage error occurred. Please try again later.",
	KindPayment:      "The payment could not be processed. Please check your payment details and try again.",
	KindNotFound:     "The requested resource was not found.",
	KindForbidden:    "You do not have permission to perform this action.",
	KindUnauthorized: "Please sign in and try again.",
	KindConflict:     "The operation conflicts with the current state.",
	KindUnknown:      "An unexpected error occurred.",
}

// Error is the service-wide error carrier: a machine kind, an internal
// message destined for logs, and a separate user-safe message. Context never
// holds secrets or signatures.
type Error struct {
	Kind        Kind
	Op          string
	Message     string
	UserMessage string
	Time        time.Time
	Context     map[string]any
	Err         error
}

// Error renders the internal view, including the wrapped cause.
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = fmt.Sprintf("%s: %s", e.Op, msg)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap supports errors.Is and errors.As on the cause chain.
func (e *Error) Unwrap() error {
	return e.Err
}

// User returns the user-safe message, falling back to the kind's default.
func (e *Error) User() string {
	if e.UserMessage != "" {
		return e.UserMessage
	}
	if msg, ok := defaultUserMessages[e.Kind]; ok {
		return msg
	}
	return defaultUserMessages[KindUnknown]
}

// WithUser returns a copy carrying the given user-safe message.
func (e *Error) WithUser(msg string) *Error {
	clone := *e
	clone.UserMessage = msg
	return &clone
}

// WithContext returns a copy with an additional context entry.
func (e *Error) WithContext(key string, value any) *Error {
	clone := *e
	clone.Context = make(map[string]any, len(e.Context)+1)
	for k, v := range e.Context {
		clone.Context[k] = v
	}
	clone.Context[key] = value
	return &clone
}

// New builds an Error of the given kind with an internal message.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Time: time.Now()}
}

// Wrap attaches kind and operation context to a lower-level error.
func Wrap(kind Kind, op string, err error, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Time: time.Now(), Err: err}
}

// KindOf extracts the kind from an error chain, defaulting to UNKNOWN.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindUnknown
}

// IsKind reports whether any error in the chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind == kind
	}
	return false
}

// AsError extracts the typed error, wrapping foreign errors as UNKNOWN so the
// HTTP edge never leaks raw internals.
func AsError(err error) *Error {
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return Wrap(KindUnknown, "", err, "unexpected error")
}
