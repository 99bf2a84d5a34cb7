package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-readable class of a domain failure.
type Kind string

const (
	KindValidation            Kind = "validation"
	KindInsufficientInventory Kind = "insufficient_inventory"
	KindInvalidTransition     Kind = "invalid_transition"
	KindCancellationDenied    Kind = "cancellation_denied"
	KindNotFound              Kind = "not_found"
	KindConcurrencyConflict   Kind = "concurrency_conflict"
	KindForbidden             Kind = "forbidden"
	KindInternal              Kind = "internal"
)

// Error is a typed domain error carrying a human-readable reason and
// optional structured details (failing date, fee, deadline, ...).
type Error struct {
	Kind    Kind
	Reason  string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// With attaches a detail to the error and returns it for chaining.
func (e *Error) With(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Payload is the body placed in the "errors" field of an API response.
func (e *Error) Payload() map[string]interface{} {
	payload := map[string]interface{}{
		"kind":   e.Kind,
		"reason": e.Reason,
	}
	for k, v := range e.Details {
		payload[k] = v
	}
	return payload
}

func New(kind Kind, reason string) *Error {
	return &Error{Kind: kind, Reason: reason}
}

func Wrap(kind Kind, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

func Validation(reason string) *Error {
	return New(KindValidation, reason)
}

func NotFound(reason string) *Error {
	return New(KindNotFound, reason)
}

func Forbidden(reason string) *Error {
	return New(KindForbidden, reason)
}

func Internal(reason string, err error) *Error {
	return Wrap(KindInternal, reason, err)
}

// As returns the typed error in err's chain, if any.
func As(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf reports the kind of err; untyped errors are internal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the transport status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindInsufficientInventory, KindInvalidTransition:
		return http.StatusConflict
	case KindCancellationDenied:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConcurrencyConflict:
		return http.StatusServiceUnavailable
	case KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
