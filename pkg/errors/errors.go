package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies failures raised by data-access operations.
type Kind string

const (
	// KindBackend marks a failure reported by the database itself.
	KindBackend Kind = "BACKEND"
	// KindIntegrity marks a row or payload missing a field it must carry.
	KindIntegrity Kind = "INTEGRITY"
	// KindEmptyInsert marks an insert that succeeded without returning a row.
	KindEmptyInsert Kind = "EMPTY_INSERT"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Kind    Kind   `json:"kind,omitempty"`
	Op      string `json:"-"`
	Context string `json:"-"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrNotFound     = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrValidation   = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")

	ErrBackend     = &Error{Code: "BACKEND_ERROR", Status: http.StatusInternalServerError, Message: "database operation failed", Kind: KindBackend}
	ErrIntegrity   = &Error{Code: "INTEGRITY_ERROR", Status: http.StatusInternalServerError, Message: "record is missing required data", Kind: KindIntegrity}
	ErrEmptyInsert = &Error{Code: "EMPTY_INSERT", Status: http.StatusInternalServerError, Message: "insert returned no data", Kind: KindEmptyInsert}
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Integrity reports a required field that is absent on a row or payload.
func Integrity(field string) *Error {
	return Clone(ErrIntegrity, fmt.Sprintf("missing required field %q", field))
}

// EmptyInsert reports an insert that executed but produced no row.
func EmptyInsert(table string) *Error {
	return Clone(ErrEmptyInsert, fmt.Sprintf("insert into %s returned no data", table))
}

// Normalize wraps a failure raised while running op against context into the
// single operation error shape. Errors that already carry a kind keep it;
// everything else is treated as a backend failure.
func Normalize(op, context string, err error) *Error {
	if err == nil {
		return nil
	}
	template := ErrBackend
	var tagged *Error
	if errors.As(err, &tagged) && tagged.Kind != "" {
		template = tagged
	}
	return &Error{
		Code:    template.Code,
		Status:  template.Status,
		Kind:    template.Kind,
		Op:      op,
		Context: context,
		Message: fmt.Sprintf("failed to %s %s", op, strings.TrimSpace(context)),
		Err:     err,
	}
}

// KindOf reports the kind carried by err, or "" when it has none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
