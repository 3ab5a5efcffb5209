// Package apperror defines the error taxonomy shared by services and the
// HTTP boundary.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping.
type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeStateConflict   Code = "STATE_CONFLICT"
	CodeInternal        Code = "INTERNAL_ERROR"
)

type metadata struct {
	status        int
	publicMessage string
	exposeMessage bool
}

var metadataByCode = map[Code]metadata{
	CodeValidation:      {status: http.StatusBadRequest, publicMessage: "Validation failed", exposeMessage: true},
	CodeUnauthenticated: {status: http.StatusUnauthorized, publicMessage: "Authentication required", exposeMessage: true},
	CodeForbidden:       {status: http.StatusForbidden, publicMessage: "Access denied", exposeMessage: true},
	CodeNotFound:        {status: http.StatusNotFound, publicMessage: "Resource not found", exposeMessage: true},
	CodeConflict:        {status: http.StatusConflict, publicMessage: "Conflict detected", exposeMessage: true},
	CodeStateConflict:   {status: http.StatusConflict, publicMessage: "State transition not allowed", exposeMessage: true},
	CodeInternal:        {status: http.StatusInternalServerError, publicMessage: "Internal server error", exposeMessage: false},
}

// HTTPStatus returns the response status for code. Unknown codes map to 500.
func HTTPStatus(code Code) int {
	if meta, ok := metadataByCode[code]; ok {
		return meta.status
	}
	return http.StatusInternalServerError
}

// Error is a classified application error.
type Error struct {
	code    Code
	message string
	fields  map[string]string
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{code: code, message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under code. A nil err behaves like New.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

func Validation(message string) *Error      { return New(CodeValidation, message) }
func NotFound(message string) *Error        { return New(CodeNotFound, message) }
func Forbidden(message string) *Error       { return New(CodeForbidden, message) }
func Unauthenticated(message string) *Error { return New(CodeUnauthenticated, message) }
func Conflict(message string) *Error        { return New(CodeConflict, message) }
func StateConflict(message string) *Error   { return New(CodeStateConflict, message) }

// Internal wraps an unexpected failure.
func Internal(err error, message string) *Error {
	return Wrap(CodeInternal, err, message)
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

// PublicMessage is the message safe to show to API clients.
func (e *Error) PublicMessage() string {
	meta, ok := metadataByCode[e.Code()]
	if !ok {
		meta = metadataByCode[CodeInternal]
	}
	if meta.exposeMessage && e.Message() != "" {
		return e.Message()
	}
	return meta.publicMessage
}

// Fields returns per-field validation messages, if any.
func (e *Error) Fields() map[string]string {
	if e == nil {
		return nil
	}
	return e.fields
}

func (e *Error) WithFields(fields map[string]string) *Error {
	if e == nil {
		return nil
	}
	e.fields = fields
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// As extracts an *Error from err's chain.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	return nil
}

// CodeOf reports the code of err, or CodeInternal for unclassified errors.
func CodeOf(err error) Code {
	if typed := As(err); typed != nil {
		return typed.Code()
	}
	return CodeInternal
}

// Is reports whether err carries code.
func Is(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}
