// Package apperr defines the error taxonomy shared by services and
// handlers. Every failure surfaced to a client is classified as one of
// the types below; handlers map types to HTTP status codes in exactly
// one place.
package apperr

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	// TypeValidation covers malformed or missing input fields.
	TypeValidation ErrorType = "VALIDATION"
	// TypeAuthentication covers missing, invalid or expired credentials.
	TypeAuthentication ErrorType = "AUTHENTICATION"
	// TypeAuthorization covers role and ownership mismatches.
	TypeAuthorization ErrorType = "AUTHORIZATION"
	// TypeNotFound covers absent referenced entities.
	TypeNotFound ErrorType = "NOT_FOUND"
	// TypeConflict covers duplicate applications and illegal state
	// transitions.
	TypeConflict ErrorType = "CONFLICT"
	// TypeInternal covers unexpected persistence or logic failures.
	TypeInternal ErrorType = "INTERNAL"
)

// Error is a classified error carrying a client-safe message, optional
// per-field complaints and a stack captured at construction.
type Error struct {
	Type    ErrorType
	Message string
	// Fields holds per-field complaints for validation failures.
	Fields []string
	Err    error
	Stack  []byte
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) StackTrace() []byte {
	return e.Stack
}

// New constructs a classified error, capturing a stack from err when it
// carries one and from the call site otherwise.
func New(errType ErrorType, message string, err error) *Error {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &Error{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// Validation constructs a validation error with per-field complaints.
func Validation(message string, fields []string) *Error {
	err := New(TypeValidation, message, nil)
	err.Fields = fields
	return err
}

func Authentication(message string) *Error {
	return New(TypeAuthentication, message, nil)
}

func Authorization(message string) *Error {
	return New(TypeAuthorization, message, nil)
}

func NotFound(message string) *Error {
	return New(TypeNotFound, message, nil)
}

func Conflict(message string) *Error {
	return New(TypeConflict, message, nil)
}

func Internal(message string, err error) *Error {
	return New(TypeInternal, message, err)
}

// As extracts an *Error from err's chain, returning nil when err is
// not classified.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// Is reports whether err is classified as errType.
func Is(err error, errType ErrorType) bool {
	appErr := As(err)
	return appErr != nil && appErr.Type == errType
}
