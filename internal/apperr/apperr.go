// Package apperr defines the error taxonomy shared by the store and its HTTP
// surface. Every failure the store returns carries one of the Codes below.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Code is a stable, client-visible error code.
type Code string

const (
	CodeUnauthorized    Code = "UNAUTHORIZED"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeStorageFailure  Code = "STORAGE_FAILURE"
	CodeCorruptDocument Code = "CORRUPT_DOCUMENT"
)

// Error is a classified failure. Message is safe to show to users; Err holds
// the underlying cause (paths, syscalls) and is never rendered.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Code, so callers can write
// errors.Is(err, apperr.ErrNotFound).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is.
var (
	ErrUnauthorized    = &Error{Code: CodeUnauthorized}
	ErrInvalidInput    = &Error{Code: CodeInvalidInput}
	ErrNotFound        = &Error{Code: CodeNotFound}
	ErrConflict        = &Error{Code: CodeConflict}
	ErrStorageFailure  = &Error{Code: CodeStorageFailure}
	ErrCorruptDocument = &Error{Code: CodeCorruptDocument}
)

func Unauthorized(format string, args ...interface{}) error {
	return &Error{Code: CodeUnauthorized, Message: fmt.Sprintf(format, args...)}
}

func InvalidInput(format string, args ...interface{}) error {
	return &Error{Code: CodeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Storage wraps an I/O failure. msg describes the operation, not the path.
func Storage(msg string, err error) error {
	return &Error{Code: CodeStorageFailure, Message: msg, Err: err}
}

// Corrupt wraps a decode failure of a persisted document.
func Corrupt(msg string, err error) error {
	return &Error{Code: CodeCorruptDocument, Message: msg, Err: err}
}

// CodeOf returns the Code carried by err, or CodeStorageFailure for
// unclassified errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeStorageFailure
}

// MessageOf returns the user-facing message of err. Unclassified errors get a
// generic message so internal details do not leak.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return "internal storage error"
}

// AsStorage reclassifies a CorruptDocument as StorageFailure. Used on the
// catalog and settings paths, where a corrupt file is the server's problem.
func AsStorage(err error) error {
	var e *Error
	if errors.As(err, &e) && e.Code == CodeCorruptDocument {
		return &Error{Code: CodeStorageFailure, Message: e.Message, Err: e.Err}
	}
	return err
}

// HTTPStatus maps a Code to its response status.
func HTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusForbidden
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// FromValidation converts validator output into an InvalidInput error naming
// the offending fields.
func FromValidation(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return InvalidInput("invalid input")
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
	}
	return InvalidInput("invalid fields: %s", strings.Join(fields, ", "))
}
