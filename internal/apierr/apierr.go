// Package apierr carries the API error taxonomy: an HTTP status, a stable
// machine-readable code, and the underlying error.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced in the response envelope.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeDuplicateEntry      = "DUPLICATE_ENTRY"
	CodeGraphNotFound       = "GRAPH_NOT_FOUND"
	CodeCourseNotFound      = "COURSE_NOT_FOUND"
	CodeTopicNotFound       = "TOPIC_NOT_FOUND"
	CodeEdgeNotFound        = "EDGE_NOT_FOUND"
	CodeReadonlyGraph       = "READONLY_GRAPH"
	CodeCannotDeleteDefault = "CANNOT_DELETE_DEFAULT"
	CodeDatabase            = "DATABASE_ERROR"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Validation is a 400 with VALIDATION_ERROR.
func Validation(format string, args ...any) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

// NotFound is a 404 with the given *_NOT_FOUND code.
func NotFound(code, format string, args ...any) *Error {
	return New(http.StatusNotFound, code, fmt.Errorf(format, args...))
}

// Duplicate is a 409 with DUPLICATE_ENTRY.
func Duplicate(format string, args ...any) *Error {
	return New(http.StatusConflict, CodeDuplicateEntry, fmt.Errorf(format, args...))
}

// Readonly is a 409 with READONLY_GRAPH.
func Readonly() *Error {
	return New(http.StatusConflict, CodeReadonlyGraph, errors.New("cannot modify read-only graph"))
}

// CannotDeleteDefault is a 409 on attempts to delete the default graph.
func CannotDeleteDefault() *Error {
	return New(http.StatusConflict, CodeCannotDeleteDefault, errors.New("cannot delete default graph"))
}

// Database wraps an internal storage failure as a 500.
func Database(err error) *Error {
	return New(http.StatusInternalServerError, CodeDatabase, err)
}

// From extracts an *Error from err, wrapping unknown errors as Database.
func From(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Database(err)
}
