// Package apierr defines the errors the admin API reports to clients and
// how each one maps to an HTTP status and JSON body.
//
// Services return these errors; endpoints render them with Status and
// Body. Any other error is reported as an internal server error so that
// storage details never reach the client.
package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

// Kind names the class of an API error. The name is part of the response
// body and is what clients switch on.
type Kind string

const (
	InvalidOperation       Kind = "InvalidOperationError"
	BadData                Kind = "BadDataError"
	NotFound               Kind = "NotFoundError"
	NameExists             Kind = "NameExistsError"
	NoAccess               Kind = "NoAccessError"
	AuthenticationRequired Kind = "AuthenticationRequired"
	PasswordMismatch       Kind = "PasswordMismatch"
	Internal               Kind = "InternalError"
)

var statusByKind = map[Kind]int{
	InvalidOperation:       http.StatusForbidden,
	BadData:                http.StatusBadRequest,
	NotFound:               http.StatusNotFound,
	NameExists:             http.StatusConflict,
	NoAccess:               http.StatusForbidden,
	AuthenticationRequired: http.StatusUnauthorized,
	PasswordMismatch:       http.StatusUnauthorized,
	Internal:               http.StatusInternalServerError,
}

// Detail describes one problem with a request, usually a field.
type Detail struct {
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
	Path        string `json:"path,omitempty"`
}

// Error is an error that is safe to show to API clients.
type Error struct {
	Kind    Kind
	Message string
	Details []Detail
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches errors of the same kind, so errors.Is(err, &Error{Kind: NotFound})
// works regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches details and returns the error.
func (e *Error) WithDetails(details ...Detail) *Error {
	e.Details = append(e.Details, details...)
	return e
}

func NewInvalidOperation(format string, args ...interface{}) *Error {
	return New(InvalidOperation, format, args...)
}

func NewBadData(format string, args ...interface{}) *Error {
	return New(BadData, format, args...)
}

func NewNotFound(format string, args ...interface{}) *Error {
	return New(NotFound, format, args...)
}

func NewNameExists(format string, args ...interface{}) *Error {
	return New(NameExists, format, args...)
}

func NewNoAccess(format string, args ...interface{}) *Error {
	return New(NoAccess, format, args...)
}

// IsKind reports whether err is an API error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// Status returns the HTTP status code for err.
func Status(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if code, ok := statusByKind[apiErr.Kind]; ok {
			return code
		}
	}
	return http.StatusInternalServerError
}

// Response is the JSON body written for an error.
type Response struct {
	ID      string   `json:"id"`
	Name    Kind     `json:"name"`
	Message string   `json:"message"`
	Details []Detail `json:"details,omitempty"`
}

// Body builds the response body for err. Errors that are not API errors
// get a generic message.
func Body(err error) Response {
	resp := Response{ID: uuid.NewString()}

	var apiErr *Error
	if !errors.As(err, &apiErr) {
		resp.Name = Internal
		resp.Message = "Unexpected error occurred. Check the server logs for details."
		return resp
	}

	resp.Name = apiErr.Kind
	resp.Message = apiErr.Message
	resp.Details = apiErr.Details
	if len(resp.Details) == 0 && apiErr.Kind != Internal {
		resp.Details = []Detail{{Message: apiErr.Message}}
	}
	return resp
}
