package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidID      = "invalid_id"
	CodeInvalidRequest = "invalid_request"
	CodeInvalidMood    = "invalid_mood"
	CodeTextRequired   = "text_required"
	CodeNotFound       = "not_found"
	CodeUnauthorized   = "unauthorized"
	CodeStorage        = "storage_error"
	CodeTooLarge       = "payload_too_large"
)

// Error carries the HTTP status and machine code a handler should respond with.
// Err is the client-facing reason; Cause is logged only.
type Error struct {
	Status int
	Code   string
	Err    error
	Cause  error
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
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return e.Err
}

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code, msg string) *Error {
	return New(http.StatusBadRequest, code, errors.New(msg))
}

func TooLarge(msg string) *Error {
	return New(http.StatusRequestEntityTooLarge, CodeTooLarge, errors.New(msg))
}

func NotFound(msg string) *Error {
	return New(http.StatusNotFound, CodeNotFound, errors.New(msg))
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, errors.New(msg))
}

// Storage hides cause behind a generic message.
func Storage(msg string, cause error) *Error {
	return &Error{
		Status: http.StatusInternalServerError,
		Code:   CodeStorage,
		Err:    errors.New(msg),
		Cause:  cause,
	}
}

// As unwraps err into an *Error; anything else becomes a generic 500.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Storage("internal server error", err)
}
