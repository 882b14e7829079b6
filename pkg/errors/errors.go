// Package errors defines the coded error type shared by the reqtrace
// library, CLI and HTTP API.
//
// Every failure that crosses a package boundary carries a [Code]. Callers
// branch on the code with [Is] instead of matching message text, and the API
// maps it to a status with [HTTPStatus]:
//
//	if errors.IsConstruction(err) {
//		// the graph could not be built; nothing to render
//	}
//
// Construction codes (MALFORMED_PROFILE, DUPLICATE_NODE_ID, DANGLING_EDGE)
// abort a build. RENDER_FAILURE is reported per format and never aborts.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error identifier.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidLayer     Code = "INVALID_LAYER"
	ErrCodeInvalidTable     Code = "INVALID_TABLE"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"
	ErrCodeMalformedProfile Code = "MALFORMED_PROFILE"

	ErrCodeDuplicateNodeID Code = "DUPLICATE_NODE_ID"
	ErrCodeDanglingEdge    Code = "DANGLING_EDGE"

	ErrCodeRenderFailure    Code = "RENDER_FAILURE"
	ErrCodeGenerationFailed Code = "GENERATION_FAILED"

	ErrCodeNotFound    Code = "NOT_FOUND"
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// codeInfo holds the per-code attributes. Codes missing from the table are
// internal errors.
var codeInfo = map[Code]struct {
	status       int
	construction bool
}{
	ErrCodeInvalidInput:     {http.StatusBadRequest, false},
	ErrCodeInvalidFormat:    {http.StatusBadRequest, false},
	ErrCodeInvalidLayer:     {http.StatusBadRequest, false},
	ErrCodeInvalidTable:     {http.StatusBadRequest, false},
	ErrCodeInvalidConfig:    {http.StatusBadRequest, false},
	ErrCodeMalformedProfile: {http.StatusBadRequest, true},
	ErrCodeDuplicateNodeID:  {http.StatusInternalServerError, true},
	ErrCodeDanglingEdge:     {http.StatusInternalServerError, true},
	ErrCodeRenderFailure:    {http.StatusInternalServerError, false},
	ErrCodeGenerationFailed: {http.StatusBadGateway, false},
	ErrCodeNotFound:         {http.StatusNotFound, false},
	ErrCodeNetwork:          {http.StatusBadGateway, false},
	ErrCodeTimeout:          {http.StatusGatewayTimeout, false},
	ErrCodeUnsupported:      {http.StatusNotImplemented, false},
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error that records cause.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	if e := asError(err); e != nil {
		return e.Code
	}
	return ""
}

func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	got := GetCode(err)
	return got != "" && got == code
}

// UserMessage returns the message without the code prefix for an *Error and
// err.Error() otherwise.
func UserMessage(err error) string {
	if e := asError(err); e != nil {
		return e.Message
	}
	return err.Error()
}

// IsConstruction reports whether err stopped a graph from being built.
func IsConstruction(err error) bool {
	return codeInfo[GetCode(err)].construction
}

// HTTPStatus returns the status the API answers with for err.
func HTTPStatus(err error) int {
	if info, ok := codeInfo[GetCode(err)]; ok {
		return info.status
	}
	return http.StatusInternalServerError
}
