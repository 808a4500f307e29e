// Package domainerrors carries coded errors across layers so transport code can
// translate them into HTTP responses without inspecting messages.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code classifies an error for translation at the transport boundary.
type Code string

const (
	CodeBadRequest       Code = "bad_request"
	CodeNotFound         Code = "not_found"
	CodeMethodNotAllowed Code = "method_not_allowed"
	CodeInternal         Code = "internal_error"

	// CodeConfiguration marks startup configuration that cannot be used,
	// such as a missing blacklist source.
	CodeConfiguration Code = "configuration_error"
	// CodeNotReady marks a request served before the blacklist was loaded.
	CodeNotReady Code = "not_ready"
	// CodeRetrieval marks a failure to fetch the invoice bytes.
	CodeRetrieval Code = "retrieval_error"
	// CodeExtraction marks bytes that could not be read as a PDF.
	CodeExtraction Code = "extraction_error"
)

// Error is a coded error with a message that is safe to show to clients,
// except for CodeInternal.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and client-facing message to an underlying error.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode reports whether any error in err's chain carries code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first coded error in the chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case CodeNotReady:
		return http.StatusServiceUnavailable
	case CodeRetrieval, CodeExtraction, CodeConfiguration, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
