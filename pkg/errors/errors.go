package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeForbidden   ErrorType = "forbidden"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeClient      ErrorType = "client_error"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeFileIO      ErrorType = "file_io"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is a scraper error with type information.
// Network, not found, server and rate limit errors are all NetworkErrors in
// the sense of the pipeline: the unit being fetched is skipped.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s error", e.Type)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	msg += ": " + e.Message
	if e.URL != "" {
		msg += " [" + e.URL + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Network returns a transport level error for url.
func Network(url string, err error) *Error {
	return &Error{Type: ErrorTypeNetwork, Message: "request failed", URL: url, Err: err}
}

// Parse returns a markup error: the expected structure was not found.
func Parse(url, msg string) *Error {
	return &Error{Type: ErrorTypeParsing, Message: msg, URL: url}
}

// FileIO wraps a disk failure for path.
func FileIO(path string, err error) *Error {
	return &Error{Type: ErrorTypeFileIO, Message: "cannot write " + path, Err: err}
}

// FromStatus maps a non-2xx HTTP status to a typed error. It returns nil for 2xx.
func FromStatus(url string, statusCode int) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	e := &Error{
		Message: fmt.Sprintf("unexpected status %d %s", statusCode, http.StatusText(statusCode)),
		Code:    statusCode,
		URL:     url,
	}
	switch {
	case statusCode == http.StatusNotFound || statusCode == http.StatusGone:
		e.Type = ErrorTypeNotFound
	case statusCode == http.StatusTooManyRequests:
		e.Type = ErrorTypeRateLimit
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		e.Type = ErrorTypeForbidden
	case statusCode >= 500:
		e.Type = ErrorTypeServerError
	case statusCode >= 400:
		e.Type = ErrorTypeClient
	default:
		e.Type = ErrorTypeUnknown
	}
	return e
}

// IsType reports whether err (or anything it wraps) is an *Error of type t.
func IsType(err error, t ErrorType) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// TypeOf returns the type of the first *Error in err's chain, or ErrorTypeUnknown.
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	default:
		return false
	}
}
