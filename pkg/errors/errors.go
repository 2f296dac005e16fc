package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeInput       ErrorType = "input"
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeSchema      ErrorType = "schema"
	ErrorTypeStorage     ErrorType = "storage"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error is the typed error shared by every package in the module.
// Path is set for file related errors, Code for HTTP status related ones.
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	Path    string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Path != "" {
		msg = fmt.Sprintf("%s: %s", e.Path, msg)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, msg)
	}
	return fmt.Sprintf("%s error: %s", e.Type, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewInputError builds an input error for a missing, unreadable or malformed file
func NewInputError(path, message string, err error) *Error {
	return &Error{Type: ErrorTypeInput, Message: message, Path: path, Err: err}
}

// NewStorageError builds an error for a failed snapshot write
func NewStorageError(path, message string, err error) *Error {
	return &Error{Type: ErrorTypeStorage, Message: message, Path: path, Err: err}
}

// New builds an upstream error carrying the HTTP status code (0 when none was received)
func New(errorType ErrorType, code int, message string) *Error {
	return &Error{Type: errorType, Message: message, Code: code}
}

// TypeOf returns the type of the first *Error in err's chain, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// Is reports whether err carries an *Error of the given type
func Is(err error, errorType ErrorType) bool {
	var e *Error
	return errors.As(err, &e) && e.Type == errorType
}

// IsUpstream reports whether err came from talking to the remote API
func IsUpstream(err error) bool {
	switch TypeOf(err) {
	case ErrorTypeNetwork, ErrorTypeAuth, ErrorTypeRateLimit,
		ErrorTypeServerError, ErrorTypeParsing, ErrorTypeSchema:
		return true
	default:
		return false
	}
}

// Hint returns a short operator-facing suggestion for err, or "" when there is none.
// None of the hints suggest retrying automatically.
func Hint(err error) string {
	switch TypeOf(err) {
	case ErrorTypeAuth, ErrorTypeParsing:
		return "the captured request has probably expired; capture a fresh one and run again"
	case ErrorTypeRateLimit:
		return "the account is being rate limited; wait before running again"
	case ErrorTypeSchema:
		return "the endpoint returned an unexpected response shape"
	case ErrorTypeNetwork:
		return "check the network connection and the host in the request file"
	default:
		return ""
	}
}

// StatusType maps a non-success HTTP status code onto an error type
func StatusType(statusCode int) ErrorType {
	switch {
	case statusCode == 401 || statusCode == 403:
		return ErrorTypeAuth
	case statusCode == 429:
		return ErrorTypeRateLimit
	case statusCode >= 500:
		return ErrorTypeServerError
	default:
		return ErrorTypeUnknown
	}
}
