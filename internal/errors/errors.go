package errors

import "errors"

// Code identifies a structured error type used across the application.
type Code string

const (
	// API error categories. The set is closed: every failure surfaced to the
	// user is classified into exactly one of these.
	CodeNetwork          Code = "NETWORK_ERROR"
	CodeAuth             Code = "AUTH_ERROR"
	CodeValidation       Code = "VALIDATION_ERROR"
	CodeServer           Code = "SERVER_ERROR"
	CodeNotFound         Code = "NOT_FOUND"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeRateLimit        Code = "RATE_LIMIT"
	CodeUnknown          Code = "UNKNOWN_ERROR"
)

// Codes lists every category in a stable order.
var Codes = []Code{
	CodeNetwork,
	CodeAuth,
	CodeValidation,
	CodeServer,
	CodeNotFound,
	CodePermissionDenied,
	CodeRateLimit,
	CodeUnknown,
}

var defaultMessages = map[Code]string{
	CodeNetwork:          "Network error. Please check your internet connection.",
	CodeAuth:             "Your session has expired. Please log in again.",
	CodeValidation:       "Please check your input and try again.",
	CodeServer:           "Server error. Please try again later.",
	CodeNotFound:         "The requested resource was not found.",
	CodePermissionDenied: "You don't have permission to perform this action.",
	CodeRateLimit:        "Too many requests. Please wait a moment and try again.",
	CodeUnknown:          "An unexpected error occurred. Please try again.",
}

// DefaultMessage returns the user-facing fallback text for a code.
func DefaultMessage(code Code) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return defaultMessages[CodeUnknown]
}

// Error represents a structured error with a machine-readable code plus message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Code)
}

// Unwrap returns the wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New wraps an error with a code/message.
func New(code Code, msg string, err error) Error {
	return Error{Code: code, Message: msg, Err: err}
}

// As extracts the first structured error in the chain.
func As(err error) (Error, bool) {
	var structured Error
	if errors.As(err, &structured) {
		return structured, true
	}
	return Error{}, false
}

// CodeOf walks the error chain and returns the first structured code found.
func CodeOf(err error) Code {
	if structured, ok := As(err); ok {
		return structured.Code
	}
	return CodeUnknown
}

// IsCode reports whether the error (or its unwrap chain) matches the provided code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}

// Severity controls how a classified error is presented.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// SeverityOf maps a category to its notification severity.
func SeverityOf(code Code) Severity {
	switch code {
	case CodeAuth, CodeValidation, CodeRateLimit:
		return SeverityWarning
	case CodeNotFound:
		return SeverityInfo
	default:
		return SeverityError
	}
}
