package applejwt

import (
	"errors"
	"fmt"
)

// ErrorCode represents applejwt error categories.
type ErrorCode string

const (
	ErrCodeInvalidConfig    ErrorCode = "invalid_config"
	ErrCodeClockUnavailable ErrorCode = "clock_unavailable"
	ErrCodeKeyUnavailable   ErrorCode = "key_unavailable"
	ErrCodeInvalidKey       ErrorCode = "invalid_key"
	ErrCodeSigningFailed    ErrorCode = "signing_failed"
	ErrCodeInvalidToken     ErrorCode = "invalid_token"
	ErrCodeExpired          ErrorCode = "token_expired"
	ErrCodeNotYetValid      ErrorCode = "token_not_yet_valid"
	ErrCodeInvalidIssuer    ErrorCode = "invalid_issuer"
	ErrCodeInvalidAudience  ErrorCode = "invalid_audience"
	ErrCodeInvalidSubject   ErrorCode = "invalid_subject"
	ErrCodeInternal         ErrorCode = "internal_error"
)

var errorMessages = map[ErrorCode]string{
	ErrCodeInvalidConfig:    "Invalid configuration",
	ErrCodeClockUnavailable: "Clock unavailable",
	ErrCodeKeyUnavailable:   "Private key unavailable",
	ErrCodeInvalidKey:       "Invalid private key",
	ErrCodeSigningFailed:    "Signing failed",
	ErrCodeInvalidToken:     "Invalid token",
	ErrCodeExpired:          "Token expired",
	ErrCodeNotYetValid:      "Token not yet valid",
	ErrCodeInvalidIssuer:    "Invalid issuer",
	ErrCodeInvalidAudience:  "Invalid audience",
	ErrCodeInvalidSubject:   "Invalid subject",
	ErrCodeInternal:         "Internal error",
}

// Error wraps applejwt errors with a stable code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = string(e.Code)
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func newError(code ErrorCode, err error) error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = string(code)
	}
	return &Error{Code: code, Message: msg, Err: err}
}
