package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInvalid           ErrorCode = "INVALID"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden         ErrorCode = "FORBIDDEN"
	ErrCodeInvalidTransition ErrorCode = "INVALID_TRANSITION"
	ErrCodeLocationRejected  ErrorCode = "LOCATION_REJECTED"
	ErrCodeAlreadyDeleted    ErrorCode = "ALREADY_DELETED"
	ErrCodeProvider          ErrorCode = "PROVIDER_ERROR"
	ErrCodeInternal          ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTaskNotFound     = NewError(ErrCodeNotFound, "task not found")
	ErrLocationNotFound = NewError(ErrCodeNotFound, "location not found")
	ErrCustomerNotFound = NewError(ErrCodeNotFound, "customer not found")
	ErrSessionNotFound  = NewError(ErrCodeNotFound, "session not found")
	ErrIdentityNotFound = NewError(ErrCodeNotFound, "identity not found")
	ErrUnauthorized     = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload   = NewError(ErrCodeInvalid, "invalid payload")
)

// NewInvalidTransition reports an illegal lifecycle edge, naming both the
// current and the requested state so the client can explain the conflict.
func NewInvalidTransition(from, to TaskStatus) *Error {
	return NewError(ErrCodeInvalidTransition, fmt.Sprintf("cannot transition task from %s to %s", from, to))
}

// NewLocationRejected reports a check-in attempt outside the allowed
// radius. Rejection is an expected outcome, not a system fault; the
// measured distance lets the client show "you are Xm away".
func NewLocationRejected(distanceMeters, allowedMeters float64) *Error {
	return NewError(ErrCodeLocationRejected,
		fmt.Sprintf("reported position is %.0fm from the task site (allowed %.0fm)", distanceMeters, allowedMeters))
}

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
