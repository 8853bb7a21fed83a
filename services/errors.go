package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures so the HTTP layer can pick a status code.
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInsufficientStock
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// AppError is the error type every service returns. Message is safe to show to clients,
// Err is the underlying cause and is only exposed outside production.
type AppError struct {
	Kind      ErrorKind
	Message   string
	ProductID string
	Err       error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

var (
	ErrInvalidCredentials = &AppError{Kind: KindUnauthorized, Message: "Invalid email or password"}
	ErrDuplicateEmail     = &AppError{Kind: KindConflict, Message: "User already exists"}
	ErrNotAuthorized      = &AppError{Kind: KindUnauthorized, Message: "Not authorized, token failed"}
)

func validationError(msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg}
}

func forbidden(msg string) *AppError {
	return &AppError{Kind: KindForbidden, Message: msg}
}

func notFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func internal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// KindOf returns the kind of err, KindInternal for anything that is not an AppError.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
