package bookstore

import (
	"errors"
	"fmt"
)

// Code classifies a service rejection.
type Code string

const (
	CodeInvalidISBN       Code = "invalid_isbn"
	CodeDuplicateISBN     Code = "duplicate_isbn"
	CodeUnknownISBN       Code = "unknown_isbn"
	CodeInvalidQuantity   Code = "invalid_quantity"
	CodeInsufficientStock Code = "insufficient_stock"
	CodeInvalidRequest    Code = "invalid_request"
	CodeTransport         Code = "transport"
	CodeInternal          Code = "internal"
)

// Error is returned when the bookstore rejects a request.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bookstore %s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("bookstore %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds a service error with a formatted message.
func Errorf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsServiceError reports whether err carries a bookstore rejection.
func IsServiceError(err error) bool {
	var svcErr *Error
	return errors.As(err, &svcErr)
}

// CodeOf extracts the rejection code, or "" when err is not a service error.
func CodeOf(err error) Code {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Code
	}
	return ""
}
