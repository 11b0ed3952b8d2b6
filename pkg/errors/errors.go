package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
)

// Attendance clock errors.
var (
	ErrAlreadyClockedIn  = New("ALREADY_CLOCKED_IN", http.StatusConflict, "already clocked in for today")
	ErrDayClosed         = New("DAY_CLOSED", http.StatusConflict, "cannot clock in on a day marked absent")
	ErrNoClockIn         = New("NO_CLOCK_IN", http.StatusBadRequest, "no clock-in found for today")
	ErrStatusMismatch    = New("STATUS_MISMATCH", http.StatusConflict, "attendance status does not allow clock-out")
	ErrAlreadyClockedOut = New("ALREADY_CLOCKED_OUT", http.StatusConflict, "already clocked out for today")
	ErrInvalidInterval   = New("INVALID_INTERVAL", http.StatusBadRequest, "logout time must be after login time")
)

// Report query errors.
var (
	ErrInvalidPeriod = New("INVALID_PERIOD", http.StatusBadRequest, "invalid or missing period parameter")
	ErrInvalidDate   = New("INVALID_DATE", http.StatusBadRequest, "invalid date format")
)

// Spreadsheet ingestion errors.
var (
	ErrInvalidFile    = New("INVALID_FILE", http.StatusBadRequest, "unable to read spreadsheet")
	ErrMissingColumns = New("MISSING_COLUMNS", http.StatusBadRequest, "missing required columns")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// Is reports whether err carries the same code as target.
func Is(err error, target *Error) bool {
	if err == nil || target == nil {
		return false
	}
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == target.Code
}
