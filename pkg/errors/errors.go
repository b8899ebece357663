// Package errors provides the coded errors shared by the pondera CLI and the
// HTTP dashboard.
//
// Every failure that reaches a user carries a [Code]. The CLI prints
// [UserMessage]; the server maps the code to a status (INVALID_* and
// UNSUPPORTED to 400, NOT_FOUND to 404, the rest to 500) and returns it in
// the JSON body.
//
// Loading failures (FILE_NOT_FOUND, EMPTY_DATA, MISSING_COLUMN) are terminal:
// nothing can be drawn without a table. An empty filter result is not an
// error at all.
//
//	t, err := weights.Load(ctx, path, opts)
//	if errors.IsLoadFailure(err) {
//	    return err
//	}
//
// Codes survive wrapping with fmt.Errorf("...: %w", err); [Is] and [GetCode]
// look at the outermost *Error in the chain.
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

const (
	// Rejected input: flags, query parameters, calculator scores.
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidMode   Code = "INVALID_MODE"
	ErrCodeInvalidNode   Code = "INVALID_NODE"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"

	// Loading the weighting table.
	ErrCodeFileNotFound  Code = "FILE_NOT_FOUND"
	ErrCodeEmptyData     Code = "EMPTY_DATA"
	ErrCodeMissingColumn Code = "MISSING_COLUMN"

	ErrCodeNotFound Code = "NOT_FOUND"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

// Error is a coded error. Cause is optional.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap returns an Error with cause attached.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether the outermost *Error in err's chain has code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode returns the code of the outermost *Error in err's chain, or "".
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns the message without the code prefix and cause.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// IsLoadFailure reports whether err is one of the terminal data loading failures.
func IsLoadFailure(err error) bool {
	switch GetCode(err) {
	case ErrCodeFileNotFound, ErrCodeEmptyData, ErrCodeMissingColumn:
		return true
	}
	return false
}
