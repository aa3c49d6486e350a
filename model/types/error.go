package types

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the channel, the host and the batch engines.
// Callers detect conditions with errors.Is.
var (
	ErrValidation          = errors.New("validation error")
	ErrUnresolvedReference = errors.New("unresolved reference")
	ErrNotFound            = errors.New("not found")
	ErrTimeout             = errors.New("timeout")
	ErrConnectionClosed    = errors.New("connection closed")
	ErrExecutionFailure    = errors.New("execution failure")
)

// Wire codes carried by a failed response.
const (
	CodeValidation          = "validation"
	CodeUnresolvedReference = "unresolvedReference"
	CodeNotFound            = "notFound"
	CodeTimeout             = "timeout"
	CodeConnectionClosed    = "connectionClosed"
	CodeExecution           = "execution"
)

var codes = []struct {
	code string
	err  error
}{
	{CodeValidation, ErrValidation},
	{CodeUnresolvedReference, ErrUnresolvedReference},
	{CodeNotFound, ErrNotFound},
	{CodeTimeout, ErrTimeout},
	{CodeConnectionClosed, ErrConnectionClosed},
	{CodeExecution, ErrExecutionFailure},
}

// CodeOf returns the wire code for err, defaulting to CodeExecution.
func CodeOf(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeExecution
}

// ErrorOf rebuilds an error from a wire code and message. The message is kept
// verbatim; the sentinel is attached for errors.Is.
func ErrorOf(code, message string) error {
	for _, c := range codes {
		if c.code == code {
			return &WireError{Code: code, Message: message, sentinel: c.err}
		}
	}
	return &WireError{Code: CodeExecution, Message: message, sentinel: ErrExecutionFailure}
}

// WireError is an error decoded from a failed response.
type WireError struct {
	Code     string
	Message  string
	sentinel error
}

func (e *WireError) Error() string { return e.Message }

func (e *WireError) Unwrap() error { return e.sentinel }

func NewValidationError(format string, args ...interface{}) error {
	return wrap(ErrValidation, format, args...)
}

func NewUnresolvedReferenceError(format string, args ...interface{}) error {
	return wrap(ErrUnresolvedReference, format, args...)
}

func NewNotFoundError(format string, args ...interface{}) error {
	return wrap(ErrNotFound, format, args...)
}

func NewExecutionError(format string, args ...interface{}) error {
	return wrap(ErrExecutionFailure, format, args...)
}

func NewMethodNotFoundError(name string) error {
	return NewNotFoundError("method %v not found", name)
}

func NewInvalidInputError(in interface{}) error {
	return NewValidationError("invalid input %T", in)
}

func NewInvalidOutputError(in interface{}) error {
	return NewValidationError("invalid output %T", in)
}

// AsExecutionFailure classifies an error raised once a batch has started
// applying effects. A validation sentinel is dropped so ErrValidation keeps
// meaning nothing was applied; other conditions stay reachable.
func AsExecutionFailure(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation):
		return fmt.Errorf("%w: %s", ErrExecutionFailure, err.Error())
	case errors.Is(err, ErrExecutionFailure):
		return err
	}
	return fmt.Errorf("%w: %w", ErrExecutionFailure, err)
}

func wrap(sentinel error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))
}
