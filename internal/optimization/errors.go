package optimization

import (
	"errors"
	"fmt"
)

// Kind classifies an optimization error.
type Kind int

const (
	// KindConfiguration marks invalid construction or run settings.
	// Always fatal and raised before any generation executes.
	KindConfiguration Kind = iota + 1

	// KindShape marks an evaluator input/output dimension mismatch.
	// Fatal, surfaces on the first evaluation.
	KindShape
)

// Error represents an optimization error with context
// that can be wrapped with additional information.
type Error struct {
	// Kind classifies the error.
	Kind Kind
	// Message describes the error that occurred.
	Message string
	// Op is the operation that caused the error.
	Op string
	// Component is the component where the error occurred.
	Component string
	// Err is the underlying error that triggered this one, if any.
	Err error
}

// Error returns the string representation of the error.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var prefix string
	if e.Component != "" && e.Op != "" {
		prefix = fmt.Sprintf("%s: %s", e.Component, e.Op)
	} else if e.Component != "" {
		prefix = e.Component
	} else if e.Op != "" {
		prefix = e.Op
	}

	if e.Err != nil {
		if prefix != "" {
			return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	if prefix != "" {
		return fmt.Sprintf("%s: %s", prefix, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// WithOperation adds operation context to the error.
func (e *Error) WithOperation(op string) *Error {
	e.Op = op
	return e
}

// WithComponent adds component context to the error.
func (e *Error) WithComponent(component string) *Error {
	e.Component = component
	return e
}

// NewConfigError creates a new configuration error with the given message.
func NewConfigError(message string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: message,
	}
}

// NewConfigErrorf creates a new configuration error with formatted message.
func NewConfigErrorf(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewShapeErrorf creates a new shape error with formatted message.
func NewShapeErrorf(format string, args ...interface{}) *Error {
	return &Error{
		Kind:    KindShape,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError wraps an existing error with additional context.
// If err is nil, WrapError returns nil.
func WrapError(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsConfigError reports whether any error in err's chain is a
// configuration error.
func IsConfigError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindConfiguration
}

// IsShapeError reports whether any error in err's chain is a shape error.
func IsShapeError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == KindShape
}
