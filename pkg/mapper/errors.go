package mapper

import (
	"errors"
	"fmt"
)

// Code identifies the failure behind a MappingError.
type Code int

const (
	CodeUndefinedProperty Code = iota + 1
	CodeNoAccessibleSetter
	CodeNullNotAllowed
	CodeEmptyType
	CodeArrayTypeMismatch
	CodeObjectTypeMismatch
	CodeMissingRequiredProperty
	CodeConstructionFailure
	CodeAssignmentFailure
)

var (
	ErrUndefinedProperty       = errors.New("undefined property")
	ErrNoAccessibleSetter      = errors.New("no accessible setter")
	ErrNullNotAllowed          = errors.New("null not allowed")
	ErrEmptyType               = errors.New("empty declared type")
	ErrArrayTypeMismatch       = errors.New("array expected")
	ErrObjectTypeMismatch      = errors.New("object expected")
	ErrMissingRequiredProperty = errors.New("missing required property")
	ErrConstructionFailure     = errors.New("construction failure")
	ErrAssignmentFailure       = errors.New("assignment failure")

	ErrInvalidArgument = errors.New("invalid argument")
)

func (c Code) sentinel() error {
	switch c {
	case CodeUndefinedProperty:
		return ErrUndefinedProperty
	case CodeNoAccessibleSetter:
		return ErrNoAccessibleSetter
	case CodeNullNotAllowed:
		return ErrNullNotAllowed
	case CodeEmptyType:
		return ErrEmptyType
	case CodeArrayTypeMismatch:
		return ErrArrayTypeMismatch
	case CodeObjectTypeMismatch:
		return ErrObjectTypeMismatch
	case CodeMissingRequiredProperty:
		return ErrMissingRequiredProperty
	case CodeConstructionFailure:
		return ErrConstructionFailure
	case CodeAssignmentFailure:
		return ErrAssignmentFailure
	}
	return nil
}

func (c Code) String() string {
	if err := c.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("code(%d)", int(c))
}

// MappingError is returned for every failure detected while mapping.
type MappingError struct {
	Code     Code
	Property string
	Class    string
	Message  string
	Err      error
}

func (e *MappingError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap exposes both the sentinel of the code and the underlying cause, so
// errors.Is(err, ErrNullNotAllowed) works alongside errors.As on the cause.
func (e *MappingError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Code.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newMappingError(code Code, property, class, format string, args ...any) *MappingError {
	return &MappingError{
		Code:     code,
		Property: property,
		Class:    class,
		Message:  fmt.Sprintf(format, args...),
	}
}

// ArgumentError reports a caller contract violation detected before mapping starts.
type ArgumentError struct {
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

func (e *ArgumentError) Unwrap() error {
	return ErrInvalidArgument
}
