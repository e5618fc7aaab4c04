package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrNotPersisted = errors.New("record is not persisted")

	ErrUnknownEmployee   = errors.New("unknown employee")
	ErrUnknownDepartment = errors.New("unknown department")
)

// ValidationError reports a rejected field value.
// errors.Is matches ErrValidation and, for reference checks, the unknown-entity sentinel.
type ValidationError struct {
	Field string
	Msg   string
	cause error
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Msg }

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || (e.cause != nil && target == e.cause)
}

func (e *ValidationError) Unwrap() error { return e.cause }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}
