package store

import (
	"errors"
	"fmt"

	"github.com/funvibe/octbridge/internal/value"
)

// NotFoundError indicates a variable is absent from the store.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("variable not found: %s", e.Name)
}

func NewNotFoundError(name string) *NotFoundError {
	return &NotFoundError{Name: name}
}

// TypeMismatchError indicates a variable exists but holds a different shape
// than the one requested.
type TypeMismatchError struct {
	Name      string
	Found     value.Kind
	Requested value.Kind
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("variable %s is %s, not %s", e.Name, e.Found, e.Requested)
}

func NewTypeMismatchError(name string, found, requested value.Kind) *TypeMismatchError {
	return &TypeMismatchError{Name: name, Found: found, Requested: requested}
}

// IsNotFound reports whether err is or wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsTypeMismatch reports whether err is or wraps a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	var tm *TypeMismatchError
	return errors.As(err, &tm)
}
