package synth

import (
	"errors"
	"fmt"
)

var (
	errUndefined = errors.New("undefined value has no literal form")
	errNil       = errors.New("nil value")
)

// Error reports why a call script could not be built. Index is the 1-based
// argument position, or 0 when the function name itself is at fault.
type Error struct {
	Function string
	Index    int
	Reason   string
	Err      error
}

func (e *Error) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("cannot call %s: argument %d: %s", e.Function, e.Index, e.Reason)
	}
	return fmt.Sprintf("cannot call %s: %s", e.Function, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func NewArgumentError(function string, index int, err error) *Error {
	return &Error{Function: function, Index: index, Reason: err.Error(), Err: err}
}

func NewNameError(function, reason string) *Error {
	return &Error{Function: function, Reason: reason}
}

// IsUndefinedArgument reports whether err was caused by an Undefined
// argument, directly or inside a cell.
func IsUndefinedArgument(err error) bool {
	return errors.Is(err, errUndefined)
}
