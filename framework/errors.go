package framework

import (
	"errors"
	"fmt"
)

// RuntimeError is an operational failure of the run itself, as opposed to a failed step: the
// browser or report could not be acquired, the suite could not be sequenced, or a failure could
// not be documented.
type RuntimeError struct {
	Op  string
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %s: %v", e.Op, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsRuntimeError checks if the error is or wraps a RuntimeError.
func IsRuntimeError(err error) bool {
	var runtimeErr *RuntimeError
	return err != nil && errors.As(err, &runtimeErr)
}
