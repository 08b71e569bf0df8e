package core

import (
	"fmt"
	"runtime/debug"
)

// PanicError carries a recovered panic value and the stack it was raised on
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is an error
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// Recover turns a panic of the calling function into a *PanicError in *errp
// Must be deferred directly: defer core.Recover(&err)
func Recover(errp *error) {
	if r := recover(); r != nil {
		*errp = &PanicError{Value: r, Stack: debug.Stack()}
	}
}

// Guard runs fn and returns its panic, if any, as an error
func Guard(fn func()) (err error) {
	defer Recover(&err)
	fn()
	return nil
}
