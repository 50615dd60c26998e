package coordinator

import (
	"errors"
	"fmt"
)

// CallbackError describes a caller-supplied callback that panicked during
// dispatch. The panic is recovered and logged; dispatch of later events and
// sibling callbacks continues.
type CallbackError struct {
	// Callback names the dispatch site, e.g. "marker click".
	Callback string

	// Value is the recovered panic value.
	Value any
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	if err, ok := e.Value.(error); ok {
		return fmt.Sprintf("callback %s panicked: %v", e.Callback, err)
	}
	return fmt.Sprintf("callback %s panicked: %v", e.Callback, e.Value)
}

// Unwrap exposes a recovered error value.
func (e *CallbackError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsCallbackError returns true if err is or wraps a *CallbackError.
func IsCallbackError(err error) bool {
	var ce *CallbackError
	return errors.As(err, &ce)
}

// ResubmitError reports that re-submitting one annotation kind after a style
// swap failed. The other kinds are unaffected.
type ResubmitError struct {
	Kind Kind
	Err  error
}

func (e *ResubmitError) Error() string {
	return fmt.Sprintf("resubmit %s annotations: %v", e.Kind, e.Err)
}

func (e *ResubmitError) Unwrap() error {
	return e.Err
}
