package stage

import (
	"errors"
	"fmt"
)

// ErrSkip tells the Runner an item needed no work.
var ErrSkip = errors.New("item skipped")

// Skip returns an ErrSkip carrying reason.
func Skip(reason string) error {
	return fmt.Errorf("%w: %s", ErrSkip, reason)
}

type systemicError struct{ err error }

func (e systemicError) Error() string { return e.err.Error() }
func (e systemicError) Unwrap() error { return e.err }

// Systemic marks err as a failure that should abort the batch instead of
// being recorded against a single item.
func Systemic(err error) error {
	if err == nil {
		return nil
	}
	return systemicError{err: err}
}

// IsSystemic reports whether err was marked with Systemic.
func IsSystemic(err error) bool {
	var target systemicError
	return errors.As(err, &target)
}
