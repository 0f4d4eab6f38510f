package pred

import (
	"errors"
	"fmt"
)

// CompositionError is structural misuse of the composition rules, detected when the program is composed
type CompositionError struct {
	Program string
	Reason  string
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("composition of '%s' failed: %s", e.Program, e.Reason)
}

func newCompositionError(program string, format string, args ...any) *CompositionError {
	return &CompositionError{Program: program, Reason: fmt.Sprintf(format, args...)}
}

// IsCompositionError checks whether an error is a CompositionError and returns it
func IsCompositionError(err error) (*CompositionError, bool) {
	var e *CompositionError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
