package emit

import (
	"errors"
	"fmt"
)

// EmitterError is returned when the target environment rejects the composed program. The cause is kept verbatim
type EmitterError struct {
	Backend string
	Err     error
}

func (e *EmitterError) Error() string {
	return fmt.Sprintf("emitter '%s': %v", e.Backend, e.Err)
}

func (e *EmitterError) Unwrap() error {
	return e.Err
}

func newEmitterError(backend string, err error) *EmitterError {
	return &EmitterError{Backend: backend, Err: err}
}

func IsEmitterError(err error) (*EmitterError, bool) {
	var e *EmitterError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
