package params

import (
	"errors"
	"fmt"
)

// ParameterError is a missing, unknown or malformed template parameter. It is reported before composition begins
type ParameterError struct {
	Param  string
	Reason string
}

func (e *ParameterError) Error() string {
	if e.Param == "" {
		return "template parameters: " + e.Reason
	}
	return fmt.Sprintf("template parameter '%s': %s", e.Param, e.Reason)
}

func newParameterError(param string, format string, args ...any) *ParameterError {
	return &ParameterError{Param: param, Reason: fmt.Sprintf(format, args...)}
}

func IsParameterError(err error) (*ParameterError, bool) {
	var e *ParameterError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
