package util

import (
	"fmt"
	"runtime/debug"
)

// Assertf panics with formatted message if condition is false. Used only for programming errors
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed:: "+format, args...))
	}
}

func AssertNoError(err error, prefix ...string) {
	if err != nil {
		pref := "error: "
		if len(prefix) > 0 {
			pref = prefix[0] + ": "
		}
		panic(pref + err.Error())
	}
}

// CatchPanicOrError calls function and returns error if function returns error or panics
func CatchPanicOrError(f func() error, includeStack ...bool) error {
	var err error
	func() {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			var ok bool
			if err, ok = r.(error); !ok {
				err = fmt.Errorf("%v", r)
			}
			if len(includeStack) > 0 && includeStack[0] {
				err = fmt.Errorf("%w\n%s", err, string(debug.Stack()))
			}
		}()
		err = f()
	}()
	return err
}
