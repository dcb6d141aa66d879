package service

import (
	"errors"
	"fmt"
)

// ErrRule marks business-rule failures: date out of window, operating
// hours violations, quota overruns, slot conflicts, check-in timing
// rejections. Handlers map these to HTTP 409 with the error text as the
// reason; they are never retried automatically. Everything else coming
// out of the services is an infrastructure failure and maps to a generic
// 500.
var ErrRule = errors.New("reservation rule violated")

type ruleError struct {
	msg string
}

func (e *ruleError) Error() string { return e.msg }

// Is lets errors.Is(err, ErrRule) match every rule violation.
func (e *ruleError) Is(target error) bool { return target == ErrRule }

// rulef builds a business-rule failure with a human-readable reason.
func rulef(format string, args ...any) error {
	return &ruleError{msg: fmt.Sprintf(format, args...)}
}
