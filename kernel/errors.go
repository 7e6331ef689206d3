package kernel

import "github.com/pkg/errors"

// Error taxonomy (spec.md §7). Every failure propagates synchronously through
// Go's ordinary error mechanism; nothing in this package swallows an error.
// Callers should errors.Is against the sentinels below and use
// github.com/pkg/errors.Wrapf-style helpers (WrapArithmetic etc.) to attach
// call-site context without losing the sentinel for errors.Is/As.
var (
	ErrArithmetic     = errors.New("kernel: arithmetic error")
	ErrDomain         = errors.New("kernel: domain error")
	ErrRange          = errors.New("kernel: range error")
	ErrInvalidArg     = errors.New("kernel: invalid argument")
	ErrRuntime        = errors.New("kernel: runtime error")
	ErrRecursionLimit = errors.New("kernel: recursion limit exceeded")
	ErrSingular       = errors.New("kernel: singular matrix")
	ErrUnarchive      = errors.New("kernel: unarchive failure")
)

func wrap(sentinel error, format string, args ...interface{}) error {
	return errors.Wrapf(sentinel, format, args...)
}

// WrapArithmetic wraps ErrArithmetic with call-site context, e.g. division
// by an exact zero or an integer root of a negative real.
func WrapArithmetic(format string, args ...interface{}) error {
	return wrap(ErrArithmetic, format, args...)
}

// WrapDomain wraps ErrDomain, e.g. a polynomial operation applied to a
// non-polynomial argument.
func WrapDomain(format string, args ...interface{}) error {
	return wrap(ErrDomain, format, args...)
}

// WrapRange wraps ErrRange, e.g. Op(i) called with i out of bounds.
func WrapRange(format string, args ...interface{}) error {
	return wrap(ErrRange, format, args...)
}

// WrapInvalidArg wraps ErrInvalidArg, e.g. mismatched substitution lists.
func WrapInvalidArg(format string, args ...interface{}) error {
	return wrap(ErrInvalidArg, format, args...)
}

// WrapRuntime wraps ErrRuntime for runtime failures that have no more
// specific sentinel (recursion-limit and unarchive failures use
// ErrRecursionLimit and ErrUnarchive).
func WrapRuntime(format string, args ...interface{}) error {
	return wrap(ErrRuntime, format, args...)
}
