package result

import (
	"fmt"

	"github.com/pkg/errors"
)

// Result holds either a value or an error.
type Result[T any] struct {
	value T
	err   *Error
}

// Ok wraps v.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Fail wraps err. A nil err gives a successful Result holding the zero
// value.
func Fail[T any](err *Error) Result[T] {
	return Result[T]{err: err}
}

// Errorf returns a failed Result whose error is traced at the caller.
func Errorf[T any](code int32, format string, args ...any) Result[T] {
	return Result[T]{err: newError(1, nil, code, fmt.Sprintf(format, args...))}
}

// Wrap turns a (value, error) pair into a Result, tracing a non-nil err at
// the caller.
func Wrap[T any](v T, err error) Result[T] {
	if err == nil {
		return Ok(v)
	}
	var e *Error
	if errors.As(err, &e) {
		e.appendTrace(1)
		return Fail[T](e)
	}
	return Fail[T](newError(1, err, 0, err.Error()))
}

func (r Result[T]) HasError() bool { return r.err != nil }

// Err returns the error, or nil.
func (r Result[T]) Err() *Error { return r.err }

// Try returns the value and error. On error the caller's location is
// appended to the trace, so a caller that forwards the error with Fail
// extends the chain:
//
//	v, err := parse(b).Try()
//	if err != nil {
//		return result.Fail[Node](err)
//	}
func (r Result[T]) Try() (T, *Error) {
	if r.err != nil {
		r.err.appendTrace(1)
	}
	return r.value, r.err
}

// ValueOr returns the value, or def when r failed.
func (r Result[T]) ValueOr(def T) T {
	if r.err != nil {
		return def
	}
	return r.value
}

// Unwrap returns the value and panics with the error when r failed.
func (r Result[T]) Unwrap() T {
	if r.err != nil {
		panic(r.err)
	}
	return r.value
}
