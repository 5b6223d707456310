// Package result carries errors with an accumulated stack trace through
// explicit return values.
//
// An *Error records where it was created. Each caller that passes it on with
// Result.Try or Error.AppendTrace adds its own location, so the rendered
// trace reads from the origin outwards.
package result

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/strbuf"
)

// MaxTraces bounds the number of locations an Error keeps.
const MaxTraces = 64

// Trace is one source location.
type Trace struct {
	File     string // base name
	Function string
	Line     int
}

// caller returns the location skip frames above its own caller.
func caller(skip int) (Trace, bool) {
	var pcs [1]uintptr
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return Trace{}, false
	}
	f, _ := runtime.CallersFrames(pcs[:]).Next()
	return Trace{
		File:     filepath.Base(f.File),
		Function: funcName(f.Function),
		Line:     f.Line,
	}, true
}

// funcName strips the package path from a fully qualified function name.
func funcName(name string) string {
	name = name[strings.LastIndex(name, "/")+1:]
	return name[strings.Index(name, ".")+1:]
}

func (t Trace) String() string {
	return fmt.Sprintf("%s:%d in %s()", t.File, t.Line, t.Function)
}

// Error is an error message with an optional numeric code and the
// locations it passed through.
type Error struct {
	Msg    string
	Code   int32
	Traces []Trace
	cause  error
}

func newError(skip int, cause error, code int32, msg string) *Error {
	e := &Error{Msg: msg, Code: code, cause: cause}
	e.appendTrace(skip + 1)
	return e
}

// New returns an Error whose first trace is the caller.
func New(code int32, msg string) *Error {
	return newError(1, nil, code, msg)
}

// Newf is New with a formatted message.
func Newf(code int32, format string, args ...any) *Error {
	return newError(1, nil, code, fmt.Sprintf(format, args...))
}

// From converts err into an Error traced at the caller. It returns nil for a
// nil err and appends a trace when err already is an *Error.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		e.appendTrace(1)
		return e
	}
	return newError(1, err, 0, err.Error())
}

// Assertf returns nil when cond holds, else an Error traced at the caller.
func Assertf(cond bool, code int32, format string, args ...any) *Error {
	if cond {
		return nil
	}
	return newError(1, nil, code, fmt.Sprintf(format, args...))
}

func (e *Error) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s (code %d)", e.Msg, e.Code)
	}
	return e.Msg
}

// Unwrap returns the Go error this one was converted from, if any.
func (e *Error) Unwrap() error { return e.cause }

// AppendTrace records the caller's location. Errors already holding
// MaxTraces locations are left alone.
func (e *Error) AppendTrace() {
	e.appendTrace(1)
}

func (e *Error) appendTrace(skip int) {
	if e == nil || len(e.Traces) >= MaxTraces {
		return
	}
	if t, ok := caller(skip + 1); ok {
		e.Traces = append(e.Traces, t)
	}
}

// Render writes the report String returns into a buffer from a.
func (e *Error) Render(a alloc.Allocator) *strbuf.String {
	s := strbuf.New(a, 256)
	s.AppendFormat("Error:\n  %s", e.Msg)
	if e.Code != 0 {
		s.AppendFormat("\nError Code: %d", e.Code)
	}
	s.AppendString("\n\nStack trace:")
	for _, t := range e.Traces {
		s.AppendFormat("\n  at %s", t)
	}
	return s
}

// String renders the message, the code when set, and every trace, one per
// line.
func (e *Error) String() string {
	return e.Render(alloc.NewHeap()).String()
}
