// Package strbuf provides String, a growable byte buffer built on list.List
// that always keeps a zero byte after its content so the storage can be
// handed to code expecting NUL-terminated text.
package strbuf

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"unsafe"

	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/list"
	"github.com/pavanmanishd/memkit/view"
)

// String is a byte buffer with one reserved byte past its length. After any
// successful growth that byte is zero. Failed operations leave the String
// unchanged and report false.
type String struct {
	l list.List[byte]
}

// New returns an empty String with room for capacity bytes.
func New(a alloc.Allocator, capacity int) *String {
	s := &String{l: list.Make[byte](a, 0)}
	if capacity >= 0 && capacity < math.MaxInt {
		s.l.Reserve(capacity + 1)
	}
	return s
}

// FromBytes returns a String holding a copy of b.
func FromBytes(a alloc.Allocator, b []byte) *String {
	s := New(a, len(b))
	s.Append(b)
	return s
}

// FromString returns a String holding a copy of str.
func FromString(a alloc.Allocator, str string) *String {
	s := New(a, len(str))
	s.AppendString(str)
	return s
}

// FromFormat returns a String holding fmt.Sprintf(format, args...).
func FromFormat(a alloc.Allocator, format string, args ...any) *String {
	s := New(a, 0)
	s.AppendFormat(format, args...)
	return s
}

func (s *String) Len() int { return s.l.Len() }

// Cap is the number of bytes the String can hold without growing.
func (s *String) Cap() int {
	if c := s.l.Cap(); c > 0 {
		return c - 1
	}
	return 0
}

// Allocator returns the allocator the String grows with.
func (s *String) Allocator() alloc.Allocator { return s.l.Allocator() }

// resize sets the length to n, growing for n+1 bytes first so the
// terminator has a slot.
func (s *String) resize(n int) bool {
	if n < 0 || n == math.MaxInt || !s.l.Resize(n+1) {
		return false
	}
	return s.l.Resize(n)
}

// Resize sets the length to n. Bytes exposed by growth are zero.
func (s *String) Resize(n int) bool {
	return s.resize(n)
}

// extend grows the String by k bytes and returns the new tail.
func (s *String) extend(k int) ([]byte, bool) {
	old := s.l.Len()
	if k > math.MaxInt-1-old || !s.resize(old+k) {
		return nil, false
	}
	return s.l.Data()[old:], true
}

// Append adds b. b may alias the String's own content.
func (s *String) Append(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	tail, ok := s.extend(len(b))
	if ok {
		copy(tail, b)
	}
	return ok
}

// AppendString adds str.
func (s *String) AppendString(str string) bool {
	if len(str) == 0 {
		return true
	}
	tail, ok := s.extend(len(str))
	if ok {
		copy(tail, str)
	}
	return ok
}

// AppendByte adds c.
func (s *String) AppendByte(c byte) bool {
	tail, ok := s.extend(1)
	if ok {
		tail[0] = c
	}
	return ok
}

// AppendView adds the bytes of v.
func (s *String) AppendView(v view.ConstView[byte]) bool {
	if v.Len() == 0 {
		return true
	}
	tail, ok := s.extend(v.Len())
	if ok {
		v.CopyTo(tail)
	}
	return ok
}

// AppendFormat adds fmt.Sprintf(format, args...) without an intermediate
// buffer: the output is measured first, the String grown once, then the
// output written in place. If the second rendering does not match the
// measurement the String is rolled back.
func (s *String) AppendFormat(format string, args ...any) bool {
	n, err := fmt.Fprintf(io.Discard, format, args...)
	if err != nil || n < 0 {
		return false
	}
	if n == 0 {
		return true
	}
	old := s.l.Len()
	tail, ok := s.extend(n)
	if !ok {
		return false
	}
	w := fixedWriter{buf: tail}
	if m, err := fmt.Fprintf(&w, format, args...); err != nil || m != n {
		s.resize(old)
		return false
	}
	return true
}

// fixedWriter writes into a preallocated slice and refuses to overflow it.
type fixedWriter struct {
	buf []byte
	n   int
}

func (w *fixedWriter) Write(p []byte) (int, error) {
	if len(p) > len(w.buf)-w.n {
		return 0, io.ErrShortBuffer
	}
	w.n += copy(w.buf[w.n:], p)
	return len(p), nil
}

// Bytes returns the content. It is invalidated by any growth.
func (s *String) Bytes() []byte { return s.l.Data() }

// CString returns the content followed by its zero terminator, or nil when
// the String has no storage.
func (s *String) CString() []byte {
	n := s.l.Len()
	spare := s.l.Spare()
	if len(spare) == 0 {
		return nil
	}
	start := unsafe.Add(unsafe.Pointer(unsafe.SliceData(spare)), -n)
	return unsafe.Slice((*byte)(start), n+1)
}

// String returns a Go string copy of the content.
func (s *String) String() string { return string(s.l.Data()) }

// Equal reports whether the content is exactly str.
func (s *String) Equal(str string) bool {
	return string(s.l.Data()) == str
}

// EqualView reports whether the content matches v byte for byte.
func (s *String) EqualView(v view.ConstView[byte]) bool {
	return s.l.ConstView().Equal(v)
}

// Find returns the index of the first c, or Len() when absent.
func (s *String) Find(c byte) int {
	return s.l.Find(c)
}

// Index returns the index of the first occurrence of sub, or -1.
func (s *String) Index(sub string) int {
	return bytes.Index(s.l.Data(), unsafe.Slice(unsafe.StringData(sub), len(sub)))
}

// View returns a mutable window over the whole content.
func (s *String) View() view.View[byte] { return s.l.View() }

// ConstView returns a read-only window over the whole content.
func (s *String) ConstView() view.ConstView[byte] { return s.l.ConstView() }

// Subview returns length bytes starting at index. A negative length means
// through the end. Out-of-range requests yield an empty view.
func (s *String) Subview(index, length int) view.View[byte] {
	return s.l.View().Subview(index, length)
}

// ConstSubview is the read-only form of Subview.
func (s *String) ConstSubview(index, length int) view.ConstView[byte] {
	return s.l.ConstView().Subview(index, length)
}

// Free releases the storage and, for an owned arena, the arena itself.
func (s *String) Free() {
	s.l.Free()
}

// ConstViewOf returns a read-only view over the bytes of str without
// copying.
func ConstViewOf(str string) view.ConstView[byte] {
	if len(str) == 0 {
		return view.ConstView[byte]{}
	}
	return view.ConstOf(unsafe.Slice(unsafe.StringData(str), len(str)))
}
