// Package view provides non-owning windows over existing storage.
//
// A View never allocates or frees. It is only valid while the storage it
// was taken from stays allocated; for arena-backed lists and strings that
// means until the owning arena is reset or released, and for any
// container until its next growth, which may move the data.
package view

import (
	"bytes"
	"unsafe"
)

// View is a mutable window of elements.
type View[T any] struct {
	data []T
}

// ConstView is a read-only window of elements. The only way back to a
// mutable View is RemoveConst.
type ConstView[T any] struct {
	data []T
}

// Of returns a View over s. An empty s gives the zero View.
func Of[T any](s []T) View[T] {
	if len(s) == 0 {
		return View[T]{}
	}
	return View[T]{data: s[:len(s):len(s)]}
}

// ConstOf returns a ConstView over s.
func ConstOf[T any](s []T) ConstView[T] {
	if len(s) == 0 {
		return ConstView[T]{}
	}
	return ConstView[T]{data: s[:len(s):len(s)]}
}

// Len returns the number of elements in the window.
func (v View[T]) Len() int { return len(v.data) }

// Data returns the elements in the window.
func (v View[T]) Data() []T { return v.data }

// At returns a pointer to element i, or nil when i is out of range.
func (v View[T]) At(i int) *T {
	if i < 0 || i >= len(v.data) {
		return nil
	}
	return &v.data[i]
}

// Find returns the index of the first element bitwise identical to x, or
// Len() when there is none.
func (v View[T]) Find(x T) int {
	return find(v.data, x)
}

// Slice returns the window [start, end). end is clamped to Len(); a start
// outside the window or an empty range gives an empty View.
func (v View[T]) Slice(start, end int) View[T] {
	s, e, ok := bounds(len(v.data), start, end)
	if !ok {
		return View[T]{}
	}
	return View[T]{data: v.data[s:e:e]}
}

// Subview returns length elements starting at index. A negative length
// reaches the end of the window. Requests that do not fit give an empty
// View.
func (v View[T]) Subview(index, length int) View[T] {
	s, e, ok := span(len(v.data), index, length)
	if !ok {
		return View[T]{}
	}
	return View[T]{data: v.data[s:e:e]}
}

// Remove deletes element i by shifting the rest of the window left.
// The underlying storage keeps its size; only the window shrinks.
func (v *View[T]) Remove(i int) bool {
	if i < 0 || i >= len(v.data) {
		return false
	}
	copy(v.data[i:], v.data[i+1:])
	v.data = v.data[:len(v.data)-1]
	return true
}

// RemoveRange deletes [start, end), clamping end to Len().
func (v *View[T]) RemoveRange(start, end int) bool {
	s, e, ok := bounds(len(v.data), start, end)
	if !ok {
		return false
	}
	n := copy(v.data[s:], v.data[e:])
	v.data = v.data[:s+n]
	return true
}

// Const returns a read-only view of the same window.
func (v View[T]) Const() ConstView[T] {
	return ConstView[T]{data: v.data}
}

// Len returns the number of elements in the window.
func (v ConstView[T]) Len() int { return len(v.data) }

// Equal reports whether v and o hold bitwise identical elements.
func (v ConstView[T]) Equal(o ConstView[T]) bool {
	return len(v.data) == len(o.data) && bytes.Equal(raw(v.data), raw(o.data))
}

// At returns element i and whether i was in range.
func (v ConstView[T]) At(i int) (T, bool) {
	if i < 0 || i >= len(v.data) {
		var zero T
		return zero, false
	}
	return v.data[i], true
}

// Find returns the index of the first element bitwise identical to x, or
// Len() when there is none.
func (v ConstView[T]) Find(x T) int {
	return find(v.data, x)
}

// Slice is View.Slice for read-only windows.
func (v ConstView[T]) Slice(start, end int) ConstView[T] {
	s, e, ok := bounds(len(v.data), start, end)
	if !ok {
		return ConstView[T]{}
	}
	return ConstView[T]{data: v.data[s:e:e]}
}

// Subview is View.Subview for read-only windows.
func (v ConstView[T]) Subview(index, length int) ConstView[T] {
	s, e, ok := span(len(v.data), index, length)
	if !ok {
		return ConstView[T]{}
	}
	return ConstView[T]{data: v.data[s:e:e]}
}

// Copy appends the elements of the window to dst.
func (v ConstView[T]) Copy(dst []T) []T {
	return append(dst, v.data...)
}

// CopyTo copies the window into dst and returns the number of elements
// copied.
func (v ConstView[T]) CopyTo(dst []T) int {
	return copy(dst, v.data)
}

// RemoveConst returns a mutable View of the same window. It is the one
// sanctioned way to drop constness; the caller asserts the storage is
// really writable.
func (v ConstView[T]) RemoveConst() View[T] {
	return View[T]{data: v.data}
}

func bounds(n, start, end int) (int, int, bool) {
	if start < 0 || start >= n || start >= end {
		return 0, 0, false
	}
	if end > n {
		end = n
	}
	return start, end, true
}

func span(n, index, length int) (int, int, bool) {
	if index < 0 || index >= n {
		return 0, 0, false
	}
	if length < 0 {
		length = n - index
	}
	if length == 0 || length > n-index {
		return 0, 0, false
	}
	return index, index + length, true
}

func raw[T any](s []T) []byte {
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), len(s)*int(unsafe.Sizeof(zero)))
}

func find[T any](data []T, x T) int {
	size := unsafe.Sizeof(x)
	needle := unsafe.Slice((*byte)(unsafe.Pointer(&x)), size)
	for i := range data {
		elem := unsafe.Slice((*byte)(unsafe.Pointer(&data[i])), size)
		if bytes.Equal(elem, needle) {
			return i
		}
	}
	return len(data)
}
