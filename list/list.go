// Package list implements the growable buffer shared by every container in
// this module: an ordered sequence of T stored in memory obtained from an
// alloc.Allocator.
//
// Growth is amortized: the first growth from empty takes exactly the
// requested length, later growths at least double the capacity. Every
// growing operation may fail silently, leaving the list untouched and
// reporting false.
//
// Lists backed by an arena store their elements in memory the garbage
// collector does not scan, so T must not hold Go pointers there. Use a heap
// allocator for such element types.
package list

import (
	"math"
	"slices"
	"unsafe"

	"github.com/pavanmanishd/memkit/alloc"
	"github.com/pavanmanishd/memkit/internal/sizes"
	"github.com/pavanmanishd/memkit/view"
)

// Freer is implemented by element types that need teardown. When *T
// implements it, the list calls Free on every element it removes, truncates
// or discards.
type Freer interface {
	Free()
}

// List is an ordered, growable sequence. It is not safe for concurrent use.
//
// Slots between Len and Cap are kept zeroed, apart from writes made through
// Spare.
type List[T any] struct {
	alloc  alloc.Allocator
	data   []T // len(data) is the capacity
	length int
	drops  bool
}

// Make returns a list using a with room for capacity elements. If that
// reservation fails the list is still usable but empty.
func Make[T any](a alloc.Allocator, capacity int) List[T] {
	var zero T
	_, drops := any(&zero).(Freer)
	l := List[T]{alloc: a, drops: drops}
	l.Reserve(capacity)
	return l
}

// New is Make returning a pointer.
func New[T any](a alloc.Allocator, capacity int) *List[T] {
	l := Make[T](a, capacity)
	return &l
}

// Len returns the number of live elements.
func (l *List[T]) Len() int { return l.length }

// Cap returns the number of elements the list holds without growing.
func (l *List[T]) Cap() int { return len(l.data) }

// Allocator returns the allocator the list grows with.
func (l *List[T]) Allocator() alloc.Allocator { return l.alloc }

// Data returns the live elements. The slice is invalidated by any growth.
func (l *List[T]) Data() []T { return l.data[:l.length:l.length] }

// Spare returns the unused capacity after the live elements. Elements
// written there become live with a later Resize that does not need to grow.
func (l *List[T]) Spare() []T { return l.data[l.length:] }

// ceiling is the largest capacity whose byte size stays representable.
func (l *List[T]) ceiling() int {
	var zero T
	return sizes.Ceiling(unsafe.Sizeof(zero))
}

func (l *List[T]) realloc(capacity int) bool {
	data := alloc.ResizeSlice(l.alloc, l.data, capacity)
	if data == nil {
		return false
	}
	l.data = data
	return true
}

// Reserve grows the capacity to exactly n if it is smaller.
func (l *List[T]) Reserve(n int) bool {
	if n <= len(l.data) {
		return n >= 0
	}
	if n > l.ceiling() {
		return false
	}
	return l.realloc(n)
}

// Resize sets the length to n. Shrinking tears down the dropped elements
// and never releases capacity. Growing within capacity only moves the
// length; beyond it the capacity becomes n when the list has none, else the
// larger of twice the capacity and n, capped at the representable maximum.
// On failure the list is unchanged.
func (l *List[T]) Resize(n int) bool {
	switch {
	case n < 0:
		return false
	case n < l.length:
		l.drop(n, l.length)
		l.length = n
		return true
	case n <= len(l.data):
		l.length = n
		return true
	}
	ceiling := l.ceiling()
	if n > ceiling {
		return false
	}
	capacity := n
	if c := len(l.data); c > 0 {
		capacity = sizes.Min(sizes.Max(sizes.Double(c, math.MaxInt), n), ceiling)
	}
	if !l.realloc(capacity) {
		return false
	}
	l.length = n
	return true
}

// grow adds k slots at the end and returns the old length.
func (l *List[T]) grow(k int) (int, bool) {
	old := l.length
	if k > math.MaxInt-old {
		return old, false
	}
	return old, l.Resize(old + k)
}

// Add appends v.
func (l *List[T]) Add(v T) bool {
	old, ok := l.grow(1)
	if ok {
		l.data[old] = v
	}
	return ok
}

// AddRange appends vs in order.
func (l *List[T]) AddRange(vs ...T) bool {
	old, ok := l.grow(len(vs))
	if ok {
		copy(l.data[old:], vs)
	}
	return ok
}

// AddZero appends a zero element and returns a pointer to it, or nil.
func (l *List[T]) AddZero() *T {
	old, ok := l.grow(1)
	if !ok {
		return nil
	}
	return &l.data[old]
}

// Insert places v at index i, shifting later elements right. i may equal
// Len().
func (l *List[T]) Insert(i int, v T) bool {
	return l.InsertRange(i, v)
}

// InsertRange places vs starting at index i.
func (l *List[T]) InsertRange(i int, vs ...T) bool {
	if i < 0 || i > l.length {
		return false
	}
	old, ok := l.grow(len(vs))
	if !ok {
		return false
	}
	if overlaps(l.data, vs) {
		vs = slices.Clone(vs)
	}
	copy(l.data[i+len(vs):l.length], l.data[i:old])
	copy(l.data[i:], vs)
	return true
}

// Remove deletes the element at i.
func (l *List[T]) Remove(i int) bool {
	return l.RemoveRange(i, i+1)
}

// RemoveRange deletes [start, end). end is clamped to Len().
func (l *List[T]) RemoveRange(start, end int) bool {
	if end > l.length {
		end = l.length
	}
	if start < 0 || start >= l.length || start >= end {
		return false
	}
	l.drop(start, end)
	n := copy(l.data[start:], l.data[end:l.length])
	clear(l.data[start+n : l.length])
	l.length = start + n
	return true
}

// overlaps reports whether a and b share any element storage.
func overlaps[T any](a, b []T) bool {
	var zero T
	size := unsafe.Sizeof(zero)
	if len(a) == 0 || len(b) == 0 || size == 0 {
		return false
	}
	pa := uintptr(unsafe.Pointer(unsafe.SliceData(a)))
	pb := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return pb < pa+uintptr(len(a))*size && pa < pb+uintptr(len(b))*size
}

// drop tears down and zeroes [from, to).
func (l *List[T]) drop(from, to int) {
	if l.drops {
		for i := from; i < to; i++ {
			any(&l.data[i]).(Freer).Free()
		}
	}
	clear(l.data[from:to])
}

// At returns a pointer to element i, or nil when i is out of range.
func (l *List[T]) At(i int) *T {
	if i < 0 || i >= l.length {
		return nil
	}
	return &l.data[i]
}

// Find returns the index of the first element bitwise identical to v, or
// Len() when there is none.
func (l *List[T]) Find(v T) int {
	return l.View().Find(v)
}

// IndexFunc returns the index of the first element satisfying f, or Len().
func (l *List[T]) IndexFunc(f func(*T) bool) int {
	for i := 0; i < l.length; i++ {
		if f(&l.data[i]) {
			return i
		}
	}
	return l.length
}

// View returns a mutable window over the live elements.
func (l *List[T]) View() view.View[T] {
	return view.Of(l.Data())
}

// ConstView returns a read-only window over the live elements.
func (l *List[T]) ConstView() view.ConstView[T] {
	return view.ConstOf(l.Data())
}

// Slice returns a window over [start, end) of the live elements.
func (l *List[T]) Slice(start, end int) view.View[T] {
	return l.View().Slice(start, end)
}

// Free tears down every element, returns the storage, destroys the
// allocator if the list owns it, and zeroes the list. Calling Free again is
// a no-op.
func (l *List[T]) Free() {
	if l.alloc == nil && l.data == nil {
		return
	}
	l.drop(0, l.length)
	alloc.FreeSlice(l.alloc, l.data)
	if l.alloc != nil {
		l.alloc.Destroy()
	}
	*l = List[T]{}
}
