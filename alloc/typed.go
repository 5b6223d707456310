package alloc

import (
	"unsafe"

	"github.com/pavanmanishd/memkit/internal/sizes"
)

// New returns a pointer to a zeroed T allocated from a, or nil.
// Arena-backed values must not hold Go pointers: arena memory is not
// scanned by the garbage collector.
func New[T any](a Allocator) *T {
	s := MakeSlice[T](a, 1)
	if s == nil {
		return nil
	}
	return &s[0]
}

// MakeSlice allocates n zeroed elements of type T from a. The result has
// len == cap == n, or is nil when the allocation fails. Heap allocators use
// make directly, so any T is fine there; the arena restriction of New
// applies to arena-backed slices.
func MakeSlice[T any](a Allocator, n int) []T {
	size := elemSize[T]()
	if a == nil || n < 0 || n > sizes.Ceiling(size) {
		return nil
	}
	if a.Kind() == KindHeap {
		return make([]T, n)
	}
	b := a.Malloc(n * int(size))
	if b == nil {
		return nil
	}
	clear(b)
	return fromBytes[T](b, n)
}

// ResizeSlice returns a slice of n elements holding the leading elements of
// s, which must have come from MakeSlice or ResizeSlice on the same
// allocator. Elements beyond the old capacity are zeroed. On failure it
// returns nil and s is untouched.
func ResizeSlice[T any](a Allocator, s []T, n int) []T {
	size := elemSize[T]()
	if a == nil || n < 0 || n > sizes.Ceiling(size) {
		return nil
	}
	if s == nil {
		return MakeSlice[T](a, n)
	}
	if a.Kind() == KindHeap {
		ns := make([]T, n)
		copy(ns, s[:cap(s)])
		return ns
	}
	b := a.Realloc(toBytes(s), n*int(size))
	if b == nil {
		return nil
	}
	if grown := cap(s) * int(size); grown < len(b) {
		clear(b[grown:])
	}
	return fromBytes[T](b, n)
}

// FreeSlice hands the storage of s back to a.
func FreeSlice[T any](a Allocator, s []T) {
	if a == nil || s == nil {
		return
	}
	if a.Kind() == KindHeap {
		return
	}
	a.Free(toBytes(s))
}

func elemSize[T any]() uintptr {
	var zero T
	return unsafe.Sizeof(zero)
}

func fromBytes[T any](b []byte, n int) []T {
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(b))), n)
}

func toBytes[T any](s []T) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(s))), cap(s)*int(elemSize[T]()))
}
