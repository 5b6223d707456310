// Package sizes holds the saturating size arithmetic shared by the arena
// and the growable containers.
package sizes

import (
	"math"

	"golang.org/x/exp/constraints"
)

// MaxAlloc is the largest byte count any allocator in this module will try
// to obtain: 2^48-1 on 64-bit platforms, 2^31-1 on 32-bit ones. Requests
// above it fail instead of wrapping or tripping the runtime's own limits.
const MaxAlloc = 1<<(31+17*(^uint(0)>>63)) - 1

// Max returns the larger of a and b.
func Max[T constraints.Integer](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of a and b.
func Min[T constraints.Integer](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Double returns 2*n, clamped to limit.
func Double[T constraints.Integer](n, limit T) T {
	if n > limit/2 {
		return limit
	}
	return n * 2
}

// AddClamp returns a+b, clamped to limit. Both operands must be non-negative.
func AddClamp[T constraints.Integer](a, b, limit T) T {
	if a > limit || b > limit-a {
		return limit
	}
	return a + b
}

// Ceiling returns how many elements of elemSize bytes fit in MaxAlloc.
// Zero-sized elements are bounded only by the int range.
func Ceiling(elemSize uintptr) int {
	if elemSize == 0 {
		return math.MaxInt
	}
	return MaxAlloc / int(elemSize)
}

// AlignUp rounds off up to a multiple of align, which must be a power of two.
func AlignUp[T constraints.Unsigned](off, align T) T {
	mask := align - 1
	return (off + mask) & ^mask
}
