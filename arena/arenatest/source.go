// Package arenatest provides a Source that counts node allocations and can
// be told to fail, for testing code built on package arena.
package arenatest

import (
	"unsafe"

	"github.com/pavanmanishd/memkit/arena"
)

// Source records every block it hands out and every block returned to it.
// A zero Source never fails.
type Source struct {
	// FailAfter makes every Alloc after the first FailAfter calls return nil.
	// Zero or negative means never fail.
	FailAfter int
	// Budget caps the total bytes handed out. Zero or negative means no cap.
	Budget int

	Allocs      int
	Frees       int
	DoubleFrees int
	Failures    int
	Sizes       []int

	allocated int
	live      map[*byte]int
}

var _ arena.Source = (*Source)(nil)

// Alloc returns n fresh bytes unless a configured limit is hit.
func (s *Source) Alloc(n int) []byte {
	if n < 0 ||
		(s.FailAfter > 0 && s.Allocs >= s.FailAfter) ||
		(s.Budget > 0 && s.allocated+n > s.Budget) {
		s.Failures++
		return nil
	}
	b := make([]byte, n, n+1)
	if s.live == nil {
		s.live = make(map[*byte]int)
	}
	s.live[key(b)] = n
	s.Allocs++
	s.allocated += n
	s.Sizes = append(s.Sizes, n)
	return b
}

// Free records the release of b. Blocks that were never handed out, or were
// already released, are counted in DoubleFrees.
func (s *Source) Free(b []byte) {
	k := key(b)
	if _, ok := s.live[k]; !ok {
		s.DoubleFrees++
		return
	}
	delete(s.live, k)
	s.Frees++
}

// Live returns the number of blocks handed out and not yet released.
func (s *Source) Live() int {
	return len(s.live)
}

// Allocated returns the total bytes handed out so far.
func (s *Source) Allocated() int {
	return s.allocated
}

// key identifies a block by its base address. The spare capacity byte keeps
// zero-length blocks addressable.
func key(b []byte) *byte {
	return unsafe.SliceData(b[:cap(b)])
}
