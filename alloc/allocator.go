// Package alloc provides the allocator handle used by every container in
// this module: a small sum type selecting the Go heap, a shared (non-owning)
// arena, or an owned arena.
package alloc

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pavanmanishd/memkit/arena"
	"github.com/pavanmanishd/memkit/internal/logging"
	"github.com/pavanmanishd/memkit/internal/sizes"
)

// Kind identifies the variant behind an Allocator.
type Kind uint8

const (
	KindHeap Kind = iota
	KindSharedArena
	KindOwnedArena
)

func (k Kind) String() string {
	switch k {
	case KindHeap:
		return "heap"
	case KindSharedArena:
		return "shared-arena"
	case KindOwnedArena:
		return "owned-arena"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Allocator is implemented by Heap, Shared and *Owned only.
//
// Every operation fails silently: Malloc and Realloc return nil, the others
// do nothing. The one exception is guard corruption detected in arena
// memory, which panics with *arena.CorruptionError.
type Allocator interface {
	Kind() Kind
	// Malloc returns size bytes, or nil.
	Malloc(size int) []byte
	// Realloc returns a block of size bytes holding the leading bytes of b.
	// On failure it returns nil and b stays valid.
	Realloc(b []byte, size int) []byte
	// Free gives b back. Arena memory is only reclaimed en masse.
	Free(b []byte)
	// Destroy releases the backing store if the handle owns it.
	Destroy()
	// Share returns a handle to the same store without destruction rights.
	Share() Allocator

	sealed()
}

var log = logging.Named("ALLOC")

// Heap allocates from the Go heap. Requests above arena.SystemLimit fail
// with nil; a request below it that the machine cannot back still ends the
// process, as any Go allocation would.
type Heap struct{}

// NewHeap returns the heap allocator.
func NewHeap() Heap {
	return Heap{}
}

func (Heap) sealed() {}

// Kind returns KindHeap.
func (Heap) Kind() Kind { return KindHeap }

// Malloc returns size zeroed bytes from arena.System, or nil.
func (Heap) Malloc(size int) []byte {
	return arena.System.Alloc(size)
}

// Realloc returns a new block of size bytes holding the leading bytes of b.
// b is untouched; on failure it returns nil.
func (Heap) Realloc(b []byte, size int) []byte {
	nb := arena.System.Alloc(size)
	if nb == nil {
		return nil
	}
	copy(nb, b)
	return nb
}

// Free is a no-op; the garbage collector reclaims heap blocks.
func (Heap) Free(b []byte) {
	arena.System.Free(b)
}

// Destroy is a no-op.
func (Heap) Destroy() {}

// Share returns h.
func (h Heap) Share() Allocator { return h }

// Shared allocates from an arena it does not own. Destroy is a no-op; the
// arena stays alive until its owner destroys it.
type Shared struct {
	a *arena.Arena
}

func (Shared) sealed() {}

// Kind returns KindSharedArena.
func (Shared) Kind() Kind { return KindSharedArena }

// Arena returns the backing arena.
func (s Shared) Arena() *arena.Arena { return s.a }

// Malloc carves size bytes, plus guards, out of the arena.
func (s Shared) Malloc(size int) []byte { return arenaMalloc(s.a, size) }

// Realloc checks b's guards, then copies it into a fresh block.
func (s Shared) Realloc(b []byte, size int) []byte { return arenaRealloc(s.a, b, size) }

// Free only checks b's guards; arena memory is reclaimed en masse.
func (s Shared) Free(b []byte) { arenaFree(s.a, b) }

// Destroy is a no-op; the owner releases the arena.
func (Shared) Destroy() {}

// Share returns s.
func (s Shared) Share() Allocator { return s }

// Owned allocates from an arena it owns. Only the *Owned created by
// NewOwnedArena can destroy the arena; hand Share() to dependents.
type Owned struct {
	a *arena.Arena
}

// NewOwnedArena creates an arena whose first node holds initialSize bytes
// and returns its owning handle. If the first node cannot be obtained the
// handle has no backing arena and every allocation from it fails.
func NewOwnedArena(initialSize int, opts ...arena.Option) *Owned {
	return &Owned{a: arena.NewArena(initialSize, opts...)}
}

func (*Owned) sealed() {}

// Kind returns KindOwnedArena.
func (*Owned) Kind() Kind { return KindOwnedArena }

// Arena returns the backing arena, or nil once destroyed.
func (o *Owned) Arena() *arena.Arena {
	if o == nil {
		return nil
	}
	return o.a
}

// Malloc is Shared.Malloc on the owned arena.
func (o *Owned) Malloc(size int) []byte { return arenaMalloc(o.Arena(), size) }

// Realloc is Shared.Realloc on the owned arena.
func (o *Owned) Realloc(b []byte, size int) []byte { return arenaRealloc(o.Arena(), b, size) }

// Free is Shared.Free on the owned arena.
func (o *Owned) Free(b []byte) { arenaFree(o.Arena(), b) }

// Destroy releases the whole chain and zeroes the handle, so later calls
// are no-ops. Handles obtained from Share must not be used afterwards.
func (o *Owned) Destroy() {
	if o == nil || o.a == nil {
		return
	}
	o.a.Release()
	*o = Owned{}
}

// Share returns a Shared handle over the same arena.
func (o *Owned) Share() Allocator {
	return Shared{a: o.Arena()}
}

func arenaMalloc(a *arena.Arena, size int) []byte {
	if a.Released() {
		return nil
	}
	c := a.Codec()
	need := c.Required(size)
	if need < 0 {
		return nil
	}
	region := a.AllocBytes(need)
	if region == nil {
		return nil
	}
	return c.Encode(region, size)
}

// arenaRealloc never resizes in place: the old block stays behind as dead
// space until the arena is released.
func arenaRealloc(a *arena.Arena, b []byte, size int) []byte {
	if a.Released() || size < 0 {
		return nil
	}
	if b == nil {
		return arenaMalloc(a, size)
	}
	old := check(a, b)
	nb := arenaMalloc(a, size)
	if nb == nil {
		return nil
	}
	copy(nb, b[:sizes.Min(old, cap(b))])
	return nb
}

func arenaFree(a *arena.Arena, b []byte) {
	if a.Released() || b == nil {
		return
	}
	check(a, b)
}

// check returns the recorded size of b and panics if its guards are broken.
func check(a *arena.Arena, b []byte) int {
	size, err := a.Codec().Decode(b)
	if err != nil {
		log.Error("guard check failed", zap.Error(err), zap.Int("len", len(b)))
		panic(err)
	}
	return size
}
