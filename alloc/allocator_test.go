package alloc

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/memkit/arena"
	"github.com/pavanmanishd/memkit/arena/arenatest"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "heap", KindHeap.String())
	assert.Equal(t, "shared-arena", KindSharedArena.String())
	assert.Equal(t, "owned-arena", KindOwnedArena.String())
	assert.Equal(t, "Kind(7)", Kind(7).String())
}

func TestHeap(t *testing.T) {
	h := NewHeap()
	assert.Equal(t, KindHeap, h.Kind())

	b := h.Malloc(16)
	require.Len(t, b, 16)
	copy(b, "0123456789abcdef")

	b = h.Realloc(b, 32)
	require.Len(t, b, 32)
	assert.Equal(t, "0123456789abcdef", string(b[:16]))

	b = h.Realloc(b, 4)
	assert.Equal(t, "0123", string(b))

	assert.Nil(t, h.Malloc(-1))
	assert.Nil(t, h.Realloc(b, -1))
	assert.Equal(t, h, h.Share())
	h.Free(b)
	h.Destroy()
}

func TestGuardRoundTrip(t *testing.T) {
	for _, mode := range []arena.GuardMode{arena.GuardNone, arena.GuardBasic, arena.GuardStrict} {
		for _, size := range []int{0, 1, 7, 4096} {
			t.Run(fmt.Sprintf("%v-%d", mode, size), func(t *testing.T) {
				o := NewOwnedArena(1024, arena.WithGuards(mode))
				defer o.Destroy()

				b := o.Malloc(size)
				require.NotNil(t, b)
				require.Len(t, b, size)
				for i := range b {
					b[i] = 0x5A
				}
				assert.NotPanics(t, func() { o.Free(b) })
			})
		}
	}
}

func TestArenaChainGrowth(t *testing.T) {
	src := &arenatest.Source{}
	o := NewOwnedArena(64, arena.WithSource(src), arena.WithGuards(arena.GuardBasic))

	require.NotNil(t, o.Malloc(40))
	assert.Equal(t, 1, o.Arena().NumNodes())
	require.NotNil(t, o.Malloc(40))
	require.Equal(t, 2, o.Arena().NumNodes())
	assert.GreaterOrEqual(t, o.Arena().NodeSizes()[1], 40)
	assert.Equal(t, 2, src.Allocs)

	o.Destroy()
	assert.Equal(t, 2, src.Frees)
	assert.Zero(t, src.Live())
	assert.Zero(t, src.DoubleFrees)
	assert.Nil(t, o.Arena())
}

func TestArenaRealloc(t *testing.T) {
	o := NewOwnedArena(256, arena.WithGuards(arena.GuardStrict))
	defer o.Destroy()

	b := o.Malloc(8)
	copy(b, "abcdefgh")
	used := o.Arena().SizeInUse()

	grown := o.Realloc(b, 64)
	require.Len(t, grown, 64)
	assert.Equal(t, "abcdefgh", string(grown[:8]))
	assert.Greater(t, o.Arena().SizeInUse(), used)

	// Shrinking still allocates and copies; nothing is reused in place.
	used = o.Arena().SizeInUse()
	shrunk := o.Realloc(grown, 3)
	assert.Equal(t, "abc", string(shrunk))
	assert.Greater(t, o.Arena().SizeInUse(), used)
	assert.NotSame(t, &grown[0], &shrunk[0])

	// A nil block behaves like Malloc.
	assert.Len(t, o.Realloc(nil, 5), 5)
	assert.Nil(t, o.Realloc(shrunk, -1))
}

func TestArenaReallocFailureKeepsBlock(t *testing.T) {
	src := &arenatest.Source{FailAfter: 1}
	o := NewOwnedArena(64, arena.WithSource(src), arena.WithGuards(arena.GuardBasic))
	defer o.Destroy()

	b := o.Malloc(8)
	copy(b, "keepme!!")
	assert.Nil(t, o.Realloc(b, 200))
	assert.Equal(t, "keepme!!", string(b))
	assert.NotPanics(t, func() { o.Free(b) })
}

func TestGuardViolationPanics(t *testing.T) {
	o := NewOwnedArena(256, arena.WithGuards(arena.GuardBasic))
	defer o.Destroy()

	b := o.Malloc(8)
	corruptAfter(b)

	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic on overrun")
		err, ok := r.(*arena.CorruptionError)
		require.True(t, ok)
		assert.Equal(t, "back guard", err.What)
	}()
	o.Free(b)
}

func TestGuardViolationPanicsOnRealloc(t *testing.T) {
	o := NewOwnedArena(256, arena.WithGuards(arena.GuardStrict))
	defer o.Destroy()

	b := o.Malloc(16)
	corruptAfter(b)
	assert.Panics(t, func() { o.Realloc(b, 32) })
}

func TestMallocFailures(t *testing.T) {
	var nilOwned *Owned
	assert.Nil(t, nilOwned.Malloc(8))
	assert.Nil(t, Shared{}.Malloc(8))
	assert.Nil(t, Shared{}.Realloc(nil, 8))
	Shared{}.Free([]byte{1})
	nilOwned.Destroy()

	src := &arenatest.Source{Budget: 10}
	o := NewOwnedArena(64, arena.WithSource(src))
	assert.Nil(t, o.Arena())
	assert.Nil(t, o.Malloc(1))

	o = NewOwnedArena(64)
	assert.Nil(t, o.Malloc(-1))
	o.Destroy()
	assert.Nil(t, o.Malloc(1))
	o.Destroy()
}

func TestHeapSystemLimit(t *testing.T) {
	n := arena.SystemLimit
	if n < math.MaxInt {
		n++
	}
	h := NewHeap()
	assert.Nil(t, h.Malloc(n))
	b := h.Malloc(4)
	assert.Nil(t, h.Realloc(b, n))
	assert.Len(t, b, 4)
}

func TestShareDestroy(t *testing.T) {
	src := &arenatest.Source{}
	o := NewOwnedArena(128, arena.WithSource(src), arena.WithGuards(arena.GuardBasic))

	s := o.Share()
	assert.Equal(t, KindSharedArena, s.Kind())
	assert.Equal(t, s, s.Share())

	b := s.Malloc(32)
	require.NotNil(t, b)
	copy(b, "shared")

	s.Destroy()
	assert.Zero(t, src.Frees)
	assert.False(t, o.Arena().Released())
	assert.Equal(t, "shared", string(b[:6]))
	assert.NotPanics(t, func() { s.Free(b) })

	o.Destroy()
	assert.Equal(t, src.Allocs, src.Frees)
	assert.Zero(t, src.DoubleFrees)

	// The shared handle now sees a released arena: allocations fail and
	// frees are no-ops.
	assert.Nil(t, s.Malloc(8))
	assert.NotPanics(t, func() { s.Free(b) })
}
