// Package arena implements a chain of bump-allocating memory nodes.
// Typical usage: create one arena, allocate many objects from it, then
// Release the whole chain at once.
package arena

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/pavanmanishd/memkit/internal/logging"
	"github.com/pavanmanishd/memkit/internal/sizes"
)

// DefaultNodeSize is the size of the first node when none is given (64 KiB).
const DefaultNodeSize = 1 << 16

const align = unsafe.Sizeof(uintptr(0))

// node is a single block of the chain. next owns the child node; prev is a
// back-reference used during teardown.
type node struct {
	buf    []byte
	offset uintptr
	next   *node
	prev   *node
}

// bump carves n bytes out of the node, or returns nil when it does not fit.
func (n *node) bump(size int) []byte {
	off := sizes.AlignUp(n.offset, align)
	end := off + uintptr(size)
	if end > uintptr(len(n.buf)) {
		return nil
	}
	n.offset = end
	return n.buf[off:end:end]
}

func (n *node) free() int {
	off := sizes.AlignUp(n.offset, align)
	if off >= uintptr(len(n.buf)) {
		return 0
	}
	return len(n.buf) - int(off)
}

// Arena is a chain of bump allocators. It is not safe for concurrent use.
type Arena struct {
	head     *node
	current  *node
	nodeSize int
	src      Source
	codec    Codec
	log      *zap.Logger
}

// Option configures an Arena.
type Option func(*Arena)

// WithSource sets where node memory comes from. The default is System.
func WithSource(s Source) Option {
	return func(a *Arena) {
		if s != nil {
			a.src = s
		}
	}
}

// WithGuards sets the guard layout used by allocators built on the arena.
func WithGuards(m GuardMode) Option {
	return func(a *Arena) { a.codec = Codec{Mode: m} }
}

// WithLogger overrides the ARENA debug logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Arena) {
		if l != nil {
			a.log = l
		}
	}
}

// NewArena creates an Arena whose first node holds size bytes.
// If size <= 0, DefaultNodeSize is used. NewArena returns nil when the
// source cannot provide the first node.
func NewArena(size int, opts ...Option) *Arena {
	if size <= 0 {
		size = DefaultNodeSize
	}
	size = sizes.Min(size, sizes.MaxAlloc)
	a := &Arena{nodeSize: size, src: System}
	for _, o := range opts {
		o(a)
	}
	if a.log == nil {
		a.log = logging.Named("ARENA")
	}
	buf := a.src.Alloc(size)
	if len(buf) < size {
		if buf != nil {
			a.src.Free(buf)
		}
		a.log.Debug("initial node unavailable", zap.Int("size", size))
		return nil
	}
	a.head = &node{buf: buf}
	a.current = a.head
	return a
}

// Codec returns the guard layout configured for this arena.
func (a *Arena) Codec() Codec {
	return a.codec
}

// Released reports whether the chain has been released.
func (a *Arena) Released() bool {
	return a == nil || a.head == nil
}

// AllocBytes returns n bytes carved from the chain. The slice points into
// node memory and is only valid until Reset or Release. AllocBytes returns
// nil if n <= 0, the arena is released, or a new node cannot be obtained.
func (a *Arena) AllocBytes(n int) []byte {
	if n <= 0 || n > sizes.MaxAlloc || a.Released() {
		return nil
	}
	if b := a.current.bump(n); b != nil {
		return b
	}
	return a.allocBytesSlow(n)
}

// allocBytesSlow walks to the tail, then links a new node if needed.
func (a *Arena) allocBytesSlow(n int) []byte {
	for a.current.next != nil {
		a.current = a.current.next
		if b := a.current.bump(n); b != nil {
			return b
		}
	}
	if !a.grow(n) {
		return nil
	}
	return a.current.bump(n)
}

// Reserve makes sure n bytes can be allocated without linking a node later.
// It reports false when a required node cannot be obtained.
func (a *Arena) Reserve(n int) bool {
	if n < 0 || n > sizes.MaxAlloc || a.Released() {
		return false
	}
	if a.current.free() >= n {
		return true
	}
	for a.current.next != nil {
		a.current = a.current.next
		if a.current.free() >= n {
			return true
		}
	}
	return a.grow(n)
}

// grow links a child after the tail sized max(tail*2, min).
func (a *Arena) grow(min int) bool {
	tail := a.current
	size := sizes.Max(sizes.Double(len(tail.buf), sizes.MaxAlloc), min)
	buf := a.src.Alloc(size)
	if len(buf) < size {
		if buf != nil {
			a.src.Free(buf)
		}
		a.log.Debug("grow failed", zap.Int("size", size))
		return false
	}
	child := &node{buf: buf, prev: tail}
	tail.next = child
	a.current = child
	a.log.Debug("grow", zap.Int("size", size), zap.Int("nodes", a.NumNodes()))
	return true
}

// Reset rewinds every node's cursor but keeps the nodes for reuse.
// Everything previously allocated from the arena becomes dead.
func (a *Arena) Reset() {
	if a.Released() {
		return
	}
	for n := a.head; n != nil; n = n.next {
		n.offset = 0
	}
	a.current = a.head
}

// Release frees the chain from tail to head. Each node's back-reference
// is checked before the node is handed back to the source; a broken link
// panics with *CorruptionError. Release on a released arena is a no-op.
func (a *Arena) Release() {
	if a.Released() {
		return
	}
	tail := a.head
	for tail.next != nil {
		tail = tail.next
	}
	count := 0
	for n := tail; n != nil; {
		prev := n.prev
		if prev != nil {
			if prev.next != n {
				err := &CorruptionError{What: "chain link"}
				a.log.Error("release", zap.Error(err))
				panic(err)
			}
			prev.next = nil
		} else if n != a.head {
			err := &CorruptionError{What: "chain head"}
			a.log.Error("release", zap.Error(err))
			panic(err)
		}
		a.src.Free(n.buf)
		n.buf, n.prev = nil, nil
		n = prev
		count++
	}
	a.head, a.current = nil, nil
	a.log.Debug("release", zap.Int("nodes", count))
}
