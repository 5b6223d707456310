package arena

import "github.com/pavanmanishd/memkit/internal/sizes"

// Source supplies the raw blocks an Arena carves allocations from.
// Alloc returns nil (or a short slice) when it cannot provide n bytes.
type Source interface {
	Alloc(n int) []byte
	Free(b []byte)
}

// SystemLimit is the largest block System hands out: 1 TiB on 64-bit
// platforms, sizes.MaxAlloc on 32-bit ones. Larger requests return nil
// instead of reaching the runtime, whose out-of-memory failure cannot be
// recovered.
const SystemLimit = min(1<<(31+9*(^uint(0)>>63)), sizes.MaxAlloc)

// System is the Source backed by the Go heap. Its Free is a no-op; released
// blocks are reclaimed by the garbage collector once unreachable.
var System Source = goSource{}

type goSource struct{}

// Alloc returns n zeroed bytes, or nil when n is out of range. The runtime's
// makeslice panics are turned into nil; a genuine out-of-memory condition is
// still fatal to the process.
func (goSource) Alloc(n int) (b []byte) {
	if n < 0 || n > SystemLimit {
		return nil
	}
	defer func() {
		if recover() != nil {
			b = nil
		}
	}()
	return make([]byte, n)
}

func (goSource) Free([]byte) {}
