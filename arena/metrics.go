package arena

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// SizeInUse returns the total number of bytes currently allocated in the arena.
// This includes internal fragmentation due to alignment and guard headers.
func (a *Arena) SizeInUse() int {
	if a.Released() {
		return 0
	}
	sum := 0
	for n := a.head; n != nil; n = n.next {
		sum += int(n.offset)
	}
	return sum
}

// NumNodes returns the number of nodes in the chain.
func (a *Arena) NumNodes() int {
	if a.Released() {
		return 0
	}
	count := 0
	for n := a.head; n != nil; n = n.next {
		count++
	}
	return count
}

// Capacity returns the total capacity (in bytes) of all nodes in the chain.
func (a *Arena) Capacity() int {
	if a.Released() {
		return 0
	}
	sum := 0
	for n := a.head; n != nil; n = n.next {
		sum += len(n.buf)
	}
	return sum
}

// NodeSizes returns the capacity of each node, head first.
func (a *Arena) NodeSizes() []int {
	if a.Released() {
		return nil
	}
	var out []int
	for n := a.head; n != nil; n = n.next {
		out = append(out, len(n.buf))
	}
	return out
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	capacity := a.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.SizeInUse()) / float64(capacity)
}

// NodeSize returns the size of the first node.
func (a *Arena) NodeSize() int {
	if a == nil {
		return 0
	}
	return a.nodeSize
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:   a.SizeInUse(),
		Capacity:    a.Capacity(),
		NumNodes:    a.NumNodes(),
		NodeSize:    a.NodeSize(),
		Utilization: a.Utilization(),
		Guards:      a.codecMode(),
	}
}

func (a *Arena) codecMode() GuardMode {
	if a == nil {
		return GuardNone
	}
	return a.codec.Mode
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse   int       // Bytes currently allocated
	Capacity    int       // Total capacity in bytes
	NumNodes    int       // Number of nodes in the chain
	NodeSize    int       // Size of the first node
	Utilization float64   // Ratio of used to total capacity (0.0-1.0)
	Guards      GuardMode // Guard layout
}

func (m ArenaMetrics) String() string {
	return fmt.Sprintf("%s of %s in use (%.1f%%) across %d node(s), guards %v",
		humanize.IBytes(uint64(m.SizeInUse)),
		humanize.IBytes(uint64(m.Capacity)),
		m.Utilization*100,
		m.NumNodes,
		m.Guards)
}
