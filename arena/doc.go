// Package arena implements a chain of bump-allocating memory nodes and the
// guard codec used to lay out payloads inside them.
//
// # Overview
//
// An Arena hands out byte ranges by advancing a cursor through its current
// node. When the node is exhausted a child node is linked after the tail,
// sized at least twice the tail. Individual allocations are never reclaimed;
// the whole chain is rewound with Reset or given back with Release.
//
//	a := arena.NewArena(4096, arena.WithGuards(arena.GuardBasic))
//	defer a.Release()
//
//	buf := a.AllocBytes(128)
//
// # Chain Layout
//
// Each node owns its child through a forward link and keeps a plain
// back-reference to its parent. Release walks to the tail and frees nodes
// toward the head, checking every back-reference on the way; a broken link
// panics with *CorruptionError.
//
// # Guards
//
// Codec describes the header written in front of each payload by the
// allocators in package alloc. The header always records the payload size.
// GuardBasic and GuardStrict add magic words before and after the payload,
// and Decode reports any of them that changed.
//
// # Memory Sources
//
// Node memory comes from a Source, System by default. Tests substitute a
// counting Source (see package arenatest) to observe every node allocation
// and release, or to make allocations fail.
//
// # Important Notes
//
//   - Allocated memory is only valid while the arena exists
//   - Memory is not zeroed after Reset
//   - Values holding Go pointers must not be stored in arena memory; the
//     garbage collector does not scan it
//   - Arenas are not safe for concurrent use
package arena
