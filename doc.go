// Package alloc is a pluggable allocator framework: one contract, a chain
// of interceptor layers, and a family of strategies that share both.
//
// # Contract
//
// Every request is described by a Layout, a size and a power-of-two
// alignment. An Allocator hands out and takes back raw blocks:
//
//	l := alloc.LayoutOf[Node]()
//	p, err := a.Alloc(l)
//	if err != nil {
//	    return err // wraps alloc.ErrAllocationFailure
//	}
//	defer a.Dealloc(l, p)
//
// Two capabilities extend the base contract and are reachable only on the
// strategies that have them: Resettable (Reset frees everything at once)
// and Legacy (size-only LegacyAlloc/LegacyDealloc/LegacyRealloc).
//
// Zero-size requests return nil and never reach a strategy. Broken
// preconditions, such as an alignment that is not a power of two, panic.
//
// # Strategies
//
//   - Page: whole OS pages via mmap, the source other strategies sit on
//   - System: general purpose, Go heap backed, safe for concurrent use
//   - LegacyAdapter: Legacy capability over any Allocator via a size header
//   - LegacyBacked: Allocator capability over any Legacy allocator
//   - Linear: bump allocation in one fixed buffer
//   - Arena: bump allocation in a chain of geometrically growing blocks
//   - Synchronized: mutex wrapper for sharing one allocator
//
// # Layers
//
// A Layer sees a request before the strategy does. Layers attached with
// WithLayers run first, in order, then the global layers from the
// allocator's Registry, then the strategy:
//
//	a := alloc.NewArena(alloc.NewPage(), alloc.WithLayers(alloc.NewClearLayer()))
//
// # Process runtime
//
// Default, DefaultLegacy and Debug return process-wide allocators created
// by Bootstrap, or lazily on first use. Tests should build their own
// graph with NewRuntime or plain constructors and WithRegistry.
//
// # Important Notes
//
//   - Memory from these allocators is not scanned by the garbage collector;
//     do not keep the only reference to a Go object in it
//   - Only Page, System and Synchronized are safe for concurrent use
//   - Allocated memory is only valid while its allocator exists
package alloc
