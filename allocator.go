package alloc

import "unsafe"

// Allocator is the base allocation capability.
//
// Alloc returns a pointer valid for exactly l.Size bytes and aligned to
// l.Align, or an error wrapping ErrAllocationFailure. A zero-size request
// returns (nil, nil).
//
// Dealloc releases a block. The layout must equal the one the pointer was
// produced with; anything else is undefined behaviour.
//
// Realloc resizes or realigns a block, possibly moving it. The returned
// pointer replaces p; on error p is still valid and unchanged.
type Allocator interface {
	Alloc(l Layout) (unsafe.Pointer, error)
	Dealloc(l Layout, p unsafe.Pointer)
	Realloc(from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error)
}

// Resettable is an Allocator that can invalidate every allocation it has
// made in one call, without freeing them individually.
type Resettable interface {
	Allocator
	Reset()
}

// Legacy is the size-only allocation surface, for interop with APIs that
// carry neither alignment nor size on free. Results are aligned to
// MaxLegacyAlign.
type Legacy interface {
	LegacyAlloc(size uintptr) (unsafe.Pointer, error)
	LegacyDealloc(p unsafe.Pointer)
	LegacyRealloc(size uintptr, p unsafe.Pointer) (unsafe.Pointer, error)
}

// AsResettable returns a's Resettable capability if its strategy has one.
func AsResettable(a Allocator) (Resettable, bool) {
	r, ok := a.(Resettable)
	return r, ok
}

// AsLegacy returns a's Legacy capability if its strategy has one.
func AsLegacy(a Allocator) (Legacy, bool) {
	l, ok := a.(Legacy)
	return l, ok
}

// strategy is the internal half of a concrete allocator. The public entry
// points live on dispatch; they check preconditions, run the layer chain,
// and only then reach these methods.
type strategy interface {
	allocImpl(l Layout) (unsafe.Pointer, error)
	deallocImpl(l Layout, p unsafe.Pointer)
	reallocImpl(from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error)
}

type resetStrategy interface {
	resetImpl()
}

type legacyStrategy interface {
	legacyAllocImpl(size uintptr) (unsafe.Pointer, error)
	legacyDeallocImpl(p unsafe.Pointer)
	legacyReallocImpl(size uintptr, p unsafe.Pointer) (unsafe.Pointer, error)
}

type dispatcher interface {
	Allocator
	strategy
}

// dispatch is embedded by every concrete allocator. It provides the public
// Allocator methods and routes each request through the local layers, the
// global layers and finally the strategy.
type dispatch struct {
	self     dispatcher
	local    []Layer
	registry *Registry
}

func (d *dispatch) init(self dispatcher, cfg config) {
	d.self = self
	d.local = cfg.layers
	if !cfg.noGlobal {
		d.registry = cfg.registry
		if d.registry == nil {
			d.registry = &globalRegistry
		}
	}
}

func (d *dispatch) mustInit() {
	contract(d != nil && d.self != nil, "allocator used before initialization")
}

func (d *dispatch) executor() *Executor {
	ex := &Executor{target: d.self, local: d.local}
	if d.registry != nil {
		ex.global = d.registry.Layers()
	}
	return ex
}

// Alloc implements Allocator.
func (d *dispatch) Alloc(l Layout) (unsafe.Pointer, error) {
	if l.Size == 0 {
		return nil, nil
	}
	d.mustInit()
	contract(isPow2(l.Align), "alloc %v: alignment is not a power of two", l)
	return d.executor().Alloc(l)
}

// Dealloc implements Allocator.
func (d *dispatch) Dealloc(l Layout, p unsafe.Pointer) {
	if p == nil || l.Size == 0 {
		return
	}
	d.mustInit()
	contract(isPow2(l.Align), "dealloc %v: alignment is not a power of two", l)
	d.executor().Dealloc(l, p)
}

// Realloc implements Allocator.
func (d *dispatch) Realloc(from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	if p == nil {
		return d.Alloc(to)
	}
	if from == to {
		return p, nil
	}
	if to.Size == 0 {
		d.Dealloc(from, p)
		return nil, nil
	}
	d.mustInit()
	contract(isPow2(from.Align), "realloc from %v: alignment is not a power of two", from)
	contract(isPow2(to.Align), "realloc to %v: alignment is not a power of two", to)
	return d.executor().Realloc(from, to, p)
}

func (d *dispatch) reset() {
	d.mustInit()
	d.executor().Reset()
}

func (d *dispatch) legacyAlloc(size uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		return nil, nil
	}
	d.mustInit()
	return d.executor().LegacyAlloc(size)
}

func (d *dispatch) legacyDealloc(p unsafe.Pointer) {
	if p == nil {
		return
	}
	d.mustInit()
	d.executor().LegacyDealloc(p)
}

func (d *dispatch) legacyRealloc(size uintptr, p unsafe.Pointer) (unsafe.Pointer, error) {
	if p == nil {
		return d.legacyAlloc(size)
	}
	if size == 0 {
		d.legacyDealloc(p)
		return nil, nil
	}
	d.mustInit()
	return d.executor().LegacyRealloc(size, p)
}
