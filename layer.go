package alloc

import (
	"sync"
	"sync/atomic"
	"unsafe"
)

// Layer intercepts allocator requests. Each method receives the Executor
// driving the request and must either forward through it (possibly doing
// work before or after) or veto the request by not forwarding.
//
// Embed PassThrough to forward everything a layer does not care about.
type Layer interface {
	Alloc(ex *Executor, l Layout) (unsafe.Pointer, error)
	Dealloc(ex *Executor, l Layout, p unsafe.Pointer)
	Realloc(ex *Executor, from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error)
	Reset(ex *Executor)
	LegacyAlloc(ex *Executor, size uintptr) (unsafe.Pointer, error)
	LegacyDealloc(ex *Executor, p unsafe.Pointer)
	LegacyRealloc(ex *Executor, size uintptr, p unsafe.Pointer) (unsafe.Pointer, error)
}

// PassThrough forwards every request unchanged.
type PassThrough struct{}

func (PassThrough) Alloc(ex *Executor, l Layout) (unsafe.Pointer, error) {
	return ex.Alloc(l)
}

func (PassThrough) Dealloc(ex *Executor, l Layout, p unsafe.Pointer) {
	ex.Dealloc(l, p)
}

func (PassThrough) Realloc(ex *Executor, from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	return ex.Realloc(from, to, p)
}

func (PassThrough) Reset(ex *Executor) {
	ex.Reset()
}

func (PassThrough) LegacyAlloc(ex *Executor, size uintptr) (unsafe.Pointer, error) {
	return ex.LegacyAlloc(size)
}

func (PassThrough) LegacyDealloc(ex *Executor, p unsafe.Pointer) {
	ex.LegacyDealloc(p)
}

func (PassThrough) LegacyRealloc(ex *Executor, size uintptr, p unsafe.Pointer) (unsafe.Pointer, error) {
	return ex.LegacyRealloc(size, p)
}

// Executor walks one request through the layer chain of its target: every
// local layer in order, then every global layer in order, then the
// strategy. An Executor is built per top-level call and must not be kept.
type Executor struct {
	target   dispatcher
	local    []Layer
	global   []Layer
	pos      int
	inGlobal bool
}

// Target returns the allocator the request was made on.
func (ex *Executor) Target() Allocator {
	return ex.target
}

// advance returns the next layer to invoke, or nil once both chains are
// exhausted.
func (ex *Executor) advance() Layer {
	if !ex.inGlobal {
		if ex.pos < len(ex.local) {
			l := ex.local[ex.pos]
			ex.pos++
			return l
		}
		ex.inGlobal = true
		ex.pos = 0
	}
	if ex.pos < len(ex.global) {
		l := ex.global[ex.pos]
		ex.pos++
		return l
	}
	return nil
}

// Alloc forwards an allocation to the next layer or the strategy.
func (ex *Executor) Alloc(l Layout) (unsafe.Pointer, error) {
	if next := ex.advance(); next != nil {
		return next.Alloc(ex, l)
	}
	return ex.target.allocImpl(l)
}

// Dealloc forwards a deallocation to the next layer or the strategy.
func (ex *Executor) Dealloc(l Layout, p unsafe.Pointer) {
	if next := ex.advance(); next != nil {
		next.Dealloc(ex, l, p)
		return
	}
	ex.target.deallocImpl(l, p)
}

// Realloc forwards a reallocation to the next layer or the strategy.
func (ex *Executor) Realloc(from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	if next := ex.advance(); next != nil {
		return next.Realloc(ex, from, to, p)
	}
	return ex.target.reallocImpl(from, to, p)
}

// Reset forwards a reset to the next layer or the strategy.
func (ex *Executor) Reset() {
	if next := ex.advance(); next != nil {
		next.Reset(ex)
		return
	}
	rs, ok := ex.target.(resetStrategy)
	contract(ok, "reset dispatched to %T, which is not resettable", ex.target)
	rs.resetImpl()
}

// LegacyAlloc forwards a size-only allocation.
func (ex *Executor) LegacyAlloc(size uintptr) (unsafe.Pointer, error) {
	if next := ex.advance(); next != nil {
		return next.LegacyAlloc(ex, size)
	}
	return ex.legacy().legacyAllocImpl(size)
}

// LegacyDealloc forwards a size-only deallocation.
func (ex *Executor) LegacyDealloc(p unsafe.Pointer) {
	if next := ex.advance(); next != nil {
		next.LegacyDealloc(ex, p)
		return
	}
	ex.legacy().legacyDeallocImpl(p)
}

// LegacyRealloc forwards a size-only reallocation.
func (ex *Executor) LegacyRealloc(size uintptr, p unsafe.Pointer) (unsafe.Pointer, error) {
	if next := ex.advance(); next != nil {
		return next.LegacyRealloc(ex, size, p)
	}
	return ex.legacy().legacyReallocImpl(size, p)
}

func (ex *Executor) legacy() legacyStrategy {
	ls, ok := ex.target.(legacyStrategy)
	contract(ok, "legacy request dispatched to %T, which has no legacy capability", ex.target)
	return ls
}

// Registry is an append-only chain of global layers. Readers take a
// snapshot and never block; appends are expected during startup.
type Registry struct {
	mu     sync.Mutex
	layers atomic.Pointer[[]Layer]
}

// globalRegistry backs AddGlobalLayer and is used by every allocator not
// given its own registry.
var globalRegistry Registry

// NewRegistry returns an empty registry. Allocators built WithRegistry
// consult it instead of the process-wide chain.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends l to the chain. There is no removal.
func (r *Registry) Add(l Layer) {
	contract(l != nil, "nil layer")
	r.mu.Lock()
	defer r.mu.Unlock()
	var cur []Layer
	if p := r.layers.Load(); p != nil {
		cur = *p
	}
	next := make([]Layer, len(cur), len(cur)+1)
	copy(next, cur)
	next = append(next, l)
	r.layers.Store(&next)
}

// Layers returns the current chain in registration order.
func (r *Registry) Layers() []Layer {
	if p := r.layers.Load(); p != nil {
		return *p
	}
	return nil
}

// Len returns the number of registered layers.
func (r *Registry) Len() int {
	return len(r.Layers())
}
