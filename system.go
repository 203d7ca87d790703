package alloc

import (
	"sync"
	"unsafe"
)

// MaxLegacyAlign is the alignment every size-only allocation satisfies,
// and the largest alignment a layout may ask of a Legacy-backed allocator.
const MaxLegacyAlign uintptr = 16

// System is the general-purpose allocator, backed by the Go heap.
//
// Each block is carved out of a byte slice that stays pinned in a table
// keyed by the address handed out, so the garbage collector keeps it alive
// until Dealloc. The Allocator and Legacy capabilities keep separate
// tables: a pointer from one must not be released through the other.
//
// Unlike the bump strategies, System is safe for concurrent use.
type System struct {
	dispatch
	mu     sync.Mutex
	blocks map[uintptr][]byte
	legacy map[uintptr][]byte
}

// NewSystem returns a general-purpose allocator.
func NewSystem(opts ...Option) *System {
	a := &System{
		blocks: make(map[uintptr][]byte),
		legacy: make(map[uintptr][]byte),
	}
	a.dispatch.init(a, buildConfig(opts))
	return a
}

// Name identifies the strategy in logs.
func (a *System) Name() string { return "system" }

// Live returns the number of blocks currently pinned by either capability.
func (a *System) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.blocks) + len(a.legacy)
}

// LegacyAlloc implements Legacy.
func (a *System) LegacyAlloc(size uintptr) (unsafe.Pointer, error) {
	return a.dispatch.legacyAlloc(size)
}

// LegacyDealloc implements Legacy.
func (a *System) LegacyDealloc(p unsafe.Pointer) {
	a.dispatch.legacyDealloc(p)
}

// LegacyRealloc implements Legacy.
func (a *System) LegacyRealloc(size uintptr, p unsafe.Pointer) (unsafe.Pointer, error) {
	return a.dispatch.legacyRealloc(size, p)
}

func (a *System) allocImpl(l Layout) (unsafe.Pointer, error) {
	p, err := carve(l.Size, l.Align)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.blocks[uintptr(p.ptr)] = p.raw
	a.mu.Unlock()
	return p.ptr, nil
}

func (a *System) deallocImpl(_ Layout, p unsafe.Pointer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.blocks[uintptr(p)]
	contract(ok, "system: dealloc of unknown pointer %p", p)
	delete(a.blocks, uintptr(p))
}

func (a *System) reallocImpl(from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	if uintptr(p)%to.Align == 0 {
		a.mu.Lock()
		raw, ok := a.blocks[uintptr(p)]
		a.mu.Unlock()
		contract(ok, "system: realloc of unknown pointer %p", p)
		if to.Size <= room(raw, p) {
			return p, nil
		}
	}
	return ReallocFallback(a, from, to, p)
}

func (a *System) legacyAllocImpl(size uintptr) (unsafe.Pointer, error) {
	p, err := carve(size, MaxLegacyAlign)
	if err != nil {
		return nil, err
	}
	a.mu.Lock()
	a.legacy[uintptr(p.ptr)] = p.raw
	a.mu.Unlock()
	return p.ptr, nil
}

func (a *System) legacyDeallocImpl(p unsafe.Pointer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.legacy[uintptr(p)]
	contract(ok, "system: legacy dealloc of unknown pointer %p", p)
	delete(a.legacy, uintptr(p))
}

// legacyReallocImpl plays the part of realloc(3): grow or shrink in place
// while the pinned slice has room, otherwise move.
func (a *System) legacyReallocImpl(size uintptr, p unsafe.Pointer) (unsafe.Pointer, error) {
	a.mu.Lock()
	raw, ok := a.legacy[uintptr(p)]
	a.mu.Unlock()
	contract(ok, "system: legacy realloc of unknown pointer %p", p)
	if size <= room(raw, p) {
		return p, nil
	}
	np, err := a.legacyAllocImpl(size)
	if err != nil {
		return nil, err
	}
	n := min(room(raw, p), size)
	copy(bytesAt(np, n), bytesAt(p, n))
	a.legacyDeallocImpl(p)
	return np, nil
}

type carved struct {
	ptr unsafe.Pointer
	raw []byte
}

// carve takes size bytes aligned to align from a fresh heap slice.
func carve(size, align uintptr) (carved, error) {
	pad := uintptr(0)
	if align > 1 {
		pad = align - 1
	}
	total := size + pad
	if total < size || total > uintptr(maxSliceLen) {
		return carved{}, allocFailure("system: size %d with align %d is too large", size, align)
	}
	raw := make([]byte, total)
	base := unsafe.Pointer(unsafe.SliceData(raw))
	off := alignUp(uintptr(base), max(align, 1)) - uintptr(base)
	return carved{ptr: unsafe.Add(base, off), raw: raw}, nil
}

// room is the number of usable bytes from p to the end of raw.
func room(raw []byte, p unsafe.Pointer) uintptr {
	off, ok := offsetIn(unsafe.Pointer(unsafe.SliceData(raw)), p, uintptr(len(raw)))
	if !ok {
		return 0
	}
	return uintptr(len(raw)) - off
}

const maxSliceLen = int(^uint(0) >> 2)
