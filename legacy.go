package alloc

import "unsafe"

// HeaderSize is the size-prefix the LegacyAdapter places in front of every
// block. It holds the requested size and is padded to MaxLegacyAlign so the
// pointer after it keeps that alignment.
const HeaderSize = MaxLegacyAlign

// headerLayout is the alignment every adapter block is requested at.
var headerLayout = Layout{Size: HeaderSize, Align: HeaderSize}

// LegacyAdapter gives any Layout-aware allocator the Legacy capability by
// storing each block's size in a header just before the returned pointer.
// Layout requests are forwarded to the wrapped allocator unchanged.
type LegacyAdapter struct {
	dispatch
	inner Allocator
}

// NewLegacyAdapter wraps inner.
func NewLegacyAdapter(inner Allocator, opts ...Option) *LegacyAdapter {
	contract(inner != nil, "legacy adapter: nil inner allocator")
	a := &LegacyAdapter{inner: inner}
	a.dispatch.init(a, buildConfig(opts))
	return a
}

// Name identifies the strategy in logs.
func (a *LegacyAdapter) Name() string { return "legacy-adapter" }

// Inner returns the wrapped allocator.
func (a *LegacyAdapter) Inner() Allocator { return a.inner }

// LegacyAlloc implements Legacy.
func (a *LegacyAdapter) LegacyAlloc(size uintptr) (unsafe.Pointer, error) {
	return a.dispatch.legacyAlloc(size)
}

// LegacyDealloc implements Legacy.
func (a *LegacyAdapter) LegacyDealloc(p unsafe.Pointer) {
	a.dispatch.legacyDealloc(p)
}

// LegacyRealloc implements Legacy.
func (a *LegacyAdapter) LegacyRealloc(size uintptr, p unsafe.Pointer) (unsafe.Pointer, error) {
	return a.dispatch.legacyRealloc(size, p)
}

func (a *LegacyAdapter) allocImpl(l Layout) (unsafe.Pointer, error) {
	return a.inner.Alloc(l)
}

func (a *LegacyAdapter) deallocImpl(l Layout, p unsafe.Pointer) {
	a.inner.Dealloc(l, p)
}

func (a *LegacyAdapter) reallocImpl(from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	return a.inner.Realloc(from, to, p)
}

func (a *LegacyAdapter) legacyAllocImpl(size uintptr) (unsafe.Pointer, error) {
	full := headerLayout.WithSize(size + HeaderSize)
	if full.Size < size {
		return nil, allocFailure("legacy adapter: size %d overflows", size)
	}
	base, err := a.inner.Alloc(full)
	if err != nil {
		return nil, err
	}
	*(*uintptr)(base) = size
	return unsafe.Add(base, HeaderSize), nil
}

func (a *LegacyAdapter) legacyDeallocImpl(p unsafe.Pointer) {
	base, size := header(p)
	a.inner.Dealloc(headerLayout.WithSize(size+HeaderSize), base)
}

func (a *LegacyAdapter) legacyReallocImpl(size uintptr, p unsafe.Pointer) (unsafe.Pointer, error) {
	base, old := header(p)
	to := headerLayout.WithSize(size + HeaderSize)
	if to.Size < size {
		return nil, allocFailure("legacy adapter: size %d overflows", size)
	}
	nb, err := a.inner.Realloc(headerLayout.WithSize(old+HeaderSize), to, base)
	if err != nil {
		return nil, err
	}
	*(*uintptr)(nb) = size
	return unsafe.Add(nb, HeaderSize), nil
}

// LegacySize returns the size recorded for a pointer obtained from a
// LegacyAdapter.
func LegacySize(p unsafe.Pointer) uintptr {
	_, size := header(p)
	return size
}

func header(p unsafe.Pointer) (unsafe.Pointer, uintptr) {
	base := unsafe.Add(p, -int(HeaderSize))
	return base, *(*uintptr)(base)
}

// LegacyBacked exposes the Allocator capability on top of a size-only
// allocator. Since Legacy results are only guaranteed MaxLegacyAlign
// alignment, asking for more is a contract violation rather than a silent
// misalignment.
type LegacyBacked struct {
	dispatch
	legacy Legacy
}

// FromLegacy wraps l.
func FromLegacy(l Legacy, opts ...Option) *LegacyBacked {
	contract(l != nil, "legacy backed: nil legacy allocator")
	a := &LegacyBacked{legacy: l}
	a.dispatch.init(a, buildConfig(opts))
	return a
}

// Name identifies the strategy in logs.
func (a *LegacyBacked) Name() string { return "legacy-backed" }

func (a *LegacyBacked) allocImpl(l Layout) (unsafe.Pointer, error) {
	checkLegacyAlign(l)
	return a.legacy.LegacyAlloc(l.Size)
}

func (a *LegacyBacked) deallocImpl(l Layout, p unsafe.Pointer) {
	checkLegacyAlign(l)
	a.legacy.LegacyDealloc(p)
}

func (a *LegacyBacked) reallocImpl(from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	checkLegacyAlign(from)
	checkLegacyAlign(to)
	return a.legacy.LegacyRealloc(to.Size, p)
}

func checkLegacyAlign(l Layout) {
	contract(l.Align <= MaxLegacyAlign,
		"legacy: alignment %d exceeds the supported maximum %d", l.Align, MaxLegacyAlign)
}
