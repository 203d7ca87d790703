package alloc

import "unsafe"

// Linear is a bump allocator over one fixed buffer. It never grows.
//
// Only the most recent allocation can be given back individually; every
// other block is reclaimed by Reset. Not safe for concurrent use.
type Linear struct {
	dispatch
	buf     []byte
	base    unsafe.Pointer
	end     uintptr
	cursor  uintptr
	last    uintptr
	hasLast bool

	parent       Allocator
	parentLayout Layout
	released     bool
}

// NewLinear returns a linear allocator carving up buf. The allocator keeps
// buf reachable; the caller must not use buf directly while it is in use.
func NewLinear(buf []byte, opts ...Option) *Linear {
	a := &Linear{
		buf:  buf,
		base: unsafe.Pointer(unsafe.SliceData(buf)),
		end:  uintptr(len(buf)),
	}
	a.dispatch.init(a, buildConfig(opts))
	return a
}

// NewLinearFrom returns a linear allocator whose buffer of size bytes comes
// from parent. Release hands the buffer back.
func NewLinearFrom(parent Allocator, size uintptr, opts ...Option) (*Linear, error) {
	contract(parent != nil, "linear: nil parent allocator")
	l := Layout{Size: size, Align: MaxLegacyAlign}
	p, err := parent.Alloc(l)
	if err != nil {
		return nil, err
	}
	a := &Linear{
		base:         p,
		end:          size,
		parent:       parent,
		parentLayout: l,
	}
	a.dispatch.init(a, buildConfig(opts))
	return a, nil
}

// Name identifies the strategy in logs.
func (a *Linear) Name() string { return "linear" }

// Reset implements Resettable.
func (a *Linear) Reset() {
	a.dispatch.reset()
}

// Release returns a parent-supplied buffer to its parent. Further use of
// the allocator panics. It is a no-op for caller-supplied buffers beyond
// making the allocator unusable.
func (a *Linear) Release() {
	a.mustLive()
	if a.parent != nil {
		a.parent.Dealloc(a.parentLayout, a.base)
	}
	a.released = true
	a.buf, a.base, a.end, a.cursor, a.hasLast = nil, nil, 0, 0, false
}

func (a *Linear) mustLive() {
	contract(!a.released, "linear: use after Release()")
}

func (a *Linear) allocImpl(l Layout) (unsafe.Pointer, error) {
	a.mustLive()
	start := alignUp(uintptr(a.base)+a.cursor, l.Align) - uintptr(a.base)
	end := start + l.Size
	if a.base == nil || end < start || end > a.end {
		return nil, allocFailure("linear: %v does not fit (%d of %d bytes used)", l, a.cursor, a.end)
	}
	a.last, a.hasLast = start, true
	a.cursor = end
	return unsafe.Add(a.base, start), nil
}

func (a *Linear) deallocImpl(_ Layout, p unsafe.Pointer) {
	a.mustLive()
	if a.isLast(p) {
		a.cursor = a.last
		a.hasLast = false
	}
}

func (a *Linear) reallocImpl(from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	a.mustLive()
	if to.Align > from.Align {
		return ReallocFallback(a, from, to, p)
	}
	switch {
	case to.Size <= from.Size:
		// Shrinking never relocates. Only the last block gives bytes back.
		if a.isLast(p) {
			a.cursor = a.last + to.Size
		}
		return p, nil
	case a.isLast(p) && a.last+to.Size <= a.end:
		a.cursor = a.last + to.Size
		return p, nil
	default:
		return ReallocFallback(a, from, to, p)
	}
}

func (a *Linear) resetImpl() {
	a.mustLive()
	a.cursor = 0
	a.last, a.hasLast = 0, false
}

func (a *Linear) isLast(p unsafe.Pointer) bool {
	return a.hasLast && unsafe.Add(a.base, a.last) == p
}
