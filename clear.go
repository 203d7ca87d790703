package alloc

import "unsafe"

// Fill patterns written by ClearLayer. They differ so that reading
// uninitialised memory and reading freed memory look different in a
// debugger or hex dump.
const (
	AllocPattern byte = 0xAA
	FreePattern  byte = 0xDD
)

// ClearLayer paints fresh memory with AllocPattern and memory about to be
// released with FreePattern.
//
// Legacy deallocations carry no size and are forwarded untouched.
type ClearLayer struct {
	PassThrough
}

// NewClearLayer returns a ClearLayer.
func NewClearLayer() *ClearLayer {
	return &ClearLayer{}
}

func (*ClearLayer) Alloc(ex *Executor, l Layout) (unsafe.Pointer, error) {
	p, err := ex.Alloc(l)
	if err == nil && p != nil {
		fill(bytesAt(p, l.Size), AllocPattern)
	}
	return p, err
}

func (*ClearLayer) Dealloc(ex *Executor, l Layout, p unsafe.Pointer) {
	fill(bytesAt(p, l.Size), FreePattern)
	ex.Dealloc(l, p)
}

func (*ClearLayer) Realloc(ex *Executor, from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	if to.Size < from.Size {
		fill(bytesAt(unsafe.Add(p, to.Size), from.Size-to.Size), FreePattern)
	}
	np, err := ex.Realloc(from, to, p)
	if err == nil && np != nil && to.Size > from.Size {
		fill(bytesAt(unsafe.Add(np, from.Size), to.Size-from.Size), AllocPattern)
	}
	return np, err
}

func (*ClearLayer) LegacyAlloc(ex *Executor, size uintptr) (unsafe.Pointer, error) {
	p, err := ex.LegacyAlloc(size)
	if err == nil && p != nil {
		fill(bytesAt(p, size), AllocPattern)
	}
	return p, err
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
