package alloc

import (
	"unsafe"

	"go.uber.org/zap"

	"github.com/pavanmanishd/alloc/internal/osmem"
)

// Page allocates whole OS pages straight from the kernel. It has no
// parent: it is the source other strategies sit on.
//
// Every allocation is rounded up to the page size, so Page suits large or
// long-lived blocks such as arena backing memory. Alignments above the page
// size are met by over-mapping and unmapping the surplus immediately, so
// Dealloc only needs the layout.
type Page struct {
	dispatch
	pageSize uintptr
}

// NewPage returns a page allocator.
func NewPage(opts ...Option) *Page {
	a := &Page{pageSize: osmem.PageSize()}
	a.dispatch.init(a, buildConfig(opts))
	return a
}

// Name identifies the strategy in logs.
func (a *Page) Name() string { return "page" }

// PageSize returns the granularity of every mapping.
func (a *Page) PageSize() uintptr { return a.pageSize }

func (a *Page) allocImpl(l Layout) (unsafe.Pointer, error) {
	n := alignUp(l.Size, a.pageSize)
	if n < l.Size {
		return nil, allocFailure("page: size %d overflows", l.Size)
	}
	if l.Align <= a.pageSize {
		return a.mmap(n)
	}

	// Alignments above the page size are multiples of it, so the surplus
	// on either side of the aligned range is whole pages.
	over := n + l.Align
	if over < n {
		return nil, allocFailure("page: size %d with align %d overflows", l.Size, l.Align)
	}
	p, err := a.mmap(over)
	if err != nil {
		return nil, err
	}
	lead := alignUp(uintptr(p), l.Align) - uintptr(p)
	a.munmap(p, lead)
	a.munmap(unsafe.Add(p, lead+n), over-lead-n)
	return unsafe.Add(p, lead), nil
}

func (a *Page) deallocImpl(l Layout, p unsafe.Pointer) {
	a.munmap(p, alignUp(l.Size, a.pageSize))
}

func (a *Page) reallocImpl(from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	if uintptr(p)%to.Align == 0 {
		oldN := alignUp(from.Size, a.pageSize)
		newN := alignUp(to.Size, a.pageSize)
		switch {
		case newN == oldN:
			return p, nil
		case newN < oldN:
			a.munmap(unsafe.Add(p, newN), oldN-newN)
			return p, nil
		}
	}
	return ReallocFallback(a, from, to, p)
}

func (a *Page) mmap(n uintptr) (unsafe.Pointer, error) {
	p, err := osmem.Map(n)
	if err != nil {
		Logger().Warn("page mapping failed", zap.Uintptr("bytes", n), zap.Error(err))
		return nil, allocFailure("page: map %d bytes: %v", n, err)
	}
	return p, nil
}

// munmap never fails for a range this allocator mapped, so a failure means
// the caller handed back a pointer or layout it did not get from us.
func (a *Page) munmap(p unsafe.Pointer, n uintptr) {
	err := osmem.Unmap(p, n)
	contract(err == nil, "page: unmap %d bytes at %p: %v", n, p, err)
}
