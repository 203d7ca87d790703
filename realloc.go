package alloc

import "unsafe"

// ReallocFallback moves a block the slow way: allocate to, copy the
// overlapping prefix, free the old block. Strategies use it when they
// cannot resize in place. All three steps go through a's public methods,
// so layers observe them.
func ReallocFallback(a Allocator, from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	np, err := a.Alloc(to)
	if err != nil {
		return nil, err
	}
	n := min(from.Size, to.Size)
	if n > 0 && np != nil {
		copy(bytesAt(np, n), bytesAt(p, n))
	}
	a.Dealloc(from, p)
	return np, nil
}

// alignUp rounds x up to a multiple of align, which must be a power of two.
func alignUp(x, align uintptr) uintptr {
	mask := align - 1
	return (x + mask) &^ mask
}

// bytesAt views n bytes starting at p.
func bytesAt(p unsafe.Pointer, n uintptr) []byte {
	return unsafe.Slice((*byte)(p), n)
}

// offsetIn reports p's byte offset within the n-byte region at base.
func offsetIn(base, p unsafe.Pointer, n uintptr) (uintptr, bool) {
	b, q := uintptr(base), uintptr(p)
	if base == nil || q < b || q >= b+n {
		return 0, false
	}
	return q - b, true
}
