//go:build !unix

package osmem

import (
	"os"
	"sync"
	"unsafe"
)

// Without mmap the pages come from the Go heap. Each live range is pinned
// by its start address; unmapping part of a range re-pins what is left.
var (
	mu     sync.Mutex
	pinned = map[uintptr]region{}
)

type region struct {
	raw []byte
	n   uintptr
}

// PageSize returns the OS page size.
func PageSize() uintptr {
	return uintptr(os.Getpagesize())
}

// Map returns n zeroed bytes starting on a page boundary.
func Map(n uintptr) (unsafe.Pointer, error) {
	page := PageSize()
	raw := make([]byte, n+page)
	base := unsafe.Pointer(unsafe.SliceData(raw))
	off := (uintptr(base)+page-1)&^(page-1) - uintptr(base)
	p := unsafe.Add(base, off)
	mu.Lock()
	pinned[uintptr(p)] = region{raw: raw, n: n}
	mu.Unlock()
	return p, nil
}

// Unmap releases the n bytes at p. Only leading or whole ranges of a
// mapping can be released; the remainder of a range stays pinned.
func Unmap(p unsafe.Pointer, n uintptr) error {
	if n == 0 {
		return nil
	}
	mu.Lock()
	defer mu.Unlock()
	for start, r := range pinned {
		if uintptr(p) < start || uintptr(p) >= start+r.n {
			continue
		}
		delete(pinned, start)
		if head := uintptr(p) - start; head > 0 {
			pinned[start] = region{raw: r.raw, n: head}
		}
		if end := uintptr(p) + n; end < start+r.n {
			pinned[end] = region{raw: r.raw, n: start + r.n - end}
		}
		return nil
	}
	return nil
}
