//go:build unix

package osmem

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// PageSize returns the OS page size.
func PageSize() uintptr {
	return uintptr(unix.Getpagesize())
}

// Map returns n bytes of zeroed, private, read-write anonymous memory.
// n must be a multiple of PageSize.
func Map(n uintptr) (unsafe.Pointer, error) {
	return unix.MmapPtr(-1, 0, nil, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
}

// Unmap returns the n bytes at p to the OS. The range must be page aligned
// and lie inside a region obtained from Map; partial unmaps are allowed.
func Unmap(p unsafe.Pointer, n uintptr) error {
	if n == 0 {
		return nil
	}
	return unix.MunmapPtr(p, n)
}
