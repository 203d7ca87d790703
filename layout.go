package alloc

import (
	"fmt"
	"unsafe"
)

// Layout describes the shape of a memory block: its size in bytes and the
// alignment its address must satisfy.
//
// Align is a power of two, except that a zero-size layout may carry an
// alignment of zero.
type Layout struct {
	Size  uintptr
	Align uintptr
}

// LayoutOf returns the layout of a single value of type T.
func LayoutOf[T any]() Layout {
	var zero T
	return Layout{Size: unsafe.Sizeof(zero), Align: unsafe.Alignof(zero)}
}

// ArrayOf returns the layout of n consecutive values of type T.
func ArrayOf[T any](n int) Layout {
	return LayoutOf[T]().Array(uintptr(n))
}

// Array repeats l n times. Each element starts on an l.Align boundary, so
// the stride is Size rounded up to Align. Overflow is the caller's problem.
func (l Layout) Array(n uintptr) Layout {
	stride := l.Size
	if l.Align > 1 {
		stride = alignUp(l.Size, l.Align)
	}
	return Layout{Size: stride * n, Align: l.Align}
}

// WithSize returns l with its size replaced.
func (l Layout) WithSize(size uintptr) Layout {
	return Layout{Size: size, Align: l.Align}
}

// WithAlign returns l with its alignment replaced.
func (l Layout) WithAlign(align uintptr) Layout {
	return Layout{Size: l.Size, Align: align}
}

// AddAlignment raises the alignment of l so it satisfies both its current
// requirement and align.
func (l Layout) AddAlignment(align uintptr) Layout {
	if align > l.Align {
		l.Align = align
	}
	return l
}

// Valid reports whether l satisfies the layout invariant.
func (l Layout) Valid() bool {
	if l.Size == 0 && l.Align == 0 {
		return true
	}
	return isPow2(l.Align)
}

func (l Layout) String() string {
	return fmt.Sprintf("{size=%d align=%d}", l.Size, l.Align)
}

func isPow2(x uintptr) bool {
	return x != 0 && x&(x-1) == 0
}
