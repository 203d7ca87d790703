package alloc

import (
	"runtime"
	"unsafe"
)

// Create returns a pointer to a zeroed T allocated from a.
//
// The memory is invisible to the garbage collector: T must not hold the only
// reference to a Go heap object. Zero-sized types never reach a.
func Create[T any](a Allocator) (*T, error) {
	l := LayoutOf[T]()
	if l.Size == 0 {
		return new(T), nil
	}
	p, err := a.Alloc(l)
	if err != nil {
		return nil, err
	}
	clear(bytesAt(p, l.Size))
	return (*T)(p), nil
}

// CreateUninitialized is like Create but leaves the memory as the
// allocator returned it.
func CreateUninitialized[T any](a Allocator) (*T, error) {
	l := LayoutOf[T]()
	if l.Size == 0 {
		return new(T), nil
	}
	p, err := a.Alloc(l)
	if err != nil {
		return nil, err
	}
	return (*T)(p), nil
}

// Destroy releases a value obtained from Create on the same allocator.
func Destroy[T any](a Allocator, v *T) {
	l := LayoutOf[T]()
	if v == nil || l.Size == 0 {
		return
	}
	a.Dealloc(l, unsafe.Pointer(v))
}

// CreateSlice allocates a zeroed slice of n elements of type T.
// Returns nil if n <= 0.
func CreateSlice[T any](a Allocator, n int) ([]T, error) {
	if n <= 0 {
		return nil, nil
	}
	l := ArrayOf[T](n)
	if l.Size == 0 {
		return make([]T, n), nil
	}
	p, err := a.Alloc(l)
	if err != nil {
		return nil, err
	}
	clear(bytesAt(p, l.Size))
	return unsafe.Slice((*T)(p), n), nil
}

// DestroySlice releases a slice obtained from CreateSlice or ResizeSlice.
// The slice must have its original length.
func DestroySlice[T any](a Allocator, s []T) {
	l := ArrayOf[T](len(s))
	if len(s) == 0 || l.Size == 0 {
		return
	}
	a.Dealloc(l, unsafe.Pointer(unsafe.SliceData(s)))
}

// ResizeSlice grows or shrinks s to n elements, in place when the
// allocator allows it. New elements are zeroed.
func ResizeSlice[T any](a Allocator, s []T, n int) ([]T, error) {
	if n < 0 {
		n = 0
	}
	from, to := ArrayOf[T](len(s)), ArrayOf[T](n)
	if to.Size == 0 && from.Size == 0 {
		if n == 0 {
			return nil, nil
		}
		return make([]T, n), nil
	}
	var old unsafe.Pointer
	if len(s) > 0 {
		old = unsafe.Pointer(unsafe.SliceData(s))
	}
	p, err := a.Realloc(from, to, old)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	if to.Size > from.Size {
		clear(bytesAt(unsafe.Add(p, from.Size), to.Size-from.Size))
	}
	return unsafe.Slice((*T)(p), n), nil
}

// KeepAlive returns v and keeps owner reachable until this call, for code
// that holds a pointer into memory owned by owner.
func KeepAlive[T any](owner Allocator, v *T) *T {
	runtime.KeepAlive(owner)
	return v
}
