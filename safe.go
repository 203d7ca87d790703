package alloc

import (
	"sync"
	"unsafe"
)

// Synchronized is a mutex-protected wrapper around any Allocator for
// concurrent access. All operations are thread-safe but come with the
// overhead of mutex locking.
type Synchronized struct {
	dispatch
	mu    sync.Mutex
	inner Allocator
}

// Synchronize wraps a for use from multiple goroutines.
func Synchronize(a Allocator, opts ...Option) *Synchronized {
	contract(a != nil, "synchronized: nil allocator")
	s := &Synchronized{inner: a}
	s.dispatch.init(s, buildConfig(opts))
	return s
}

// Name identifies the strategy in logs.
func (s *Synchronized) Name() string { return "synchronized" }

// Inner returns the wrapped allocator.
func (s *Synchronized) Inner() Allocator { return s.inner }

func (s *Synchronized) allocImpl(l Layout) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Alloc(l)
}

func (s *Synchronized) deallocImpl(l Layout, p unsafe.Pointer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Dealloc(l, p)
}

func (s *Synchronized) reallocImpl(from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Realloc(from, to, p)
}

// SynchronizedResettable is a Synchronized wrapper that also exposes the
// wrapped allocator's Reset.
type SynchronizedResettable struct {
	Synchronized
	resetter Resettable
}

// SynchronizeResettable wraps r for use from multiple goroutines.
func SynchronizeResettable(r Resettable, opts ...Option) *SynchronizedResettable {
	contract(r != nil, "synchronized: nil allocator")
	s := &SynchronizedResettable{resetter: r}
	s.inner = r
	s.dispatch.init(s, buildConfig(opts))
	return s
}

// Reset implements Resettable.
func (s *SynchronizedResettable) Reset() {
	s.dispatch.reset()
}

func (s *SynchronizedResettable) resetImpl() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetter.Reset()
}
