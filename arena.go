package alloc

import (
	"fmt"
	"unsafe"

	"go.uber.org/zap"
)

// DefaultBlockSize is the size of an arena's first block (64 KiB).
const DefaultBlockSize = 1 << 16

// minBlockAlign is the alignment every arena block is requested at.
const minBlockAlign = MaxLegacyAlign

// block is one contiguous region obtained from the parent. Offsets are
// relative to base.
type block struct {
	base    unsafe.Pointer
	layout  Layout
	current uintptr
	last    uintptr
	hasLast bool
}

// bump carves l out of the block if it fits.
func (b *block) bump(l Layout) (unsafe.Pointer, bool) {
	start := alignUp(uintptr(b.base)+b.current, l.Align) - uintptr(b.base)
	end := start + l.Size
	if end < start || end > b.layout.Size {
		return nil, false
	}
	b.last, b.hasLast = start, true
	b.current = end
	return unsafe.Add(b.base, start), true
}

func (b *block) isLast(p unsafe.Pointer) bool {
	return b.hasLast && unsafe.Add(b.base, b.last) == p
}

func (b *block) contains(p unsafe.Pointer) bool {
	_, ok := offsetIn(b.base, p, b.layout.Size)
	return ok
}

// Arena is a growable bump allocator. Memory comes from a parent allocator
// in blocks that are chained rather than relocated: when the current block
// is full a new one at least twice the size of the previous is added.
// Blocks are only returned to the parent by Release.
//
// Typical usage: create one arena per request, allocate many temporary
// objects from it, then Reset at the end of the request.
//
// Arena is not safe for concurrent use. Wrap it with SynchronizeResettable
// to share one between goroutines.
type Arena struct {
	dispatch
	parent    Allocator
	blocks    []block
	cur       int
	lastSize  uintptr
	blockSize uintptr
	released  bool
}

// NewArena returns an arena drawing its blocks from parent. Nothing is
// requested from parent until the first allocation.
func NewArena(parent Allocator, opts ...Option) *Arena {
	contract(parent != nil, "arena: nil parent allocator")
	cfg := buildConfig(opts)
	a := &Arena{parent: parent, blockSize: cfg.initialBlockSize}
	a.dispatch.init(a, cfg)
	return a
}

// Name identifies the strategy in logs.
func (a *Arena) Name() string { return "arena" }

// Reset implements Resettable. Every block is kept for reuse.
func (a *Arena) Reset() {
	a.dispatch.reset()
}

// Release resets the arena and returns every block to the parent. Any
// subsequent operation panics.
func (a *Arena) Release() {
	a.Reset()
	for i := range a.blocks {
		a.parent.Dealloc(a.blocks[i].layout, a.blocks[i].base)
	}
	a.blocks = nil
	a.cur = 0
	a.released = true
}

func (a *Arena) mustLive() {
	contract(!a.released, "arena: use after Release()")
}

func (a *Arena) allocImpl(l Layout) (unsafe.Pointer, error) {
	a.mustLive()

	// Fast path: the current block, then any block a Reset left behind it.
	for i := a.cur; i < len(a.blocks); i++ {
		if p, ok := a.blocks[i].bump(l); ok {
			a.cur = i
			return p, nil
		}
	}

	if err := a.grow(l); err != nil {
		return nil, err
	}
	p, ok := a.blocks[a.cur].bump(l)
	contract(ok, "arena: fresh block cannot hold %v", l)
	return p, nil
}

// grow appends a block big enough for l and makes it current.
func (a *Arena) grow(l Layout) error {
	size := a.blockSize
	if a.lastSize > 0 {
		size = a.lastSize * 2
	}
	size = max(size, l.Size)
	bl := Layout{Size: size, Align: max(l.Align, minBlockAlign)}

	p, err := a.parent.Alloc(bl)
	if err != nil {
		return fmt.Errorf("%w: arena: new block %v: %w", ErrAllocationFailure, bl, err)
	}
	a.blocks = append(a.blocks, block{base: p, layout: bl})
	a.cur = len(a.blocks) - 1
	a.lastSize = size
	Logger().Debug("arena block added",
		zap.Int("blocks", len(a.blocks)),
		zap.Uintptr("size", size),
		zap.Uintptr("align", bl.Align))
	return nil
}

func (a *Arena) deallocImpl(_ Layout, p unsafe.Pointer) {
	a.mustLive()
	for i := range a.blocks {
		b := &a.blocks[i]
		if !b.contains(p) {
			continue
		}
		if b.isLast(p) {
			b.current = b.last
			b.hasLast = false
		}
		return
	}
}

func (a *Arena) reallocImpl(from, to Layout, p unsafe.Pointer) (unsafe.Pointer, error) {
	a.mustLive()
	if from.Align != to.Align {
		return ReallocFallback(a, from, to, p)
	}

	var cur *block
	if a.cur < len(a.blocks) {
		cur = &a.blocks[a.cur]
	}
	last := cur != nil && cur.isLast(p)

	switch {
	case to.Size < from.Size:
		// The tail of a block that is not the last allocation stays
		// unused until Reset.
		if last {
			cur.current = cur.last + to.Size
		}
		return p, nil
	case to.Size > from.Size:
		if last && cur.last+to.Size <= cur.layout.Size {
			cur.current = cur.last + to.Size
			return p, nil
		}
		return ReallocFallback(a, from, to, p)
	}
	contract(false, "arena: unreachable realloc %v -> %v", from, to)
	return nil, nil
}

func (a *Arena) resetImpl() {
	a.mustLive()
	for i := range a.blocks {
		a.blocks[i].current = 0
		a.blocks[i].last, a.blocks[i].hasLast = 0, false
	}
	a.cur = 0
}
