package alloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinearAlloc(t *testing.T) {
	buf := make([]byte, 256)
	a := NewLinear(buf, isolated()...)
	base := addr(unsafe.Pointer(unsafe.SliceData(buf)))

	p1, err := a.Alloc(Layout{Size: 3, Align: 1})
	require.NoError(t, err)
	assert.Equal(t, base, addr(p1))

	p2, err := a.Alloc(Layout{Size: 8, Align: 8})
	require.NoError(t, err)
	assert.Zero(t, addr(p2)%8)
	assert.GreaterOrEqual(t, addr(p2), addr(p1)+3)
	assert.Equal(t, int(addr(p2)-base)+8, a.Used())
}

func TestLinearExhaustion(t *testing.T) {
	a := NewLinear(make([]byte, 64), isolated()...)

	_, err := a.Alloc(Layout{Size: 48, Align: 1})
	require.NoError(t, err)

	p, err := a.Alloc(Layout{Size: 17, Align: 1})
	require.ErrorIs(t, err, ErrAllocationFailure)
	assert.Nil(t, p)
	assert.Equal(t, 48, a.Used(), "a failed request leaves the cursor alone")

	_, err = a.Alloc(Layout{Size: 16, Align: 1})
	require.NoError(t, err)
	assert.Equal(t, 64, a.Used())
}

func TestLinearEmptyBuffer(t *testing.T) {
	a := NewLinear(nil, isolated()...)
	_, err := a.Alloc(Layout{Size: 1, Align: 1})
	require.ErrorIs(t, err, ErrAllocationFailure)
}

func TestLinearLastAllocationReclaim(t *testing.T) {
	a := NewLinear(make([]byte, 256), isolated()...)
	l := Layout{Size: 32, Align: 8}

	_, err := a.Alloc(l)
	require.NoError(t, err)
	b, err := a.Alloc(l)
	require.NoError(t, err)

	a.Dealloc(l, b)
	c, err := a.Alloc(l.WithSize(16))
	require.NoError(t, err)
	assert.LessOrEqual(t, addr(c), addr(b))
}

func TestLinearDeallocNotLastIsNoop(t *testing.T) {
	a := NewLinear(make([]byte, 256), isolated()...)
	l := Layout{Size: 32, Align: 8}

	first, err := a.Alloc(l)
	require.NoError(t, err)
	_, err = a.Alloc(l)
	require.NoError(t, err)
	used := a.Used()

	a.Dealloc(l, first)
	assert.Equal(t, used, a.Used())
}

func TestLinearReallocShrink(t *testing.T) {
	a := NewLinear(make([]byte, 256), isolated()...)
	l := Layout{Size: 64, Align: 8}

	first, err := a.Alloc(l)
	require.NoError(t, err)
	last, err := a.Alloc(l)
	require.NoError(t, err)
	used := a.Used()

	// Not the last allocation: same pointer, nothing reclaimed.
	q, err := a.Realloc(l, l.WithSize(8), first)
	require.NoError(t, err)
	assert.Equal(t, first, q)
	assert.Equal(t, used, a.Used())

	// The last allocation gives its tail back.
	q, err = a.Realloc(l, l.WithSize(8), last)
	require.NoError(t, err)
	assert.Equal(t, last, q)
	assert.Equal(t, used-56, a.Used())
}

func TestLinearReallocGrow(t *testing.T) {
	a := NewLinear(make([]byte, 512), isolated()...)
	l := Layout{Size: 32, Align: 8}

	first, err := a.Alloc(l)
	require.NoError(t, err)
	writeSeq(first, 32, 1)
	last, err := a.Alloc(l)
	require.NoError(t, err)
	writeSeq(last, 32, 2)

	q, err := a.Realloc(l, l.WithSize(100), last)
	require.NoError(t, err)
	assert.Equal(t, last, q, "the last allocation grows in place")
	assert.True(t, checkSeq(q, 32, 2))

	moved, err := a.Realloc(l, l.WithSize(64), first)
	require.NoError(t, err)
	assert.NotEqual(t, first, moved, "earlier allocations must relocate to grow")
	assert.True(t, checkSeq(moved, 32, 1))

	// Growing past the end of the buffer fails and keeps the block.
	_, err = a.Realloc(l.WithSize(64), l.WithSize(1024), moved)
	require.ErrorIs(t, err, ErrAllocationFailure)
	assert.True(t, checkSeq(moved, 32, 1))
}

func TestLinearReallocStricterAlignment(t *testing.T) {
	a := NewLinear(make([]byte, 1024), isolated()...)
	_, err := a.Alloc(Layout{Size: 1, Align: 1})
	require.NoError(t, err)

	l := Layout{Size: 16, Align: 1}
	p, err := a.Alloc(l)
	require.NoError(t, err)
	writeSeq(p, 16, 6)

	to := Layout{Size: 16, Align: 256}
	q, err := a.Realloc(l, to, p)
	require.NoError(t, err)
	assert.Zero(t, addr(q)%256)
	assert.True(t, checkSeq(q, 16, 6))
}

func TestLinearReset(t *testing.T) {
	a := NewLinear(make([]byte, 1024), isolated()...)
	l := Layout{Size: 24, Align: 8}

	first, err := a.Alloc(l)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		_, err := a.Alloc(l)
		require.NoError(t, err)
	}

	a.Reset()
	assert.Zero(t, a.Used())
	again, err := a.Alloc(l)
	require.NoError(t, err)
	assert.Equal(t, first, again)
}

func TestLinearFromParent(t *testing.T) {
	parent := NewSystem(isolated()...)
	a, err := NewLinearFrom(parent, 512, isolated()...)
	require.NoError(t, err)
	assert.Equal(t, 1, parent.Live())
	assert.Equal(t, 512, a.Capacity())

	p, err := a.Alloc(Layout{Size: 500, Align: 4})
	require.NoError(t, err)
	writeSeq(p, 500, 0)

	a.Release()
	assert.Zero(t, parent.Live())
	assert.Panics(t, func() { _, _ = a.Alloc(Layout{Size: 1, Align: 1}) })
	assert.Panics(t, func() { a.Release() })
}

func TestLinearFromFailingParent(t *testing.T) {
	parent := NewLinear(make([]byte, 32), isolated()...)
	_, err := NewLinearFrom(parent, 4096, isolated()...)
	require.ErrorIs(t, err, ErrAllocationFailure)
}
