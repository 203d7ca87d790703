package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageAlloc(t *testing.T) {
	a := NewPage(isolated()...)
	page := a.PageSize()
	require.NotZero(t, page)

	l := Layout{Size: 10, Align: 8}
	p, err := a.Alloc(l)
	require.NoError(t, err)
	assert.Zero(t, addr(p)%page, "page allocations start on a page")

	// The whole rounded page is usable and starts zeroed.
	b := bytesAt(p, page)
	for i := range b {
		require.Zero(t, b[i])
	}
	b[page-1] = 1
	a.Dealloc(l, p)
}

func TestPageLargeAlignment(t *testing.T) {
	a := NewPage(isolated()...)
	for _, mult := range []uintptr{2, 16, 64} {
		align := a.PageSize() * mult
		l := Layout{Size: 3 * a.PageSize(), Align: align}
		p, err := a.Alloc(l)
		require.NoError(t, err)
		assert.Zero(t, addr(p)%align)
		writeSeq(p, l.Size, 3)
		assert.True(t, checkSeq(p, l.Size, 3))
		a.Dealloc(l, p)
	}
}

func TestPageRealloc(t *testing.T) {
	a := NewPage(isolated()...)
	page := a.PageSize()

	l := Layout{Size: 4 * page, Align: 8}
	p, err := a.Alloc(l)
	require.NoError(t, err)
	writeSeq(p, l.Size, 9)

	// Same page count: untouched.
	q, err := a.Realloc(l, l.WithSize(4*page-5), p)
	require.NoError(t, err)
	assert.Equal(t, p, q)

	// Shrink: surplus pages go back, pointer stays.
	small := l.WithSize(page + 1)
	q, err = a.Realloc(l.WithSize(4*page-5), small, p)
	require.NoError(t, err)
	assert.Equal(t, p, q)
	assert.True(t, checkSeq(q, small.Size, 9))

	// Grow: moves and keeps the contents.
	big := l.WithSize(8 * page)
	r, err := a.Realloc(small, big, q)
	require.NoError(t, err)
	assert.True(t, checkSeq(r, small.Size, 9))
	writeSeq(r, big.Size, 1)
	a.Dealloc(big, r)
}

func TestPageOverflow(t *testing.T) {
	a := NewPage(isolated()...)
	_, err := a.Alloc(Layout{Size: ^uintptr(0) - 1, Align: 8})
	require.ErrorIs(t, err, ErrAllocationFailure)
}
