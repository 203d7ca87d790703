package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReallocFallback(t *testing.T) {
	rec := newRecorder("rec", nil)
	a := NewSystem(isolated(WithLayers(rec))...)

	from := Layout{Size: 64, Align: 8}
	p, err := a.Alloc(from)
	require.NoError(t, err)
	writeSeq(p, from.Size, 1)

	tests := []struct {
		name string
		to   Layout
		keep uintptr
	}{
		{"grow", Layout{Size: 256, Align: 8}, 64},
		{"shrink", Layout{Size: 16, Align: 8}, 16},
		{"realign", Layout{Size: 64, Align: 1024}, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec.calls = nil
			q, err := ReallocFallback(a, from, tt.to, p)
			require.NoError(t, err)
			assert.Zero(t, addr(q)%tt.to.Align)
			assert.True(t, checkSeq(q, tt.keep, 1))
			assert.Equal(t, 1, a.Live(), "the old block is released")

			// Every step is a public request the layers observe.
			assert.Equal(t, 1, rec.count("alloc"))
			assert.Equal(t, 1, rec.count("dealloc"))
			c, _ := rec.lastCall("dealloc")
			assert.Equal(t, from, c.from)

			// Put a fresh block back for the next case.
			a.Dealloc(tt.to, q)
			p, err = a.Alloc(from)
			require.NoError(t, err)
			writeSeq(p, from.Size, 1)
		})
	}
}

func TestReallocFallbackFailureKeepsBlock(t *testing.T) {
	a := NewLinear(make([]byte, 128), isolated()...)
	from := Layout{Size: 64, Align: 8}
	p, err := a.Alloc(from)
	require.NoError(t, err)
	writeSeq(p, from.Size, 4)

	q, err := ReallocFallback(a, from, from.WithSize(512), p)
	require.ErrorIs(t, err, ErrAllocationFailure)
	assert.Nil(t, q)
	assert.True(t, checkSeq(p, from.Size, 4))
}

func TestAlignUp(t *testing.T) {
	tests := []struct{ x, align, want uintptr }{
		{0, 8, 0},
		{1, 8, 8},
		{8, 8, 8},
		{9, 16, 16},
		{4097, 4096, 8192},
		{5, 1, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, alignUp(tt.x, tt.align), "alignUp(%d, %d)", tt.x, tt.align)
	}
}
