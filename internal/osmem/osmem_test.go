package osmem

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestMapIsPageAlignedAndZeroed(t *testing.T) {
	page := PageSize()
	require.NotZero(t, page)
	require.Zero(t, page&(page-1), "page size must be a power of two")

	p, err := Map(2 * page)
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Zero(t, uintptr(p)%page)

	b := unsafe.Slice((*byte)(p), 2*page)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, v)
		}
	}
	b[0], b[len(b)-1] = 1, 2

	require.NoError(t, Unmap(p, 2*page))
}

func TestUnmapPartial(t *testing.T) {
	page := PageSize()
	p, err := Map(4 * page)
	require.NoError(t, err)

	// Drop the first and last page, keep the middle two.
	require.NoError(t, Unmap(p, page))
	require.NoError(t, Unmap(unsafe.Add(p, 3*page), page))

	mid := unsafe.Slice((*byte)(unsafe.Add(p, page)), 2*page)
	mid[0] = 0x42
	mid[len(mid)-1] = 0x43
	require.Equal(t, byte(0x42), mid[0])

	require.NoError(t, Unmap(unsafe.Add(p, page), 2*page))
}

func TestUnmapZeroLength(t *testing.T) {
	require.NoError(t, Unmap(nil, 0))
}
