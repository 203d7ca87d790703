package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type padded struct {
	a int64
	b int8
}

func TestLayoutOf(t *testing.T) {
	assert.Equal(t, Layout{Size: 8, Align: 8}, LayoutOf[int64]())
	assert.Equal(t, Layout{Size: 1, Align: 1}, LayoutOf[byte]())
	assert.Equal(t, Layout{Size: 16, Align: 8}, LayoutOf[padded]())
	assert.Equal(t, Layout{Size: 0, Align: 1}, LayoutOf[struct{}]())
}

func TestArrayOf(t *testing.T) {
	assert.Equal(t, Layout{Size: 16, Align: 4}, ArrayOf[int32](4))
	assert.Equal(t, Layout{Size: 48, Align: 8}, ArrayOf[padded](3))
	assert.Equal(t, Layout{Size: 0, Align: 8}, ArrayOf[int64](0))
}

func TestLayoutCombinators(t *testing.T) {
	l := Layout{Size: 3, Align: 4}

	assert.Equal(t, Layout{Size: 8, Align: 4}, l.Array(2), "stride is size rounded up to align")
	assert.Equal(t, Layout{Size: 3, Align: 1}, Layout{Size: 3, Align: 1}.Array(1))
	assert.Equal(t, Layout{Size: 64, Align: 4}, l.WithSize(64))
	assert.Equal(t, Layout{Size: 3, Align: 32}, l.WithAlign(32))
	assert.Equal(t, Layout{Size: 3, Align: 16}, l.AddAlignment(16))
	assert.Equal(t, l, l.AddAlignment(2), "AddAlignment never lowers alignment")

	// Layouts are values.
	assert.Equal(t, Layout{Size: 3, Align: 4}, l)
}

func TestLayoutValid(t *testing.T) {
	tests := []struct {
		l    Layout
		want bool
	}{
		{Layout{0, 0}, true},
		{Layout{0, 1}, true},
		{Layout{0, 3}, false},
		{Layout{8, 0}, false},
		{Layout{8, 3}, false},
		{Layout{8, 8}, true},
		{Layout{1, 4096}, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.l.Valid(), "%v", tt.l)
	}
}

func TestLayoutString(t *testing.T) {
	assert.Equal(t, "{size=24 align=8}", Layout{Size: 24, Align: 8}.String())
}
