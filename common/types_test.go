package common

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectangleEdges(t *testing.T) {
	r := NewRectangle(10, 20, 30, 40)
	assert.Equal(t, 40, r.Right())
	assert.Equal(t, 60, r.Bottom())
	assert.True(t, r.Contains(10, 20))
	assert.False(t, r.Contains(40, 20))
	assert.False(t, r.Empty())
	assert.True(t, NewRectangle(0, 0, 0, 5).Empty())
}

func TestColorFloats(t *testing.T) {
	f := RGBA(255, 0, 51, 255).Floats()
	assert.InDelta(t, 1.0, f[0], 1e-6)
	assert.InDelta(t, 0.0, f[1], 1e-6)
	assert.InDelta(t, 0.2, f[2], 1e-6)
	assert.InDelta(t, 1.0, f[3], 1e-6)
}

func TestToImageDataFlipsRows(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(0, 1, color.RGBA{B: 255, A: 255})

	data := ToImageData(img, true)
	require.Len(t, data.Pixels, 8)
	assert.Equal(t, []byte{0, 0, 255, 255, 255, 0, 0, 255}, data.Pixels)

	back := ImageFromData(data.Pixels, data.Width, data.Height, true)
	assert.Equal(t, img.Pix, back.Pix)
}

func TestBytesToSliceRoundTrip(t *testing.T) {
	in := []uint16{1, 2, 65535}
	out := BytesToSlice[uint16](SliceToBytes(in))
	assert.Equal(t, in, out)
	assert.Nil(t, BytesToSlice[uint32]([]byte{1}))
}

func TestCoalesceAndClamp(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, 5, Clamp(9, 0, 5))
	assert.Equal(t, uint64(16), AlignUp(4, 13))
}

func TestSetLoggerNilRestoresNop(t *testing.T) {
	SetLogger(nil)
	require.NotNil(t, Logger())
	assert.False(t, Logger().Enabled(t.Context(), 0))
}
