package sprite

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineBatchDrawsSegments(t *testing.T) {
	ctx, drv := newTestContext(t)
	lb, err := NewLineBatch(ctx)
	require.NoError(t, err)
	t.Cleanup(lb.Dispose)

	require.NoError(t, lb.Begin(newTestProgram(t, ctx)))
	require.NoError(t, lb.DrawLine(mgl32.Vec2{0, 0}, mgl32.Vec2{10, 5}, common.Green))
	require.NoError(t, lb.DrawRectangleOutline(common.NewRectangle(1, 2, 3, 4), common.Red))
	assert.Equal(t, 5, lb.Count())
	require.NoError(t, lb.End())

	require.Len(t, drv.Draws, 1)
	draw := drv.Draws[0]
	assert.Equal(t, driver.PrimitiveLines, draw.Mode)
	assert.Equal(t, 10, draw.Count)
	assert.Equal(t, uint32(10), draw.End)
	assert.Equal(t, []uint16{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, drawnIndices(draw))

	v := drawnVertices(draw, 10)
	assert.Equal(t, mgl32.Vec2{10, 5}, v[1].Position)
	assert.Equal(t, common.Green, v[0].Color)
	assert.Equal(t, mgl32.Vec2{0.5, 0.5}, v[0].TexCoord)
	assert.Equal(t, mgl32.Vec2{1, 2}, v[2].Position)
	assert.Equal(t, mgl32.Vec2{4, 2}, v[3].Position)
	assert.Equal(t, mgl32.Vec2{1, 6}, v[8].Position)
	assert.Equal(t, mgl32.Vec2{1, 2}, v[9].Position)
	assert.Equal(t, common.Red, v[9].Color)

	white := drv.Textures[draw.Texture0]
	require.NotNil(t, white)
	assert.Equal(t, []byte{255, 255, 255, 255}, white.Pixels)
}

func TestLineBatchStateErrors(t *testing.T) {
	ctx, _ := newTestContext(t)
	lb, err := NewLineBatch(ctx, WithLabel("debug lines"))
	require.NoError(t, err)
	t.Cleanup(lb.Dispose)

	assert.ErrorIs(t, lb.DrawLine(mgl32.Vec2{}, mgl32.Vec2{1, 1}, common.White), ErrInvalidOperationSequence)
	assert.ErrorIs(t, lb.End(), ErrInvalidOperationSequence)
	require.NoError(t, lb.Begin(newTestProgram(t, ctx)))
	assert.ErrorIs(t, lb.Begin(newTestProgram(t, ctx)), ErrInvalidOperationSequence)
	require.NoError(t, lb.End())
}

func TestLineBatchDisposeReleasesResources(t *testing.T) {
	ctx, _ := newTestContext(t)
	before := len(ctx.LiveResources())

	lb, err := NewLineBatch(ctx)
	require.NoError(t, err)
	assert.Len(t, ctx.LiveResources(), before+3)

	lb.Dispose()
	assert.Len(t, ctx.LiveResources(), before)
}
