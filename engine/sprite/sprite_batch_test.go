package sprite

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver/drivertest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/vertex"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) (renderer.RenderContext, *drivertest.Driver) {
	t.Helper()
	drv := drivertest.New()
	drv.Attributes = []driver.AttributeInfo{
		{Name: "Position", Location: 0},
		{Name: "TexCoord", Location: 1},
		{Name: "Color", Location: 2},
	}
	drv.Uniforms = []driver.UniformInfo{{Name: "transform"}}
	ctx, err := renderer.NewRenderContext(drv)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Dispose() })
	return ctx, drv
}

func newTestTexture(t *testing.T, ctx renderer.RenderContext, w, h int) renderer.Texture2D {
	t.Helper()
	tex, err := renderer.NewTexture2D(ctx, w, h)
	require.NoError(t, err)
	t.Cleanup(tex.Dispose)
	return tex
}

func newTestProgram(t *testing.T, ctx renderer.RenderContext) renderer.ShaderProgram {
	t.Helper()
	p, err := renderer.NewShaderProgram(ctx, "sprite vertex", "sprite fragment")
	require.NoError(t, err)
	t.Cleanup(p.Dispose)
	return p
}

func newTestSpriteBatch(t *testing.T, ctx renderer.RenderContext, options ...BatchOption) SpriteBatch {
	t.Helper()
	sb, err := NewSpriteBatch(ctx, options...)
	require.NoError(t, err)
	t.Cleanup(sb.Dispose)
	return sb
}

func drawnVertices(draw drivertest.Draw, n int) []vertex.Position2TextureColor {
	return common.BytesToSlice[vertex.Position2TextureColor](draw.Vertices)[:n]
}

func drawnIndices(draw drivertest.Draw) []uint16 {
	return common.BytesToSlice[uint16](draw.Indices)
}

func TestSpriteBatchSourceRectangleMapping(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx, 256, 256)
	shader := newTestProgram(t, ctx)
	sb := newTestSpriteBatch(t, ctx)

	require.NoError(t, sb.Begin(shader))
	require.NoError(t, sb.DrawSource(tex, common.NewRectangle(10, 10, 64, 64), common.NewRectangle(0, 0, 64, 64), common.White, FlipNone))
	require.NoError(t, sb.End())

	require.Len(t, drv.Draws, 1)
	draw := drv.Draws[0]
	assert.Equal(t, driver.PrimitiveTriangles, draw.Mode)
	assert.Equal(t, 6, draw.Count)
	assert.Equal(t, driver.ScalarUnsignedShort, draw.IndexType)
	assert.Equal(t, uint32(0), draw.Start)
	assert.Equal(t, uint32(4), draw.End)
	assert.Equal(t, tex.Handle(), draw.Texture0)
	assert.Equal(t, shader.Handle(), draw.Program)
	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3}, drawnIndices(draw))

	v := drawnVertices(draw, 4)
	assert.Equal(t, mgl32.Vec2{10, 74}, v[0].Position)
	assert.Equal(t, mgl32.Vec2{0, 0.75}, v[0].TexCoord)
	assert.Equal(t, mgl32.Vec2{74, 74}, v[1].Position)
	assert.Equal(t, mgl32.Vec2{0.25, 0.75}, v[1].TexCoord)
	assert.Equal(t, mgl32.Vec2{74, 10}, v[2].Position)
	assert.Equal(t, mgl32.Vec2{0.25, 1}, v[2].TexCoord)
	assert.Equal(t, mgl32.Vec2{10, 10}, v[3].Position)
	assert.Equal(t, mgl32.Vec2{0, 1}, v[3].TexCoord)
	for _, vert := range v {
		assert.Equal(t, common.White, vert.Color)
	}
}

func TestSpriteBatchFlips(t *testing.T) {
	tests := []struct {
		name   string
		flip   Flip
		bottom mgl32.Vec2
		top    mgl32.Vec2
	}{
		{name: "none", flip: FlipNone, bottom: mgl32.Vec2{0, 0.75}, top: mgl32.Vec2{0.25, 1}},
		{name: "horizontal", flip: FlipHorizontally, bottom: mgl32.Vec2{0.25, 0.75}, top: mgl32.Vec2{0, 1}},
		{name: "vertical", flip: FlipVertically, bottom: mgl32.Vec2{0, 1}, top: mgl32.Vec2{0.25, 0.75}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, drv := newTestContext(t)
			tex := newTestTexture(t, ctx, 256, 256)
			sb := newTestSpriteBatch(t, ctx)

			require.NoError(t, sb.Begin(newTestProgram(t, ctx)))
			require.NoError(t, sb.DrawSource(tex, common.NewRectangle(0, 0, 64, 64), common.NewRectangle(0, 0, 64, 64), common.White, tt.flip))
			require.NoError(t, sb.End())

			v := drawnVertices(drv.Draws[0], 4)
			assert.Equal(t, tt.bottom, v[0].TexCoord)
			assert.Equal(t, tt.top, v[2].TexCoord)
		})
	}
}

func TestSpriteBatchFlushesOnTextureChange(t *testing.T) {
	ctx, drv := newTestContext(t)
	a := newTestTexture(t, ctx, 4, 4)
	b := newTestTexture(t, ctx, 4, 4)
	sb := newTestSpriteBatch(t, ctx)
	dest := common.NewRectangle(0, 0, 4, 4)

	require.NoError(t, sb.Begin(newTestProgram(t, ctx)))
	require.NoError(t, sb.Draw(a, dest, common.White))
	require.NoError(t, sb.Draw(a, dest, common.White))
	assert.Equal(t, 2, sb.Count())
	require.NoError(t, sb.Draw(b, dest, common.White))
	assert.Equal(t, 1, sb.Count())
	require.NoError(t, sb.End())

	require.Len(t, drv.Draws, 2)
	assert.Equal(t, 12, drv.Draws[0].Count)
	assert.Equal(t, a.Handle(), drv.Draws[0].Texture0)
	assert.Equal(t, 6, drv.Draws[1].Count)
	assert.Equal(t, b.Handle(), drv.Draws[1].Texture0)
	assert.Equal(t, 0, sb.Count())
}

func TestSpriteBatchFlushesOnShaderChange(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx, 4, 4)
	first := newTestProgram(t, ctx)
	second := newTestProgram(t, ctx)
	sb := newTestSpriteBatch(t, ctx)
	dest := common.NewRectangle(0, 0, 4, 4)

	require.NoError(t, sb.Begin(first))
	require.NoError(t, sb.Draw(tex, dest, common.White))
	require.NoError(t, sb.End())

	require.NoError(t, sb.Begin(second))
	require.NoError(t, sb.Draw(tex, dest, common.White))
	require.NoError(t, sb.End())

	require.Len(t, drv.Draws, 2)
	assert.Equal(t, first.Handle(), drv.Draws[0].Program)
	assert.Equal(t, second.Handle(), drv.Draws[1].Program)
}

func TestSpriteBatchGrowthIsLossless(t *testing.T) {
	const items = 10
	render := func(t *testing.T, options ...BatchOption) (drivertest.Draw, int) {
		ctx, drv := newTestContext(t)
		tex := newTestTexture(t, ctx, 32, 32)
		sb := newTestSpriteBatch(t, ctx, options...)

		require.NoError(t, sb.Begin(newTestProgram(t, ctx)))
		for i := range items {
			color := common.Color{R: uint8(i), G: 255, B: 0, A: 255}
			require.NoError(t, sb.DrawSource(tex, common.NewRectangle(i*8, i, 8, 8), common.NewRectangle(i, 0, 8, 8), color, FlipNone))
		}
		capacity := sb.Capacity()
		require.NoError(t, sb.End())
		require.Len(t, drv.Draws, 1)
		return drv.Draws[0], capacity
	}

	var small, large drivertest.Draw
	var grown int
	t.Run("grown", func(t *testing.T) { small, grown = render(t, WithInitialCapacity(4)) })
	t.Run("preallocated", func(t *testing.T) { large, _ = render(t) })

	assert.Equal(t, 13, grown)
	assert.Equal(t, items*6, small.Count)
	assert.Equal(t, large.Count, small.Count)
	assert.Equal(t, drawnIndices(large), drawnIndices(small))
	assert.Equal(t, drawnVertices(large, items*4), drawnVertices(small, items*4))
}

func TestSpriteBatchFlushesAtMaxBatchSize(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx, 4, 4)
	sb := newTestSpriteBatch(t, ctx, WithMaxBatchSize(3))
	assert.Equal(t, 3, sb.Capacity())

	require.NoError(t, sb.Begin(newTestProgram(t, ctx)))
	for range 7 {
		require.NoError(t, sb.Draw(tex, common.NewRectangle(0, 0, 4, 4), common.White))
	}
	require.NoError(t, sb.End())

	counts := make([]int, 0, len(drv.Draws))
	for _, d := range drv.Draws {
		counts = append(counts, d.Count)
	}
	assert.Equal(t, []int{18, 18, 6}, counts)
}

func TestBatchOptionsAreClamped(t *testing.T) {
	ctx, _ := newTestContext(t)

	sb := newTestSpriteBatch(t, ctx, WithMaxBatchSize(MaxBatchSize*2), WithInitialCapacity(MaxBatchSize*2))
	assert.Equal(t, MaxBatchSize, sb.Capacity())

	sb = newTestSpriteBatch(t, ctx, WithInitialCapacity(0))
	assert.Equal(t, 1, sb.Capacity())
}

func TestSpriteBatchStateErrors(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx, 4, 4)
	shader := newTestProgram(t, ctx)
	sb := newTestSpriteBatch(t, ctx)
	dest := common.NewRectangle(0, 0, 4, 4)

	assert.ErrorIs(t, sb.Draw(tex, dest, common.White), ErrInvalidOperationSequence)
	assert.ErrorIs(t, sb.End(), ErrInvalidOperationSequence)
	assert.ErrorIs(t, sb.Begin(nil), ErrInvalidArgument)
	assert.False(t, sb.Active())

	require.NoError(t, sb.Begin(shader))
	assert.True(t, sb.Active())
	assert.ErrorIs(t, sb.Begin(shader), ErrInvalidOperationSequence)
	assert.ErrorIs(t, sb.Draw(nil, dest, common.White), ErrInvalidArgument)
	assert.ErrorIs(t, sb.DrawTile(nil, 0, 0, dest, common.White, FlipNone), ErrInvalidArgument)
	assert.Equal(t, 0, sb.Count())
	require.NoError(t, sb.Flush())
	require.NoError(t, sb.End())

	assert.False(t, sb.Active())
	assert.Empty(t, drv.Draws)
}

func TestSpriteBatchRestoresDepthTest(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx, 4, 4)
	sb := newTestSpriteBatch(t, ctx)

	ctx.SetDepthTest(true)
	require.NoError(t, sb.Begin(newTestProgram(t, ctx)))
	assert.False(t, ctx.DepthTest())
	require.NoError(t, sb.Draw(tex, common.NewRectangle(0, 0, 4, 4), common.White))
	require.NoError(t, sb.End())

	require.Len(t, drv.Draws, 1)
	assert.False(t, drv.Draws[0].DepthTest)
	assert.True(t, ctx.DepthTest())
	assert.True(t, drv.Capabilities[driver.CapabilityDepthTest])
}

func TestSpriteBatchUploadsTransform(t *testing.T) {
	ctx, drv := newTestContext(t)
	shader := newTestProgram(t, ctx)
	sb := newTestSpriteBatch(t, ctx)
	transform := mgl32.Ortho2D(0, 800, 600, 0)

	require.NoError(t, sb.BeginWithTransform(shader, transform))
	require.NoError(t, sb.End())

	value, ok := drv.UniformValue(shader.Handle(), "transform")
	require.True(t, ok)
	assert.Equal(t, [16]float32(transform), value)
}

func TestSpriteBatchDrawRotated(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx, 16, 16)
	sb := newTestSpriteBatch(t, ctx)

	require.NoError(t, sb.Begin(newTestProgram(t, ctx)))
	require.NoError(t, sb.DrawRotated(tex, common.NewRectangle(100, 100, 10, 20), common.NewRectangle(0, 0, 16, 16), common.White, mgl32.DegToRad(90), mgl32.Vec2{5, 10}, FlipNone))
	require.NoError(t, sb.End())

	v := drawnVertices(drv.Draws[0], 4)
	const eps = 1e-4
	// a quarter turn about its center maps the 10x20 quad onto a 20x10 footprint around (100, 100)
	assert.InDelta(t, 90, v[0].Position.X(), eps) // bottom-left
	assert.InDelta(t, 95, v[0].Position.Y(), eps)
	assert.InDelta(t, 90, v[1].Position.X(), eps) // bottom-right
	assert.InDelta(t, 105, v[1].Position.Y(), eps)
	assert.InDelta(t, 110, v[2].Position.X(), eps) // top-right
	assert.InDelta(t, 105, v[2].Position.Y(), eps)
	assert.InDelta(t, 110, v[3].Position.X(), eps) // top-left
	assert.InDelta(t, 95, v[3].Position.Y(), eps)
}

func TestSpriteBatchDrawAtUsesTextureSize(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx, 8, 16)
	sb := newTestSpriteBatch(t, ctx)

	require.NoError(t, sb.Begin(newTestProgram(t, ctx)))
	require.NoError(t, sb.DrawAt(tex, mgl32.Vec2{2, 3}, FlipNone))
	require.NoError(t, sb.End())

	v := drawnVertices(drv.Draws[0], 4)
	assert.Equal(t, mgl32.Vec2{2, 19}, v[0].Position)
	assert.Equal(t, mgl32.Vec2{10, 3}, v[2].Position)
	assert.Equal(t, mgl32.Vec2{0, 0}, v[0].TexCoord)
	assert.Equal(t, mgl32.Vec2{1, 1}, v[2].TexCoord)
}

func TestSpriteBatchDrawQuad(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx, 4, 4)
	sb := newTestSpriteBatch(t, ctx)
	corner := func(x, y float32) vertex.Position2TextureColor {
		return vertex.Position2TextureColor{Position: mgl32.Vec2{x, y}, TexCoord: mgl32.Vec2{x, y}, Color: common.Red}
	}

	require.NoError(t, sb.Begin(newTestProgram(t, ctx)))
	require.NoError(t, sb.DrawQuad(tex, corner(0, 1), corner(1, 1), corner(1, 0), corner(0, 0)))
	require.NoError(t, sb.End())

	v := drawnVertices(drv.Draws[0], 4)
	assert.Equal(t, []vertex.Position2TextureColor{corner(0, 1), corner(1, 1), corner(1, 0), corner(0, 0)}, v)
}

func TestSpriteBatchDrawTile(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx, 64, 32)
	tileset, err := NewTilesetFromTileSize(tex, 16, 16)
	require.NoError(t, err)
	sb := newTestSpriteBatch(t, ctx)

	require.NoError(t, sb.Begin(newTestProgram(t, ctx)))
	assert.ErrorIs(t, sb.DrawTile(tileset, 4, 0, common.NewRectangle(0, 0, 16, 16), common.White, FlipNone), ErrOutOfRange)
	require.NoError(t, sb.DrawTile(tileset, 1, 1, common.NewRectangle(0, 0, 16, 16), common.White, FlipNone))
	require.NoError(t, sb.End())

	v := drawnVertices(drv.Draws[0], 4)
	assert.Equal(t, mgl32.Vec2{0.25, 0}, v[0].TexCoord)
	assert.Equal(t, mgl32.Vec2{0.5, 0.5}, v[2].TexCoord)
}

func TestSpriteBatchDisposeReleasesBuffers(t *testing.T) {
	ctx, _ := newTestContext(t)
	before := len(ctx.LiveResources())

	sb, err := NewSpriteBatch(ctx)
	require.NoError(t, err)
	assert.Len(t, ctx.LiveResources(), before+2)

	sb.Dispose()
	assert.Len(t, ctx.LiveResources(), before)
}

func TestSpriteBatchDisposeWhileActive(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx, 4, 4)
	sb, err := NewSpriteBatch(ctx)
	require.NoError(t, err)

	ctx.SetDepthTest(true)
	require.NoError(t, sb.Begin(newTestProgram(t, ctx)))
	require.NoError(t, sb.Draw(tex, common.NewRectangle(0, 0, 4, 4), common.White))
	sb.Dispose()

	assert.False(t, sb.Active())
	assert.Zero(t, sb.Count())
	assert.True(t, ctx.DepthTest())
	assert.Empty(t, drv.Draws, "staged items are dropped, not drawn")

	sb.Dispose()
	assert.True(t, ctx.DepthTest())
}

func TestNewSpriteBatchRejectsNilContext(t *testing.T) {
	_, err := NewSpriteBatch(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
