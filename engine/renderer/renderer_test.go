package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver/drivertest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/vertex"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestContext creates the process-wide context on a fresh spy driver and disposes it when the test ends.
func newTestContext(t *testing.T, options ...RenderContextOption) (RenderContext, *drivertest.Driver) {
	t.Helper()
	drv := drivertest.New()
	drv.Attributes = []driver.AttributeInfo{{Name: "Position", Location: 0}, {Name: "TexCoord", Location: 1}}
	drv.Uniforms = []driver.UniformInfo{{Name: "transform"}, {Name: "tint"}}
	ctx, err := NewRenderContext(drv, options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctx.Dispose() })
	return ctx, drv
}

func quad() []vertex.Position2TextureColor {
	return []vertex.Position2TextureColor{
		{Position: mgl32.Vec2{0, 0}, TexCoord: mgl32.Vec2{0, 0}, Color: common.White},
		{Position: mgl32.Vec2{1, 0}, TexCoord: mgl32.Vec2{1, 0}, Color: common.White},
		{Position: mgl32.Vec2{1, 1}, TexCoord: mgl32.Vec2{1, 1}, Color: common.White},
		{Position: mgl32.Vec2{0, 1}, TexCoord: mgl32.Vec2{0, 1}, Color: common.White},
	}
}

func newTestVertexBuffer(t *testing.T, ctx RenderContext) VertexBuffer {
	t.Helper()
	vb, err := NewVertexBuffer(ctx, quad(), driver.BufferUsageStaticDraw)
	require.NoError(t, err)
	t.Cleanup(vb.Dispose)
	return vb
}

func newTestTexture(t *testing.T, ctx RenderContext) Texture2D {
	t.Helper()
	tex, err := NewTexture2D(ctx, 4, 4)
	require.NoError(t, err)
	t.Cleanup(tex.Dispose)
	return tex
}

func newTestProgram(t *testing.T, ctx RenderContext) ShaderProgram {
	t.Helper()
	p, err := NewShaderProgram(ctx, "vertex", "fragment")
	require.NoError(t, err)
	t.Cleanup(p.Dispose)
	return p
}

func TestRenderContextIsSingleton(t *testing.T) {
	ctx, _ := newTestContext(t)

	_, err := NewRenderContext(drivertest.New())
	assert.ErrorIs(t, err, ErrContextExists)

	require.NoError(t, ctx.Dispose())
	second, err := NewRenderContext(drivertest.New())
	require.NoError(t, err)
	require.NoError(t, second.Dispose())
}

func TestNewRenderContextRejectsNilDriver(t *testing.T) {
	_, err := NewRenderContext(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	var typed *drivertest.Driver
	_, err = NewRenderContext(typed)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewRenderContextInitialState(t *testing.T) {
	ctx, drv := newTestContext(t)

	assert.Equal(t, drivertest.DefaultMaxTextureUnits, ctx.MaxTextureUnits())
	assert.True(t, drv.Capabilities[driver.CapabilityDepthTest])
	assert.True(t, drv.Capabilities[driver.CapabilityBlend])
	assert.True(t, drv.Capabilities[driver.CapabilityCullFace])
	assert.Equal(t, driver.BlendSrcAlpha, drv.BlendSrc)
	assert.Equal(t, driver.BlendOneMinusSrcAlpha, drv.BlendDst)
	assert.NotEqual(t, driver.Zero, drv.BoundVertexArray)
	assert.True(t, ctx.DepthTest())
	assert.True(t, ctx.Blend())
	assert.True(t, ctx.CullBackfaces())
}

func TestBindIsIdempotent(t *testing.T) {
	ctx, drv := newTestContext(t)
	a := newTestVertexBuffer(t, ctx)
	newTestVertexBuffer(t, ctx)
	drv.Reset()
	ctx.ResetStats()

	require.NoError(t, ctx.BindVertexBuffer(a))
	require.NoError(t, ctx.BindVertexBuffer(a))

	assert.Equal(t, 1, drv.Count("BindBuffer"))
	assert.Equal(t, Stats{NativeBinds: 1, SkippedBinds: 1}, ctx.Stats())
	assert.Equal(t, a.Handle(), drv.BoundBuffers[driver.BufferTargetArray])
	assert.Same(t, ctx.impl(), a.BoundContext().impl())
}

func TestBindIsIdempotentForEverySlot(t *testing.T) {
	ctx, drv := newTestContext(t)
	ib, err := NewIndexBuffer(ctx, []uint16{0, 1, 2}, driver.BufferUsageStaticDraw)
	require.NoError(t, err)
	t.Cleanup(ib.Dispose)
	pb, err := NewPixelBuffer(ctx, 64, driver.BufferUsageStreamDraw)
	require.NoError(t, err)
	t.Cleanup(pb.Dispose)
	fb, err := NewFrameBuffer(ctx, 8, 8, FrameBufferColor)
	require.NoError(t, err)
	t.Cleanup(fb.Dispose)
	program := newTestProgram(t, ctx)
	tex := newTestTexture(t, ctx)

	cases := []struct {
		name   string
		native string
		bind   func() error
	}{
		{"index buffer", "BindBuffer", func() error { return ib.Bind(ctx) }},
		{"pixel buffer", "BindBuffer", func() error { return pb.Bind(ctx) }},
		{"framebuffer", "BindFramebuffer", func() error { return fb.Bind(ctx) }},
		{"shader program", "UseProgram", func() error { return program.Bind(ctx) }},
		{"texture", "BindTexture", func() error { return tex.Bind(ctx, 3) }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx.UnbindIndexBuffer()
			ctx.UnbindPixelBuffer()
			ctx.UnbindFrameBuffer()
			ctx.UnbindShaderProgram()
			ctx.ClearTextureSlots()
			drv.Reset()

			require.NoError(t, tc.bind())
			require.NoError(t, tc.bind())
			assert.Equal(t, 1, drv.Count(tc.native))
		})
	}
}

func TestEnsureUnboundClearsSlot(t *testing.T) {
	ctx, drv := newTestContext(t)
	vb := newTestVertexBuffer(t, ctx)
	require.NotNil(t, ctx.VertexBuffer())

	require.NoError(t, vb.EnsureUnbound(ctx))

	assert.Nil(t, ctx.VertexBuffer())
	assert.Nil(t, vb.BoundContext())
	assert.Equal(t, driver.Zero, drv.BoundBuffers[driver.BufferTargetArray])

	drv.Reset()
	require.NoError(t, vb.EnsureUnbound(ctx))
	assert.Zero(t, drv.Count("BindBuffer"))
}

func TestEnsureUnboundIgnoresOtherResource(t *testing.T) {
	ctx, drv := newTestContext(t)
	a := newTestVertexBuffer(t, ctx)
	b := newTestVertexBuffer(t, ctx)
	drv.Reset()

	require.NoError(t, ctx.EnsureVertexBufferUnbound(a))

	assert.Zero(t, drv.Count("BindBuffer"))
	assert.Equal(t, b.Handle(), ctx.VertexBuffer().Handle())
}

func TestUnbindIsNoOpWhenEmpty(t *testing.T) {
	ctx, drv := newTestContext(t)
	drv.Reset()

	ctx.UnbindVertexBuffer()
	ctx.UnbindIndexBuffer()
	ctx.UnbindPixelBuffer()
	ctx.UnbindFrameBuffer()
	ctx.UnbindShaderProgram()

	assert.Empty(t, drv.Calls())
}

func TestUnbindClearsWhateverIsBound(t *testing.T) {
	ctx, drv := newTestContext(t)
	program := newTestProgram(t, ctx)
	require.NoError(t, program.Bind(ctx))

	ctx.UnbindShaderProgram()

	assert.Nil(t, ctx.ShaderProgram())
	assert.Nil(t, program.BoundContext())
	assert.Equal(t, driver.Zero, drv.CurrentProgram)
}

func TestDisposeDetachesFromContext(t *testing.T) {
	ctx, drv := newTestContext(t)
	other := newTestVertexBuffer(t, ctx)
	vb, err := NewVertexBuffer(ctx, quad(), driver.BufferUsageStaticDraw)
	require.NoError(t, err)
	require.Equal(t, vb.Handle(), ctx.VertexBuffer().Handle())

	vb.Dispose()

	assert.True(t, vb.Disposed())
	assert.Empty(t, drv.DeletedWhileBound)
	assert.Nil(t, ctx.VertexBuffer())

	drv.Reset()
	require.NoError(t, ctx.BindVertexBuffer(other))
	assert.Equal(t, 1, drv.Count("BindBuffer"))
}

func TestDisposeIsIdempotent(t *testing.T) {
	ctx, drv := newTestContext(t)
	vb, err := NewVertexBuffer(ctx, quad(), driver.BufferUsageStaticDraw)
	require.NoError(t, err)

	vb.Dispose()
	vb.Dispose()

	assert.Equal(t, 1, drv.Count("DeleteBuffer"))
}

func TestDisposeDetachesEveryResourceType(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx)
	cube, err := NewTextureCubeMap(ctx, 2)
	require.NoError(t, err)
	array, err := NewTexture2DArray(ctx, 2, 2, 2)
	require.NoError(t, err)
	program := newTestProgram(t, ctx)
	fb, err := NewFrameBuffer(ctx, 4, 4, FrameBufferColor|FrameBufferDepth)
	require.NoError(t, err)
	ib, err := NewIndexBuffer(ctx, []uint32{0, 1, 2}, driver.BufferUsageStaticDraw)
	require.NoError(t, err)

	require.NoError(t, tex.Bind(ctx, 0))
	require.NoError(t, tex.Bind(ctx, 7))
	require.NoError(t, cube.Bind(ctx, 1))
	require.NoError(t, array.Bind(ctx, 2))
	require.NoError(t, program.Bind(ctx))
	require.NoError(t, fb.Bind(ctx))

	for _, res := range []Resource{tex, cube, array, program, fb, ib} {
		res.Dispose()
		assert.Nil(t, res.BoundContext())
	}

	assert.Empty(t, drv.DeletedWhileBound)
	assert.Nil(t, ctx.CurrentTexture(0))
	assert.Nil(t, ctx.CurrentTexture(7))
	assert.Nil(t, ctx.ShaderProgram())
	assert.Nil(t, ctx.FrameBuffer())
	assert.Nil(t, ctx.IndexBuffer())
}

func TestBindRejectsInvalidResources(t *testing.T) {
	ctx, _ := newTestContext(t)
	tex := newTestTexture(t, ctx)

	assert.ErrorIs(t, ctx.BindVertexBuffer(nil), ErrInvalidArgument)
	var typed *vertexBuffer
	assert.ErrorIs(t, ctx.BindVertexBuffer(typed), ErrInvalidArgument)
	assert.ErrorIs(t, ctx.BindFrameBuffer(nil), ErrInvalidArgument)
	assert.ErrorIs(t, ctx.BindTexture(nil, 0), ErrInvalidArgument)
	assert.ErrorIs(t, ctx.EnsureTextureUnbound(nil), ErrInvalidArgument)

	assert.ErrorIs(t, ctx.BindTexture(tex, ctx.MaxTextureUnits()), ErrOutOfRange)
	assert.ErrorIs(t, ctx.BindTexture(tex, -1), ErrOutOfRange)
	assert.ErrorIs(t, ctx.SetActiveTextureSlot(99), ErrOutOfRange)
	assert.ErrorIs(t, ctx.EnsureTextureUnboundAt(tex, 99), ErrOutOfRange)
	assert.ErrorIs(t, ctx.ClearTextureSlot(-1), ErrOutOfRange)
	assert.Nil(t, ctx.CurrentTexture(99))
}

func TestBindRejectsDisposedResource(t *testing.T) {
	ctx, _ := newTestContext(t)
	vb, err := NewVertexBuffer(ctx, quad(), driver.BufferUsageStaticDraw)
	require.NoError(t, err)
	vb.Dispose()

	assert.ErrorIs(t, ctx.BindVertexBuffer(vb), ErrUseAfterDispose)
	assert.ErrorIs(t, vb.SetData(make([]byte, 20), 0), ErrUseAfterDispose)
}

func TestBindRejectsResourceOfAnotherContext(t *testing.T) {
	first, err := NewRenderContext(drivertest.New())
	require.NoError(t, err)
	stale, err := NewVertexBuffer(first, quad(), driver.BufferUsageStaticDraw)
	require.NoError(t, err)
	require.NoError(t, first.Dispose())

	ctx, _ := newTestContext(t)
	assert.ErrorIs(t, ctx.BindVertexBuffer(stale), ErrContextMismatch)
	assert.ErrorIs(t, stale.Bind(first), ErrInvalidState)
	stale.Dispose()
}

func TestConstructorsRejectDisposedContext(t *testing.T) {
	ctx, _ := newTestContext(t)
	require.NoError(t, ctx.Dispose())

	_, err := NewTexture2D(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = NewVertexBuffer(nil, quad(), driver.BufferUsageStaticDraw)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTextureUnitMutualExclusion(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx)
	other := newTestTexture(t, ctx)
	cube, err := NewTextureCubeMap(ctx, 2)
	require.NoError(t, err)
	t.Cleanup(cube.Dispose)

	require.NoError(t, tex.Bind(ctx, 3))
	require.NoError(t, other.Bind(ctx, 5))
	require.NoError(t, cube.Bind(ctx, 3))

	assert.Nil(t, ctx.CurrentTextureOfKind(3, TextureKind2D))
	assert.Equal(t, driver.Zero, drv.TextureAt(3, driver.TextureTarget2D))
	assert.Equal(t, cube.Handle(), drv.TextureAt(3, driver.TextureTargetCubeMap))
	assert.Nil(t, tex.BoundContext())

	assert.Equal(t, other.Handle(), ctx.CurrentTextureOfKind(5, TextureKind2D).Handle())
	assert.Equal(t, other.Handle(), drv.TextureAt(5, driver.TextureTarget2D))
}

func TestSetActiveTextureSlotIsMemoized(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx)
	drv.Reset()

	require.NoError(t, ctx.SetActiveTextureSlot(2))
	require.NoError(t, ctx.SetActiveTextureSlot(2))
	require.NoError(t, tex.Bind(ctx, 2))

	assert.Equal(t, 1, drv.Count("ActiveTexture"))
	assert.Equal(t, 2, ctx.ActiveTextureSlot())
	assert.Equal(t, 2, drv.ActiveUnit)
}

func TestEnsureTextureUnboundScansAllUnits(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx)
	require.NoError(t, tex.Bind(ctx, 1))
	require.NoError(t, tex.Bind(ctx, 4))

	require.NoError(t, tex.EnsureUnbound(ctx))

	assert.Nil(t, ctx.CurrentTexture(1))
	assert.Nil(t, ctx.CurrentTexture(4))
	assert.Equal(t, driver.Zero, drv.TextureAt(1, driver.TextureTarget2D))
	assert.Equal(t, driver.Zero, drv.TextureAt(4, driver.TextureTarget2D))
	assert.Nil(t, tex.BoundContext())
}

func TestBoundContextClearsAfterLastUnit(t *testing.T) {
	ctx, _ := newTestContext(t)
	tex := newTestTexture(t, ctx)
	require.NoError(t, tex.Bind(ctx, 1))
	require.NoError(t, tex.Bind(ctx, 2))

	require.NoError(t, tex.EnsureUnboundAt(ctx, 1))
	assert.NotNil(t, tex.BoundContext())
	require.NoError(t, tex.EnsureUnboundAt(ctx, 3))
	assert.NotNil(t, tex.BoundContext())
	require.NoError(t, tex.EnsureUnboundAt(ctx, 2))
	assert.Nil(t, tex.BoundContext())
}

func TestClearTextureSlots(t *testing.T) {
	ctx, drv := newTestContext(t)
	tex := newTestTexture(t, ctx)
	array, err := NewTexture2DArray(ctx, 2, 2, 3)
	require.NoError(t, err)
	t.Cleanup(array.Dispose)
	require.NoError(t, tex.Bind(ctx, 0))
	require.NoError(t, array.Bind(ctx, 6))

	require.NoError(t, ctx.ClearOtherTextureKinds(6, TextureKind2DArray))
	assert.NotNil(t, ctx.CurrentTexture(6))
	require.NoError(t, ctx.ClearTextureSlot(6))
	assert.Nil(t, ctx.CurrentTexture(6))

	ctx.ClearTextureSlots()
	assert.Nil(t, ctx.CurrentTexture(0))
	assert.Equal(t, driver.Zero, drv.TextureAt(0, driver.TextureTarget2D))
}

func TestLeakCheck(t *testing.T) {
	ctx, _ := newTestContext(t, WithLeakCheck(true))
	vb, err := NewVertexBuffer(ctx, quad(), driver.BufferUsageStaticDraw)
	require.NoError(t, err)
	vb.SetLabel("particles")
	tex, err := NewTexture2D(ctx, 1, 1)
	require.NoError(t, err)
	tex.Dispose()

	live := ctx.LiveResources()
	require.Len(t, live, 1)
	assert.Equal(t, vb.Handle(), live[0].Handle())

	err = ctx.Dispose()
	assert.ErrorIs(t, err, ErrResourceLeak)
	assert.ErrorContains(t, err, "particles")
	vb.Dispose()
}

func TestDisposeWithoutLeaks(t *testing.T) {
	ctx, drv := newTestContext(t, WithLeakCheck(true))
	vb, err := NewVertexBuffer(ctx, quad(), driver.BufferUsageStaticDraw)
	require.NoError(t, err)
	vb.Dispose()

	require.NoError(t, ctx.Dispose())
	require.NoError(t, ctx.Dispose())
	assert.Empty(t, drv.VertexArrays)
}

func TestRenderStateIsCached(t *testing.T) {
	ctx, drv := newTestContext(t)
	drv.Reset()

	ctx.SetDepthTest(true)
	ctx.SetDepthTest(false)
	ctx.SetDepthTest(false)
	ctx.SetBlend(true)
	ctx.SetCullBackfaces(false)
	ctx.SetBlendFunc(driver.BlendSrcAlpha, driver.BlendOneMinusSrcAlpha)
	ctx.SetBlendFunc(driver.BlendOne, driver.BlendOne)
	ctx.SetClearColor(common.CornflowerBlue)
	ctx.SetClearColor(common.CornflowerBlue)
	ctx.SetViewport(common.NewRectangle(0, 0, 640, 480))
	ctx.SetViewport(common.NewRectangle(0, 0, 640, 480))

	assert.Equal(t, []string{"Disable", "Disable", "BlendFunc", "ClearColor", "Viewport"}, drv.Calls())
	assert.False(t, drv.Capabilities[driver.CapabilityDepthTest])
	assert.Equal(t, [4]int{0, 0, 640, 480}, drv.ViewportRect)
	assert.Equal(t, common.NewRectangle(0, 0, 640, 480), ctx.Viewport())
}

func TestRenderDrawsWholeIndexBuffer(t *testing.T) {
	ctx, drv := newTestContext(t)
	mesh, err := NewMesh(ctx, quad(), []uint16{0, 1, 2, 0, 2, 3})
	require.NoError(t, err)
	t.Cleanup(mesh.Dispose)
	program := newTestProgram(t, ctx)
	ctx.ResetStats()

	require.NoError(t, mesh.Render(ctx, program, mgl32.Ident4()))

	require.Len(t, drv.Draws, 1)
	draw := drv.Draws[0]
	assert.Equal(t, driver.PrimitiveTriangles, draw.Mode)
	assert.Equal(t, 6, draw.Count)
	assert.Equal(t, driver.ScalarUnsignedShort, draw.IndexType)
	assert.Equal(t, program.Handle(), draw.Program)
	assert.Equal(t, mesh.VertexBuffer.Handle(), draw.VertexBuffer)
	assert.Equal(t, mesh.IndexBuffer.Handle(), draw.IndexBuffer)
	assert.Equal(t, []uint32{0, 1}, draw.Enabled)
	assert.Equal(t, drivertest.AttribPointer{Buffer: mesh.VertexBuffer.Handle(), Size: 2, Type: driver.ScalarFloat, Stride: 20, Offset: 8}, drv.Pointers[1])

	transform, ok := drv.UniformValue(program.Handle(), "transform")
	require.True(t, ok)
	assert.Equal(t, [16]float32(mgl32.Ident4()), transform)
	assert.Equal(t, 1, ctx.Stats().DrawCalls)
	assert.Equal(t, 2, ctx.Stats().Primitives)
}

func TestVerboseBindsLogsThroughContextLogger(t *testing.T) {
	ctx, _ := newTestContext(t, WithVerboseBinds(true), WithLogger(nil))
	assert.NotNil(t, ctx.Logger())
	vb := newTestVertexBuffer(t, ctx)
	assert.NoError(t, vb.EnsureUnbound(ctx))
}
