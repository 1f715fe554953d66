package renderer

import (
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/vertex"
	"github.com/cockroachdb/errors"
)

// liveContext holds the single live render context. It enforces construction-time uniqueness only;
// dependents receive their context explicitly and never read it from here.
var liveContext atomic.Pointer[renderContext]

// Stats counts work issued through a RenderContext since the last ResetStats.
type Stats struct {
	DrawCalls    int
	Primitives   int
	NativeBinds  int
	SkippedBinds int
}

// slot is one cached binding point: the bound handle and the resource that owns it.
type slot struct {
	handle driver.Handle
	res    Resource
}

// textureUnit caches the texture bound for each kind on one unit.
type textureUnit struct {
	textures [textureKindCount]Texture
}

// renderContext is the implementation of the RenderContext interface.
type renderContext struct {
	drv    driver.Driver
	logger *slog.Logger
	limits driver.Limits

	vertexArray driver.Handle

	vertexBuffer slot
	indexBuffer  slot
	pixelBuffer  slot
	frameBuffer  slot
	program      slot

	units      []textureUnit
	activeUnit int

	depthTest  bool
	blend      bool
	cull       bool
	blendSrc   driver.BlendFactor
	blendDst   driver.BlendFactor
	clearColor common.Color
	viewport   common.Rectangle

	stats        Stats
	verboseBinds bool
	leakCheck    bool

	nextID   uint64
	live     map[uint64]Resource
	disposed bool
}

// RenderContext is the state cache between draw code and the native graphics context.
//
// Every native bind flows through a RenderContext so its cached handles always equal what the native context has
// bound. Binding a resource that is already cached is a no-op. A RenderContext is not safe for concurrent use: it
// must only be touched from the thread that owns the native context.
type RenderContext interface {
	// Driver returns the native driver the context issues calls on.
	Driver() driver.Driver

	// Logger returns the logger used by the context and its resources.
	Logger() *slog.Logger

	// MaxTextureUnits returns the number of texture units queried from the driver.
	MaxTextureUnits() int

	// BindVertexBuffer binds vb to the array buffer slot.
	//
	// Parameters:
	//   - vb: the vertex buffer to bind
	//
	// Returns:
	//   - error: ErrInvalidArgument for nil, ErrUseAfterDispose for a disposed buffer, ErrContextMismatch for a
	//     buffer created on another context
	BindVertexBuffer(vb VertexBuffer) error

	// EnsureVertexBufferUnbound unbinds vb if it is the cached vertex buffer, otherwise does nothing.
	EnsureVertexBufferUnbound(vb VertexBuffer) error

	// UnbindVertexBuffer binds no vertex buffer. It is a no-op when none is bound.
	UnbindVertexBuffer()

	// VertexBuffer returns the cached vertex buffer, or nil.
	VertexBuffer() VertexBuffer

	// BindIndexBuffer binds ib to the element array slot of the context's vertex array.
	//
	// Parameters:
	//   - ib: the index buffer to bind
	//
	// Returns:
	//   - error: the same contract violations as BindVertexBuffer
	BindIndexBuffer(ib IndexBuffer) error

	// EnsureIndexBufferUnbound unbinds ib if it is the cached index buffer, otherwise does nothing.
	EnsureIndexBufferUnbound(ib IndexBuffer) error

	// UnbindIndexBuffer binds no index buffer. It is a no-op when none is bound.
	UnbindIndexBuffer()

	// IndexBuffer returns the cached index buffer, or nil.
	IndexBuffer() IndexBuffer

	// BindPixelBuffer binds pb to the pixel unpack slot. Texture uploads read from it while it is bound.
	//
	// Parameters:
	//   - pb: the pixel buffer to bind
	//
	// Returns:
	//   - error: the same contract violations as BindVertexBuffer
	BindPixelBuffer(pb PixelBuffer) error

	// EnsurePixelBufferUnbound unbinds pb if it is the cached pixel buffer, otherwise does nothing.
	EnsurePixelBufferUnbound(pb PixelBuffer) error

	// UnbindPixelBuffer binds no pixel buffer, so texture uploads read client memory again.
	UnbindPixelBuffer()

	// PixelBuffer returns the cached pixel buffer, or nil.
	PixelBuffer() PixelBuffer

	// BindFrameBuffer makes fb the render target. Use UnbindFrameBuffer to return to the default framebuffer.
	//
	// Parameters:
	//   - fb: the framebuffer to render into
	//
	// Returns:
	//   - error: the same contract violations as BindVertexBuffer
	BindFrameBuffer(fb FrameBuffer) error

	// EnsureFrameBufferUnbound returns to the default framebuffer if fb is the cached one, otherwise does nothing.
	EnsureFrameBufferUnbound(fb FrameBuffer) error

	// UnbindFrameBuffer makes the default framebuffer the render target.
	UnbindFrameBuffer()

	// FrameBuffer returns the cached framebuffer, or nil for the default framebuffer.
	FrameBuffer() FrameBuffer

	// BindShaderProgram makes program the program in use.
	//
	// Parameters:
	//   - program: the shader program to use
	//
	// Returns:
	//   - error: the same contract violations as BindVertexBuffer
	BindShaderProgram(program ShaderProgram) error

	// EnsureShaderProgramUnbound stops using program if it is the cached program, otherwise does nothing.
	EnsureShaderProgramUnbound(program ShaderProgram) error

	// UnbindShaderProgram uses no program.
	UnbindShaderProgram()

	// ShaderProgram returns the program in use, or nil.
	ShaderProgram() ShaderProgram

	// BindTexture binds tex to texture unit slot. The unit is selected first. Any texture of another kind bound
	// on the same unit is unbound, so each unit holds at most one kind at a time.
	//
	// Parameters:
	//   - tex: the texture to bind
	//   - slot: the texture unit in [0, MaxTextureUnits)
	//
	// Returns:
	//   - error: ErrOutOfRange for an invalid unit, or the same contract violations as BindVertexBuffer
	BindTexture(tex Texture, slot int) error

	// EnsureTextureUnbound unbinds tex from every unit that currently holds it.
	EnsureTextureUnbound(tex Texture) error

	// EnsureTextureUnboundAt unbinds tex from unit slot if it is bound there.
	EnsureTextureUnboundAt(tex Texture, slot int) error

	// ClearOtherTextureKinds unbinds every texture bound on unit slot whose kind is not kind.
	ClearOtherTextureKinds(slot int, kind TextureKind) error

	// ClearTextureSlot unbinds every texture kind from unit slot.
	ClearTextureSlot(slot int) error

	// ClearTextureSlots unbinds every texture from every unit.
	ClearTextureSlots()

	// SetActiveTextureSlot selects unit slot. The native call is skipped when slot is already active.
	SetActiveTextureSlot(slot int) error

	// ActiveTextureSlot returns the selected texture unit.
	ActiveTextureSlot() int

	// CurrentTexture returns the texture bound on unit slot, or nil if the unit is empty or slot is out of range.
	CurrentTexture(slot int) Texture

	// CurrentTextureOfKind returns the texture of the given kind bound on unit slot, or nil.
	CurrentTextureOfKind(slot int, kind TextureKind) Texture

	// SetDepthTest enables or disables depth testing. The native call is skipped when the state is unchanged.
	SetDepthTest(enabled bool)

	// DepthTest reports whether depth testing is enabled.
	DepthTest() bool

	// SetBlend enables or disables blending. The native call is skipped when the state is unchanged.
	SetBlend(enabled bool)

	// Blend reports whether blending is enabled.
	Blend() bool

	// SetCullBackfaces enables or disables back-face culling. The native call is skipped when the state is unchanged.
	SetCullBackfaces(enabled bool)

	// CullBackfaces reports whether back-face culling is enabled.
	CullBackfaces() bool

	// SetBlendFunc sets the source and destination blend factors.
	//
	// Parameters:
	//   - src: the factor applied to the incoming color
	//   - dst: the factor applied to the framebuffer color
	SetBlendFunc(src, dst driver.BlendFactor)

	// SetClearColor sets the color Clear fills the color buffer with.
	SetClearColor(c common.Color)

	// SetViewport sets the viewport in framebuffer pixels, origin bottom-left.
	//
	// Parameters:
	//   - rect: the viewport rectangle
	SetViewport(rect common.Rectangle)

	// Viewport returns the cached viewport.
	Viewport() common.Rectangle

	// Clear clears the color and depth buffers of the bound framebuffer.
	Clear()

	// ApplyVertexLayout points the layout's attributes at the bound vertex buffer, enabling only the locations
	// program declares.
	//
	// Parameters:
	//   - layout: the vertex layout to apply
	//   - program: the program that will draw
	//   - baseOffset: the byte offset of the first vertex in the buffer
	ApplyVertexLayout(layout *vertex.Layout, program ShaderProgram, baseOffset int)

	// Render binds vb, ib and program, applies the vertex layout of vb and draws every index of ib.
	//
	// Parameters:
	//   - primitive: the primitive topology
	//   - vb: the vertex buffer
	//   - ib: the index buffer
	//   - program: the shader program
	//
	// Returns:
	//   - error: any binding contract violation
	Render(primitive driver.Primitive, vb VertexBuffer, ib IndexBuffer, program ShaderProgram) error

	// DrawRangeElements issues a ranged indexed draw against the bound buffers and program.
	DrawRangeElements(primitive driver.Primitive, start, end uint32, count int, indexType driver.ScalarType, offset int)

	// DrawElements issues an indexed draw against the bound buffers and program.
	DrawElements(primitive driver.Primitive, count int, indexType driver.ScalarType, offset int)

	// Stats returns the counters accumulated since the last ResetStats.
	//
	// Returns:
	//   - Stats: draw calls, primitives, native binds and skipped binds
	Stats() Stats

	// ResetStats zeroes every counter.
	ResetStats()

	// LiveResources returns every resource created on this context that has not been disposed, oldest first.
	LiveResources() []Resource

	// Dispose releases the context's own native objects and frees the single-context slot so a new context can be
	// created. Resources still live are reported: with leak checking enabled Dispose returns ErrResourceLeak,
	// otherwise each leak is logged as a warning.
	//
	// Returns:
	//   - error: ErrResourceLeak naming the leaked resources, or nil
	Dispose() error

	impl() *renderContext
}

var _ RenderContext = &renderContext{}

// NewRenderContext creates the render context for drv. Only one context may be live at a time.
// The context binds a default vertex array and starts with depth testing, back-face culling and alpha blending
// (SrcAlpha, OneMinusSrcAlpha) enabled.
//
// Parameters:
//   - drv: the native driver of the current graphics context
//   - options: variadic list of RenderContextOption functions to configure the context
//
// Returns:
//   - RenderContext: the new context
//   - error: ErrInvalidArgument for a nil driver, ErrContextExists when another context is live
func NewRenderContext(drv driver.Driver, options ...RenderContextOption) (RenderContext, error) {
	if isNil(drv) {
		return nil, errors.Wrap(ErrInvalidArgument, "render context requires a driver")
	}

	c := &renderContext{
		drv:    drv,
		logger: common.Logger(),
		live:   make(map[uint64]Resource),
	}
	for _, opt := range options {
		opt(c)
	}

	if !liveContext.CompareAndSwap(nil, c) {
		return nil, errors.WithStack(ErrContextExists)
	}

	c.limits = drv.Limits()
	if c.limits.MaxTextureImageUnits <= 0 {
		liveContext.Store(nil)
		return nil, errors.Wrapf(ErrInvalidState, "driver reports %d texture units", c.limits.MaxTextureImageUnits)
	}
	c.units = make([]textureUnit, c.limits.MaxTextureImageUnits)

	c.vertexArray = drv.GenVertexArray()
	drv.BindVertexArray(c.vertexArray)

	drv.Enable(driver.CapabilityDepthTest)
	c.depthTest = true
	drv.CullFace(driver.FaceBack)
	drv.Enable(driver.CapabilityCullFace)
	c.cull = true
	drv.Enable(driver.CapabilityBlend)
	c.blend = true
	drv.BlendFunc(driver.BlendSrcAlpha, driver.BlendOneMinusSrcAlpha)
	c.blendSrc, c.blendDst = driver.BlendSrcAlpha, driver.BlendOneMinusSrcAlpha

	c.logger.Info("render context created",
		"renderer", c.limits.Renderer,
		"textureUnits", c.limits.MaxTextureImageUnits,
		"debugLabels", c.limits.HasDebug,
	)
	return c, nil
}

func (c *renderContext) impl() *renderContext {
	return c
}

// contextOf resolves the implementation behind ctx for resource constructors.
func contextOf(ctx RenderContext) (*renderContext, error) {
	if isNil(ctx) {
		return nil, errors.Wrap(ErrInvalidArgument, "render context is nil")
	}
	c := ctx.impl()
	if c.disposed {
		return nil, errors.Wrap(ErrInvalidState, "render context is disposed")
	}
	return c, nil
}

func (c *renderContext) Driver() driver.Driver {
	return c.drv
}

func (c *renderContext) Logger() *slog.Logger {
	return c.logger
}

func (c *renderContext) MaxTextureUnits() int {
	return len(c.units)
}

func (c *renderContext) SetDepthTest(enabled bool) {
	if c.depthTest == enabled {
		return
	}
	c.setCapability(driver.CapabilityDepthTest, enabled)
	c.depthTest = enabled
}

func (c *renderContext) DepthTest() bool {
	return c.depthTest
}

func (c *renderContext) SetBlend(enabled bool) {
	if c.blend == enabled {
		return
	}
	c.setCapability(driver.CapabilityBlend, enabled)
	c.blend = enabled
}

func (c *renderContext) Blend() bool {
	return c.blend
}

func (c *renderContext) SetCullBackfaces(enabled bool) {
	if c.cull == enabled {
		return
	}
	c.setCapability(driver.CapabilityCullFace, enabled)
	c.cull = enabled
}

func (c *renderContext) CullBackfaces() bool {
	return c.cull
}

func (c *renderContext) setCapability(capability driver.Capability, enabled bool) {
	if enabled {
		c.drv.Enable(capability)
		return
	}
	c.drv.Disable(capability)
}

func (c *renderContext) SetBlendFunc(src, dst driver.BlendFactor) {
	if c.blendSrc == src && c.blendDst == dst {
		return
	}
	c.drv.BlendFunc(src, dst)
	c.blendSrc, c.blendDst = src, dst
}

func (c *renderContext) SetClearColor(color common.Color) {
	if c.clearColor == color {
		return
	}
	f := color.Floats()
	c.drv.ClearColor(f[0], f[1], f[2], f[3])
	c.clearColor = color
}

func (c *renderContext) SetViewport(rect common.Rectangle) {
	if c.viewport == rect {
		return
	}
	c.drv.Viewport(rect.X, rect.Y, rect.Width, rect.Height)
	c.viewport = rect
}

func (c *renderContext) Viewport() common.Rectangle {
	return c.viewport
}

func (c *renderContext) Clear() {
	c.drv.Clear(driver.ClearColorBit | driver.ClearDepthBit)
}

func (c *renderContext) ApplyVertexLayout(layout *vertex.Layout, program ShaderProgram, baseOffset int) {
	layout.Apply(c.drv, program, baseOffset)
}

func (c *renderContext) Render(primitive driver.Primitive, vb VertexBuffer, ib IndexBuffer, program ShaderProgram) error {
	if err := c.BindVertexBuffer(vb); err != nil {
		return err
	}
	if err := c.BindIndexBuffer(ib); err != nil {
		return err
	}
	if err := c.BindShaderProgram(program); err != nil {
		return err
	}
	c.ApplyVertexLayout(vb.Layout(), program, 0)
	c.DrawElements(primitive, ib.Count(), ib.IndexType(), 0)
	return nil
}

func (c *renderContext) DrawRangeElements(primitive driver.Primitive, start, end uint32, count int, indexType driver.ScalarType, offset int) {
	c.drv.DrawRangeElements(primitive, start, end, count, indexType, offset)
	c.stats.DrawCalls++
	c.stats.Primitives += primitive.Count(count)
}

func (c *renderContext) DrawElements(primitive driver.Primitive, count int, indexType driver.ScalarType, offset int) {
	c.drv.DrawElements(primitive, count, indexType, offset)
	c.stats.DrawCalls++
	c.stats.Primitives += primitive.Count(count)
}

func (c *renderContext) Stats() Stats {
	return c.stats
}

func (c *renderContext) ResetStats() {
	c.stats = Stats{}
}

func (c *renderContext) nextResourceID() uint64 {
	c.nextID++
	return c.nextID
}

func (c *renderContext) register(res Resource) {
	c.live[res.base().id] = res
}

func (c *renderContext) unregister(r *resource) {
	delete(c.live, r.id)
}

func (c *renderContext) LiveResources() []Resource {
	ids := make([]uint64, 0, len(c.live))
	for id := range c.live {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]Resource, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.live[id])
	}
	return out
}

func (c *renderContext) Dispose() error {
	if c.disposed {
		return nil
	}
	c.disposed = true

	leaked := c.LiveResources()
	names := make([]string, 0, len(leaked))
	for _, res := range leaked {
		names = append(names, res.base().describe())
		c.logger.Warn("resource not disposed before context shutdown", "resource", res.base().describe())
	}

	c.drv.BindVertexArray(driver.Zero)
	c.drv.DeleteVertexArray(c.vertexArray)
	liveContext.CompareAndSwap(c, nil)
	c.logger.Info("render context disposed", "leaked", len(leaked))

	if c.leakCheck && len(leaked) > 0 {
		return errors.Wrapf(ErrResourceLeak, "%d live: %s", len(leaked), strings.Join(names, ", "))
	}
	return nil
}
