// Package wgpudriver implements driver.Driver on WebGPU.
//
// WebGPU has no bind-to-modify state, so the driver keeps the bindings itself and turns each draw into an
// explicit pipeline, bind groups, and a render pass command. Objects keep a CPU copy of their contents, which
// serves texture read back and unaligned buffer updates. A write to an object the open render pass already
// references submits that pass first, so draws observe data in call order just like OpenGL.
//
// WGSL programs follow one layout: the uniform block is @group(0) @binding(0) var<uniform>, and the texture
// group is @group(1), where every texture binding N is followed by its sampler at binding N+1. Vertex inputs
// are read from the @location fields of the vertex input struct.
package wgpudriver

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/Carmen-Shannon/oxy-gl/engine/window"
)

// ErrDevice reports a failure to create or configure a WebGPU object.
var ErrDevice = errors.New("webgpu device error")

const (
	// maxTextureUnits caps the emulated texture units.
	maxTextureUnits = 16
	// arenaSize is the byte size of the per-submission uniform arena.
	arenaSize = 1 << 20
	// textureLocationBase offsets the uniform locations reported for textures.
	textureLocationBase = 1 << 16
)

// labelKey identifies a labeled object across kinds.
type labelKey struct {
	kind   driver.LabelKind
	handle driver.Handle
}

// Driver issues WebGPU commands while presenting the driver.Driver bind-to-modify model.
// All methods must be called from the thread that created it.
type Driver struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	surfaceFormat wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	fallback      bool
	width, height int
	depthTexture  *wgpu.Texture
	depthView     *wgpu.TextureView
	placeholder   *textureObject

	logger *slog.Logger
	limits driver.Limits
	labels map[labelKey]string
	next   driver.Handle

	buffers       map[driver.Handle]*bufferObject
	textures      map[driver.Handle]*textureObject
	framebuffers  map[driver.Handle]*framebufferObject
	renderbuffers map[driver.Handle]*renderbufferObject
	programs      map[driver.Handle]*programObject
	vertexArrays  map[driver.Handle]*vertexArrayObject
	defaultVAO    *vertexArrayObject

	arrayBuffer  driver.Handle
	unpackBuffer driver.Handle
	activeUnit   int
	units        [][textureKinds]driver.Handle
	program      driver.Handle
	vertexArray  driver.Handle
	framebuffer  driver.Handle
	renderbuffer driver.Handle

	depthTest    bool
	blend        bool
	cull         bool
	blendSrc     driver.BlendFactor
	blendDst     driver.BlendFactor
	cullFace     driver.Face
	clearColor   wgpu.Color
	viewport     [4]int
	viewportSet  bool
	pendingClear driver.ClearMask

	frame frameState
	arena uniformArena
}

var _ driver.Driver = &Driver{}

// New creates a WebGPU device that renders into the surface described by surfaceDescriptor.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, usually from window.Window.SurfaceDescriptor
//   - width: the initial surface width in pixels
//   - height: the initial surface height in pixels
//   - options: functional options for present mode, adapter selection, and logging
//
// Returns:
//   - *Driver: the driver with a configured surface
//   - error: ErrDevice if the adapter, device, or surface could not be set up
func New(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, options ...DriverOption) (*Driver, error) {
	d := &Driver{
		presentMode:   wgpu.PresentModeFifo,
		logger:        common.Logger(),
		labels:        make(map[labelKey]string),
		buffers:       make(map[driver.Handle]*bufferObject),
		textures:      make(map[driver.Handle]*textureObject),
		framebuffers:  make(map[driver.Handle]*framebufferObject),
		renderbuffers: make(map[driver.Handle]*renderbufferObject),
		programs:      make(map[driver.Handle]*programObject),
		vertexArrays:  make(map[driver.Handle]*vertexArrayObject),
		defaultVAO:    newVertexArrayObject(),
		blendSrc:      driver.BlendOne,
		blendDst:      driver.BlendZero,
		clearColor:    wgpu.Color{A: 1},
	}
	for _, opt := range options {
		opt(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(surfaceDescriptor)

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.fallback,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		return nil, errors.Wrapf(ErrDevice, "request adapter: %v", err)
	}
	d.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "oxy-gl device",
	})
	if err != nil {
		return nil, errors.Wrapf(ErrDevice, "request device: %v", err)
	}
	d.device = device
	d.queue = device.GetQueue()

	limits := device.GetLimits().Limits
	d.limits = driver.Limits{
		MaxTextureImageUnits: min(maxTextureUnits, int(limits.MaxSampledTexturesPerShaderStage)),
		HasDebug:             true,
		Renderer:             "WebGPU",
	}
	d.units = make([][textureKinds]driver.Handle, d.limits.MaxTextureImageUnits)

	if err := d.arena.init(d.device, int(limits.MinUniformBufferOffsetAlignment)); err != nil {
		return nil, err
	}
	if err := d.Resize(width, height); err != nil {
		return nil, err
	}
	if d.placeholder, err = d.newPlaceholder(); err != nil {
		return nil, err
	}

	d.logger.Info("webgpu driver created",
		slog.Int("texture_units", d.limits.MaxTextureImageUnits),
		slog.Any("surface_format", d.surfaceFormat))
	return d, nil
}

// NewFromWindow creates a driver for a window created with window.ClientAPINone.
//
// Parameters:
//   - win: the window to render into
//   - options: functional options passed to New
//
// Returns:
//   - *Driver: the driver rendering into the window
//   - error: ErrDevice if setup failed
func NewFromWindow(win window.Window, options ...DriverOption) (*Driver, error) {
	if win.ClientAPI() != window.ClientAPINone {
		return nil, errors.Wrapf(ErrDevice, "window has a %s context; create it with ClientAPINone", win.ClientAPI())
	}
	return New(win.SurfaceDescriptor(), win.Width(), win.Height(), options...)
}

// Resize reconfigures the surface and the default depth buffer.
//
// Parameters:
//   - width: the new surface width in pixels
//   - height: the new surface height in pixels
//
// Returns:
//   - error: ErrDevice if the depth texture could not be created
func (d *Driver) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	d.flushPass()
	d.releaseSurfaceTexture()

	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	d.width, d.height = width, height

	if d.depthView != nil {
		d.depthView.Release()
		d.depthTexture.Release()
	}
	tex, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "default depth",
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return errors.Wrapf(ErrDevice, "create depth texture: %v", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return errors.Wrapf(ErrDevice, "create depth view: %v", err)
	}
	d.depthTexture, d.depthView = tex, view
	return nil
}

// Present submits the recorded frame and shows the surface texture.
func (d *Driver) Present() {
	if d.pendingClear != 0 {
		d.beginPass()
	}
	d.flushPass()
	if d.frame.surfaceTexture == nil {
		return
	}
	d.surface.Present()
	d.releaseSurfaceTexture()
}

func (d *Driver) releaseSurfaceTexture() {
	if d.frame.surfaceView != nil {
		d.frame.surfaceView.Release()
		d.frame.surfaceView = nil
	}
	if d.frame.surfaceTexture != nil {
		d.frame.surfaceTexture.Release()
		d.frame.surfaceTexture = nil
	}
}

// Release destroys every object and the device. The driver is unusable afterwards.
func (d *Driver) Release() {
	d.flushPass()
	d.releaseSurfaceTexture()
	for h := range d.programs {
		d.DeleteProgram(h)
	}
	for h := range d.textures {
		d.DeleteTexture(h)
	}
	for h := range d.renderbuffers {
		d.DeleteRenderbuffer(h)
	}
	for h := range d.buffers {
		d.DeleteBuffer(h)
	}
	if d.placeholder != nil {
		d.placeholder.release()
	}
	d.arena.release()
	if d.depthView != nil {
		d.depthView.Release()
		d.depthTexture.Release()
	}
	d.queue.Release()
	d.device.Release()
	d.adapter.Release()
	d.surface.Release()
	d.instance.Release()
}

func (d *Driver) Limits() driver.Limits {
	return d.limits
}

func (d *Driver) ObjectLabel(kind driver.LabelKind, h driver.Handle, label string) {
	d.labels[labelKey{kind, h}] = label
}

// label returns the recorded label of an object, or fallback.
func (d *Driver) label(kind driver.LabelKind, h driver.Handle, fallback string) string {
	if l, ok := d.labels[labelKey{kind, h}]; ok {
		return l
	}
	return fallback
}

// alloc returns a fresh handle. All kinds share one counter so handles never collide across maps.
func (d *Driver) alloc() driver.Handle {
	d.next++
	return d.next
}

func (d *Driver) Enable(c driver.Capability) {
	d.setCapability(c, true)
}

func (d *Driver) Disable(c driver.Capability) {
	d.setCapability(c, false)
}

func (d *Driver) setCapability(c driver.Capability, enabled bool) {
	switch c {
	case driver.CapabilityDepthTest:
		d.depthTest = enabled
	case driver.CapabilityBlend:
		d.blend = enabled
	case driver.CapabilityCullFace:
		d.cull = enabled
	}
}

func (d *Driver) BlendFunc(src, dst driver.BlendFactor) {
	d.blendSrc, d.blendDst = src, dst
}

func (d *Driver) CullFace(f driver.Face) {
	d.cullFace = f
}

func (d *Driver) ClearColor(r, g, b, a float32) {
	d.clearColor = wgpu.Color{R: float64(r), G: float64(g), B: float64(b), A: float64(a)}
}

// Clear records a clear of the bound target. It takes effect when the next pass on that target begins.
func (d *Driver) Clear(mask driver.ClearMask) {
	d.flushPass()
	d.pendingClear |= mask
}

func (d *Driver) Viewport(x, y, width, height int) {
	d.viewport = [4]int{x, y, width, height}
	d.viewportSet = true
	if d.frame.pass != nil {
		d.applyViewport()
	}
}
