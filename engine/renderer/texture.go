package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/cockroachdb/errors"
)

// TextureKind identifies which binding table of a texture unit a texture occupies.
type TextureKind int

const (
	TextureKind2D TextureKind = iota
	TextureKindCubeMap
	TextureKind2DArray

	textureKindCount
)

// Target returns the driver bind target of the kind.
func (k TextureKind) Target() driver.TextureTarget {
	switch k {
	case TextureKindCubeMap:
		return driver.TextureTargetCubeMap
	case TextureKind2DArray:
		return driver.TextureTarget2DArray
	default:
		return driver.TextureTarget2D
	}
}

func (k TextureKind) String() string {
	switch k {
	case TextureKind2D:
		return "texture 2d"
	case TextureKindCubeMap:
		return "texture cube map"
	case TextureKind2DArray:
		return "texture 2d array"
	default:
		return fmt.Sprintf("TextureKind(%d)", int(k))
	}
}

// Texture is the capability set shared by every texture kind.
type Texture interface {
	Resource

	// Kind returns the binding table the texture occupies on a unit.
	Kind() TextureKind

	// Width returns the width of level 0 in pixels.
	Width() int

	// Height returns the height of level 0 in pixels.
	Height() int

	// Bind binds the texture to unit slot of ctx.
	//
	// Parameters:
	//   - ctx: the context to bind on
	//   - slot: the texture unit
	//
	// Returns:
	//   - error: any binding contract violation
	Bind(ctx RenderContext, slot int) error

	// EnsureUnbound unbinds the texture from every unit of ctx that holds it.
	EnsureUnbound(ctx RenderContext) error

	// EnsureUnboundAt unbinds the texture from unit slot of ctx if it is bound there.
	EnsureUnboundAt(ctx RenderContext, slot int) error

	// SetMinFilter sets the minification filter. The native call is skipped when the value is unchanged.
	SetMinFilter(f driver.TextureFilter) error
	SetMagFilter(f driver.TextureFilter) error
	SetWrapS(w driver.TextureWrap) error
	SetWrapT(w driver.TextureWrap) error

	MinFilter() driver.TextureFilter
	MagFilter() driver.TextureFilter
	WrapS() driver.TextureWrap
	WrapT() driver.TextureWrap

	// GenerateMipmaps regenerates the mipmap chain from level 0.
	GenerateMipmaps() error
}

// samplerState caches the sampling parameters last sent to the driver.
type samplerState struct {
	minFilter driver.TextureFilter
	magFilter driver.TextureFilter
	wrapS     driver.TextureWrap
	wrapT     driver.TextureWrap
	wrapR     driver.TextureWrap
}

var defaultSamplerState = samplerState{
	minFilter: driver.FilterLinear,
	magFilter: driver.FilterLinear,
	wrapS:     driver.WrapRepeat,
	wrapT:     driver.WrapRepeat,
	wrapR:     driver.WrapRepeat,
}

// texture is the shared state of every Texture implementation.
type texture struct {
	resource
	self    Texture
	kind    TextureKind
	width   int
	height  int
	sampler samplerState

	mipmapped bool
}

func newTexture(c *renderContext, kind TextureKind, width, height int, label string) texture {
	return texture{
		resource: newResource(c, driver.LabelTexture, c.drv.GenTexture(), label),
		kind:     kind,
		width:    width,
		height:   height,
		sampler:  defaultSamplerState,
	}
}

func (t *texture) Kind() TextureKind {
	return t.kind
}

func (t *texture) Width() int {
	return t.width
}

func (t *texture) Height() int {
	return t.height
}

func (t *texture) Bind(ctx RenderContext, slot int) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "bind texture: render context is nil")
	}
	return ctx.BindTexture(t.self, slot)
}

func (t *texture) EnsureUnbound(ctx RenderContext) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "unbind texture: render context is nil")
	}
	return ctx.EnsureTextureUnbound(t.self)
}

func (t *texture) EnsureUnboundAt(ctx RenderContext, slot int) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "unbind texture: render context is nil")
	}
	return ctx.EnsureTextureUnboundAt(t.self, slot)
}

// withUnit0 binds the texture on unit 0 of its parent context, runs fn, and restores whatever unit 0 held before.
// Uploads and parameter changes go through here so the binding cache stays the only writer of native bindings.
func (t *texture) withUnit0(op string, fn func(target driver.TextureTarget) error) error {
	if err := t.ensureUndisposed(op); err != nil {
		return err
	}
	c := t.ctx
	previous := c.CurrentTexture(0)
	if err := c.BindTexture(t.self, 0); err != nil {
		return err
	}

	err := fn(t.kind.Target())

	if previous != nil && !previous.Disposed() {
		if restoreErr := c.BindTexture(previous, 0); restoreErr != nil {
			return errors.CombineErrors(err, restoreErr)
		}
		return err
	}
	if unbindErr := c.EnsureTextureUnboundAt(t.self, 0); unbindErr != nil {
		return errors.CombineErrors(err, unbindErr)
	}
	return err
}

func (t *texture) setParameter(op string, param driver.TextureParameter, value int32) error {
	return t.withUnit0(op, func(target driver.TextureTarget) error {
		t.ctx.drv.TexParameter(target, param, value)
		return nil
	})
}

func (t *texture) SetMinFilter(f driver.TextureFilter) error {
	if err := t.ensureUndisposed("set min filter"); err != nil {
		return err
	}
	if t.sampler.minFilter == f {
		return nil
	}
	if err := t.setParameter("set min filter", driver.TextureParameterMinFilter, int32(f)); err != nil {
		return err
	}
	t.sampler.minFilter = f
	return nil
}

func (t *texture) SetMagFilter(f driver.TextureFilter) error {
	if err := t.ensureUndisposed("set mag filter"); err != nil {
		return err
	}
	if t.sampler.magFilter == f {
		return nil
	}
	if f != driver.FilterNearest && f != driver.FilterLinear {
		return errors.Wrapf(ErrInvalidArgument, "mag filter %d uses mipmaps", f)
	}
	if err := t.setParameter("set mag filter", driver.TextureParameterMagFilter, int32(f)); err != nil {
		return err
	}
	t.sampler.magFilter = f
	return nil
}

func (t *texture) SetWrapS(w driver.TextureWrap) error {
	if err := t.ensureUndisposed("set wrap s"); err != nil {
		return err
	}
	if t.sampler.wrapS == w {
		return nil
	}
	if err := t.setParameter("set wrap s", driver.TextureParameterWrapS, int32(w)); err != nil {
		return err
	}
	t.sampler.wrapS = w
	return nil
}

func (t *texture) SetWrapT(w driver.TextureWrap) error {
	if err := t.ensureUndisposed("set wrap t"); err != nil {
		return err
	}
	if t.sampler.wrapT == w {
		return nil
	}
	if err := t.setParameter("set wrap t", driver.TextureParameterWrapT, int32(w)); err != nil {
		return err
	}
	t.sampler.wrapT = w
	return nil
}

func (t *texture) setWrapR(w driver.TextureWrap) error {
	if t.sampler.wrapR == w {
		return nil
	}
	if err := t.setParameter("set wrap r", driver.TextureParameterWrapR, int32(w)); err != nil {
		return err
	}
	t.sampler.wrapR = w
	return nil
}

func (t *texture) MinFilter() driver.TextureFilter {
	return t.sampler.minFilter
}

func (t *texture) MagFilter() driver.TextureFilter {
	return t.sampler.magFilter
}

func (t *texture) WrapS() driver.TextureWrap {
	return t.sampler.wrapS
}

func (t *texture) WrapT() driver.TextureWrap {
	return t.sampler.wrapT
}

// applySampler sends every cached sampler parameter to the driver, used after (re)allocating the native texture.
func (t *texture) applySampler(target driver.TextureTarget) {
	drv := t.ctx.drv
	drv.TexParameter(target, driver.TextureParameterMinFilter, int32(t.sampler.minFilter))
	drv.TexParameter(target, driver.TextureParameterMagFilter, int32(t.sampler.magFilter))
	drv.TexParameter(target, driver.TextureParameterWrapS, int32(t.sampler.wrapS))
	drv.TexParameter(target, driver.TextureParameterWrapT, int32(t.sampler.wrapT))
	if t.kind != TextureKind2D {
		drv.TexParameter(target, driver.TextureParameterWrapR, int32(t.sampler.wrapR))
	}
}

func (t *texture) GenerateMipmaps() error {
	return t.withUnit0("generate mipmaps", func(target driver.TextureTarget) error {
		t.ctx.drv.GenerateMipmap(target)
		t.mipmapped = true
		return nil
	})
}

// disposeTexture detaches the texture from every unit and deletes its handle.
func (t *texture) disposeTexture() {
	if t.disposed {
		return
	}
	if t.bound != nil {
		_ = t.bound.EnsureTextureUnbound(t.self)
	}
	t.ctx.drv.DeleteTexture(t.handle)
	t.finishDispose()
}

func (t *texture) Dispose() {
	t.disposeTexture()
}

func validSize(what string, width, height int) error {
	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrInvalidArgument, "%s size %dx%d", what, width, height)
	}
	return nil
}
