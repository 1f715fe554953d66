package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/cockroachdb/errors"
)

// FrameBufferFlags selects the attachments of a framebuffer.
type FrameBufferFlags uint8

const (
	// FrameBufferColor attaches a color texture.
	FrameBufferColor FrameBufferFlags = 1 << iota
	// FrameBufferDepth attaches a depth renderbuffer.
	FrameBufferDepth
)

// FrameBuffer is an off-screen render target.
type FrameBuffer interface {
	Resource

	// Width returns the width of the attachments in pixels.
	Width() int

	// Height returns the height of the attachments in pixels.
	Height() int

	// Flags returns the attachments the framebuffer was created with.
	Flags() FrameBufferFlags

	// ColorTexture returns the color attachment, or nil without FrameBufferColor.
	ColorTexture() Texture2D

	// OwnsColorTexture reports whether disposing the framebuffer also disposes its color texture.
	OwnsColorTexture() bool

	// Bind makes the framebuffer the render target of ctx.
	Bind(ctx RenderContext) error

	// EnsureUnbound returns ctx to the default framebuffer if this framebuffer is the render target.
	EnsureUnbound(ctx RenderContext) error
}

type frameBuffer struct {
	resource
	width, height int
	flags         FrameBufferFlags
	color         Texture2D
	ownsColor     bool
	depth         driver.Handle
}

var _ FrameBuffer = &frameBuffer{}

// NewFrameBuffer creates a framebuffer with attachments it owns.
//
// Parameters:
//   - ctx: the render context to create the framebuffer on
//   - width: the attachment width in pixels
//   - height: the attachment height in pixels
//   - flags: the attachments to create, at least one
//
// Returns:
//   - FrameBuffer: the complete framebuffer, with the previous render target restored
//   - error: ErrInvalidArgument for bad sizes or flags, ErrIncompleteFramebuffer when the driver rejects it
func NewFrameBuffer(ctx RenderContext, width, height int, flags FrameBufferFlags) (FrameBuffer, error) {
	if flags&(FrameBufferColor|FrameBufferDepth) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "framebuffer requires a color or depth attachment")
	}
	if err := validSize("framebuffer", width, height); err != nil {
		return nil, err
	}
	var color Texture2D
	if flags&FrameBufferColor != 0 {
		var err error
		color, err = NewTexture2D(ctx, width, height)
		if err != nil {
			return nil, err
		}
	}
	fb, err := newFrameBuffer(ctx, width, height, flags, color, true)
	if err != nil && color != nil {
		color.Dispose()
	}
	return fb, err
}

// NewFrameBufferFromTexture creates a framebuffer rendering into a caller-owned texture.
// The texture outlives the framebuffer and is not disposed with it.
func NewFrameBufferFromTexture(ctx RenderContext, color Texture2D, flags FrameBufferFlags) (FrameBuffer, error) {
	if isNil(color) {
		return nil, errors.Wrap(ErrInvalidArgument, "framebuffer color texture is nil")
	}
	if err := color.base().ensureUndisposed("attach framebuffer texture"); err != nil {
		return nil, err
	}
	return newFrameBuffer(ctx, color.Width(), color.Height(), flags|FrameBufferColor, color, false)
}

func newFrameBuffer(ctx RenderContext, width, height int, flags FrameBufferFlags, color Texture2D, owns bool) (*frameBuffer, error) {
	c, err := contextOf(ctx)
	if err != nil {
		return nil, err
	}
	if color != nil && color.base().ctx != c {
		return nil, errors.Wrapf(ErrContextMismatch, "framebuffer color texture %s", color.base().describe())
	}

	fb := &frameBuffer{
		resource:  newResource(c, driver.LabelFramebuffer, c.drv.GenFramebuffer(), ""),
		width:     width,
		height:    height,
		flags:     flags,
		color:     color,
		ownsColor: owns,
	}
	c.register(fb)

	previous := c.FrameBuffer()
	if err := c.BindFrameBuffer(fb); err != nil {
		fb.disposeHandles()
		return nil, err
	}

	if color != nil {
		c.drv.FramebufferTexture2D(driver.AttachmentColor0, driver.TextureTarget2D, color.Handle())
	}
	if flags&FrameBufferDepth != 0 {
		// The renderbuffer is only touched here and in Dispose, so its binding is not cached.
		fb.depth = c.drv.GenRenderbuffer()
		c.drv.BindRenderbuffer(fb.depth)
		c.drv.RenderbufferStorage(driver.RenderbufferDepth24Stencil8, width, height)
		c.drv.FramebufferRenderbuffer(driver.AttachmentDepth, fb.depth)
		c.drv.BindRenderbuffer(driver.Zero)
	}
	status := c.drv.CheckFramebufferStatus()

	if previous != nil {
		err = c.BindFrameBuffer(previous)
	} else {
		c.UnbindFrameBuffer()
	}
	if status != driver.FramebufferComplete {
		fb.disposeHandles()
		return nil, errors.Wrapf(ErrIncompleteFramebuffer, "%dx%d framebuffer: %s", width, height, status)
	}
	if err != nil {
		fb.disposeHandles()
		return nil, err
	}
	return fb, nil
}

func (fb *frameBuffer) Width() int {
	return fb.width
}

func (fb *frameBuffer) Height() int {
	return fb.height
}

func (fb *frameBuffer) Flags() FrameBufferFlags {
	return fb.flags
}

func (fb *frameBuffer) ColorTexture() Texture2D {
	return fb.color
}

func (fb *frameBuffer) OwnsColorTexture() bool {
	return fb.ownsColor
}

func (fb *frameBuffer) Bind(ctx RenderContext) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "bind framebuffer: render context is nil")
	}
	return ctx.BindFrameBuffer(fb)
}

func (fb *frameBuffer) EnsureUnbound(ctx RenderContext) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "unbind framebuffer: render context is nil")
	}
	return ctx.EnsureFrameBufferUnbound(fb)
}

// disposeHandles releases the framebuffer and its depth renderbuffer but not the color texture.
func (fb *frameBuffer) disposeHandles() {
	if fb.disposed {
		return
	}
	if fb.bound != nil {
		_ = fb.bound.EnsureFrameBufferUnbound(fb)
	}
	if fb.depth != driver.Zero {
		fb.ctx.drv.DeleteRenderbuffer(fb.depth)
		fb.depth = driver.Zero
	}
	fb.ctx.drv.DeleteFramebuffer(fb.handle)
	fb.finishDispose()
}

func (fb *frameBuffer) Dispose() {
	if fb.disposed {
		return
	}
	if fb.bound != nil {
		_ = fb.bound.EnsureFrameBufferUnbound(fb)
	}
	if fb.ownsColor && fb.color != nil {
		fb.color.Dispose()
	}
	fb.disposeHandles()
}
