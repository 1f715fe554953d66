package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/cockroachdb/errors"
)

// PixelBuffer is an unpack buffer that textures can upload their pixels from.
type PixelBuffer interface {
	Resource

	// SizeBytes returns the allocated storage size in bytes.
	SizeBytes() int

	Bind(ctx RenderContext) error
	EnsureUnbound(ctx RenderContext) error

	// SetData uploads bytes at offset, binding the buffer first.
	SetData(data []byte, offset int) error
}

type pixelBuffer struct {
	buffer
}

var _ PixelBuffer = &pixelBuffer{}

// NewPixelBuffer creates a pixel unpack buffer of size bytes.
//
// Parameters:
//   - ctx: the render context to create the buffer on
//   - size: the storage size in bytes
//   - usage: the storage usage hint
//
// Returns:
//   - PixelBuffer: the new buffer, left unbound
//   - error: ErrInvalidArgument for a non-positive size
func NewPixelBuffer(ctx RenderContext, size int, usage driver.BufferUsage) (PixelBuffer, error) {
	if size <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "pixel buffer size %d", size)
	}
	c, err := contextOf(ctx)
	if err != nil {
		return nil, err
	}
	pb := &pixelBuffer{buffer: newBuffer(c, driver.BufferTargetPixelUnpack, usage, size)}
	c.register(pb)

	// A bound unpack buffer redirects every texture upload, so it is released right after allocation.
	if err := c.BindPixelBuffer(pb); err != nil {
		pb.Dispose()
		return nil, err
	}
	pb.allocate(nil)
	c.UnbindPixelBuffer()
	return pb, nil
}

func (pb *pixelBuffer) Bind(ctx RenderContext) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "bind pixel buffer: render context is nil")
	}
	return ctx.BindPixelBuffer(pb)
}

func (pb *pixelBuffer) EnsureUnbound(ctx RenderContext) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "unbind pixel buffer: render context is nil")
	}
	return ctx.EnsurePixelBufferUnbound(pb)
}

func (pb *pixelBuffer) SetData(data []byte, offset int) error {
	if err := pb.ensureUndisposed("set pixel data"); err != nil {
		return err
	}
	if err := pb.checkRange("set pixel data", offset, len(data)); err != nil {
		return err
	}
	if err := pb.ctx.BindPixelBuffer(pb); err != nil {
		return err
	}
	pb.write(offset, data)
	pb.ctx.UnbindPixelBuffer()
	return nil
}

func (pb *pixelBuffer) Dispose() {
	pb.disposeBuffer(func(c *renderContext) {
		_ = c.EnsurePixelBufferUnbound(pb)
	})
}
