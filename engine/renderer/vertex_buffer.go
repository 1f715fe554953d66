package renderer

import (
	"reflect"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/vertex"
	"github.com/cockroachdb/errors"
)

// VertexBuffer is GPU storage for a fixed number of vertex records of a single layout.
type VertexBuffer interface {
	Resource

	// Layout returns the attribute layout of the stored vertex records.
	Layout() *vertex.Layout

	// Count returns how many vertices the buffer holds.
	Count() int

	// SizeBytes returns the allocated storage size in bytes.
	SizeBytes() int

	// Usage returns the usage hint of the storage.
	Usage() driver.BufferUsage

	// Bind binds the buffer to the vertex buffer slot of ctx.
	Bind(ctx RenderContext) error

	// EnsureUnbound unbinds the buffer from ctx if it is the cached vertex buffer.
	EnsureUnbound(ctx RenderContext) error

	// SetData uploads raw vertex bytes at a byte offset, binding the buffer first.
	//
	// Parameters:
	//   - data: the bytes to upload, a whole number of vertices
	//   - offset: the destination byte offset
	//
	// Returns:
	//   - error: ErrUseAfterDispose, ErrInvalidArgument for a partial vertex, ErrOutOfRange past the end of storage
	SetData(data []byte, offset int) error
}

type vertexBuffer struct {
	buffer
	layout *vertex.Layout
	count  int
}

var _ VertexBuffer = &vertexBuffer{}

// NewVertexBuffer creates a vertex buffer holding exactly data. The layout is derived from T.
//
// Parameters:
//   - ctx: the render context to create the buffer on
//   - data: the initial vertices, at least one
//   - usage: the storage usage hint
//
// Returns:
//   - VertexBuffer: the new buffer, bound on ctx
//   - error: ErrInvalidArgument for empty data or a type with no vertex layout
func NewVertexBuffer[T any](ctx RenderContext, data []T, usage driver.BufferUsage) (VertexBuffer, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "vertex buffer requires at least one vertex")
	}
	layout, err := vertex.Describe(reflect.TypeFor[T]())
	if err != nil {
		return nil, errors.Wrap(ErrInvalidArgument, err.Error())
	}
	return newVertexBuffer(ctx, layout, len(data), common.SliceToBytes(data), usage)
}

// NewVertexBufferWithCapacity creates a vertex buffer with zeroed storage for capacity vertices of type T.
func NewVertexBufferWithCapacity[T any](ctx RenderContext, capacity int, usage driver.BufferUsage) (VertexBuffer, error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "vertex buffer capacity %d", capacity)
	}
	layout, err := vertex.Describe(reflect.TypeFor[T]())
	if err != nil {
		return nil, errors.Wrap(ErrInvalidArgument, err.Error())
	}
	return newVertexBuffer(ctx, layout, capacity, nil, usage)
}

func newVertexBuffer(ctx RenderContext, layout *vertex.Layout, count int, data []byte, usage driver.BufferUsage) (*vertexBuffer, error) {
	c, err := contextOf(ctx)
	if err != nil {
		return nil, err
	}
	vb := &vertexBuffer{
		buffer: newBuffer(c, driver.BufferTargetArray, usage, count*layout.Stride),
		layout: layout,
		count:  count,
	}
	c.register(vb)

	if err := c.BindVertexBuffer(vb); err != nil {
		vb.Dispose()
		return nil, err
	}
	vb.allocate(data)
	return vb, nil
}

// SubData uploads vertices into vb starting at vertex index offset. T must be the record type vb was created with.
//
// Parameters:
//   - vb: the destination buffer
//   - data: the vertices to upload
//   - offset: the index of the first destination vertex
//
// Returns:
//   - error: ErrInvalidArgument for a record type mismatch, or any error from SetData
func SubData[T any](vb VertexBuffer, data []T, offset int) error {
	if isNil(vb) {
		return errors.Wrap(ErrInvalidArgument, "sub data: vertex buffer is nil")
	}
	layout := vb.Layout()
	if t := reflect.TypeFor[T](); t != layout.Type {
		return errors.Wrapf(ErrInvalidArgument, "sub data: %s into a buffer of %s", t, layout.Type)
	}
	return vb.SetData(common.SliceToBytes(data), offset*layout.Stride)
}

func (vb *vertexBuffer) Layout() *vertex.Layout {
	return vb.layout
}

func (vb *vertexBuffer) Count() int {
	return vb.count
}

func (vb *vertexBuffer) Bind(ctx RenderContext) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "bind vertex buffer: render context is nil")
	}
	return ctx.BindVertexBuffer(vb)
}

func (vb *vertexBuffer) EnsureUnbound(ctx RenderContext) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "unbind vertex buffer: render context is nil")
	}
	return ctx.EnsureVertexBufferUnbound(vb)
}

func (vb *vertexBuffer) SetData(data []byte, offset int) error {
	if err := vb.ensureUndisposed("set vertex data"); err != nil {
		return err
	}
	if len(data)%vb.layout.Stride != 0 || offset%vb.layout.Stride != 0 {
		return errors.Wrapf(ErrInvalidArgument, "vertex data of %d bytes at %d is not aligned to stride %d", len(data), offset, vb.layout.Stride)
	}
	if err := vb.checkRange("set vertex data", offset, len(data)); err != nil {
		return err
	}
	if err := vb.ctx.BindVertexBuffer(vb); err != nil {
		return err
	}
	vb.write(offset, data)
	return nil
}

func (vb *vertexBuffer) Dispose() {
	vb.disposeBuffer(func(c *renderContext) {
		_ = c.EnsureVertexBufferUnbound(vb)
	})
}
