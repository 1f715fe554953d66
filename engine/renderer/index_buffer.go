package renderer

import (
	"unsafe"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/cockroachdb/errors"
)

// Index is the set of element types an index buffer can store.
type Index interface {
	~uint16 | ~uint32
}

// IndexBuffer is GPU storage for a fixed number of 16 or 32 bit indices.
type IndexBuffer interface {
	Resource

	// Count returns how many indices the buffer holds.
	Count() int

	// IndexType returns ScalarUnsignedShort or ScalarUnsignedInt.
	IndexType() driver.ScalarType

	// SizeBytes returns the allocated storage size in bytes.
	SizeBytes() int

	// Bind binds the buffer to the index buffer slot of ctx.
	Bind(ctx RenderContext) error

	// EnsureUnbound unbinds the buffer from ctx if it is the cached index buffer.
	EnsureUnbound(ctx RenderContext) error

	// SetData uploads raw index bytes at a byte offset, binding the buffer first.
	SetData(data []byte, offset int) error
}

type indexBuffer struct {
	buffer
	indexType driver.ScalarType
	count     int
}

var _ IndexBuffer = &indexBuffer{}

func indexTypeOf[I Index]() driver.ScalarType {
	var zero I
	switch any(zero).(type) {
	case uint16:
		return driver.ScalarUnsignedShort
	case uint32:
		return driver.ScalarUnsignedInt
	}
	// Named types over uint16 or uint32 fall through the switch; size decides.
	if unsafe.Sizeof(zero) == 2 {
		return driver.ScalarUnsignedShort
	}
	return driver.ScalarUnsignedInt
}

// NewIndexBuffer creates an index buffer holding exactly indices.
//
// Parameters:
//   - ctx: the render context to create the buffer on
//   - indices: the initial indices, at least one
//   - usage: the storage usage hint
//
// Returns:
//   - IndexBuffer: the new buffer, bound on ctx
//   - error: ErrInvalidArgument for empty indices
func NewIndexBuffer[I Index](ctx RenderContext, indices []I, usage driver.BufferUsage) (IndexBuffer, error) {
	if len(indices) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "index buffer requires at least one index")
	}
	return newIndexBuffer(ctx, indexTypeOf[I](), len(indices), common.SliceToBytes(indices), usage)
}

// NewIndexBufferWithCapacity creates an index buffer with zeroed storage for capacity indices of type I.
func NewIndexBufferWithCapacity[I Index](ctx RenderContext, capacity int, usage driver.BufferUsage) (IndexBuffer, error) {
	if capacity <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "index buffer capacity %d", capacity)
	}
	return newIndexBuffer(ctx, indexTypeOf[I](), capacity, nil, usage)
}

func newIndexBuffer(ctx RenderContext, indexType driver.ScalarType, count int, data []byte, usage driver.BufferUsage) (*indexBuffer, error) {
	c, err := contextOf(ctx)
	if err != nil {
		return nil, err
	}
	ib := &indexBuffer{
		buffer:    newBuffer(c, driver.BufferTargetElementArray, usage, count*indexType.Size()),
		indexType: indexType,
		count:     count,
	}
	c.register(ib)

	if err := c.BindIndexBuffer(ib); err != nil {
		ib.Dispose()
		return nil, err
	}
	ib.allocate(data)
	return ib, nil
}

// SubIndexData uploads indices into ib starting at index position offset. I must match the buffer's index width.
func SubIndexData[I Index](ib IndexBuffer, indices []I, offset int) error {
	if isNil(ib) {
		return errors.Wrap(ErrInvalidArgument, "sub index data: index buffer is nil")
	}
	t := indexTypeOf[I]()
	if t != ib.IndexType() {
		return errors.Wrapf(ErrInvalidArgument, "sub index data: %d byte indices into a buffer of %d byte indices", t.Size(), ib.IndexType().Size())
	}
	return ib.SetData(common.SliceToBytes(indices), offset*t.Size())
}

func (ib *indexBuffer) Count() int {
	return ib.count
}

func (ib *indexBuffer) IndexType() driver.ScalarType {
	return ib.indexType
}

func (ib *indexBuffer) Bind(ctx RenderContext) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "bind index buffer: render context is nil")
	}
	return ctx.BindIndexBuffer(ib)
}

func (ib *indexBuffer) EnsureUnbound(ctx RenderContext) error {
	if isNil(ctx) {
		return errors.Wrap(ErrInvalidArgument, "unbind index buffer: render context is nil")
	}
	return ctx.EnsureIndexBufferUnbound(ib)
}

func (ib *indexBuffer) SetData(data []byte, offset int) error {
	if err := ib.ensureUndisposed("set index data"); err != nil {
		return err
	}
	size := ib.indexType.Size()
	if len(data)%size != 0 || offset%size != 0 {
		return errors.Wrapf(ErrInvalidArgument, "index data of %d bytes at %d is not aligned to %d byte indices", len(data), offset, size)
	}
	if err := ib.checkRange("set index data", offset, len(data)); err != nil {
		return err
	}
	if err := ib.ctx.BindIndexBuffer(ib); err != nil {
		return err
	}
	ib.write(offset, data)
	return nil
}

func (ib *indexBuffer) Dispose() {
	ib.disposeBuffer(func(c *renderContext) {
		_ = c.EnsureIndexBufferUnbound(ib)
	})
}
