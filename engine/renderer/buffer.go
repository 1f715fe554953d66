package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/cockroachdb/errors"
)

// buffer is the shared state of the vertex, index and pixel buffer types.
type buffer struct {
	resource
	target driver.BufferTarget
	usage  driver.BufferUsage
	size   int
}

func newBuffer(c *renderContext, target driver.BufferTarget, usage driver.BufferUsage, size int) buffer {
	return buffer{
		resource: newResource(c, driver.LabelBuffer, c.drv.GenBuffer(), ""),
		target:   target,
		usage:    usage,
		size:     size,
	}
}

// SizeBytes returns the allocated size of the buffer storage in bytes.
func (b *buffer) SizeBytes() int {
	return b.size
}

// Usage returns the usage hint the storage was allocated with.
func (b *buffer) Usage() driver.BufferUsage {
	return b.usage
}

// allocate uploads the initial storage. The buffer must already be bound to its target.
func (b *buffer) allocate(data []byte) {
	b.ctx.drv.BufferData(b.target, b.size, data, b.usage)
}

// checkRange validates a write of n bytes at offset against the storage size.
func (b *buffer) checkRange(op string, offset, n int) error {
	if offset < 0 || n < 0 || offset+n > b.size {
		return errors.Wrapf(ErrOutOfRange, "%s [%d, %d) outside %d bytes of %s", op, offset, offset+n, b.size, b.describe())
	}
	return nil
}

// write uploads data at byte offset. The buffer must already be bound to its target.
func (b *buffer) write(offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	b.ctx.drv.BufferSubData(b.target, offset, data)
}

// disposeBuffer runs unbind when the buffer is still bound, then deletes the native buffer.
func (b *buffer) disposeBuffer(unbind func(c *renderContext)) {
	if b.disposed {
		return
	}
	if b.bound != nil {
		unbind(b.bound)
	}
	b.ctx.drv.DeleteBuffer(b.handle)
	b.finishDispose()
}
