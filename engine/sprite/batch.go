package sprite

import (
	"math"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/vertex"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxBatchSize is the hard ceiling on items staged between two flushes.
const MaxBatchSize = 3000

// DefaultInitialCapacity is the number of items a batch can stage before its first growth.
const DefaultInitialCapacity = 16

const growthFactor = 1.5

// batch is the growable staging core shared by SpriteBatch and LineBatch.
// Items are staged into CPU arrays and drawn in one ranged indexed call per flush.
type batch struct {
	ctx       renderer.RenderContext
	label     string
	primitive driver.Primitive
	// pattern holds the per-item indices relative to the item's first vertex.
	pattern         []uint16
	verticesPerItem int

	initialCapacity int
	maxItems        int
	capacity        int

	vertices []vertex.Position2TextureColor
	indices  []uint16
	vb       renderer.VertexBuffer
	ib       renderer.IndexBuffer

	count             int
	active            bool
	shader            renderer.ShaderProgram
	transform         mgl32.Mat4
	lastTexture       renderer.Texture2D
	lastShader        renderer.ShaderProgram
	previousDepthTest bool
}

func newBatch(ctx renderer.RenderContext, label string, primitive driver.Primitive, verticesPerItem int, pattern []uint16, options []BatchOption) (*batch, error) {
	if common.IsNil(ctx) {
		return nil, errors.Wrap(ErrInvalidArgument, "batch requires a render context")
	}
	b := &batch{
		ctx:             ctx,
		label:           label,
		primitive:       primitive,
		pattern:         pattern,
		verticesPerItem: verticesPerItem,
		initialCapacity: DefaultInitialCapacity,
		maxItems:        MaxBatchSize,
		transform:       mgl32.Ident4(),
	}
	for _, opt := range options {
		opt(b)
	}
	b.maxItems = common.Clamp(b.maxItems, 1, MaxBatchSize)
	b.capacity = common.Clamp(b.initialCapacity, 1, b.maxItems)

	b.vertices = make([]vertex.Position2TextureColor, b.capacity*b.verticesPerItem)
	b.indices = make([]uint16, b.capacity*len(b.pattern))
	if err := b.createBuffers(); err != nil {
		return nil, err
	}
	return b, nil
}

// createBuffers disposes the current GPU buffers and allocates new ones sized to the current capacity.
func (b *batch) createBuffers() error {
	if b.vb != nil {
		b.vb.Dispose()
	}
	if b.ib != nil {
		b.ib.Dispose()
	}
	b.vb, b.ib = nil, nil

	vb, err := renderer.NewVertexBufferWithCapacity[vertex.Position2TextureColor](b.ctx, len(b.vertices), driver.BufferUsageStreamDraw)
	if err != nil {
		return err
	}
	ib, err := renderer.NewIndexBufferWithCapacity[uint16](b.ctx, len(b.indices), driver.BufferUsageStreamDraw)
	if err != nil {
		vb.Dispose()
		return err
	}
	vb.SetLabel(b.label + " vertices")
	ib.SetLabel(b.label + " indices")
	b.vb, b.ib = vb, ib
	return nil
}

func (b *batch) begin(shader renderer.ShaderProgram, transform mgl32.Mat4) error {
	if b.active {
		return errors.Wrapf(ErrInvalidOperationSequence, "%s: Begin called twice without End", b.label)
	}
	if common.IsNil(shader) {
		return errors.Wrapf(ErrInvalidArgument, "%s: shader is nil", b.label)
	}
	if shader.Disposed() {
		return errors.Wrapf(ErrUseAfterDispose, "%s: shader is disposed", b.label)
	}

	b.count = 0
	b.active = true
	b.shader = shader
	b.transform = transform
	shader.TrySetUniformMat4("transform", transform)

	b.previousDepthTest = b.ctx.DepthTest()
	b.ctx.SetDepthTest(false)
	return nil
}

func (b *batch) end() error {
	if !b.active {
		return errors.Wrapf(ErrInvalidOperationSequence, "%s: End called without Begin", b.label)
	}
	var err error
	if b.count != 0 {
		err = b.flush()
	}
	b.active = false
	b.ctx.SetDepthTest(b.previousDepthTest)
	return err
}

// next reserves one item drawn with tex and returns its vertices for the caller to fill.
// Any flush required by a state change or a full batch happens before the item is reserved.
func (b *batch) next(tex renderer.Texture2D) ([]vertex.Position2TextureColor, error) {
	if !b.active {
		return nil, errors.Wrapf(ErrInvalidOperationSequence, "%s: Draw called before Begin", b.label)
	}
	if common.IsNil(tex) {
		return nil, errors.Wrapf(ErrInvalidArgument, "%s: texture is nil", b.label)
	}
	if tex.Disposed() {
		return nil, errors.Wrapf(ErrUseAfterDispose, "%s: texture is disposed", b.label)
	}
	if err := b.flushIfNeeded(tex); err != nil {
		return nil, err
	}

	b.count++
	if err := b.ensureCapacity(); err != nil {
		b.count--
		return nil, err
	}

	item := b.count - 1
	vo := item * b.verticesPerItem
	io := item * len(b.pattern)
	for i, p := range b.pattern {
		b.indices[io+i] = uint16(vo) + p
	}
	return b.vertices[vo : vo+b.verticesPerItem], nil
}

func (b *batch) flushIfNeeded(tex renderer.Texture2D) error {
	flushed := false
	if b.lastTexture == nil {
		b.lastTexture = tex
	} else if b.lastTexture != tex {
		if err := b.flush(); err != nil {
			return err
		}
		flushed = true
		b.lastTexture = tex
	}

	if b.shader != b.lastShader {
		if !flushed {
			if err := b.flush(); err != nil {
				return err
			}
		}
		b.lastShader = b.shader
	}

	if b.count*b.verticesPerItem+b.verticesPerItem-1 > math.MaxUint16 || b.count >= b.maxItems {
		return b.flush()
	}
	return nil
}

// ensureCapacity grows the CPU arrays and recreates the GPU buffers when count exceeds the capacity.
func (b *batch) ensureCapacity() error {
	if b.count <= b.capacity {
		return nil
	}
	capacity := b.capacity
	for capacity < b.count {
		capacity = max(int(float64(capacity)*growthFactor), capacity+1)
	}
	capacity = min(capacity, b.maxItems)

	vertices := make([]vertex.Position2TextureColor, capacity*b.verticesPerItem)
	copy(vertices, b.vertices)
	indices := make([]uint16, capacity*len(b.pattern))
	copy(indices, b.indices)

	previous := b.capacity
	b.vertices, b.indices, b.capacity = vertices, indices, capacity
	if err := b.createBuffers(); err != nil {
		return err
	}
	b.ctx.Logger().Debug("batch capacity increased", "batch", b.label, "from", previous, "to", capacity)
	return nil
}

func (b *batch) flush() error {
	if b.count == 0 {
		return nil
	}
	if b.shader == nil {
		return errors.Wrapf(ErrInvalidState, "%s: flush without a shader", b.label)
	}
	if b.lastTexture == nil {
		return errors.Wrapf(ErrInvalidState, "%s: flush without a texture", b.label)
	}

	vertexCount := b.count * b.verticesPerItem
	indexCount := b.count * len(b.pattern)
	if err := renderer.SubData(b.vb, b.vertices[:vertexCount], 0); err != nil {
		return err
	}
	if err := renderer.SubIndexData(b.ib, b.indices[:indexCount], 0); err != nil {
		return err
	}

	ctx := b.ctx
	if err := ctx.BindVertexBuffer(b.vb); err != nil {
		return err
	}
	if err := ctx.BindIndexBuffer(b.ib); err != nil {
		return err
	}
	if err := ctx.BindShaderProgram(b.shader); err != nil {
		return err
	}
	if err := ctx.BindTexture(b.lastTexture, 0); err != nil {
		return err
	}
	ctx.ApplyVertexLayout(b.vb.Layout(), b.shader, 0)

	previousDepthTest := ctx.DepthTest()
	ctx.SetDepthTest(false)
	ctx.DrawRangeElements(b.primitive, 0, uint32(vertexCount), indexCount, driver.ScalarUnsignedShort, 0)
	ctx.SetDepthTest(previousDepthTest)

	b.count = 0
	return nil
}

// dispose releases the buffers. Items staged by an unfinished batch are dropped
// and the depth test saved by begin is restored.
func (b *batch) dispose() {
	if b.active {
		b.active = false
		b.count = 0
		b.ctx.SetDepthTest(b.previousDepthTest)
	}
	if b.vb != nil {
		b.vb.Dispose()
	}
	if b.ib != nil {
		b.ib.Dispose()
	}
	b.lastTexture, b.lastShader, b.shader = nil, nil, nil
}
