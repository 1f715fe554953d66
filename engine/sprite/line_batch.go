package sprite

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/vertex"
	"github.com/go-gl/mathgl/mgl32"
)

// LineBatch stages colored line segments and draws them in a single call per flush.
// Segments sample a 1x1 white texture owned by the batch, so the shader used with a SpriteBatch works unchanged.
type LineBatch interface {
	Begin(shader renderer.ShaderProgram) error
	BeginWithTransform(shader renderer.ShaderProgram, transform mgl32.Mat4) error
	End() error
	Flush() error

	// DrawLine stages a segment from a to b.
	DrawLine(a, b mgl32.Vec2, color common.Color) error

	// DrawRectangleOutline stages the four edges of rect.
	DrawRectangleOutline(rect common.Rectangle, color common.Color) error

	Count() int
	Capacity() int
	Active() bool

	// Dispose releases the GPU buffers and the white texture of the batch.
	Dispose()
}

type lineBatch struct {
	*batch
	white renderer.Texture2D
}

var _ LineBatch = &lineBatch{}

var linePattern = []uint16{0, 1}

// NewLineBatch creates a line batch with stream-draw buffers on ctx.
//
// Parameters:
//   - ctx: the render context the batch draws on
//   - options: capacity, limit and label options
//
// Returns:
//   - LineBatch: the new batch, Idle
//   - error: ErrInvalidArgument for a nil context, or a resource creation error
func NewLineBatch(ctx renderer.RenderContext, options ...BatchOption) (LineBatch, error) {
	b, err := newBatch(ctx, "line batch", driver.PrimitiveLines, 2, linePattern, options)
	if err != nil {
		return nil, err
	}
	white, err := renderer.NewTexture2DFromRGBA(ctx, 1, 1, []byte{255, 255, 255, 255})
	if err != nil {
		b.dispose()
		return nil, err
	}
	white.SetLabel(b.label + " white")
	return &lineBatch{batch: b, white: white}, nil
}

func (lb *lineBatch) Begin(shader renderer.ShaderProgram) error {
	return lb.begin(shader, mgl32.Ident4())
}

func (lb *lineBatch) BeginWithTransform(shader renderer.ShaderProgram, transform mgl32.Mat4) error {
	return lb.begin(shader, transform)
}

func (lb *lineBatch) End() error {
	return lb.end()
}

func (lb *lineBatch) Flush() error {
	return lb.flush()
}

func (lb *lineBatch) DrawLine(a, b mgl32.Vec2, color common.Color) error {
	segment, err := lb.next(lb.white)
	if err != nil {
		return err
	}
	uv := mgl32.Vec2{0.5, 0.5}
	segment[0] = vertex.Position2TextureColor{Position: a, TexCoord: uv, Color: color}
	segment[1] = vertex.Position2TextureColor{Position: b, TexCoord: uv, Color: color}
	return nil
}

func (lb *lineBatch) DrawRectangleOutline(rect common.Rectangle, color common.Color) error {
	left, top := float32(rect.X), float32(rect.Y)
	right, bottom := float32(rect.Right()), float32(rect.Bottom())
	edges := [4][2]mgl32.Vec2{
		{{left, top}, {right, top}},
		{{right, top}, {right, bottom}},
		{{right, bottom}, {left, bottom}},
		{{left, bottom}, {left, top}},
	}
	for _, e := range edges {
		if err := lb.DrawLine(e[0], e[1], color); err != nil {
			return err
		}
	}
	return nil
}

func (lb *lineBatch) Count() int {
	return lb.count
}

func (lb *lineBatch) Capacity() int {
	return lb.capacity
}

func (lb *lineBatch) Active() bool {
	return lb.active
}

func (lb *lineBatch) Dispose() {
	lb.dispose()
	lb.white.Dispose()
}
