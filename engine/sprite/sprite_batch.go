package sprite

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/vertex"
	"github.com/cockroachdb/errors"
	"github.com/go-gl/mathgl/mgl32"
)

// SpriteBatch stages textured quads and draws consecutive quads sharing a texture and shader in a single call.
//
// A batch is Idle until Begin, Active until End. Draw calls are only valid while Active.
// The z-buffer test is disabled for the whole Begin/End span and restored by End.
type SpriteBatch interface {
	// Begin starts a batch with an identity transform.
	Begin(shader renderer.ShaderProgram) error

	// BeginWithTransform starts a batch. The transform is uploaded to the shader's "transform" uniform when it has one.
	//
	// Parameters:
	//   - shader: the program used to draw every quad of the batch
	//   - transform: the matrix applied to every vertex position
	//
	// Returns:
	//   - error: ErrInvalidOperationSequence if the batch is already Active, ErrInvalidArgument for a nil shader
	BeginWithTransform(shader renderer.ShaderProgram, transform mgl32.Mat4) error

	// End flushes any staged quads, restores the z-buffer test and returns the batch to Idle.
	End() error

	// Flush draws the staged quads immediately. Flushing an empty batch is a no-op.
	Flush() error

	// Draw stages the whole texture stretched over dest.
	Draw(tex renderer.Texture2D, dest common.Rectangle, color common.Color) error

	// DrawAt stages the whole texture at its native size with its top-left corner at position.
	DrawAt(tex renderer.Texture2D, position mgl32.Vec2, flip Flip) error

	// DrawSource stages the src pixel rectangle of the texture stretched over dest.
	//
	// Parameters:
	//   - tex: the texture to sample
	//   - dest: the destination rectangle, top-left origin
	//   - src: the source rectangle in texture pixels, top-left origin
	//   - color: the tint multiplied with the sampled texels
	//   - flip: mirrors the texture coordinates
	//
	// Returns:
	//   - error: ErrInvalidOperationSequence while Idle, ErrInvalidArgument for a nil texture
	DrawSource(tex renderer.Texture2D, dest, src common.Rectangle, color common.Color, flip Flip) error

	// DrawRotated stages a quad rotated by rotation radians about origin, an offset from the dest position.
	DrawRotated(tex renderer.Texture2D, dest, src common.Rectangle, color common.Color, rotation float32, origin mgl32.Vec2, flip Flip) error

	// DrawRegion stages a texture region stretched over dest.
	DrawRegion(region TextureRegion, dest common.Rectangle, color common.Color, flip Flip) error

	// DrawTile stages the tile at column x and row y of the tileset stretched over dest.
	DrawTile(tileset *Tileset, x, y int, dest common.Rectangle, color common.Color, flip Flip) error

	// DrawCorners stages an arbitrary quad given its four screen corners.
	DrawCorners(tex renderer.Texture2D, topLeft, topRight, bottomLeft, bottomRight mgl32.Vec2, src common.Rectangle, color common.Color, flip Flip) error

	// DrawQuad stages four pre-built vertices in bottom-left, bottom-right, top-right, top-left order.
	DrawQuad(tex renderer.Texture2D, bottomLeft, bottomRight, topRight, topLeft vertex.Position2TextureColor) error

	// Count returns how many quads are staged and not yet drawn.
	Count() int

	// Capacity returns how many quads fit in the current buffers before they grow.
	Capacity() int

	// Active reports whether the batch is between Begin and End.
	Active() bool

	// Dispose releases the GPU buffers of the batch.
	Dispose()
}

type spriteBatch struct {
	*batch
}

var _ SpriteBatch = &spriteBatch{}

var quadPattern = []uint16{0, 1, 2, 0, 2, 3}

// NewSpriteBatch creates a sprite batch with stream-draw buffers on ctx.
//
// Parameters:
//   - ctx: the render context the batch draws on
//   - options: capacity, limit and label options
//
// Returns:
//   - SpriteBatch: the new batch, Idle
//   - error: ErrInvalidArgument for a nil context, or a buffer creation error
func NewSpriteBatch(ctx renderer.RenderContext, options ...BatchOption) (SpriteBatch, error) {
	b, err := newBatch(ctx, "sprite batch", driver.PrimitiveTriangles, 4, quadPattern, options)
	if err != nil {
		return nil, err
	}
	return &spriteBatch{batch: b}, nil
}

func (sb *spriteBatch) Begin(shader renderer.ShaderProgram) error {
	return sb.begin(shader, mgl32.Ident4())
}

func (sb *spriteBatch) BeginWithTransform(shader renderer.ShaderProgram, transform mgl32.Mat4) error {
	return sb.begin(shader, transform)
}

func (sb *spriteBatch) End() error {
	return sb.end()
}

func (sb *spriteBatch) Flush() error {
	return sb.flush()
}

func (sb *spriteBatch) Draw(tex renderer.Texture2D, dest common.Rectangle, color common.Color) error {
	if common.IsNil(tex) {
		return sb.DrawSource(nil, dest, common.Rectangle{}, color, FlipNone)
	}
	return sb.DrawSource(tex, dest, common.NewRectangle(0, 0, tex.Width(), tex.Height()), color, FlipNone)
}

func (sb *spriteBatch) DrawAt(tex renderer.Texture2D, position mgl32.Vec2, flip Flip) error {
	if common.IsNil(tex) {
		return sb.DrawSource(nil, common.Rectangle{}, common.Rectangle{}, common.White, flip)
	}
	w, h := float32(tex.Width()), float32(tex.Height())
	topLeft := position
	bottomRight := position.Add(mgl32.Vec2{w, h})
	return sb.DrawCorners(tex,
		topLeft,
		mgl32.Vec2{bottomRight.X(), topLeft.Y()},
		mgl32.Vec2{topLeft.X(), bottomRight.Y()},
		bottomRight,
		common.NewRectangle(0, 0, tex.Width(), tex.Height()), common.White, flip)
}

func (sb *spriteBatch) DrawSource(tex renderer.Texture2D, dest, src common.Rectangle, color common.Color, flip Flip) error {
	topLeft := mgl32.Vec2{float32(dest.X), float32(dest.Y)}
	bottomRight := mgl32.Vec2{float32(dest.Right()), float32(dest.Bottom())}
	return sb.DrawCorners(tex,
		topLeft,
		mgl32.Vec2{bottomRight.X(), topLeft.Y()},
		mgl32.Vec2{topLeft.X(), bottomRight.Y()},
		bottomRight,
		src, color, flip)
}

func (sb *spriteBatch) DrawRotated(tex renderer.Texture2D, dest, src common.Rectangle, color common.Color, rotation float32, origin mgl32.Vec2, flip Flip) error {
	x, y := float32(dest.X), float32(dest.Y)
	dx, dy := -origin.X(), -origin.Y()
	w, h := float32(dest.Width), float32(dest.Height)
	sin, cos := common.SinCos(rotation)

	topLeft := mgl32.Vec2{x + dx*cos - dy*sin, y + dx*sin + dy*cos}
	topRight := mgl32.Vec2{x + (dx+w)*cos - dy*sin, y + (dx+w)*sin + dy*cos}
	bottomLeft := mgl32.Vec2{x + dx*cos - (dy+h)*sin, y + dx*sin + (dy+h)*cos}
	bottomRight := mgl32.Vec2{x + (dx+w)*cos - (dy+h)*sin, y + (dx+w)*sin + (dy+h)*cos}
	return sb.DrawCorners(tex, topLeft, topRight, bottomLeft, bottomRight, src, color, flip)
}

func (sb *spriteBatch) DrawRegion(region TextureRegion, dest common.Rectangle, color common.Color, flip Flip) error {
	return sb.DrawSource(region.Texture, dest, region.Region, color, flip)
}

func (sb *spriteBatch) DrawTile(tileset *Tileset, x, y int, dest common.Rectangle, color common.Color, flip Flip) error {
	if tileset == nil {
		return errors.Wrap(ErrInvalidArgument, "sprite batch: tileset is nil")
	}
	src, err := tileset.TileRegion(x, y)
	if err != nil {
		return err
	}
	return sb.DrawSource(tileset.Texture(), dest, src, color, flip)
}

func (sb *spriteBatch) DrawCorners(tex renderer.Texture2D, topLeft, topRight, bottomLeft, bottomRight mgl32.Vec2, src common.Rectangle, color common.Color, flip Flip) error {
	quad, err := sb.next(tex)
	if err != nil {
		return err
	}

	w, h := float32(tex.Width()), float32(tex.Height())
	srcX, srcY := float32(src.X), float32(src.Y)
	srcW, srcH := float32(src.Width), float32(src.Height)

	// texture rows are stored bottom-up, so the source rectangle is mirrored vertically
	uvLeft := srcX / w
	uvRight := (srcX + srcW) / w
	uvTop := (h - (srcY + srcH)) / h
	uvBottom := (h - (srcY + srcH) + srcH) / h

	switch flip {
	case FlipHorizontally:
		uvLeft, uvRight = uvRight, uvLeft
	case FlipVertically:
		uvTop, uvBottom = uvBottom, uvTop
	}

	quad[0] = vertex.Position2TextureColor{Position: bottomLeft, TexCoord: mgl32.Vec2{uvLeft, uvTop}, Color: color}
	quad[1] = vertex.Position2TextureColor{Position: bottomRight, TexCoord: mgl32.Vec2{uvRight, uvTop}, Color: color}
	quad[2] = vertex.Position2TextureColor{Position: topRight, TexCoord: mgl32.Vec2{uvRight, uvBottom}, Color: color}
	quad[3] = vertex.Position2TextureColor{Position: topLeft, TexCoord: mgl32.Vec2{uvLeft, uvBottom}, Color: color}
	return nil
}

func (sb *spriteBatch) DrawQuad(tex renderer.Texture2D, bottomLeft, bottomRight, topRight, topLeft vertex.Position2TextureColor) error {
	quad, err := sb.next(tex)
	if err != nil {
		return err
	}
	quad[0], quad[1], quad[2], quad[3] = bottomLeft, bottomRight, topRight, topLeft
	return nil
}

func (sb *spriteBatch) Count() int {
	return sb.count
}

func (sb *spriteBatch) Capacity() int {
	return sb.capacity
}

func (sb *spriteBatch) Active() bool {
	return sb.active
}

func (sb *spriteBatch) Dispose() {
	sb.dispose()
}
