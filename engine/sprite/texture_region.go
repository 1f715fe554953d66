package sprite

import (
	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer"
	"github.com/cockroachdb/errors"
)

// TextureRegion is a sub-rectangle of a texture, such as one frame of a sprite sheet.
// The region is given in top-origin pixel coordinates.
type TextureRegion struct {
	Texture renderer.Texture2D
	Region  common.Rectangle
}

// NewTextureRegion returns the region of tex covered by region.
//
// Parameters:
//   - tex: the texture the region refers to
//   - region: the area of tex in pixels, top-origin
//
// Returns:
//   - TextureRegion: the region
//   - error: ErrInvalidArgument for a nil texture, ErrOutOfRange when region leaves the texture
func NewTextureRegion(tex renderer.Texture2D, region common.Rectangle) (TextureRegion, error) {
	if common.IsNil(tex) {
		return TextureRegion{}, errors.Wrap(ErrInvalidArgument, "texture region: texture is nil")
	}
	if region.Empty() || region.X < 0 || region.Y < 0 || region.Right() > tex.Width() || region.Bottom() > tex.Height() {
		return TextureRegion{}, errors.Wrapf(ErrOutOfRange, "region %v outside %dx%d texture", region, tex.Width(), tex.Height())
	}
	return TextureRegion{Texture: tex, Region: region}, nil
}

// FullRegion returns the region covering all of tex.
func FullRegion(tex renderer.Texture2D) TextureRegion {
	return TextureRegion{Texture: tex, Region: common.NewRectangle(0, 0, tex.Width(), tex.Height())}
}
