package renderer

import (
	"fmt"
	"image"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/cockroachdb/errors"
)

// CubeFace names one face of a cube map.
type CubeFace int

const (
	CubeFaceFront CubeFace = iota
	CubeFaceBack
	CubeFaceUp
	CubeFaceDown
	CubeFaceRight
	CubeFaceLeft

	cubeFaceCount
)

// Target returns the upload target of the face.
func (f CubeFace) Target() driver.TextureTarget {
	switch f {
	case CubeFaceFront:
		return driver.TextureTargetCubeMapPositiveX
	case CubeFaceBack:
		return driver.TextureTargetCubeMapNegativeX
	case CubeFaceUp:
		return driver.TextureTargetCubeMapPositiveY
	case CubeFaceDown:
		return driver.TextureTargetCubeMapNegativeY
	case CubeFaceRight:
		return driver.TextureTargetCubeMapPositiveZ
	default:
		return driver.TextureTargetCubeMapNegativeZ
	}
}

func (f CubeFace) String() string {
	switch f {
	case CubeFaceFront:
		return "front"
	case CubeFaceBack:
		return "back"
	case CubeFaceUp:
		return "up"
	case CubeFaceDown:
		return "down"
	case CubeFaceRight:
		return "right"
	case CubeFaceLeft:
		return "left"
	default:
		return fmt.Sprintf("CubeFace(%d)", int(f))
	}
}

// TextureCubeMap is six square RGBA8 faces sampled by direction.
type TextureCubeMap interface {
	Texture

	// Size returns the edge length of every face.
	Size() int

	// SetFace replaces the pixels of one face.
	//
	// Parameters:
	//   - face: the face to replace
	//   - pixels: Size*Size*4 RGBA bytes
	//
	// Returns:
	//   - error: ErrOutOfRange for an unknown face, ErrInvalidArgument for a size mismatch
	SetFace(face CubeFace, pixels []byte) error

	// SetImages replaces all six faces, indexed by CubeFace, then applies linear filtering, clamp-to-edge wrapping
	// and regenerates mipmaps.
	SetImages(faces [6]image.Image) error
}

type textureCubeMap struct {
	texture
}

var _ TextureCubeMap = &textureCubeMap{}

// NewTextureCubeMap creates a cube map with uninitialized faces of size x size pixels.
func NewTextureCubeMap(ctx RenderContext, size int) (TextureCubeMap, error) {
	c, err := contextOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := validSize("cube map", size, size); err != nil {
		return nil, err
	}
	t := &textureCubeMap{texture: newTexture(c, TextureKindCubeMap, size, size, "")}
	t.self = t
	c.register(t)

	err = t.withUnit0("create cube map", func(target driver.TextureTarget) error {
		for f := range cubeFaceCount {
			c.drv.TexImage2D(f.Target(), size, size, nil)
		}
		t.applySampler(target)
		return nil
	})
	if err != nil {
		t.Dispose()
		return nil, err
	}
	return t, nil
}

func (t *textureCubeMap) Size() int {
	return t.width
}

func (t *textureCubeMap) SetFace(face CubeFace, pixels []byte) error {
	if err := t.ensureUndisposed("set cube face"); err != nil {
		return err
	}
	if face < 0 || face >= cubeFaceCount {
		return errors.Wrapf(ErrOutOfRange, "cube face %d", int(face))
	}
	if len(pixels) != t.width*t.height*4 {
		return errors.Wrapf(ErrInvalidArgument, "%d bytes for a %dx%d %s face", len(pixels), t.width, t.height, face)
	}
	return t.withUnit0("set cube face", func(driver.TextureTarget) error {
		t.ctx.drv.TexImage2D(face.Target(), t.width, t.height, pixels)
		return nil
	})
}

func (t *textureCubeMap) SetImages(faces [6]image.Image) error {
	if err := t.ensureUndisposed("set cube images"); err != nil {
		return err
	}
	var data [6]common.ImageData
	for i, img := range faces {
		face := CubeFace(i)
		if img == nil {
			return errors.Wrapf(ErrInvalidArgument, "cube face %s is nil", face)
		}
		// Cube faces are sampled top-origin, so rows are not flipped.
		data[i] = common.ToImageData(img, false)
		if data[i].Width != t.width || data[i].Height != t.height {
			return errors.Wrapf(ErrInvalidArgument, "cube face %s is %dx%d, want %dx%d", face, data[i].Width, data[i].Height, t.width, t.height)
		}
	}

	for i := range data {
		if err := t.SetFace(CubeFace(i), data[i].Pixels); err != nil {
			return err
		}
	}
	for _, set := range []func() error{
		func() error { return t.SetMinFilter(driver.FilterLinear) },
		func() error { return t.SetMagFilter(driver.FilterLinear) },
		func() error { return t.SetWrapS(driver.WrapClampToEdge) },
		func() error { return t.SetWrapT(driver.WrapClampToEdge) },
		func() error { return t.setWrapR(driver.WrapClampToEdge) },
	} {
		if err := set(); err != nil {
			return err
		}
	}
	return t.GenerateMipmaps()
}
