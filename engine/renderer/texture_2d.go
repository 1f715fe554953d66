package renderer

import (
	"image"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/cockroachdb/errors"
)

// Texture2D is a single RGBA8 image. Rows are stored bottom-origin.
type Texture2D interface {
	Texture

	// SetData replaces the whole image.
	//
	// Parameters:
	//   - pixels: Width*Height*4 RGBA bytes, bottom row first
	//
	// Returns:
	//   - error: ErrUseAfterDispose, ErrInvalidArgument for a size mismatch
	SetData(pixels []byte) error

	// SetSubData replaces the pixels inside region, given in storage coordinates.
	SetSubData(region common.Rectangle, pixels []byte) error

	// SetAlphaData replaces the whole image with white pixels carrying the given alpha values, one byte per pixel.
	SetAlphaData(alpha []byte) error

	// UploadFromPixelBuffer replaces the whole image with Width*Height*4 bytes read from pb at offset.
	UploadFromPixelBuffer(pb PixelBuffer, offset int) error

	// ToImage reads the pixels back into a top-origin image.
	ToImage() (*image.RGBA, error)

	// Reload replaces the native texture with a new one holding img. Sampler state and mipmaps are carried over.
	//
	// Parameters:
	//   - img: the new image; its size becomes the texture size
	//
	// Returns:
	//   - error: ErrUseAfterDispose, ErrInvalidArgument for a nil or empty image
	Reload(img image.Image) error

	// SetPixelArtParameters selects nearest filtering and clamp-to-edge wrapping.
	SetPixelArtParameters() error
}

type texture2D struct {
	texture
}

var _ Texture2D = &texture2D{}

// NewTexture2D creates a texture with uninitialized storage of the given size.
//
// Parameters:
//   - ctx: the render context to create the texture on
//   - width: the width in pixels
//   - height: the height in pixels
//
// Returns:
//   - Texture2D: the new texture, with unit 0 restored to what it held before
//   - error: ErrInvalidArgument for a non-positive size
func NewTexture2D(ctx RenderContext, width, height int) (Texture2D, error) {
	return newTexture2D(ctx, width, height, nil)
}

// NewTexture2DFromRGBA creates a texture holding pixels, which must be bottom-origin RGBA rows.
func NewTexture2DFromRGBA(ctx RenderContext, width, height int, pixels []byte) (Texture2D, error) {
	if len(pixels) != width*height*4 {
		return nil, errors.Wrapf(ErrInvalidArgument, "%d bytes for a %dx%d texture", len(pixels), width, height)
	}
	return newTexture2D(ctx, width, height, pixels)
}

// NewTexture2DFromImage creates a texture from a decoded image.
func NewTexture2DFromImage(ctx RenderContext, img image.Image) (Texture2D, error) {
	if img == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "texture image is nil")
	}
	data := common.ToImageData(img, true)
	return newTexture2D(ctx, data.Width, data.Height, data.Pixels)
}

func newTexture2D(ctx RenderContext, width, height int, pixels []byte) (*texture2D, error) {
	c, err := contextOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := validSize("texture", width, height); err != nil {
		return nil, err
	}
	t := &texture2D{texture: newTexture(c, TextureKind2D, width, height, "")}
	t.self = t
	c.register(t)

	err = t.withUnit0("create texture", func(target driver.TextureTarget) error {
		c.drv.TexImage2D(target, width, height, pixels)
		t.applySampler(target)
		return nil
	})
	if err != nil {
		t.Dispose()
		return nil, err
	}
	return t, nil
}

func (t *texture2D) SetData(pixels []byte) error {
	if err := t.ensureUndisposed("set texture data"); err != nil {
		return err
	}
	if len(pixels) != t.width*t.height*4 {
		return errors.Wrapf(ErrInvalidArgument, "%d bytes for a %dx%d texture", len(pixels), t.width, t.height)
	}
	return t.withUnit0("set texture data", func(target driver.TextureTarget) error {
		t.ctx.drv.TexImage2D(target, t.width, t.height, pixels)
		return nil
	})
}

func (t *texture2D) SetSubData(region common.Rectangle, pixels []byte) error {
	if err := t.ensureUndisposed("set texture sub data"); err != nil {
		return err
	}
	if region.Empty() || region.X < 0 || region.Y < 0 || region.Right() > t.width || region.Bottom() > t.height {
		return errors.Wrapf(ErrOutOfRange, "region %v outside %dx%d texture", region, t.width, t.height)
	}
	if len(pixels) != region.Width*region.Height*4 {
		return errors.Wrapf(ErrInvalidArgument, "%d bytes for a %dx%d region", len(pixels), region.Width, region.Height)
	}
	return t.withUnit0("set texture sub data", func(target driver.TextureTarget) error {
		t.ctx.drv.TexSubImage2D(target, region.X, region.Y, region.Width, region.Height, pixels)
		return nil
	})
}

func (t *texture2D) SetAlphaData(alpha []byte) error {
	if err := t.ensureUndisposed("set texture alpha"); err != nil {
		return err
	}
	if len(alpha) != t.width*t.height {
		return errors.Wrapf(ErrInvalidArgument, "%d alpha bytes for a %dx%d texture", len(alpha), t.width, t.height)
	}
	pixels := make([]byte, len(alpha)*4)
	for i, a := range alpha {
		pixels[i*4] = 0xff
		pixels[i*4+1] = 0xff
		pixels[i*4+2] = 0xff
		pixels[i*4+3] = a
	}
	return t.SetData(pixels)
}

func (t *texture2D) UploadFromPixelBuffer(pb PixelBuffer, offset int) error {
	if err := t.ensureUndisposed("upload from pixel buffer"); err != nil {
		return err
	}
	if isNil(pb) {
		return errors.Wrap(ErrInvalidArgument, "upload from pixel buffer: buffer is nil")
	}
	need := t.width * t.height * 4
	if offset < 0 || offset+need > pb.SizeBytes() {
		return errors.Wrapf(ErrOutOfRange, "%d bytes at %d from a %d byte pixel buffer", need, offset, pb.SizeBytes())
	}
	c := t.ctx
	return t.withUnit0("upload from pixel buffer", func(target driver.TextureTarget) error {
		if err := c.BindPixelBuffer(pb); err != nil {
			return err
		}
		c.drv.TexImage2DFromBuffer(target, t.width, t.height, offset)
		c.UnbindPixelBuffer()
		return nil
	})
}

func (t *texture2D) ToImage() (*image.RGBA, error) {
	var pixels []byte
	err := t.withUnit0("read texture", func(target driver.TextureTarget) error {
		var err error
		pixels, err = t.ctx.drv.GetTexImage(target, t.width, t.height)
		return errors.Wrapf(err, "read back %s", t.describe())
	})
	if err != nil {
		return nil, err
	}
	return common.ImageFromData(pixels, t.width, t.height, true), nil
}

func (t *texture2D) Reload(img image.Image) error {
	if err := t.ensureUndisposed("reload texture"); err != nil {
		return err
	}
	if img == nil || img.Bounds().Empty() {
		return errors.Wrap(ErrInvalidArgument, "reload texture: image is empty")
	}
	data := common.ToImageData(img, true)

	c := t.ctx
	if t.bound != nil {
		_ = t.bound.EnsureTextureUnbound(t)
	}
	old := t.handle
	t.handle = c.drv.GenTexture()
	t.width, t.height = data.Width, data.Height

	err := t.withUnit0("reload texture", func(target driver.TextureTarget) error {
		c.drv.TexImage2D(target, t.width, t.height, data.Pixels)
		t.applySampler(target)
		if t.mipmapped {
			c.drv.GenerateMipmap(target)
		}
		return nil
	})
	c.drv.DeleteTexture(old)
	if t.label != "" {
		c.drv.ObjectLabel(driver.LabelTexture, t.handle, t.label)
	}
	if err != nil {
		return err
	}
	c.logger.Info("texture reloaded", "old", old, "new", t.handle, "width", t.width, "height", t.height)
	return nil
}

func (t *texture2D) SetPixelArtParameters() error {
	if err := t.SetMinFilter(driver.FilterNearest); err != nil {
		return err
	}
	if err := t.SetMagFilter(driver.FilterNearest); err != nil {
		return err
	}
	if err := t.SetWrapS(driver.WrapClampToEdge); err != nil {
		return err
	}
	return t.SetWrapT(driver.WrapClampToEdge)
}
