package renderer

import (
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/driver"
	"github.com/cockroachdb/errors"
)

// Texture2DArray is a stack of equally sized RGBA8 layers sampled with a layer index.
type Texture2DArray interface {
	Texture

	// Layers returns the number of layers.
	Layers() int

	// SetLayer replaces the pixels of one layer.
	//
	// Parameters:
	//   - layer: the layer index in [0, Layers)
	//   - pixels: Width*Height*4 RGBA bytes
	//
	// Returns:
	//   - error: ErrOutOfRange for an invalid layer, ErrInvalidArgument for a size mismatch
	SetLayer(layer int, pixels []byte) error
}

type texture2DArray struct {
	texture
	layers int
}

var _ Texture2DArray = &texture2DArray{}

// NewTexture2DArray creates an array texture with uninitialized storage for layers layers of width x height pixels.
func NewTexture2DArray(ctx RenderContext, width, height, layers int) (Texture2DArray, error) {
	c, err := contextOf(ctx)
	if err != nil {
		return nil, err
	}
	if err := validSize("texture array", width, height); err != nil {
		return nil, err
	}
	if layers <= 0 {
		return nil, errors.Wrapf(ErrInvalidArgument, "texture array with %d layers", layers)
	}
	t := &texture2DArray{
		texture: newTexture(c, TextureKind2DArray, width, height, ""),
		layers:  layers,
	}
	t.self = t
	c.register(t)

	err = t.withUnit0("create texture array", func(target driver.TextureTarget) error {
		c.drv.TexImage3D(target, width, height, layers, nil)
		t.applySampler(target)
		return nil
	})
	if err != nil {
		t.Dispose()
		return nil, err
	}
	return t, nil
}

func (t *texture2DArray) Layers() int {
	return t.layers
}

func (t *texture2DArray) SetLayer(layer int, pixels []byte) error {
	if err := t.ensureUndisposed("set texture layer"); err != nil {
		return err
	}
	if layer < 0 || layer >= t.layers {
		return errors.Wrapf(ErrOutOfRange, "layer %d not in [0, %d)", layer, t.layers)
	}
	if len(pixels) != t.width*t.height*4 {
		return errors.Wrapf(ErrInvalidArgument, "%d bytes for a %dx%d layer", len(pixels), t.width, t.height)
	}
	return t.withUnit0("set texture layer", func(target driver.TextureTarget) error {
		t.ctx.drv.TexSubImage3D(target, 0, 0, layer, t.width, t.height, 1, pixels)
		return nil
	})
}
