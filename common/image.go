package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ImageData holds decoded RGBA pixel data ready for a texture upload.
type ImageData struct {
	// Pixels holds 4 bytes per pixel. Rows are bottom-origin when FlippedY is true.
	Pixels []byte
	// Width is the image width in pixels.
	Width int
	// Height is the image height in pixels.
	Height int
	// FlippedY reports whether the rows were reversed to bottom-origin order.
	FlippedY bool
}

// DecodeImage decodes an encoded image (PNG, JPEG, BMP or WebP).
// Reference: https://pkg.go.dev/image
//
// Parameters:
//   - r: the reader holding the encoded image
//
// Returns:
//   - image.Image: the decoded image
//   - error: error if decoding fails
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DecodeImageBytes decodes an encoded image held in memory.
func DecodeImageBytes(data []byte) (image.Image, error) {
	return DecodeImage(bytes.NewReader(data))
}

// DecodeImageFile opens and decodes the image at path.
//
// Parameters:
//   - path: the file path of the image
//
// Returns:
//   - image.Image: the decoded image
//   - error: error if the file cannot be opened or decoded
func DecodeImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image file %s: %w", path, err)
	}
	defer file.Close()

	img, err := DecodeImage(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// ToImageData converts any image to tightly packed RGBA pixels.
// When flipY is set the rows are reversed so the first row is the bottom of the image,
// which is the row order texture storage expects.
//
// Parameters:
//   - img: the source image
//   - flipY: whether to reverse row order
//
// Returns:
//   - ImageData: the converted pixel data
func ToImageData(img image.Image, flipY bool) ImageData {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	rgba := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	pixels := rgba.Pix
	if flipY {
		pixels = FlipRows(pixels, width*4, height)
	}

	return ImageData{
		Pixels:   pixels,
		Width:    width,
		Height:   height,
		FlippedY: flipY,
	}
}

// FlipRows returns a copy of pixels with the row order reversed.
//
// Parameters:
//   - pixels: the source pixel bytes
//   - stride: the number of bytes in one row
//   - rows: the number of rows
//
// Returns:
//   - []byte: a new slice with the rows in reverse order
func FlipRows(pixels []byte, stride, rows int) []byte {
	out := make([]byte, len(pixels))
	for y := 0; y < rows; y++ {
		src := pixels[y*stride : (y+1)*stride]
		dst := out[(rows-1-y)*stride : (rows-y)*stride]
		copy(dst, src)
	}
	return out
}

// ImageFromData builds an image.RGBA from RGBA pixels, undoing a bottom-origin row order when flippedY is set.
func ImageFromData(pixels []byte, width, height int, flippedY bool) *image.RGBA {
	if flippedY {
		pixels = FlipRows(pixels, width*4, height)
	}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	copy(img.Pix, pixels)
	return img
}
