// canvas.go - Image loading and the RGBA canvas every render call draws on.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/xob0t/fitbox/pkg/layout"
)

// LoadImage decodes a PNG, JPEG, GIF, BMP or WebP file.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// DecodeImage decodes any registered image format from r.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	Logger().Debug("image decoded", "format", format, "size", img.Bounds().Size())
	return img, nil
}

// DecodeImageBytes is DecodeImage over an in-memory buffer.
func DecodeImageBytes(data []byte) (image.Image, error) {
	return DecodeImage(bytes.NewReader(data))
}

// NewCanvas copies base into a fresh RGBA buffer anchored at (0,0).
// The base image itself is never modified.
func NewCanvas(base image.Image) *image.RGBA {
	b := base.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(canvas, canvas.Bounds(), base, b.Min, draw.Src)
	return canvas
}

// baseCanvas is NewCanvas for the encoded entry points, which reject a nil
// or empty base instead of panicking.
func baseCanvas(base image.Image) (*image.RGBA, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: nil base image", layout.ErrInvalidContent)
	}
	if b := base.Bounds(); b.Empty() {
		return nil, fmt.Errorf("%w: base image size %dx%d", layout.ErrInvalidContent, b.Dx(), b.Dy())
	}
	return NewCanvas(base), nil
}

// Overlay composites overlay onto dst with its top-left corner at the canvas
// origin, using the overlay's own alpha as the mask. Nil overlays are ignored.
func Overlay(dst *image.RGBA, overlay image.Image) {
	if overlay == nil {
		return
	}
	b := overlay.Bounds()
	draw.Draw(dst, b.Sub(b.Min), overlay, b.Min, draw.Over)
}
