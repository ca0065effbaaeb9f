// color.go - Hex color parsing and formatting, solid canvases.
package generator

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseColor parses "#rrggbb" or "#rgb"; the leading '#' is required.
func ParseColor(s string) (color.RGBA, error) {
	hex := strings.TrimSpace(s)
	if hex == "" {
		return color.RGBA{}, fmt.Errorf("invalid color %q: empty", s)
	}
	if !strings.HasPrefix(hex, "#") {
		return color.RGBA{}, fmt.Errorf("invalid color %q: missing '#'", s)
	}
	if (len(hex) != 4 && len(hex) != 7) || strings.Trim(hex[1:], "0123456789abcdefABCDEF") != "" {
		return color.RGBA{}, fmt.Errorf("invalid color %q: expected #rgb or #rrggbb", s)
	}

	c, err := colorful.Hex(strings.ToLower(hex))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// ParseHexRGBA is ParseColor with a fallback instead of an error.
func ParseHexRGBA(hex string, fallback color.RGBA) color.RGBA {
	c, err := ParseColor(hex)
	if err != nil {
		return fallback
	}
	return c
}

// FormatHex renders c as "#rrggbb", dropping alpha.
// A fully transparent color has no hue and formats as black.
func FormatHex(c color.Color) string {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return "#000000"
	}
	return cf.Hex()
}

// NewSolidImage creates a uniform solid-color image using draw.Draw (O(1) fill).
func NewSolidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{c}, image.Point{}, draw.Src)
	return img
}
