// image.go - Rectangle image fitting: scale, align, paste.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/xob0t/fitbox/pkg/generator"
	"github.com/xob0t/fitbox/pkg/layout"
)

// ImageOptions controls PlaceImage.
type ImageOptions struct {
	Align        layout.Align
	VAlign       layout.VAlign
	Padding      int
	AllowUpscale bool
	KeepAlpha    bool // paste through the content's alpha instead of replacing pixels
}

// PlaceImage resizes content to fit rect and pastes it onto dst.
func PlaceImage(dst *image.RGBA, rect layout.Rect, content image.Image, opts ImageOptions) (layout.Placement, error) {
	if content == nil {
		return layout.Placement{}, fmt.Errorf("%w: nil image", layout.ErrInvalidContent)
	}
	b := content.Bounds()
	p, err := layout.PlaceImage(rect, b.Dx(), b.Dy(), layout.PlaceOptions{
		Align:        opts.Align,
		VAlign:       opts.VAlign,
		Padding:      opts.Padding,
		AllowUpscale: opts.AllowUpscale,
	})
	if err != nil {
		return p, err
	}

	resized := imaging.Resize(content, p.Width, p.Height, imaging.Lanczos)

	op := draw.Src
	if opts.KeepAlpha && HasAlpha(content) {
		op = draw.Over
	}
	draw.Draw(dst, p.Bounds(), resized, resized.Bounds().Min, op)

	Logger().Debug("image placed",
		"rect", rect.String(),
		"source", b.Size(),
		"scale", p.Scale,
		"bounds", p.Bounds())
	return p, nil
}

// PasteImageAuto places content onto a copy of base, composites overlay on
// top and returns the canvas as PNG.
func PasteImageAuto(base, content, overlay image.Image, rect layout.Rect, opts ImageOptions) ([]byte, error) {
	if err := rect.Validate(); err != nil {
		return nil, err
	}
	canvas, err := baseCanvas(base)
	if err != nil {
		return nil, err
	}
	if _, err := PlaceImage(canvas, rect, content, opts); err != nil {
		return nil, err
	}
	Overlay(canvas, overlay)
	return generator.EncodePNG(canvas)
}

// HasAlpha reports whether img's color model carries an alpha channel.
// Paletted images count when any palette entry is not fully opaque.
func HasAlpha(img image.Image) bool {
	switch m := img.ColorModel(); m {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model:
		return true
	default:
		if p, ok := m.(color.Palette); ok {
			for _, c := range p {
				if _, _, _, a := c.RGBA(); a != 0xffff {
					return true
				}
			}
		}
		return false
	}
}
