// text.go - Auto-fit text rendering: size search, alignment and bracket colors.
// The largest font size whose wrapped block fits the region is chosen by
// layout.FitText; lines are then drawn top to bottom, one colored segment
// at a time.
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/xob0t/fitbox/pkg/generator"
	"github.com/xob0t/fitbox/pkg/layout"
)

// TextOptions controls DrawText.
type TextOptions struct {
	Color         color.Color // default black
	BracketColor  color.Color // default Color
	MaxFontHeight int         // <= 0 means the region height
	LineSpacing   float64
	Align         layout.Align
	VAlign        layout.VAlign
	Wrap          layout.WrapAlgorithm
}

func (o TextOptions) colors() (text, bracket color.Color) {
	text = o.Color
	if text == nil {
		text = color.Black
	}
	bracket = o.BracketColor
	if bracket == nil {
		bracket = text
	}
	return text, bracket
}

// Renderer draws auto-fitted text with one font.
type Renderer struct {
	fonts *FontManager
}

// NewRenderer creates a renderer for the font at fontPath, falling back to
// the embedded font when the file cannot be used.
func NewRenderer(fontPath string) (*Renderer, error) {
	fm, err := NewFontManager(fontPath)
	if err != nil {
		return nil, err
	}
	return &Renderer{fonts: fm}, nil
}

// Fonts returns the renderer's font manager.
func (r *Renderer) Fonts() *FontManager { return r.fonts }

// DrawText fits text into rect and draws it onto dst.
//
// Lines that would start below the region are dropped. This only happens
// when no font size fits, and is not reported as an error.
func (r *Renderer) DrawText(dst *image.RGBA, rect layout.Rect, text string, opts TextOptions) (layout.FitResult, error) {
	fit, err := layout.FitText(text, rect, layout.FitOptions{
		MaxFontHeight: opts.MaxFontHeight,
		LineSpacing:   opts.LineSpacing,
		Wrap:          opts.Wrap,
	}, r.fonts)
	if err != nil {
		return fit, err
	}

	face, ok := fit.Face.(*Face)
	if !ok {
		if face, err = r.fonts.Face(fit.FontSize); err != nil {
			return fit, err
		}
	}

	Logger().Debug("text fitted",
		"rect", rect.String(),
		"size", fit.FontSize,
		"lines", len(fit.Lines),
		"block", image.Pt(fit.BlockWidth, fit.BlockHeight),
		"fits", fit.Fits)

	drawLines(dst, rect, fit, face, opts)
	return fit, nil
}

// drawLines renders fit.Lines, threading bracket state from line to line.
func drawLines(dst *image.RGBA, rect layout.Rect, fit layout.FitResult, face *Face, opts TextOptions) {
	textColor, bracketColor := opts.colors()
	ascent := face.Ascent()

	yStart := layout.AlignY(rect, fit.BlockHeight, 0, opts.VAlign)
	y := yStart
	inBracket := false

	for _, line := range fit.Lines {
		x := layout.AlignX(rect, int(face.Measure(line)), 0, opts.Align)

		var segments []layout.ColorSegment
		segments, inBracket = layout.Segment(line, inBracket, bracketColor, textColor)
		for _, seg := range segments {
			d := &font.Drawer{
				Dst:  dst,
				Src:  image.NewUniform(seg.Color),
				Face: face,
				Dot:  fixed.P(x, y+ascent),
			}
			d.DrawString(lineFeeds.Replace(seg.Text))
			x += int(face.Measure(seg.Text))
		}

		y += fit.LineHeight
		if y-yStart > rect.Height() {
			break
		}
	}
}

// DrawTextAuto renders text onto a copy of base, composites overlay on top
// and returns the canvas as PNG.
func (r *Renderer) DrawTextAuto(base, overlay image.Image, rect layout.Rect, text string, opts TextOptions) ([]byte, error) {
	if err := rect.Validate(); err != nil {
		return nil, err
	}
	canvas, err := baseCanvas(base)
	if err != nil {
		return nil, err
	}
	if _, err := r.DrawText(canvas, rect, text, opts); err != nil {
		return nil, err
	}
	Overlay(canvas, overlay)
	return generator.EncodePNG(canvas)
}
