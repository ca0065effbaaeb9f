// place.go - Scale-to-fit and alignment math for pasting an image into a region.
package layout

import (
	"fmt"
	"image"
	"math"
)

// PlaceOptions controls PlaceImage.
type PlaceOptions struct {
	Align        Align
	VAlign       VAlign
	Padding      int  // inset from every edge of the region
	AllowUpscale bool // when false, images smaller than the region keep their size
}

// Placement is where and how large a content image lands on the canvas.
type Placement struct {
	Scale         float64
	X, Y          int // top-left on the canvas
	Width, Height int // scaled size, at least 1×1
}

// Bounds returns the canvas rectangle covered by the placed image.
func (p Placement) Bounds() image.Rectangle {
	return image.Rect(p.X, p.Y, p.X+p.Width, p.Y+p.Height)
}

// PlaceImage scales a contentW×contentH image to the largest size that fits
// inside r minus padding, keeping its aspect ratio, and aligns it there.
// The available region is floored at 1×1.
func PlaceImage(r Rect, contentW, contentH int, opts PlaceOptions) (Placement, error) {
	if err := r.Validate(); err != nil {
		return Placement{}, err
	}
	if contentW <= 0 || contentH <= 0 {
		return Placement{}, fmt.Errorf("%w: content size %dx%d", ErrInvalidContent, contentW, contentH)
	}

	regionW := max(1, r.Width()-2*opts.Padding)
	regionH := max(1, r.Height()-2*opts.Padding)

	scale := math.Min(float64(regionW)/float64(contentW), float64(regionH)/float64(contentH))
	if !opts.AllowUpscale {
		scale = math.Min(scale, 1)
	}

	w := max(1, int(math.RoundToEven(float64(contentW)*scale)))
	h := max(1, int(math.RoundToEven(float64(contentH)*scale)))

	return Placement{
		Scale:  scale,
		X:      AlignX(r, w, opts.Padding, opts.Align),
		Y:      AlignY(r, h, opts.Padding, opts.VAlign),
		Width:  w,
		Height: h,
	}, nil
}
