// Package layout provides the pure layout math behind auto-fitting text and
// images into rectangular canvas regions: tokenizing, line breaking, color
// segmentation, font size search and image placement.
//
// Nothing in this package draws pixels or loads files. Font metrics come in
// through the Face interface so every algorithm can be exercised with a stub.
package layout

import (
	"errors"
	"fmt"
	"image"
)

// Sentinel errors for the layout package.
var (
	// ErrInvalidGeometry is returned when a rectangle is not well-formed (x2<=x1 or y2<=y1).
	ErrInvalidGeometry = errors.New("layout: invalid geometry")

	// ErrInvalidContent is returned when a content image has no positive dimensions.
	ErrInvalidContent = errors.New("layout: invalid content")
)

// ── Rectangle ──

// Rect is an axis-aligned region in canvas pixel coordinates.
// Unlike image.Rect, the corners are never swapped, so a reversed
// rectangle stays invalid and Validate reports it.
type Rect struct {
	X1, Y1 int // top-left, inclusive
	X2, Y2 int // bottom-right, exclusive
}

// NewRect builds a Rect from its top-left and bottom-right corners.
func NewRect(topLeft, bottomRight image.Point) Rect {
	return Rect{X1: topLeft.X, Y1: topLeft.Y, X2: bottomRight.X, Y2: bottomRight.Y}
}

// Width returns x2 - x1.
func (r Rect) Width() int { return r.X2 - r.X1 }

// Height returns y2 - y1.
func (r Rect) Height() int { return r.Y2 - r.Y1 }

// Validate reports ErrInvalidGeometry unless x2 > x1 and y2 > y1.
func (r Rect) Validate() error {
	if r.X2 > r.X1 && r.Y2 > r.Y1 {
		return nil
	}
	return fmt.Errorf("%w: (%d,%d)-(%d,%d)", ErrInvalidGeometry, r.X1, r.Y1, r.X2, r.Y2)
}

// Image converts r to an image.Rectangle.
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.X1, r.Y1, r.X2, r.Y2)
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
}

// ── Alignment ──

// Align is the horizontal alignment of a block inside a region.
type Align string

// VAlign is the vertical alignment of a block inside a region.
type VAlign string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"

	VAlignTop    VAlign = "top"
	VAlignMiddle VAlign = "middle"
	VAlignBottom VAlign = "bottom"
)

// ParseAlign accepts "left", "center" or "right".
func ParseAlign(s string) (Align, error) {
	switch a := Align(s); a {
	case AlignLeft, AlignCenter, AlignRight:
		return a, nil
	}
	return "", fmt.Errorf("invalid align %q: use left, center or right", s)
}

// ParseVAlign accepts "top", "middle" or "bottom".
func ParseVAlign(s string) (VAlign, error) {
	switch v := VAlign(s); v {
	case VAlignTop, VAlignMiddle, VAlignBottom:
		return v, nil
	}
	return "", fmt.Errorf("invalid valign %q: use top, middle or bottom", s)
}

// AlignX returns the left edge of a block of width w inside r, inset by padding.
// Any value other than left or center aligns right.
func AlignX(r Rect, w, padding int, a Align) int {
	switch a {
	case AlignLeft:
		return r.X1 + padding
	case AlignCenter:
		return r.X1 + padding + floorDiv(r.Width()-2*padding-w, 2)
	default:
		return r.X2 - padding - w
	}
}

// AlignY returns the top edge of a block of height h inside r, inset by padding.
// Any value other than top or middle aligns bottom.
func AlignY(r Rect, h, padding int, v VAlign) int {
	switch v {
	case VAlignTop:
		return r.Y1 + padding
	case VAlignMiddle:
		return r.Y1 + padding + floorDiv(r.Height()-2*padding-h, 2)
	default:
		return r.Y2 - padding - h
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
