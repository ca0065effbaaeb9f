package layout

import (
	"errors"
	"image"
	"testing"
)

func TestPlaceImage(t *testing.T) {
	square := Rect{0, 0, 100, 100}
	tests := []struct {
		name         string
		rect         Rect
		w, h         int
		opts         PlaceOptions
		wantW, wantH int
		wantX, wantY int
	}{
		{
			name: "downscale wide image",
			rect: square,
			w:    300, h: 150,
			opts: PlaceOptions{Align: AlignCenter, VAlign: VAlignMiddle},
			wantW: 100, wantH: 50, wantX: 0, wantY: 25,
		},
		{
			name: "same size is identity",
			rect: Rect{0, 0, 120, 80},
			w:    120, h: 80,
			opts: PlaceOptions{Align: AlignLeft, VAlign: VAlignTop, AllowUpscale: true},
			wantW: 120, wantH: 80, wantX: 0, wantY: 0,
		},
		{
			name: "small image centered without upscale",
			rect: square,
			w:    20, h: 10,
			opts: PlaceOptions{Align: AlignCenter, VAlign: VAlignMiddle},
			wantW: 20, wantH: 10, wantX: 40, wantY: 45,
		},
		{
			name: "bottom right with padding",
			rect: square,
			w:    20, h: 10,
			opts: PlaceOptions{Align: AlignRight, VAlign: VAlignBottom, Padding: 5},
			wantW: 20, wantH: 10, wantX: 75, wantY: 85,
		},
		{
			name: "upscale",
			rect: square,
			w:    20, h: 10,
			opts: PlaceOptions{Align: AlignLeft, VAlign: VAlignTop, AllowUpscale: true},
			wantW: 100, wantH: 50, wantX: 0, wantY: 0,
		},
		{
			name: "offset region with padding",
			rect: Rect{50, 200, 250, 300},
			w:    400, h: 400,
			opts: PlaceOptions{Align: AlignCenter, VAlign: VAlignTop, Padding: 10},
			wantW: 80, wantH: 80, wantX: 110, wantY: 210,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := PlaceImage(tt.rect, tt.w, tt.h, tt.opts)
			if err != nil {
				t.Fatalf("PlaceImage: %v", err)
			}
			if p.Width != tt.wantW || p.Height != tt.wantH {
				t.Errorf("size = %dx%d, want %dx%d", p.Width, p.Height, tt.wantW, tt.wantH)
			}
			if p.X != tt.wantX || p.Y != tt.wantY {
				t.Errorf("position = (%d,%d), want (%d,%d)", p.X, p.Y, tt.wantX, tt.wantY)
			}
			if !tt.opts.AllowUpscale && p.Scale > 1 {
				t.Errorf("scale %v exceeds 1 without upscale", p.Scale)
			}
		})
	}
}

func TestPlaceImageScale(t *testing.T) {
	same, err := PlaceImage(Rect{0, 0, 120, 80}, 120, 80, PlaceOptions{Align: AlignLeft, VAlign: VAlignTop, AllowUpscale: true})
	if err != nil {
		t.Fatal(err)
	}
	if same.Scale != 1 || same.X != 0 || same.Y != 0 {
		t.Errorf("same size: scale %v at (%d,%d), want 1 at (0,0)", same.Scale, same.X, same.Y)
	}

	wide, err := PlaceImage(Rect{0, 0, 100, 100}, 300, 150, PlaceOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if wide.Scale != 1.0/3 {
		t.Errorf("300x150 into 100x100: scale %v, want 1/3", wide.Scale)
	}
}

func TestPlaceImageBounds(t *testing.T) {
	p, err := PlaceImage(Rect{0, 0, 100, 100}, 300, 150, PlaceOptions{Align: AlignCenter, VAlign: VAlignMiddle})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := p.Bounds(), image.Rect(0, 25, 100, 75); got != want {
		t.Fatalf("Bounds = %v, want %v", got, want)
	}
}

func TestPlaceImagePaddingSwallowsRegion(t *testing.T) {
	p, err := PlaceImage(Rect{0, 0, 10, 10}, 10, 10, PlaceOptions{Padding: 20, AllowUpscale: true})
	if err != nil {
		t.Fatal(err)
	}
	if p.Width != 1 || p.Height != 1 {
		t.Fatalf("size = %dx%d, want 1x1", p.Width, p.Height)
	}
}

func TestPlaceImageErrors(t *testing.T) {
	if _, err := PlaceImage(Rect{0, 0, 100, 100}, 0, 10, PlaceOptions{}); !errors.Is(err, ErrInvalidContent) {
		t.Fatalf("err = %v, want ErrInvalidContent", err)
	}
	if _, err := PlaceImage(Rect{100, 0, 0, 100}, 10, 10, PlaceOptions{}); !errors.Is(err, ErrInvalidGeometry) {
		t.Fatalf("err = %v, want ErrInvalidGeometry", err)
	}
}
