package generator

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#000000", color.RGBA{0, 0, 0, 255}, false},
		{"#800080", color.RGBA{128, 0, 128, 255}, false},
		{"#FF8000", color.RGBA{255, 128, 0, 255}, false},
		{"FF8000", color.RGBA{}, true},
		{"fed", color.RGBA{}, true},
		{" #abc ", color.RGBA{0xaa, 0xbb, 0xcc, 255}, false},
		{"", color.RGBA{}, true},
		{"#12345", color.RGBA{}, true},
		{"#12345g", color.RGBA{}, true},
		{"purple", color.RGBA{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseColor(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseColor(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseHexRGBAFallback(t *testing.T) {
	fallback := color.RGBA{1, 2, 3, 255}
	if got := ParseHexRGBA("nope", fallback); got != fallback {
		t.Fatalf("got %v, want fallback", got)
	}
	if got := ParseHexRGBA("#ff0000", fallback); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("got %v, want red", got)
	}
}

func TestFormatHex(t *testing.T) {
	if got := FormatHex(color.RGBA{128, 0, 128, 255}); got != "#800080" {
		t.Fatalf("FormatHex = %q, want #800080", got)
	}
	if got := FormatHex(color.RGBA{}); got != "#000000" {
		t.Fatalf("FormatHex(transparent) = %q, want #000000", got)
	}
}

func TestEncodePNGRoundTrip(t *testing.T) {
	src := NewSolidImage(4, 3, color.RGBA{10, 20, 30, 255})
	src.Set(1, 1, color.RGBA{0, 0, 0, 0})

	data, err := EncodePNG(src)
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	got, err := DecodePNG(data)
	if err != nil {
		t.Fatalf("DecodePNG: %v", err)
	}
	if got.Bounds() != src.Bounds() {
		t.Fatalf("bounds = %v, want %v", got.Bounds(), src.Bounds())
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want := color.NRGBAModel.Convert(src.At(x, y))
			if c := color.NRGBAModel.Convert(got.At(x, y)); c != want {
				t.Fatalf("pixel (%d,%d) = %v, want %v", x, y, c, want)
			}
		}
	}
}

func TestEncodeEmptyImageFails(t *testing.T) {
	_, err := EncodePNG(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("err = %v, want ErrEncoding", err)
	}
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, ".avi", NewSolidImage(1, 1, color.White))
	if err == nil || errors.Is(err, ErrEncoding) {
		t.Fatalf("err = %v, want unsupported-format error", err)
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	img := NewSolidImage(8, 6, color.RGBA{255, 0, 0, 255})

	pngPath := filepath.Join(dir, "out", "card.png")
	if err := Write(pngPath, img); err != nil {
		t.Fatalf("Write png: %v", err)
	}
	data, err := os.ReadFile(pngPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodePNG(data); err != nil {
		t.Fatalf("written PNG does not decode: %v", err)
	}

	bmpPath := filepath.Join(dir, "card.bmp")
	if err := Write(bmpPath, img); err != nil {
		t.Fatalf("Write bmp: %v", err)
	}
	f, err := os.Open(bmpPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("written BMP does not decode: %v", err)
	}
	if decoded.Bounds().Dx() != 8 || decoded.Bounds().Dy() != 6 {
		t.Fatalf("BMP bounds = %v", decoded.Bounds())
	}

	if err := Write(filepath.Join(dir, "noext"), img); err != nil {
		t.Fatalf("Write without extension: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "noext.png")); err != nil {
		t.Fatalf("expected noext.png: %v", err)
	}
}
