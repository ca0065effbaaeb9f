package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sync"
	"testing"

	"github.com/xob0t/fitbox/pkg/config"
	"github.com/xob0t/fitbox/pkg/generator"
	"github.com/xob0t/fitbox/pkg/layout"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	green = color.NRGBA{0, 255, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func newComposer(t *testing.T, cfg *config.Config) *Composer {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func decodeAt(t *testing.T, data []byte) func(x, y int) color.NRGBA {
	t.Helper()
	img, err := generator.DecodePNG(data)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	return func(x, y int) color.NRGBA {
		return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
	}
}

func TestSideBySide(t *testing.T) {
	img, text := SideBySide(layout.Rect{X1: 0, Y1: 0, X2: 300, Y2: 200}, 10)
	if img != (layout.Rect{X1: 0, Y1: 0, X2: 145, Y2: 200}) {
		t.Errorf("image rect = %v", img)
	}
	if text != (layout.Rect{X1: 155, Y1: 0, X2: 300, Y2: 200}) {
		t.Errorf("text rect = %v", text)
	}
}

func TestStacked(t *testing.T) {
	tests := []struct {
		region    layout.Rect
		wantImage layout.Rect
		wantText  layout.Rect
	}{
		{
			layout.Rect{X1: 0, Y1: 0, X2: 300, Y2: 400},
			layout.Rect{X1: 0, Y1: 0, X2: 300, Y2: 300},
			layout.Rect{X1: 0, Y1: 300, X2: 300, Y2: 400},
		},
		{
			layout.Rect{X1: 10, Y1: 20, X2: 110, Y2: 141},
			layout.Rect{X1: 10, Y1: 20, X2: 110, Y2: 81},
			layout.Rect{X1: 10, Y1: 81, X2: 110, Y2: 141},
		},
	}
	for _, tt := range tests {
		img, text := Stacked(tt.region)
		if img != tt.wantImage || text != tt.wantText {
			t.Errorf("Stacked(%v) = %v, %v; want %v, %v", tt.region, img, text, tt.wantImage, tt.wantText)
		}
	}
}

func TestIsVertical(t *testing.T) {
	tests := []struct {
		w, h  int
		ratio float64
		want  bool
	}{
		{100, 200, 1, true},
		{200, 100, 1, false},
		{100, 100, 1, false},
		{150, 100, 2, true},
		{300, 100, 2, false},
	}
	for _, tt := range tests {
		img := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
		if got := IsVertical(img, tt.ratio); got != tt.want {
			t.Errorf("IsVertical(%dx%d, %v) = %v, want %v", tt.w, tt.h, tt.ratio, got, tt.want)
		}
	}
}

func TestExtractEmotion(t *testing.T) {
	cfg := config.Default()
	cfg.BaseImageFile = "base.png"
	cfg.BaseImageMapping = map[string]string{
		"#a#":  "a.png",
		"#a#b": "ab.png",
		"#开心#": "happy.png",
	}
	c := newComposer(t, cfg)

	if tag, base := c.Emotion(); tag != DefaultEmotion || base != "base.png" {
		t.Fatalf("initial emotion = %q, %q", tag, base)
	}

	tests := []struct {
		text     string
		want     string
		wantTag  string
		wantBase string
	}{
		{"#开心# 今天天气不错", "今天天气不错", "#开心#", "happy.png"},
		{"plain text", "plain text", "#开心#", "happy.png"},
		{"x #a#b y", "x  y", "#a#b", "ab.png"},
		{" #a# twice #a# ", "twice", "#a#", "a.png"},
	}
	for _, tt := range tests {
		if got := c.ExtractEmotion(tt.text); got != tt.want {
			t.Errorf("ExtractEmotion(%q) = %q, want %q", tt.text, got, tt.want)
		}
		if tag, base := c.Emotion(); tag != tt.wantTag || base != tt.wantBase {
			t.Errorf("after %q: emotion = %q, %q; want %q, %q", tt.text, tag, base, tt.wantTag, tt.wantBase)
		}
	}
}

func TestSwitchEmotion(t *testing.T) {
	cfg := config.Default()
	cfg.BaseImageFile = "base.png"
	cfg.BaseImageMapping = map[string]string{"#sad#": "sad.png"}
	c := newComposer(t, cfg)

	if got := c.SwitchEmotion("#sad#"); got != "sad.png" {
		t.Fatalf("SwitchEmotion(#sad#) = %q", got)
	}
	if got := c.SwitchEmotion("#unknown#"); got != "base.png" {
		t.Fatalf("SwitchEmotion(#unknown#) = %q", got)
	}
	if tag, _ := c.Emotion(); tag != "#unknown#" {
		t.Fatalf("tag = %q", tag)
	}
}

func TestComposeNoInput(t *testing.T) {
	c := newComposer(t, config.Default())
	if _, err := c.Compose("", nil); !errors.Is(err, ErrNoInput) {
		t.Fatalf("err = %v, want ErrNoInput", err)
	}
}

func TestComposeTextOnly(t *testing.T) {
	cfg := config.Default()
	c := newComposer(t, cfg)

	data, err := c.Compose("Hello 【World】", nil)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	at := decodeAt(t, data)

	r := cfg.Region()
	drawn := 0
	for y := r.Y1; y < r.Y2; y++ {
		for x := r.X1; x < r.X2; x++ {
			if at(x, y) != (color.NRGBA{255, 255, 255, 255}) {
				drawn++
			}
		}
	}
	if drawn == 0 {
		t.Fatal("no text drawn in the region")
	}
	if at(0, 0) != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("background = %v, want white", at(0, 0))
	}
}

func TestComposeImageOnly(t *testing.T) {
	cfg := config.Default()
	c := newComposer(t, cfg)

	data, err := c.Compose("", solid(50, 50, red))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	at := decodeAt(t, data)
	if got := at(258, 537); got != red {
		t.Fatalf("region center = %v, want red", got)
	}
	if got := at(125, 455); got != (color.NRGBA{255, 255, 255, 255}) {
		t.Fatalf("padding = %v, want white", got)
	}
}

func TestComposeTallImageSideBySide(t *testing.T) {
	c := newComposer(t, config.Default())

	data, err := c.Compose("side text", solid(40, 100, red))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	at := decodeAt(t, data)
	// image half spans x 119..253
	if got := at(186, 537); got != red {
		t.Fatalf("left half center = %v, want red", got)
	}
	if got := at(330, 470); got == red {
		t.Fatalf("right half should hold text, found image pixels")
	}
}

func TestComposeWideImageStacked(t *testing.T) {
	c := newComposer(t, config.Default())

	data, err := c.Compose("caption", solid(200, 50, red))
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	at := decodeAt(t, data)
	// image area spans y 450..538, the text band 538..625
	if got := at(258, 494); got != red {
		t.Fatalf("image area center = %v, want red", got)
	}
	if got := at(258, 620); got == red {
		t.Fatalf("text band should not hold image pixels")
	}
}

func TestComposeBaseAndOverlay(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "green.png")
	if err := generator.Write(basePath, solid(300, 300, green)); err != nil {
		t.Fatal(err)
	}
	overlayImg := image.NewNRGBA(image.Rect(0, 0, 300, 300))
	overlayImg.SetNRGBA(2, 2, blue)
	overlayPath := filepath.Join(dir, "overlay.png")
	if err := generator.Write(overlayPath, overlayImg); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.BaseImageMapping = map[string]string{"#g#": basePath}
	cfg.TextBoxTopLeft = config.Point{20, 20}
	cfg.ImageBoxBottomRight = config.Point{280, 280}
	cfg.BaseOverlayFile = overlayPath
	cfg.UseBaseOverlay = true
	c := newComposer(t, cfg)

	data, err := c.Compose("#g# hello", nil)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	at := decodeAt(t, data)
	if got := at(2, 2); got != blue {
		t.Fatalf("overlay pixel = %v, want blue", got)
	}
	if got := at(10, 290); got != green {
		t.Fatalf("base pixel = %v, want green", got)
	}
}

func TestComposeMissingFilesFallBack(t *testing.T) {
	cfg := config.Default()
	cfg.BaseImageFile = filepath.Join(t.TempDir(), "missing.png")
	cfg.BaseOverlayFile = filepath.Join(t.TempDir(), "missing-overlay.png")
	cfg.UseBaseOverlay = true
	c := newComposer(t, cfg)

	data, err := c.Compose("still renders", nil)
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	img, err := generator.DecodePNG(data)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds() != image.Rect(0, 0, 512, 768) {
		t.Fatalf("bounds = %v, want the configured canvas size", img.Bounds())
	}
}

func TestExtractReturnsMatchedBase(t *testing.T) {
	cfg := config.Default()
	cfg.BaseImageFile = "default.png"
	cfg.BaseImageMapping = map[string]string{"#r#": "red.png", "#b#": "blue.png"}
	c := newComposer(t, cfg)

	cleaned, base := c.extract("#r# hi")
	if cleaned != "hi" || base != "red.png" {
		t.Fatalf("extract = %q, %q; want \"hi\", red.png", cleaned, base)
	}
	cleaned, base = c.extract("no keyword")
	if cleaned != "no keyword" || base != "red.png" {
		t.Fatalf("extract without keyword = %q, %q; want current base red.png", cleaned, base)
	}
}

func TestComposeConcurrentEmotions(t *testing.T) {
	dir := t.TempDir()
	redPath := filepath.Join(dir, "red.png")
	bluePath := filepath.Join(dir, "blue.png")
	if err := generator.Write(redPath, solid(64, 64, red)); err != nil {
		t.Fatal(err)
	}
	if err := generator.Write(bluePath, solid(64, 64, blue)); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.BaseImageMapping = map[string]string{"#r#": redPath, "#b#": bluePath}
	cfg.TextBoxTopLeft = config.Point{8, 8}
	cfg.ImageBoxBottomRight = config.Point{56, 56}
	c := newComposer(t, cfg)

	cases := []struct {
		text string
		want color.NRGBA
	}{
		{"#r# x", red},
		{"#b# y", blue},
	}

	var wg sync.WaitGroup
	errs := make(chan error, 2*len(cases)*20)
	for _, tc := range cases {
		for range 20 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				data, err := c.Compose(tc.text, nil)
				if err != nil {
					errs <- err
					return
				}
				img, err := generator.DecodePNG(data)
				if err != nil {
					errs <- err
					return
				}
				if got := color.NRGBAModel.Convert(img.At(0, 0)).(color.NRGBA); got != tc.want {
					errs <- fmt.Errorf("%q rendered on base %v, want %v", tc.text, got, tc.want)
				}
			}()
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
