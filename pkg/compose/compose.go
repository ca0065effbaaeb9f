// Package compose decides how text and an optional picture share the
// configured region of a base image, then renders them onto one canvas.
//
//   - text only: the whole region holds text
//   - image only: the whole region holds the image
//   - both, tall image: image on the left half, text on the right
//   - both, wide image: image on top, a text band of at most 100px below
//
// A keyword from baseimage_mapping found in the text selects the base image
// and is removed from the text before layout.
package compose

import (
	"errors"
	"image"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/unicode/norm"

	"github.com/xob0t/fitbox/pkg/config"
	"github.com/xob0t/fitbox/pkg/generator"
	"github.com/xob0t/fitbox/pkg/layout"
	"github.com/xob0t/fitbox/pkg/render"
)

// ErrNoInput is returned by Compose when there is neither text nor an image.
var ErrNoInput = errors.New("compose: no text or image to render")

// DefaultEmotion is the tag selected before any keyword or switch.
const DefaultEmotion = "#普通#"

// maxTextBand caps the height of the text band in the stacked layout.
const maxTextBand = 100

// Composer renders compositions with one configuration. The current
// emotion is shared state; Compose and SwitchEmotion are safe for
// concurrent use.
type Composer struct {
	cfg      *config.Config
	renderer *render.Renderer
	keywords []string // mapping keys, longest first

	mu        sync.Mutex
	emotion   string
	baseImage string
}

// New creates a Composer. The font is loaded once, falling back to the
// embedded font when font_file is unusable.
func New(cfg *config.Config) (*Composer, error) {
	renderer, err := render.NewRenderer(cfg.FontFile)
	if err != nil {
		return nil, err
	}

	keywords := make([]string, 0, len(cfg.BaseImageMapping))
	for k := range cfg.BaseImageMapping {
		keywords = append(keywords, k)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if len(keywords[i]) != len(keywords[j]) {
			return len(keywords[i]) > len(keywords[j])
		}
		return keywords[i] < keywords[j]
	})

	return &Composer{
		cfg:       cfg,
		renderer:  renderer,
		keywords:  keywords,
		emotion:   DefaultEmotion,
		baseImage: cfg.BaseImageFor(DefaultEmotion),
	}, nil
}

// Emotion returns the current tag and the base image it selects.
func (c *Composer) Emotion() (tag, baseImage string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.emotion, c.baseImage
}

// SwitchEmotion makes tag current and returns its base image. Unknown tags
// select baseimage_file.
func (c *Composer) SwitchEmotion(tag string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.switchLocked(tag)
}

// switchLocked is SwitchEmotion with c.mu already held.
func (c *Composer) switchLocked(tag string) string {
	c.emotion = tag
	c.baseImage = c.cfg.BaseImageFor(tag)
	render.Logger().Info("emotion switched", "tag", tag, "base", c.baseImage)
	return c.baseImage
}

// ExtractEmotion looks for a configured keyword in text. The first match,
// longest keywords first, becomes the current emotion; every occurrence of
// it is removed and the result trimmed. Text without a keyword is returned
// normalized but otherwise unchanged.
func (c *Composer) ExtractEmotion(text string) string {
	cleaned, _ := c.extract(text)
	return cleaned
}

// extract is ExtractEmotion that also returns the base image current after
// the switch, both decided under one lock.
func (c *Composer) extract(text string) (cleaned, basePath string) {
	text = norm.NFC.String(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, keyword := range c.keywords {
		match := norm.NFC.String(keyword)
		if !strings.Contains(text, match) {
			continue
		}
		basePath = c.switchLocked(keyword)
		return strings.TrimSpace(strings.ReplaceAll(text, match, "")), basePath
	}
	return text, c.baseImage
}

// IsVertical reports whether img is tall relative to a region whose
// width/height ratio is ratio.
func IsVertical(img image.Image, ratio float64) bool {
	b := img.Bounds()
	return float64(b.Dy())*ratio > float64(b.Dx())
}

// SideBySide splits r into a left image half and a right text half,
// spacing pixels apart.
func SideBySide(r layout.Rect, spacing int) (imageRect, textRect layout.Rect) {
	left := r.Width()/2 - spacing/2
	imageRect = layout.Rect{X1: r.X1, Y1: r.Y1, X2: r.X1 + left, Y2: r.Y2}
	textRect = layout.Rect{X1: r.X1 + left + spacing, Y1: r.Y1, X2: r.X2, Y2: r.Y2}
	return imageRect, textRect
}

// Stacked splits r into an image area on top and a text band below, the
// band being half the region but at most 100px high.
func Stacked(r layout.Rect) (imageRect, textRect layout.Rect) {
	band := min(r.Height()/2, maxTextBand)
	split := r.Y2 - band
	imageRect = layout.Rect{X1: r.X1, Y1: r.Y1, X2: r.X2, Y2: split}
	textRect = layout.Rect{X1: r.X1, Y1: split, X2: r.X2, Y2: r.Y2}
	return imageRect, textRect
}

// Compose renders text and/or img onto the current base image and returns
// the canvas as PNG. Keywords are extracted from text first.
func (c *Composer) Compose(text string, img image.Image) ([]byte, error) {
	if text == "" && img == nil {
		return nil, ErrNoInput
	}
	cleaned, basePath := c.extract(text)

	canvas := render.NewCanvas(c.loadBase(basePath))
	region := c.cfg.Region()
	log := render.Logger()

	switch {
	case text == "":
		log.Info("composing image", "region", region.String())
		if err := c.placeImage(canvas, region, img); err != nil {
			return nil, err
		}
	case img == nil:
		log.Info("composing text", "region", region.String(), "text", cleaned)
		if err := c.drawText(canvas, region, cleaned); err != nil {
			return nil, err
		}
	default:
		imageRect, textRect := Stacked(region)
		layoutName := "stacked"
		if IsVertical(img, c.cfg.RegionRatio()) {
			imageRect, textRect = SideBySide(region, c.cfg.Spacing)
			layoutName = "side-by-side"
		}
		log.Info("composing text and image", "layout", layoutName, "text", cleaned)
		if err := c.placeImage(canvas, imageRect, img); err != nil {
			return nil, err
		}
		if err := c.drawText(canvas, textRect, cleaned); err != nil {
			return nil, err
		}
	}

	render.Overlay(canvas, c.loadOverlay())
	return generator.EncodePNG(canvas)
}

func (c *Composer) placeImage(canvas *image.RGBA, r layout.Rect, img image.Image) error {
	_, err := render.PlaceImage(canvas, r, img, render.ImageOptions{
		Align:        layout.AlignCenter,
		VAlign:       layout.VAlignMiddle,
		Padding:      c.cfg.Padding,
		AllowUpscale: true,
		KeepAlpha:    true,
	})
	return err
}

func (c *Composer) drawText(canvas *image.RGBA, r layout.Rect, text string) error {
	_, err := c.renderer.DrawText(canvas, r, text, c.TextOptions())
	return err
}

// TextOptions returns the text settings derived from the configuration.
func (c *Composer) TextOptions() render.TextOptions {
	return render.TextOptions{
		Color:         c.cfg.TextRGBA(),
		BracketColor:  c.cfg.BracketRGBA(),
		MaxFontHeight: c.cfg.MaxFontHeight,
		LineSpacing:   c.cfg.LineSpacing,
		Align:         layout.AlignCenter,
		VAlign:        layout.VAlignMiddle,
		Wrap:          c.cfg.Wrap(),
	}
}

// Renderer returns the composer's text renderer.
func (c *Composer) Renderer() *render.Renderer { return c.renderer }

// loadBase returns the base image at path, or a solid canvas of
// canvas_size when path is empty or unreadable.
func (c *Composer) loadBase(path string) image.Image {
	if path != "" {
		img, err := render.LoadImage(path)
		if err == nil {
			return img
		}
		render.Logger().Warn("base image unavailable, using solid canvas", "path", path, "err", err)
	}
	return generator.NewSolidImage(c.cfg.CanvasSize[0], c.cfg.CanvasSize[1], c.cfg.BackgroundRGBA())
}

// BaseImage returns the current base image, loaded as Compose would.
func (c *Composer) BaseImage() image.Image {
	_, path := c.Emotion()
	return c.loadBase(path)
}

// Overlay returns the configured overlay, or nil when disabled or unreadable.
func (c *Composer) Overlay() image.Image { return c.loadOverlay() }

func (c *Composer) loadOverlay() image.Image {
	path := c.cfg.OverlayFile()
	if path == "" {
		return nil
	}
	img, err := render.LoadImage(path)
	if err != nil {
		render.Logger().Warn("overlay unavailable, skipping", "path", path, "err", err)
		return nil
	}
	return img
}
