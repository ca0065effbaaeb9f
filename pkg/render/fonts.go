// fonts.go - Font management with custom TTF/OTF support and embedded fallback font.
// A file that is missing, unreadable or not a font is replaced by Go Regular
// with a warning; callers never see a font loading error for a bad path.
package render

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/xob0t/fitbox/pkg/layout"
)

// FontManager parses one font file and hands out faces at any pixel size.
// It is safe for concurrent use; each Face it returns is not.
type FontManager struct {
	path     string
	parsed   *opentype.Font
	fallback bool
}

// NewFontManager creates a font manager for the font at path.
// An empty path selects the embedded Go Regular font.
func NewFontManager(path string) (*FontManager, error) {
	if path != "" {
		parsed, err := parseFontFile(path)
		if err == nil {
			return &FontManager{path: path, parsed: parsed}, nil
		}
		Logger().Warn("font unavailable, using embedded Go Regular", "path", path, "err", err)
	}

	parsed, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	return &FontManager{path: path, parsed: parsed, fallback: path != ""}, nil
}

func parseFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return parsed, nil
}

// Fallback reports whether a requested font file was replaced by the embedded font.
func (fm *FontManager) Fallback() bool { return fm.fallback }

// Face returns the font at size pixels (72 DPI, so points equal pixels).
func (fm *FontManager) Face(size int) (*Face, error) {
	face, err := opentype.NewFace(fm.parsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create font face at %dpx: %w", size, err)
	}
	return &Face{Face: face, size: size}, nil
}

// LoadFace implements layout.FaceLoader.
func (fm *FontManager) LoadFace(size int) (layout.Face, error) {
	return fm.Face(size)
}

// Face is a sized font face measuring text for the layout package.
type Face struct {
	font.Face
	size int
}

var lineFeeds = strings.NewReplacer("\n", "", "\r", "")

// Size returns the pixel size the face was created at.
func (f *Face) Size() int { return f.size }

// Measure returns the advance width of s in pixels. Line-feeds have no width.
func (f *Face) Measure(s string) float64 {
	adv := font.MeasureString(f.Face, lineFeeds.Replace(s))
	return float64(adv) / 64
}

// Ascent returns the distance from the top of a line to its baseline, rounded up.
func (f *Face) Ascent() int { return f.Metrics().Ascent.Ceil() }

// Descent returns the distance from the baseline to the bottom of a line, rounded up.
func (f *Face) Descent() int { return f.Metrics().Descent.Ceil() }
