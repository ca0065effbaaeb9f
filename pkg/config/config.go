// Package config holds the YAML settings shared by the CLI, the HTTP server
// and the composer: which font and base images to use, where the layout
// region sits on the base image, and the rendering defaults.
package config

import (
	"image/color"
	"log/slog"
	"strings"

	"github.com/xob0t/fitbox/pkg/generator"
	"github.com/xob0t/fitbox/pkg/layout"
)

// Point is an [x, y] pixel coordinate, written as a two-element YAML list.
type Point [2]int

// Config is the top-level structure of config.yaml.
type Config struct {
	FontFile            string            `yaml:"font_file"`
	BaseImageFile       string            `yaml:"baseimage_file"`
	BaseImageMapping    map[string]string `yaml:"baseimage_mapping"` // keyword → base image
	TextBoxTopLeft      Point             `yaml:"text_box_topleft"`
	ImageBoxBottomRight Point             `yaml:"image_box_bottomright"`
	BaseOverlayFile     string            `yaml:"base_overlay_file"`
	UseBaseOverlay      bool              `yaml:"use_base_overlay"`
	LoggingLevel        string            `yaml:"logging_level"`
	TextWrapAlgorithm   string            `yaml:"text_wrap_algorithm"`

	// ── Rendering ──

	MaxFontHeight   int     `yaml:"max_font_height"`
	LineSpacing     float64 `yaml:"line_spacing"`
	TextColor       string  `yaml:"text_color"`
	BracketColor    string  `yaml:"bracket_color"`
	Padding         int     `yaml:"padding"` // image inset inside its region
	Spacing         int     `yaml:"spacing"` // gap between image and text side by side
	CanvasSize      Point   `yaml:"canvas_size"`
	BackgroundColor string  `yaml:"background_color"` // canvas fill when no base image is usable

	// ── Server ──

	Listen string `yaml:"listen"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseImageMapping:    map[string]string{},
		TextBoxTopLeft:      Point{119, 450},
		ImageBoxBottomRight: Point{398, 625},
		LoggingLevel:        "INFO",
		TextWrapAlgorithm:   string(layout.WrapGreedy),
		MaxFontHeight:       64,
		LineSpacing:         0.15,
		TextColor:           "#000000",
		BracketColor:        "#800080",
		Padding:             12,
		Spacing:             10,
		CanvasSize:          Point{512, 768},
		BackgroundColor:     "#ffffff",
		Listen:              ":8080",
	}
}

// Region returns the layout region spanned by the two configured corners.
func (c *Config) Region() layout.Rect {
	return layout.Rect{
		X1: c.TextBoxTopLeft[0], Y1: c.TextBoxTopLeft[1],
		X2: c.ImageBoxBottomRight[0], Y2: c.ImageBoxBottomRight[1],
	}
}

// RegionRatio is the region's width divided by its height, or 1 for an
// invalid region.
func (c *Config) RegionRatio() float64 {
	r := c.Region()
	if r.Validate() != nil {
		return 1
	}
	return float64(r.Width()) / float64(r.Height())
}

// Wrap returns the configured line breaker, greedy when unrecognized.
func (c *Config) Wrap() layout.WrapAlgorithm {
	algo, _ := layout.ParseWrapAlgorithm(c.TextWrapAlgorithm)
	return algo
}

// Level maps logging_level to a slog level. Besides slog's own names it
// accepts WARNING and CRITICAL. Unknown names mean INFO.
func (c *Config) Level() slog.Level {
	level, _ := parseLevel(c.LoggingLevel)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "WARNING":
		return slog.LevelWarn, true
	case "CRITICAL", "FATAL":
		return slog.LevelError, true
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, false
	}
	return level, true
}

// TextRGBA returns text_color, black when invalid.
func (c *Config) TextRGBA() color.RGBA {
	return generator.ParseHexRGBA(c.TextColor, color.RGBA{A: 255})
}

// BracketRGBA returns bracket_color, purple when invalid.
func (c *Config) BracketRGBA() color.RGBA {
	return generator.ParseHexRGBA(c.BracketColor, color.RGBA{R: 0x80, B: 0x80, A: 255})
}

// BackgroundRGBA returns background_color, white when invalid.
func (c *Config) BackgroundRGBA() color.RGBA {
	return generator.ParseHexRGBA(c.BackgroundColor, color.RGBA{255, 255, 255, 255})
}

// BaseImageFor returns the base image mapped to tag, or baseimage_file.
func (c *Config) BaseImageFor(tag string) string {
	if p, ok := c.BaseImageMapping[tag]; ok && p != "" {
		return p
	}
	return c.BaseImageFile
}

// OverlayFile returns base_overlay_file when overlays are enabled, else "".
func (c *Config) OverlayFile() string {
	if !c.UseBaseOverlay {
		return ""
	}
	return c.BaseOverlayFile
}
