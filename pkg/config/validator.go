// validator.go - Repair invalid settings with warnings instead of failing.
package config

import (
	"fmt"

	"github.com/xob0t/fitbox/pkg/generator"
	"github.com/xob0t/fitbox/pkg/layout"
)

// Validate resets every invalid field of cfg to its default and returns one
// warning per repair. It never fails.
func Validate(cfg *Config) []string {
	def := Default()
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if err := cfg.Region().Validate(); err != nil {
		warn("text_box_topleft/image_box_bottomright: %v, using %v", err, def.Region())
		cfg.TextBoxTopLeft, cfg.ImageBoxBottomRight = def.TextBoxTopLeft, def.ImageBoxBottomRight
	}
	if _, ok := layout.ParseWrapAlgorithm(cfg.TextWrapAlgorithm); !ok {
		warn("text_wrap_algorithm %q unknown, using %q", cfg.TextWrapAlgorithm, def.TextWrapAlgorithm)
		cfg.TextWrapAlgorithm = def.TextWrapAlgorithm
	}
	if _, ok := parseLevel(cfg.LoggingLevel); !ok {
		warn("logging_level %q unknown, using %s", cfg.LoggingLevel, def.LoggingLevel)
		cfg.LoggingLevel = def.LoggingLevel
	}
	if cfg.MaxFontHeight <= 0 {
		warn("max_font_height %d must be positive, using %d", cfg.MaxFontHeight, def.MaxFontHeight)
		cfg.MaxFontHeight = def.MaxFontHeight
	}
	if cfg.LineSpacing < 0 {
		warn("line_spacing %v must not be negative, using %v", cfg.LineSpacing, def.LineSpacing)
		cfg.LineSpacing = def.LineSpacing
	}
	if cfg.Padding < 0 {
		warn("padding %d must not be negative, using 0", cfg.Padding)
		cfg.Padding = 0
	}
	if cfg.Spacing < 0 {
		warn("spacing %d must not be negative, using 0", cfg.Spacing)
		cfg.Spacing = 0
	}
	if cfg.CanvasSize[0] <= 0 || cfg.CanvasSize[1] <= 0 {
		warn("canvas_size %v must be positive, using %v", cfg.CanvasSize, def.CanvasSize)
		cfg.CanvasSize = def.CanvasSize
	}

	for _, c := range []struct {
		key      string
		value    *string
		fallback string
	}{
		{"text_color", &cfg.TextColor, def.TextColor},
		{"bracket_color", &cfg.BracketColor, def.BracketColor},
		{"background_color", &cfg.BackgroundColor, def.BackgroundColor},
	} {
		if _, err := generator.ParseColor(*c.value); err != nil {
			warn("%s: %v, using %s", c.key, err, c.fallback)
			*c.value = c.fallback
		}
	}

	for keyword := range cfg.BaseImageMapping {
		if keyword == "" {
			warn("baseimage_mapping: empty keyword ignored")
			delete(cfg.BaseImageMapping, keyword)
		}
	}
	if cfg.UseBaseOverlay && cfg.BaseOverlayFile == "" {
		warn("use_base_overlay is set but base_overlay_file is empty")
	}

	return warnings
}
