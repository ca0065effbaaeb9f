// loader.go - Load config.yaml, resolve relative paths, write the default file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at path on top of Default(), resolves relative
// file paths against the file's directory and validates the result.
//
// Problems that still leave a usable configuration are returned as warnings:
// a missing file or malformed YAML means all defaults. Only a file that
// exists but cannot be read is an error.
func Load(path string) (*Config, []string, error) {
	var warnings []string

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		warnings = append(warnings, fmt.Sprintf("config %s not found, using defaults", path))
		return Default(), warnings, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("malformed %s: %v, using all defaults", path, err))
		return Default(), warnings, nil
	}

	resolvePaths(cfg, filepath.Dir(path))
	warnings = append(warnings, Validate(cfg)...)
	return cfg, warnings, nil
}

// Parse decodes YAML over the defaults. Keys absent from data keep their
// default values. Paths are left as written and nothing is validated.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.BaseImageMapping == nil {
		cfg.BaseImageMapping = map[string]string{}
	}
	return cfg, nil
}

// resolvePaths makes relative file paths absolute using baseDir.
func resolvePaths(cfg *Config, baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	cfg.FontFile = resolve(cfg.FontFile)
	cfg.BaseImageFile = resolve(cfg.BaseImageFile)
	cfg.BaseOverlayFile = resolve(cfg.BaseOverlayFile)
	for k, v := range cfg.BaseImageMapping {
		cfg.BaseImageMapping[k] = resolve(v)
	}
}

// WriteDefault writes DefaultYAML to path, creating parent directories.
// An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(DefaultYAML), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// DefaultYAML is the annotated config file written by `fitbox init`.
// It decodes to exactly Default().
const DefaultYAML = `# fitbox configuration
# Relative paths are resolved against this file's directory.

# TTF/OTF font; empty or unusable means the embedded Go Regular font.
font_file: ""

# Base image drawn under everything. Empty means a solid canvas.
baseimage_file: ""

# Keyword → base image. A keyword found in the input text selects its
# image and is removed from the text, e.g.
#   "#happy#": images/happy.png
baseimage_mapping: {}

# Layout region on the base image: top-left and bottom-right corners.
text_box_topleft: [119, 450]
image_box_bottomright: [398, 625]

# Image composited over the finished canvas.
base_overlay_file: ""
use_base_overlay: false

# DEBUG, INFO, WARN or ERROR.
logging_level: INFO

# "original" (greedy) or "knuth_plass" (minimum raggedness).
text_wrap_algorithm: original

max_font_height: 64
line_spacing: 0.15
text_color: "#000000"
bracket_color: "#800080"
padding: 12
spacing: 10

# Canvas used when no base image is configured or it cannot be read.
canvas_size: [512, 768]
background_color: "#ffffff"

# Address for ` + "`fitbox serve`" + `.
listen: ":8080"
`
