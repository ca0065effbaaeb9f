// Package generator encodes finished canvases and builds solid backgrounds.
//
// Every render path ends here: the canvas is serialized losslessly as PNG,
// either to memory (HTTP responses, in-process callers) or to a file whose
// extension picks the format.
package generator

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
)

// ErrEncoding is returned when a canvas cannot be serialized.
var ErrEncoding = errors.New("generator: encoding failed")

// EncodePNG serializes img as PNG and returns the bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, ".png", img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes img to w. The format is selected by ext:
//   - ".png" → PNG (lossless, alpha preserved)
//   - ".bmp" → BMP, the format clipboard consumers usually expect
func Encode(w io.Writer, ext string, img image.Image) error {
	var err error
	switch ext = strings.ToLower(ext); ext {
	case ".png":
		err = png.Encode(w, img)
	case ".bmp":
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("unsupported format %q: use .png or .bmp", ext)
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrEncoding, ext, err)
	}
	return nil
}

// Write encodes img to a file, inferring the format from the extension.
// Parent directories are created as needed.
func Write(output string, img image.Image) error {
	ext := filepath.Ext(output)
	if ext == "" {
		ext = ".png"
		output += ext
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	// Encode before touching the file so a failed encode leaves nothing behind.
	var buf bytes.Buffer
	if err := Encode(&buf, ext, img); err != nil {
		return err
	}
	if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}
