// png.go - Decoding of encoded canvases, the inverse of EncodePNG.
package generator

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// DecodePNG parses PNG bytes produced by EncodePNG.
func DecodePNG(data []byte) (image.Image, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode PNG: %w", err)
	}
	return img, nil
}
