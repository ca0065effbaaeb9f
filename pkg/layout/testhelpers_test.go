package layout

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// monoFace is a monospace face: every rune except a line-feed is charWidth wide.
type monoFace struct {
	charWidth float64
	ascent    int
	descent   int
}

func (f monoFace) Measure(s string) float64 {
	n := utf8.RuneCountInString(s) - strings.Count(s, "\n")
	return float64(n) * f.charWidth
}

func (f monoFace) Ascent() int  { return f.ascent }
func (f monoFace) Descent() int { return f.descent }

// mono10 is 10px per character, the face used by most scenarios.
var mono10 = monoFace{charWidth: 10, ascent: 8, descent: 2}

// scaledLoader returns a face whose glyphs are size×size pixels.
func scaledLoader() FaceLoader {
	return FaceLoaderFunc(func(size int) (Face, error) {
		return monoFace{charWidth: float64(size), ascent: size, descent: 0}, nil
	})
}

var errBrokenFont = errors.New("broken font")

func brokenLoader() FaceLoader {
	return FaceLoaderFunc(func(int) (Face, error) { return nil, errBrokenFont })
}

func joinTokens(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
	}
	return sb.String()
}
