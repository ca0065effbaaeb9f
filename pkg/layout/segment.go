package layout

import (
	"image/color"
	"strings"
	"unicode/utf8"
)

// ColorSegment is a run of text drawn in one color.
type ColorSegment struct {
	Text  string
	Color color.Color
}

// Segment splits line into colored runs. Bracket delimiters and the text
// between them get bracketColor, everything else defaultColor.
//
// inBracket is the state at the start of the line; the returned bool is the
// state at its end. Callers thread it through consecutive lines so a group
// opened on one line keeps coloring the next until it is closed.
func Segment(line string, inBracket bool, bracketColor, defaultColor color.Color) ([]ColorSegment, bool) {
	var (
		segments []ColorSegment
		buf      strings.Builder
	)
	current := func() color.Color {
		if inBracket {
			return bracketColor
		}
		return defaultColor
	}

	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		piece := line[i : i+size]
		i += size

		if !IsOpenBracket(r) && !IsCloseBracket(r) {
			buf.WriteString(piece)
			continue
		}
		if buf.Len() > 0 {
			segments = append(segments, ColorSegment{Text: buf.String(), Color: current()})
			buf.Reset()
		}
		segments = append(segments, ColorSegment{Text: piece, Color: bracketColor})
		inBracket = IsOpenBracket(r)
	}
	if buf.Len() > 0 {
		segments = append(segments, ColorSegment{Text: buf.String(), Color: current()})
	}
	return segments, inBracket
}
