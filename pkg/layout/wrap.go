// wrap.go - Greedy line breaking by words (text with spaces) or by characters (CJK).
package layout

import (
	"strings"
	"unicode/utf8"
)

// WrapAlgorithm selects the line breaker used by FitText.
type WrapAlgorithm string

const (
	// WrapGreedy packs words (or characters) into lines first-fit.
	WrapGreedy WrapAlgorithm = "original"
	// WrapOptimal minimizes squared slack over all lines with dynamic programming.
	WrapOptimal WrapAlgorithm = "knuth_plass"
)

// ParseWrapAlgorithm accepts "original" (alias "greedy") or "knuth_plass" (alias "optimal").
func ParseWrapAlgorithm(s string) (WrapAlgorithm, bool) {
	switch strings.ToLower(s) {
	case "original", "greedy", "":
		return WrapGreedy, true
	case "knuth_plass", "knuth-plass", "optimal":
		return WrapOptimal, true
	}
	return WrapGreedy, false
}

// Wrap breaks text into lines no wider than maxWidth using algo.
// Unknown algorithms fall back to greedy.
func Wrap(algo WrapAlgorithm, text string, m Measurer, maxWidth float64) []string {
	if algo == WrapOptimal {
		return WrapOptimalLines(text, m, maxWidth)
	}
	return WrapGreedyLines(text, m, maxWidth)
}

// WrapGreedyLines wraps each line-feed separated paragraph independently.
//
// A paragraph containing a space is wrapped at spaces, and a word too wide
// for a line on its own is packed character by character. A paragraph
// without spaces is wrapped between any two characters. Lines never exceed
// maxWidth except for a single character that is wider on its own.
// Empty paragraphs produce no line.
func WrapGreedyLines(text string, m Measurer, maxWidth float64) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		paragraph = strings.TrimSuffix(paragraph, "\r")
		lines = append(lines, wrapParagraph(paragraph, m, maxWidth)...)
	}
	return lines
}

func wrapParagraph(paragraph string, m Measurer, maxWidth float64) []string {
	wordMode := strings.Contains(paragraph, " ")

	var units []string
	sep := ""
	if wordMode {
		units = strings.Split(paragraph, " ")
		sep = " "
	} else {
		units = splitRunes(paragraph)
	}

	var (
		lines []string
		buf   string
	)
	for _, unit := range units {
		if trial := joinUnit(buf, unit, sep); m.Measure(trial) <= maxWidth {
			buf = trial
			continue
		}
		if buf != "" {
			lines = append(lines, buf)
		}

		if wordMode && utf8.RuneCountInString(unit) > 1 {
			// The word alone overflows: fill lines with its characters and
			// keep the tail open for the next word.
			chunks := splitByWidth(unit, m, maxWidth)
			lines = append(lines, chunks[:len(chunks)-1]...)
			buf = chunks[len(chunks)-1]
			continue
		}

		if m.Measure(unit) <= maxWidth {
			buf = unit
		} else {
			lines = append(lines, unit)
			buf = ""
		}
	}
	if buf != "" {
		lines = append(lines, buf)
	}
	return lines
}

// joinUnit appends unit to the line accumulated so far.
func joinUnit(acc, unit, sep string) string {
	if acc == "" {
		return unit
	}
	return acc + sep + unit
}

// splitRunes splits s into its characters, keeping each one's original
// bytes. An invalid byte is a character of its own.
func splitRunes(s string) []string {
	units := make([]string, 0, len(s))
	for len(s) > 0 {
		_, size := utf8.DecodeRuneInString(s)
		units = append(units, s[:size])
		s = s[size:]
	}
	return units
}
