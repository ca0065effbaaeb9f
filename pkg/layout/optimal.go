// optimal.go - Minimum-raggedness line breaking over the token stream.
package layout

import (
	"math"
	"strings"
)

// WrapOptimalLines breaks text at token boundaries so that the sum of squared
// slack (maxWidth - lineWidth)² over all lines is minimal. The last line, and
// any line ending a paragraph, costs nothing however short it is.
//
// A line-feed token forces a break after it and stays at the end of its line,
// so concatenating the returned lines reproduces text exactly.
//
// If some token is wider than maxWidth even alone, no break sequence exists
// and the greedy breaker is used instead.
func WrapOptimalLines(text string, m Measurer, maxWidth float64) []string {
	tokens := Tokenize(text, m, maxWidth)
	breaks, ok := optimalBreaks(tokens, m, maxWidth)
	if !ok {
		return WrapGreedyLines(text, m, maxWidth)
	}

	lines := make([]string, 0, len(breaks)-1)
	for k := 1; k < len(breaks); k++ {
		var sb strings.Builder
		for _, tok := range tokens[breaks[k-1]:breaks[k]] {
			sb.WriteString(tok.Text)
		}
		lines = append(lines, sb.String())
	}
	return lines
}

// optimalBreaks returns the break indexes 0 = b0 < b1 < ... < bk = len(tokens),
// line i covering tokens[b(i-1):b(i)]. The boolean is false when the end of
// the token stream is unreachable.
func optimalBreaks(tokens []Token, m Measurer, maxWidth float64) ([]int, bool) {
	n := len(tokens)

	// prefix[i] is the width of tokens[:i].
	prefix := make([]float64, n+1)
	for i, tok := range tokens {
		prefix[i+1] = prefix[i] + tokenWidth(tok, m)
	}

	cost := make([]float64, n+1)
	prev := make([]int, n+1)
	for i := 1; i <= n; i++ {
		cost[i] = math.Inf(1)
		prev[i] = -1
	}

	for i := 1; i <= n; i++ {
		for j := i - 1; j >= 0; j-- {
			// A line-feed may only end a line.
			if j < i-1 && isLineFeed(tokens[j]) {
				break
			}
			width := prefix[i] - prefix[j]
			if width > maxWidth {
				break
			}
			if math.IsInf(cost[j], 1) {
				continue
			}
			c := cost[j] + badness(maxWidth, width, i == n || isLineFeed(tokens[i-1]))
			if c < cost[i] {
				cost[i] = c
				prev[i] = j
			}
		}
	}

	if n > 0 && prev[n] < 0 {
		return nil, false
	}

	breaks := []int{n}
	for i := n; i > 0; i = prev[i] {
		breaks = append(breaks, prev[i])
	}
	// reverse into ascending order
	for a, b := 0, len(breaks)-1; a < b; a, b = a+1, b-1 {
		breaks[a], breaks[b] = breaks[b], breaks[a]
	}
	return breaks, true
}

// badness is the squared slack of a line, or zero for a line that ends a paragraph.
func badness(maxWidth, width float64, last bool) float64 {
	if last {
		return 0
	}
	slack := maxWidth - width
	return slack * slack
}

// Badness sums the squared slack of every line except the last.
// It is the quantity WrapOptimalLines minimizes for text without line-feeds.
func Badness(lines []string, m Measurer, maxWidth float64) float64 {
	total := 0.0
	for i, line := range lines {
		total += badness(maxWidth, m.Measure(line), i == len(lines)-1)
	}
	return total
}

func tokenWidth(tok Token, m Measurer) float64 {
	if tok.Text == "\n" || tok.Text == "\r" {
		return 0
	}
	return m.Measure(tok.Text)
}

func isLineFeed(tok Token) bool {
	return tok.Text == "\n"
}
