// tokenizer.go - Split text into the atomic units used by the optimal line breaker.
package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind classifies a token.
type TokenKind uint8

const (
	// TokenChar is any single character not covered by another kind (CJK, punctuation, digits).
	TokenChar TokenKind = iota
	// TokenBracket is a 【…】 or […] group, delimiters included.
	TokenBracket
	// TokenSpace is a single whitespace character.
	TokenSpace
	// TokenWord is a maximal run of ASCII letters.
	TokenWord
)

func (k TokenKind) String() string {
	switch k {
	case TokenChar:
		return "Char"
	case TokenBracket:
		return "Bracket"
	case TokenSpace:
		return "Space"
	case TokenWord:
		return "Word"
	default:
		return "Unknown"
	}
}

// Token is an unbreakable run of text. Tokens are never empty.
type Token struct {
	Text string
	Kind TokenKind
}

// IsOpenBracket reports whether r opens a bracket group.
func IsOpenBracket(r rune) bool { return r == '【' || r == '[' }

// IsCloseBracket reports whether r closes a bracket group.
func IsCloseBracket(r rune) bool { return r == '】' || r == ']' }

func isASCIIAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// classify returns the kind a rune starts outside of a bracket group.
func classify(r rune) TokenKind {
	switch {
	case IsOpenBracket(r):
		return TokenBracket
	case unicode.IsSpace(r):
		return TokenSpace
	case isASCIIAlpha(r):
		return TokenWord
	default:
		return TokenChar
	}
}

// Tokenize splits text into tokens and then breaks up any token wider than
// maxWidth, character by character. Concatenating the token texts always
// reproduces text exactly.
//
// A bracket group runs from an opener to the first closer; an unclosed group
// runs to the end of the text. Whitespace is never merged with neighbours.
func Tokenize(text string, m Measurer, maxWidth float64) []Token {
	raw := scan(text)
	tokens := make([]Token, 0, len(raw))
	for _, tok := range raw {
		if m.Measure(tok.Text) <= maxWidth {
			tokens = append(tokens, tok)
			continue
		}
		for _, part := range splitByWidth(tok.Text, m, maxWidth) {
			tokens = append(tokens, Token{Text: part, Kind: tok.Kind})
		}
	}
	return tokens
}

// scan is the width-independent classification pass. Bytes are copied from
// text as they are, so invalid UTF-8 survives the round trip.
func scan(text string) []Token {
	var (
		tokens []Token
		buf    strings.Builder
		kind   TokenKind
	)

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		piece := text[i : i+size]
		i += size

		if buf.Len() > 0 && kind == TokenBracket {
			buf.WriteString(piece)
			if IsCloseBracket(r) {
				tokens = appendToken(tokens, &buf, kind)
			}
			continue
		}

		k := classify(r)
		if buf.Len() > 0 && (k != TokenWord || kind != TokenWord) {
			tokens = appendToken(tokens, &buf, kind)
		}
		kind = k
		buf.WriteString(piece)

		// Spaces and single characters stand alone.
		if k == TokenSpace || k == TokenChar {
			tokens = appendToken(tokens, &buf, kind)
		}
	}
	return appendToken(tokens, &buf, kind)
}

// appendToken moves the buffered text onto tokens as one token of kind k.
func appendToken(tokens []Token, buf *strings.Builder, k TokenKind) []Token {
	if buf.Len() == 0 {
		return tokens
	}
	tokens = append(tokens, Token{Text: buf.String(), Kind: k})
	buf.Reset()
	return tokens
}

// splitByWidth packs the characters of s into chunks no wider than maxWidth.
// A single character wider than maxWidth becomes a chunk of its own.
func splitByWidth(s string, m Measurer, maxWidth float64) []string {
	var (
		parts []string
		chunk string
	)
	for _, char := range splitRunes(s) {
		trial := chunk + char
		if m.Measure(trial) <= maxWidth {
			chunk = trial
			continue
		}
		if chunk != "" {
			parts = append(parts, chunk)
		}
		chunk = char
	}
	if chunk != "" {
		parts = append(parts, chunk)
	}
	return parts
}
