// Package tokenizer provides the text analysis shared by catalog ingestion
// and the in-memory index: word-boundary splitting, lowercasing and
// character n-grams. The bleve backend registers IsWordRune as its
// tokenizer so both backends agree on word boundaries.
package tokenizer

import (
	"strings"
	"unicode"
)

// Token represents a single normalised term and its position in the
// original text.
type Token struct {
	Term     string
	Position int
}

// IsWordRune reports whether r belongs inside a word.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Words splits text on non letter/digit boundaries and lowercases every
// word. Positions count words from zero.
func Words(text string) []Token {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !IsWordRune(r)
	})
	tokens := make([]Token, 0, len(words))
	for pos, word := range words {
		tokens = append(tokens, Token{
			Term:     strings.ToLower(word),
			Position: pos,
		})
	}
	return tokens
}

// Keyword returns the whole value as one token, untouched.
func Keyword(text string) []Token {
	if text == "" {
		return nil
	}
	return []Token{{Term: text, Position: 0}}
}

// NGrams expands every word of text into its character n-grams of length
// minN..maxN, counted in runes. All grams of a word share the word's
// position.
func NGrams(text string, minN, maxN int) []Token {
	words := Words(text)
	tokens := make([]Token, 0, len(words)*maxN)
	for _, w := range words {
		runes := []rune(w.Term)
		for start := range runes {
			for n := minN; n <= maxN && start+n <= len(runes); n++ {
				tokens = append(tokens, Token{
					Term:     string(runes[start : start+n]),
					Position: w.Position,
				})
			}
		}
	}
	return tokens
}
