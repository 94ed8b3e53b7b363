// Package textnorm turns free text into the canonical term sequence shared by
// query text, catalog text and taxonomy keywords.
package textnorm

import (
	"strings"

	porterstemmer "github.com/blevesearch/go-porterstemmer"
)

// Tokenize lower-cases text and splits it into runs of word characters:
// ASCII letters, basic Cyrillic letters, digits and underscore. Everything
// else, including accented Latin letters, is a separator.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9', r == '_':
		return true
	case r >= 'А' && r <= 'я':
		return true
	}
	return false
}

// Stem reduces a single lower-case token to its Porter stem.
func Stem(token string) string {
	return porterstemmer.StemString(token)
}

// Normalize tokenizes text and stems every token. Empty input yields an
// empty (nil) sequence.
func Normalize(text string) []string {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = Stem(tok)
	}
	return out
}

// First returns the first normalized term of text, or "" when text has none.
func First(text string) string {
	for _, tok := range Tokenize(text) {
		return Stem(tok)
	}
	return ""
}
