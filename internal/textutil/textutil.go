// Package textutil holds the case-folding and tokenization rules shared by
// the pipeline stages.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Fold returns s under full Unicode case folding, for caseless comparison
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether substr is within s, ignoring case
func ContainsFold(s, substr string) bool {
	return strings.Contains(Fold(s), Fold(substr))
}

// Lower lowercases s using language-neutral rules
func Lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// IsWordRune reports whether r can be part of a word. Word boundaries fall
// between a word rune and anything else.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r)
}

// Tokens splits s on whitespace, strips leading and trailing punctuation and
// symbols from each field and lowercases it. Fields made only of punctuation
// produce no token.
func Tokens(s string) []string {
	fields := strings.Fields(s)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if f == "" {
			continue
		}
		tokens = append(tokens, Lower(f))
	}
	return tokens
}
