// Package names canonicalizes company names for domain guessing and brand
// matching.
package names

import (
	"strings"
	"unicode"
)

// stopWords are corporate suffixes, glue words and generic qualifiers that
// carry no brand signal. Kept deliberately short: over-stripping turns real
// brands into empty names.
var stopWords = map[string]struct{}{
	"limited":       {},
	"ltd":           {},
	"plc":           {},
	"llp":           {},
	"llc":           {},
	"inc":           {},
	"incorporated":  {},
	"corp":          {},
	"corporation":   {},
	"company":       {},
	"co":            {},
	"group":         {},
	"holdings":      {},
	"the":           {},
	"and":           {},
	"of":            {},
	"digital":       {},
	"solutions":     {},
	"services":      {},
	"international": {},
	"uk":            {},
	"gb":            {},
	"britain":       {},
	"england":       {},
	"scotland":      {},
	"wales":         {},
}

// Normalize lowercases a company name, strips punctuation (letters, digits,
// internal hyphens and spaces survive), collapses whitespace and removes
// stop words. It returns "" when nothing meaningful remains; callers must
// treat that as "cannot generate candidates".
func Normalize(raw string) string {
	return strings.Join(Tokens(raw), " ")
}

// Tokens returns the normalized name as its individual words, in order.
func Tokens(raw string) []string {
	var b strings.Builder
	for _, r := range strings.ToLower(raw) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
		// Everything else is punctuation and is dropped in place, so
		// "B.T." becomes "bt" rather than two stray tokens.
	}

	var out []string
	for _, tok := range strings.Fields(b.String()) {
		tok = strings.Trim(tok, "-")
		if tok == "" {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// IsStopWord reports whether the given lowercase word is on the stop list.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
