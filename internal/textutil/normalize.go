// Package textutil holds the string normalization shared by the parser and
// the evaluators. Every case- and accent-insensitive comparison in geriassess
// goes through Norm so that "Dépendant", "dependant" and "DEPENDANT " compare
// equal.
package textutil

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// StripDiacritics removes combining marks after canonical decomposition.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Norm returns s without diacritics, trimmed and lower-cased.
func Norm(s string) string {
	return strings.ToLower(strings.TrimSpace(StripDiacritics(s)))
}

// Slug returns Norm(s) with every run of characters outside [a-z0-9]
// collapsed to a single dash.
func Slug(s string) string {
	return nonSlug.ReplaceAllString(Norm(s), "-")
}

// EqualFold reports whether a and b are equal once normalized.
func EqualFold(a, b string) bool {
	return Norm(a) == Norm(b)
}

// ContainsFold reports whether the normalized s contains the normalized sub.
func ContainsFold(s, sub string) bool {
	return strings.Contains(Norm(s), Norm(sub))
}

// EqualsAny reports whether s normalizes to any of the candidates.
func EqualsAny(s string, candidates ...string) bool {
	n := Norm(s)
	for _, c := range candidates {
		if n == Norm(c) {
			return true
		}
	}
	return false
}

// ParseList splits a cell on newlines or pipes, trims every entry and drops
// the empty ones.
func ParseList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '|'
	})
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
