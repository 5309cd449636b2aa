// Package similarity scores how close two names are using the Sørensen–Dice
// coefficient over character bigrams of their normalized forms.
package similarity

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// combiningMarks is the Combining Diacritical Marks block (U+0300–U+036F).
var combiningMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// Normalize lowercases s, strips combining accents and collapses whitespace
// runs into single spaces (e.g. "  Café   DEL Mar " -> "cafe del mar").
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// A transform.Chain carries state, so one is built per call to keep
	// Normalize safe for concurrent searches.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	stripped, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		stripped = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(stripped), " ")
}

// Bigrams returns the overlapping two-rune substrings of s, left to right,
// repeats included. Strings shorter than two runes yield themselves as the
// only element so that very short names still have something to compare.
func Bigrams(s string) []string {
	r := []rune(s)
	if len(r) < 2 {
		return []string{s}
	}
	out := make([]string, 0, len(r)-1)
	for i := 0; i < len(r)-1; i++ {
		out = append(out, string(r[i:i+2]))
	}
	return out
}
