package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips combining marks so that "García Márquez"
// and "garcia marquez" index to the same terms.
// "Saint-Exupéry" -> "saint-exupery".
func Fold(s string) string {
	// Decompose accented characters.
	s = norm.NFKD.String(s)

	// Drop the combining marks left behind.
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Mn, r) {
			return -1
		}
		return r
	}, s)

	return strings.ToLower(norm.NFC.String(s))
}
