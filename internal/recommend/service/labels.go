package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// foldLabel prepares a label for case-insensitive comparison: NFKC, lower case,
// control characters dropped, inner whitespace collapsed.
func foldLabel(s string) string {
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return unicode.ToLower(r)
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// containsFold reports whether sub occurs in s ignoring case and width differences.
func containsFold(s, sub string) bool {
	return strings.Contains(foldLabel(s), foldLabel(sub))
}
