package identification

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

var yearPattern = regexp.MustCompile(`(?:^|[^0-9])([0-9]{4})(?:[^0-9]|$)`)

func fold(s string) string {
	return cases.Fold().String(s)
}

// normalizeTitle prepares a title for exact comparison: surrounding space is
// dropped and case is folded. Inner spacing, punctuation, and articles are
// kept, so "Star  Wars" never equals "Star Wars" and "The Thing" never equals
// "Thing".
func normalizeTitle(input string) string {
	return fold(strings.TrimSpace(input))
}

// isTVAnnotation reports whether a result's type annotation marks it as a
// television entry ("TV Series", "TV Movie", "TV Mini Series", ...).
func isTVAnnotation(annotation string) bool {
	return strings.Contains(fold(annotation), "tv")
}

// extractYear returns the first four-digit run not adjoining other digits, or 0.
func extractYear(text string) int {
	match := yearPattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return 0
	}
	year, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return year
}

// withoutTitle removes the first occurrence of title from text so numbers and
// words inside the title itself do not influence year or type detection.
func withoutTitle(text, title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return text
	}
	return strings.Replace(text, title, " ", 1)
}
