package movies

import (
	"regexp"
	"strings"
)

var titleIDPattern = regexp.MustCompile(`/title/(tt\d+)`)

// Reference points at a single movie record on the site.
type Reference struct {
	URL string
	// Year is the release year parsed from the search result; 0 when unknown.
	Year int
}

// TitleID returns the site identifier (tt1234567) embedded in the record URL.
func (r Reference) TitleID() (string, bool) {
	return TitleIDFromURL(r.URL)
}

// TitleIDFromURL extracts the tt-prefixed identifier from a record URL.
func TitleIDFromURL(raw string) (string, bool) {
	match := titleIDPattern.FindStringSubmatch(raw)
	if len(match) < 2 {
		return "", false
	}
	return match[1], true
}

// Text is an optional scraped value kept exactly as displayed.
type Text struct {
	Value string
	Valid bool
}

// Some returns a present value. Blank input is treated as absent.
func Some(value string) Text {
	value = strings.TrimSpace(value)
	if value == "" {
		return Text{}
	}
	return Text{Value: value, Valid: true}
}

// Bundle holds the attributes scraped from one record. Every field is
// independently optional.
type Bundle struct {
	Rating          Text
	Popularity      Text
	Metascore       Text
	UserReviewCount Text
	// Genres is nil when the genre list could not be read.
	Genres []string
	// Reviews holds at most MaxReviews labeled review bodies, nil when absent.
	Reviews []string
}

// MaxReviews caps the number of featured reviews kept per record.
const MaxReviews = 5

const (
	genreSeparator  = ", "
	reviewSeparator = "\n---\n"
)

// Empty reports whether no attribute could be extracted.
func (b Bundle) Empty() bool {
	return !b.Rating.Valid && !b.Popularity.Valid && !b.Metascore.Valid &&
		!b.UserReviewCount.Valid && len(b.Genres) == 0 && len(b.Reviews) == 0
}

// GenreText joins genres for storage.
func (b Bundle) GenreText() Text {
	if len(b.Genres) == 0 {
		return Text{}
	}
	return Text{Value: strings.Join(b.Genres, genreSeparator), Valid: true}
}

// ReviewText joins the labeled reviews for storage.
func (b Bundle) ReviewText() Text {
	if len(b.Reviews) == 0 {
		return Text{}
	}
	return Text{Value: strings.Join(b.Reviews, reviewSeparator), Valid: true}
}

// SplitGenres reverses GenreText.
func SplitGenres(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, genreSeparator)
}

// SplitReviews reverses ReviewText.
func SplitReviews(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return strings.Split(value, reviewSeparator)
}
