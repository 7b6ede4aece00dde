package imdb

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the production site root.
const DefaultBaseURL = "https://www.imdb.com"

// Site builds page addresses relative to a base URL so tests can point the
// pipeline at a local server.
type Site struct {
	base *url.URL
}

// NewSite parses baseURL, falling back to DefaultBaseURL when it is blank or invalid.
func NewSite(baseURL string) Site {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	parsed, err := url.Parse(baseURL)
	if baseURL == "" || err != nil || parsed.Host == "" {
		parsed, _ = url.Parse(DefaultBaseURL)
	}
	return Site{base: parsed}
}

// BaseURL returns the site root without a trailing slash.
func (s Site) BaseURL() string {
	return strings.TrimRight(s.base.String(), "/")
}

// FindURL returns the search page restricted to feature films.
func (s Site) FindURL(title string) string {
	return s.BaseURL() + "/find/?q=" + url.QueryEscape(strings.TrimSpace(title)) + "&s=tt&ttype=ft"
}

// ReviewsURL returns the review listing for titleID sorted by helpfulness.
func (s Site) ReviewsURL(titleID string) string {
	return s.BaseURL() + "/title/" + titleID + "/reviews/?sort=helpfulnessScore,desc"
}

// Absolute resolves a possibly relative href against the site root.
func (s Site) Absolute(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		if strings.HasPrefix(href, "/") {
			return s.BaseURL() + href
		}
		return href
	}
	return s.base.ResolveReference(ref).String()
}
