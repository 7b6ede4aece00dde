// Package browsertest provides an in-memory browser.Session serving canned pages.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"marquee/internal/browser"
	"marquee/internal/services"
)

// Session serves HTML from Pages keyed by exact URL. Navigating to a URL in
// Failures returns that error; any other unknown URL is a navigation error.
// WaitFor never sleeps: a missing selector fails immediately with a timeout error.
type Session struct {
	Pages    map[string]string
	Failures map[string]error
	// Panics makes Navigate panic for the listed URLs.
	Panics map[string]bool
	Visits []string

	url string
	doc *goquery.Document
}

var _ browser.Session = (*Session)(nil)

// New returns a session serving the provided pages.
func New(pages map[string]string) *Session {
	return &Session{Pages: pages, Failures: map[string]error{}, Panics: map[string]bool{}}
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.Visits = append(s.Visits, url)
	if s.Panics[url] {
		panic(fmt.Sprintf("browsertest: panic navigating to %s", url))
	}
	if err, ok := s.Failures[url]; ok {
		return err
	}
	html, ok := s.Pages[url]
	if !ok {
		return services.Wrap(services.ErrNavigation, "browser", "navigate", "no canned page for "+url, nil)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return err
	}
	s.url = url
	s.doc = doc
	return nil
}

func (s *Session) WaitFor(_ context.Context, selector string, timeout time.Duration) error {
	if s.doc == nil {
		return errors.New("browsertest: no page loaded")
	}
	if s.doc.Find(selector).Length() > 0 {
		return nil
	}
	msg := fmt.Sprintf("%s not visible on %s after %s", selector, s.url, timeout)
	return services.Wrap(services.ErrTimeout, "browser", "wait", msg, nil)
}

func (s *Session) Document() (*goquery.Document, error) {
	if s.doc == nil {
		return nil, errors.New("browsertest: no page loaded")
	}
	return s.doc, nil
}

func (s *Session) URL() string {
	return s.url
}
