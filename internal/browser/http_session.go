package browser

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"marquee/internal/logging"
	"marquee/internal/services"
)

const maxPageBytes = 8 << 20

// HTTPSession renders pages by fetching them over HTTP and parsing the markup
// with goquery. A fetched page is static, so WaitFor checks the loaded
// document once unless re-fetching is enabled with WithRefetchInterval.
type HTTPSession struct {
	client          *http.Client
	userAgent       string
	acceptLanguage  string
	refetchInterval time.Duration
	logger          *slog.Logger

	url string
	doc *goquery.Document
}

var _ Session = (*HTTPSession)(nil)

// Option configures an HTTPSession.
type Option func(*HTTPSession)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPSession) {
		if client != nil {
			s.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(s *HTTPSession) {
		s.userAgent = strings.TrimSpace(ua)
	}
}

// WithAcceptLanguage sets the Accept-Language header so the site renders English labels.
func WithAcceptLanguage(value string) Option {
	return func(s *HTTPSession) {
		s.acceptLanguage = strings.TrimSpace(value)
	}
}

// WithRefetchInterval makes WaitFor re-fetch the current page at interval
// until the selector appears or the wait times out. Zero disables re-fetching.
func WithRefetchInterval(interval time.Duration) Option {
	return func(s *HTTPSession) {
		if interval >= 0 {
			s.refetchInterval = interval
		}
	}
}

// WithLogger attaches a logger for page fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *HTTPSession) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewHTTPSession creates a session with a bounded request timeout.
func NewHTTPSession(requestTimeout time.Duration, opts ...Option) *HTTPSession {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	s := &HTTPSession{
		client: &http.Client{Timeout: requestTimeout},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "browser")
	return s
}

// Navigate fetches url and makes it the current page.
func (s *HTTPSession) Navigate(ctx context.Context, url string) error {
	doc, err := s.fetch(ctx, url)
	if err != nil {
		return err
	}
	s.url = url
	s.doc = doc
	return nil
}

// WaitFor reports whether selector matches the current page. Without a
// refetch interval a missing selector fails at once with a timeout-marked
// error; with one, the page is re-fetched until timeout elapses.
func (s *HTTPSession) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if s.doc == nil {
		return services.Wrap(services.ErrNavigation, "browser", "wait", "no page loaded", nil)
	}
	if s.refetchInterval <= 0 {
		if s.doc.Find(selector).Length() > 0 {
			return nil
		}
		msg := fmt.Sprintf("%s not present on %s", selector, s.url)
		return services.Wrap(services.ErrTimeout, "browser", "wait", msg, nil)
	}
	deadline := time.Now().Add(timeout)
	var lastErr error
	for {
		if s.doc != nil && s.doc.Find(selector).Length() > 0 {
			return nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			msg := fmt.Sprintf("%s not visible on %s after %s", selector, s.url, timeout)
			return services.Wrap(services.ErrTimeout, "browser", "wait", msg, lastErr)
		}
		timer := time.NewTimer(min(s.refetchInterval, remaining))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		doc, err := s.fetch(ctx, s.url)
		if err != nil {
			lastErr = err
			s.logger.Debug("page refresh failed while waiting", logging.String("url", s.url), logging.Error(err))
			continue
		}
		s.doc = doc
	}
}

// Document returns the current page.
func (s *HTTPSession) Document() (*goquery.Document, error) {
	if s.doc == nil {
		return nil, errors.New("browser: no page loaded")
	}
	return s.doc, nil
}

// URL returns the current page address.
func (s *HTTPSession) URL() string {
	return s.url
}

func (s *HTTPSession) fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, services.Wrap(services.ErrNavigation, "browser", "navigate", "build request", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if s.acceptLanguage != "" {
		req.Header.Set("Accept-Language", s.acceptLanguage)
	}

	started := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrNavigation, "browser", "navigate", url, err)
	}
	defer resp.Body.Close()

	s.logger.Debug("page fetched",
		logging.String("url", url),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		msg := fmt.Sprintf("GET %s returned %s", url, resp.Status)
		return nil, services.Wrap(statusMarker(resp.StatusCode), "browser", "navigate", msg, nil)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, services.Wrap(services.ErrNavigation, "browser", "parse", url, err)
	}
	return doc, nil
}

func statusMarker(code int) error {
	switch {
	case code == http.StatusNotFound || code == http.StatusGone:
		return services.ErrNotFound
	case code == http.StatusTooManyRequests || code >= 500:
		return services.ErrTransient
	default:
		return services.ErrNavigation
	}
}
