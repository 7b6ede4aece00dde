package identification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"marquee/internal/browser"
	"marquee/internal/imdb"
	"marquee/internal/logging"
	"marquee/internal/movies"
	"marquee/internal/services"
)

// candidate is one rendered search result before qualification.
type candidate struct {
	title      string
	annotation string
	href       string
	text       string
}

// layout enumerates candidates for one generation of the search page.
type layout struct {
	name      string
	enumerate func(doc *goquery.Document) []candidate
}

// searchLayouts are tried in order; a later layout is consulted only when the
// earlier ones produced no qualifying candidate.
var searchLayouts = []layout{
	{name: "current", enumerate: currentCandidates},
	{name: "legacy", enumerate: legacyCandidates},
}

// Resolver maps a free-text title to at most one record reference.
type Resolver struct {
	session browser.Session
	site    imdb.Site
	wait    time.Duration
	logger  *slog.Logger
}

// NewResolver builds a resolver that browses with session.
func NewResolver(session browser.Session, site imdb.Site, wait time.Duration, logger *slog.Logger) (*Resolver, error) {
	if session == nil {
		return nil, errors.New("resolver: browser session is nil")
	}
	if wait <= 0 {
		wait = 10 * time.Second
	}
	return &Resolver{
		session: session,
		site:    site,
		wait:    wait,
		logger:  logging.NewComponentLogger(logger, "resolver"),
	}, nil
}

// Resolve searches for title and returns the qualifying record with the
// latest release year. A nil reference with a nil error means no result
// matched exactly. Errors are navigation or wait failures.
func (r *Resolver) Resolve(ctx context.Context, title string) (*movies.Reference, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, nil
	}
	logger := logging.WithContext(ctx, r.logger)

	findURL := r.site.FindURL(title)
	if err := r.session.Navigate(ctx, findURL); err != nil {
		return nil, fmt.Errorf("open search page: %w", err)
	}
	if err := r.session.WaitFor(ctx, imdb.SearchReady, r.wait); err != nil {
		return nil, fmt.Errorf("wait for search results: %w", err)
	}
	doc, err := r.session.Document()
	if err != nil {
		return nil, services.Wrap(services.ErrNavigation, "resolve", "read search page", "", err)
	}

	query := normalizeTitle(title)
	for _, l := range searchLayouts {
		candidates := l.enumerate(doc)
		matches := r.qualify(logger, query, candidates)
		logger.Debug("search layout evaluated",
			logging.String("layout", l.name),
			logging.Int("candidates", len(candidates)),
			logging.Int("qualifying", len(matches)),
		)
		if len(matches) == 0 {
			continue
		}
		best := selectLatest(matches)
		logger.Info("record resolved",
			logging.String("layout", l.name),
			logging.String("url", best.URL),
			logging.Int("year", best.Year),
			logging.Int("exact_matches", len(matches)),
		)
		return &best, nil
	}

	logger.Info("no exact match", logging.String("search_url", findURL))
	return nil, nil
}

func (r *Resolver) qualify(logger *slog.Logger, query string, candidates []candidate) []movies.Reference {
	matches := make([]movies.Reference, 0, len(candidates))
	for idx, c := range candidates {
		if normalizeTitle(c.title) != query {
			continue
		}
		if isTVAnnotation(c.annotation) {
			logger.Debug("exact title skipped as television entry",
				logging.Int("result_index", idx),
				logging.String("annotation", strings.TrimSpace(c.annotation)),
			)
			continue
		}
		href := r.site.Absolute(c.href)
		if href == "" {
			continue
		}
		matches = append(matches, movies.Reference{
			URL:  href,
			Year: extractYear(withoutTitle(c.text, c.title)),
		})
	}
	return matches
}

// selectLatest returns the reference with the largest year. Ties keep the
// earliest rendered result, so the outcome is deterministic.
func selectLatest(matches []movies.Reference) movies.Reference {
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Year > best.Year {
			best = m
		}
	}
	return best
}

func currentCandidates(doc *goquery.Document) []candidate {
	var out []candidate
	doc.Find(imdb.CurrentResultItem).Each(func(_ int, item *goquery.Selection) {
		anchor := item.Find(imdb.CurrentResultTitle).First()
		if anchor.Length() == 0 {
			return
		}
		href, _ := anchor.Attr("href")
		out = append(out, candidate{
			title:      anchor.Text(),
			annotation: item.Find(imdb.CurrentResultType).Text(),
			href:       href,
			text:       item.Text(),
		})
	})
	return out
}

func legacyCandidates(doc *goquery.Document) []candidate {
	var out []candidate
	doc.Find(imdb.LegacyResultRow).Each(func(_ int, row *goquery.Selection) {
		anchor := row.Find(imdb.LegacyResultTitle).First()
		if anchor.Length() == 0 {
			return
		}
		href, _ := anchor.Attr("href")
		meta := row.Find(imdb.LegacyResultMeta).First().Text()
		out = append(out, candidate{
			title:      anchor.Text(),
			annotation: withoutTitle(meta, anchor.Text()),
			href:       href,
			text:       meta,
		})
	})
	return out
}
