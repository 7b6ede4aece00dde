package attributes

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

// textField is one optional scalar on the title page. Selectors are tried in
// order and the first non-blank text wins.
type textField struct {
	name      string
	selectors []string
	assign    func(*movies.Bundle, movies.Text)
}

var textFields = []textField{
	{
		name:      "rating",
		selectors: []string{imdb.CurrentRating, imdb.LegacyRating},
		assign:    func(b *movies.Bundle, v movies.Text) { b.Rating = v },
	},
	{
		name:      "popularity",
		selectors: []string{imdb.CurrentPopularity, imdb.LegacyPopularity},
		assign:    func(b *movies.Bundle, v movies.Text) { b.Popularity = v },
	},
	{
		name:      "metascore",
		selectors: []string{imdb.CurrentMetascore, imdb.LegacyMetascore},
		assign:    func(b *movies.Bundle, v movies.Text) { b.Metascore = v },
	},
	{
		name:      "user_reviews",
		selectors: []string{imdb.CurrentUserReviews, imdb.LegacyUserReviews},
		assign:    func(b *movies.Bundle, v movies.Text) { b.UserReviewCount = v },
	},
}

var genreSelectors = []string{imdb.CurrentGenres, imdb.InterestGenres, imdb.LegacyGenres}

// reviewLayout pairs a review card selector with the body selector inside it.
type reviewLayout struct {
	card string
	body string
}

var reviewLayouts = []reviewLayout{
	{card: imdb.CurrentReviewCard, body: imdb.CurrentReviewBody},
	{card: imdb.LegacyReviewCard, body: imdb.LegacyReviewBody},
}

// Extractor reads the attribute bundle for a resolved record.
type Extractor struct {
	session browser.Session
	site    imdb.Site
	wait    time.Duration
	logger  *slog.Logger
}

// NewExtractor builds an extractor that browses with session.
func NewExtractor(session browser.Session, site imdb.Site, wait time.Duration, logger *slog.Logger) (*Extractor, error) {
	if session == nil {
		return nil, errors.New("extractor: browser session is nil")
	}
	if wait <= 0 {
		wait = 10 * time.Second
	}
	return &Extractor{
		session: session,
		site:    site,
		wait:    wait,
		logger:  logging.NewComponentLogger(logger, "extractor"),
	}, nil
}

// Extract loads the record page and reads every attribute independently. Only
// a failure to load the record page itself is returned as an error; any
// individual field, the genre list, or the reviews may come back absent.
func (e *Extractor) Extract(ctx context.Context, ref movies.Reference) (movies.Bundle, error) {
	logger := logging.WithContext(ctx, e.logger)

	if err := e.session.Navigate(ctx, ref.URL); err != nil {
		return movies.Bundle{}, fmt.Errorf("open record page: %w", err)
	}
	if err := e.session.WaitFor(ctx, imdb.DetailReady, e.wait); err != nil {
		return movies.Bundle{}, fmt.Errorf("wait for record page: %w", err)
	}
	doc, err := e.session.Document()
	if err != nil {
		return movies.Bundle{}, services.Wrap(services.ErrNavigation, "extract", "read record page", "", err)
	}

	var bundle movies.Bundle
	missing := make([]string, 0, len(textFields)+2)
	for _, field := range textFields {
		value := movies.Some(firstText(doc, field.selectors))
		field.assign(&bundle, value)
		if !value.Valid {
			missing = append(missing, field.name)
		}
	}
	bundle.Genres = firstList(doc, genreSelectors)
	if bundle.Genres == nil {
		missing = append(missing, "genres")
	}

	bundle.Reviews = e.reviews(ctx, logger, ref)
	if bundle.Reviews == nil {
		missing = append(missing, "reviews")
	}

	logger.Info("attributes extracted",
		logging.String("url", ref.URL),
		logging.Int("genres", len(bundle.Genres)),
		logging.Int("reviews", len(bundle.Reviews)),
		logging.String("missing", strings.Join(missing, ",")),
	)
	return bundle, nil
}

// reviews returns up to movies.MaxReviews labeled review bodies. Any failure
// yields nil; reviews never fail the record.
func (e *Extractor) reviews(ctx context.Context, logger *slog.Logger, ref movies.Reference) []string {
	titleID, ok := ref.TitleID()
	if !ok {
		logger.Debug("reviews skipped: no title id in record url", logging.String("url", ref.URL))
		return nil
	}
	reviewsURL := e.site.ReviewsURL(titleID)
	if err := e.session.Navigate(ctx, reviewsURL); err != nil {
		e.warnReviews(logger, reviewsURL, err)
		return nil
	}
	if err := e.session.WaitFor(ctx, imdb.ReviewsReady, e.wait); err != nil {
		e.warnReviews(logger, reviewsURL, err)
		return nil
	}
	doc, err := e.session.Document()
	if err != nil {
		e.warnReviews(logger, reviewsURL, err)
		return nil
	}
	return rankedReviews(doc)
}

func (e *Extractor) warnReviews(logger *slog.Logger, url string, err error) {
	logging.WarnWithContext(logger, "reviews unavailable", "reviews_unavailable",
		logging.String("url", url),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
		logging.String(logging.FieldImpact, "row stored without featured reviews"),
	)
}

// rankedReviews labels the first MaxReviews cards by their 1-based rank.
// Cards with an empty body are skipped without renumbering the rest.
func rankedReviews(doc *goquery.Document) []string {
	for _, layout := range reviewLayouts {
		cards := doc.Find(layout.card)
		if cards.Length() == 0 {
			continue
		}
		var out []string
		cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
			if i >= movies.MaxReviews {
				return false
			}
			body := strings.TrimSpace(card.Find(layout.body).First().Text())
			if body != "" {
				out = append(out, fmt.Sprintf("Review %d: %s", i+1, body))
			}
			return true
		})
		return out
	}
	return nil
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		text := collapseSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return ""
}

func firstList(doc *goquery.Document, selectors []string) []string {
	for _, selector := range selectors {
		var values []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if text := collapseSpace(s.Text()); text != "" {
				values = append(values, text)
			}
		})
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
