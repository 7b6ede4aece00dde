package main

import (
	"log/slog"

	"marquee/internal/attributes"
	"marquee/internal/browser"
	"marquee/internal/config"
	"marquee/internal/identification"
	"marquee/internal/imdb"
)

type scraper struct {
	resolver  *identification.Resolver
	extractor *attributes.Extractor
}

// newScraper builds the resolver and extractor over one shared session.
func newScraper(cfg *config.Config, logger *slog.Logger) (*scraper, error) {
	session := browser.NewHTTPSession(
		cfg.RequestTimeout(),
		browser.WithUserAgent(cfg.Site.UserAgent),
		browser.WithAcceptLanguage(cfg.Site.AcceptLanguage),
		browser.WithLogger(logger),
	)
	site := imdb.NewSite(cfg.Site.BaseURL)

	resolver, err := identification.NewResolver(session, site, cfg.WaitTimeout(), logger)
	if err != nil {
		return nil, err
	}
	extractor, err := attributes.NewExtractor(session, site, cfg.WaitTimeout(), logger)
	if err != nil {
		return nil, err
	}
	return &scraper{resolver: resolver, extractor: extractor}, nil
}
