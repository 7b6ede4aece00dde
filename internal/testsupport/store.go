package testsupport

import (
	"context"
	"testing"

	"marquee/internal/config"
	"marquee/internal/movies"
	"marquee/internal/results"
)

// MustOpenStore opens a results.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *results.Store {
	t.Helper()

	store, err := results.Open(cfg.DatabasePath())
	if err != nil {
		t.Fatalf("results.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustAppend stores each outcome and fails the test on the first error.
func MustAppend(t testing.TB, store *results.Store, outcomes ...movies.Outcome) {
	t.Helper()

	for _, outcome := range outcomes {
		if _, err := store.Append(context.Background(), outcome); err != nil {
			t.Fatalf("store.Append(%q): %v", outcome.Title, err)
		}
	}
}

// SampleOutcomes returns one outcome of each status with realistic values.
func SampleOutcomes() []movies.Outcome {
	return []movies.Outcome{
		movies.Success("Inception", movies.Reference{URL: "https://www.imdb.com/title/tt1375666/", Year: 2010}, movies.Bundle{
			Rating:          movies.Some("8.8"),
			Popularity:      movies.Some("87"),
			Metascore:       movies.Some("74"),
			UserReviewCount: movies.Some("4.8K"),
			Genres:          []string{"Action", "Adventure", "Sci-Fi"},
			Reviews:         []string{"Review 1: A mind-bending masterpiece.", "Review 2: Dense, loud, brilliant."},
		}),
		movies.NoMatch("Unknown Film"),
		movies.Failure("Heat", errFixture("timed out waiting for search results")),
	}
}

type errFixture string

func (e errFixture) Error() string { return string(e) }
