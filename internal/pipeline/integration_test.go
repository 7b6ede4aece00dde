package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marquee/internal/attributes"
	"marquee/internal/browser/browsertest"
	"marquee/internal/identification"
	"marquee/internal/imdb"
	"marquee/internal/pipeline"
	"marquee/internal/testsupport"
)

func readFixture(t *testing.T, pkg, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", pkg, "testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestPipelineWithCannedSite(t *testing.T) {
	site := imdb.NewSite(imdb.DefaultBaseURL)
	recordURL := "https://www.imdb.com/title/tt1375666/?ref_=fn_ft_tt_1"
	session := browsertest.New(map[string]string{
		site.FindURL("Inception"):    readFixture(t, "identification", "find_inception.html"),
		recordURL:                    readFixture(t, "attributes", "title_inception.html"),
		site.ReviewsURL("tt1375666"): readFixture(t, "attributes", "reviews_inception.html"),
		site.FindURL("NoSuchMovie123"): `<html><body>
<section data-testid="find-results-section-title"><ul class="ipc-metadata-list">
<li class="ipc-metadata-list-summary-item"><a class="ipc-metadata-list-summary-item__t" href="/title/tt9999999/">NoSuchMovie1234</a>
<span class="ipc-metadata-list-summary-item__li">2019</span></li>
</ul></section></body></html>`,
	})

	resolver, err := identification.NewResolver(session, site, time.Second, nil)
	require.NoError(t, err)
	extractor, err := attributes.NewExtractor(session, site, time.Second, nil)
	require.NoError(t, err)
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	runner, err := pipeline.NewRunner(resolver, extractor, store, pipeline.WithRunID(fixedRunID))
	require.NoError(t, err)
	summary, err := runner.Run(context.Background(), []string{"Inception", "NoSuchMovie123", "Unlisted Film"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.NoMatch)
	assert.Equal(t, 1, summary.Failed)

	rows, err := store.All(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	inception := rows[0]
	assert.Equal(t, "Inception", inception.Title.Value)
	assert.Equal(t, "success", inception.Status.Value)
	assert.Equal(t, "8.8", inception.Rating.Value)
	assert.Equal(t, "Action, Adventure, Sci-Fi", inception.Genre.Value)
	assert.Equal(t, recordURL, inception.RecordURL.Value)
	assert.Equal(t, 2010, inception.ReleaseYear)
	assert.Equal(t, "run-fixed", inception.RunID.Value)
	assert.Contains(t, inception.FeaturedReviews.Value, "Review 1: ")

	assert.Equal(t, "NoSuchMovie123", rows[1].Title.Value)
	assert.Equal(t, "No exact match found", rows[1].Status.Value)
	assert.False(t, rows[1].Rating.Valid)

	assert.Contains(t, rows[2].Status.Value, "error: ")
}
