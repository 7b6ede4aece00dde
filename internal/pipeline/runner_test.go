package pipeline_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marquee/internal/movies"
	"marquee/internal/notifications"
	"marquee/internal/pipeline"
	"marquee/internal/services"
)

type fakeResolver struct {
	refs   map[string]*movies.Reference
	errs   map[string]error
	panics map[string]bool
	hook   func(title string)
}

func (f *fakeResolver) Resolve(_ context.Context, title string) (*movies.Reference, error) {
	if f.hook != nil {
		f.hook(title)
	}
	if f.panics[title] {
		panic("selector engine exploded")
	}
	if err := f.errs[title]; err != nil {
		return nil, err
	}
	return f.refs[title], nil
}

type fakeExtractor struct {
	bundles map[string]movies.Bundle
	errs    map[string]error
}

func (f *fakeExtractor) Extract(_ context.Context, ref movies.Reference) (movies.Bundle, error) {
	if err := f.errs[ref.URL]; err != nil {
		return movies.Bundle{}, err
	}
	return f.bundles[ref.URL], nil
}

type memoryStore struct {
	outcomes []movies.Outcome
	runIDs   []string
	failOn   int
}

func (m *memoryStore) Append(ctx context.Context, outcome movies.Outcome) (int64, error) {
	if m.failOn > 0 && len(m.outcomes)+1 == m.failOn {
		return 0, services.Wrap(services.ErrStorage, "store", "append", "", errors.New("disk full"))
	}
	runID, _ := services.RequestIDFromContext(ctx)
	m.runIDs = append(m.runIDs, runID)
	m.outcomes = append(m.outcomes, outcome)
	return int64(len(m.outcomes)), nil
}

type recordingObserver struct {
	started  []string
	finished []movies.Status
}

func (o *recordingObserver) TitleStarted(_, _ int, title string) {
	o.started = append(o.started, title)
}

func (o *recordingObserver) TitleFinished(_, _ int, outcome movies.Outcome) {
	o.finished = append(o.finished, outcome.Status)
}

type recordingNotifier struct {
	started   int
	completed []notifications.RunStats
	errors    []error
}

func (n *recordingNotifier) NotifyRunStarted(_ context.Context, titles int) error {
	n.started = titles
	return nil
}

func (n *recordingNotifier) NotifyRunCompleted(_ context.Context, stats notifications.RunStats) error {
	n.completed = append(n.completed, stats)
	return nil
}

func (n *recordingNotifier) NotifyError(_ context.Context, err error, _ string) error {
	n.errors = append(n.errors, err)
	return nil
}

func (n *recordingNotifier) TestNotification(context.Context) error { return nil }

func fixedRunID() string { return "run-fixed" }

func newRunner(t *testing.T, resolver pipeline.Resolver, extractor pipeline.Extractor, store pipeline.Store, opts ...pipeline.Option) *pipeline.Runner {
	t.Helper()
	opts = append([]pipeline.Option{pipeline.WithRunID(fixedRunID)}, opts...)
	runner, err := pipeline.NewRunner(resolver, extractor, store, opts...)
	require.NoError(t, err)
	return runner
}

func TestRunStoresOneOutcomePerTitleInOrder(t *testing.T) {
	inception := &movies.Reference{URL: "https://www.imdb.com/title/tt1375666/", Year: 2010}
	resolver := &fakeResolver{
		refs: map[string]*movies.Reference{"Inception": inception},
		errs: map[string]error{"Heat": services.Wrap(services.ErrTimeout, "browser", "wait", "search results", nil)},
	}
	extractor := &fakeExtractor{bundles: map[string]movies.Bundle{
		inception.URL: {Rating: movies.Some("8.8")},
	}}
	store := &memoryStore{}
	observer := &recordingObserver{}
	notifier := &recordingNotifier{}

	runner := newRunner(t, resolver, extractor, store, pipeline.WithObserver(observer), pipeline.WithNotifier(notifier))
	summary, err := runner.Run(context.Background(), []string{"Inception", "NoSuchMovie123", "Heat"})
	require.NoError(t, err)

	require.Len(t, store.outcomes, 3)
	assert.Equal(t, "Inception", store.outcomes[0].Title)
	assert.Equal(t, movies.StatusSuccess, store.outcomes[0].Status)
	assert.Equal(t, movies.Some("8.8"), store.outcomes[0].Bundle.Rating)
	assert.Equal(t, movies.StatusNoMatch, store.outcomes[1].Status)
	assert.Equal(t, "No exact match found", store.outcomes[1].StatusText())
	assert.Equal(t, movies.StatusError, store.outcomes[2].Status)
	assert.Contains(t, store.outcomes[2].StatusText(), "error: ")
	assert.Equal(t, []string{"run-fixed", "run-fixed", "run-fixed"}, store.runIDs)

	assert.Equal(t, pipeline.Summary{RunID: "run-fixed", Total: 3, Succeeded: 1, NoMatch: 1, Failed: 1, Duration: summary.Duration}, summary)
	assert.Equal(t, []string{"Inception", "NoSuchMovie123", "Heat"}, observer.started)
	assert.Equal(t, []movies.Status{movies.StatusSuccess, movies.StatusNoMatch, movies.StatusError}, observer.finished)
	assert.Equal(t, 3, notifier.started)
	require.Len(t, notifier.completed, 1)
	assert.Equal(t, 1, notifier.completed[0].Failed)
}

func TestRunIsolatesPanics(t *testing.T) {
	resolver := &fakeResolver{panics: map[string]bool{"Boom": true}}
	store := &memoryStore{}

	summary, err := newRunner(t, resolver, &fakeExtractor{}, store).Run(context.Background(), []string{"Boom", "After"})
	require.NoError(t, err)

	require.Len(t, store.outcomes, 2)
	assert.Equal(t, movies.StatusError, store.outcomes[0].Status)
	assert.Equal(t, "error: panic: selector engine exploded", store.outcomes[0].StatusText())
	assert.Equal(t, movies.StatusNoMatch, store.outcomes[1].Status, "next title is still attempted")
	assert.Equal(t, 1, summary.Failed)
}

func TestRunExtractionFailureIsErrorRow(t *testing.T) {
	ref := &movies.Reference{URL: "https://www.imdb.com/title/tt0000001/"}
	resolver := &fakeResolver{refs: map[string]*movies.Reference{"Obscure": ref}}
	extractor := &fakeExtractor{errs: map[string]error{ref.URL: errors.New("open record page: 503")}}
	store := &memoryStore{}

	_, err := newRunner(t, resolver, extractor, store).Run(context.Background(), []string{"Obscure"})
	require.NoError(t, err)
	require.Len(t, store.outcomes, 1)
	assert.Equal(t, "error: open record page: 503", store.outcomes[0].StatusText())
}

func TestRunEmptyBundleIsSuccess(t *testing.T) {
	ref := &movies.Reference{URL: "https://www.imdb.com/title/tt0000002/"}
	resolver := &fakeResolver{refs: map[string]*movies.Reference{"Bare": ref}}
	store := &memoryStore{}

	summary, err := newRunner(t, resolver, &fakeExtractor{}, store).Run(context.Background(), []string{"Bare"})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Succeeded)
	assert.True(t, store.outcomes[0].Bundle.Empty())
}

func TestRunAbortsOnStoreFailure(t *testing.T) {
	store := &memoryStore{failOn: 2}
	notifier := &recordingNotifier{}

	summary, err := newRunner(t, &fakeResolver{}, &fakeExtractor{}, store, pipeline.WithNotifier(notifier)).
		Run(context.Background(), []string{"One", "Two", "Three"})
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrStorage)
	assert.Len(t, store.outcomes, 1)
	assert.Equal(t, 1, summary.Processed())
	require.Len(t, notifier.errors, 1)
	assert.Empty(t, notifier.completed)
}

func TestRunStopsWhenCancelledBetweenTitles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resolver := &fakeResolver{hook: func(title string) {
		if title == "Two" {
			cancel()
		}
	}}
	store := &memoryStore{}

	summary, err := newRunner(t, resolver, &fakeExtractor{}, store).Run(ctx, []string{"One", "Two", "Three"})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, store.outcomes, 1, "the interrupted title is not stored")
	assert.Equal(t, "One", store.outcomes[0].Title)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Processed())
}

func TestRunNoTitles(t *testing.T) {
	store := &memoryStore{}
	summary, err := newRunner(t, &fakeResolver{}, &fakeExtractor{}, store).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.Empty(t, store.outcomes)
}

func TestRunDurationUsesClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ticks := []time.Time{start, start.Add(90 * time.Second)}
	clock := func() time.Time {
		now := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return now
	}

	summary, err := newRunner(t, &fakeResolver{}, &fakeExtractor{}, &memoryStore{}, pipeline.WithClock(clock)).
		Run(context.Background(), []string{"Only"})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, summary.Duration)
}

func TestNewRunnerRequiresDependencies(t *testing.T) {
	_, err := pipeline.NewRunner(nil, &fakeExtractor{}, &memoryStore{})
	assert.Error(t, err)
	_, err = pipeline.NewRunner(&fakeResolver{}, nil, &memoryStore{})
	assert.Error(t, err)
	_, err = pipeline.NewRunner(&fakeResolver{}, &fakeExtractor{}, nil)
	assert.Error(t, err)
}
