package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"marquee/internal/logging"
	"marquee/internal/movies"
	"marquee/internal/notifications"
	"marquee/internal/services"
)

// Resolver finds the record for a title; nil means no qualifying match.
type Resolver interface {
	Resolve(ctx context.Context, title string) (*movies.Reference, error)
}

// Extractor reads the attribute bundle for a resolved record.
type Extractor interface {
	Extract(ctx context.Context, ref movies.Reference) (movies.Bundle, error)
}

// Store receives one outcome per title.
type Store interface {
	Append(ctx context.Context, outcome movies.Outcome) (int64, error)
}

// Observer receives progress callbacks. index is 1-based.
type Observer interface {
	TitleStarted(index, total int, title string)
	TitleFinished(index, total int, outcome movies.Outcome)
}

// Summary tallies a run.
type Summary struct {
	RunID     string
	Total     int
	Succeeded int
	NoMatch   int
	Failed    int
	Duration  time.Duration
}

// Processed returns the number of titles with a stored outcome.
func (s Summary) Processed() int {
	return s.Succeeded + s.NoMatch + s.Failed
}

// RunStats converts the summary for the completion notice.
func (s Summary) RunStats() notifications.RunStats {
	return notifications.RunStats{
		Total:     s.Total,
		Succeeded: s.Succeeded,
		NoMatch:   s.NoMatch,
		Failed:    s.Failed,
		Duration:  s.Duration,
	}
}

func (s *Summary) record(outcome movies.Outcome) {
	switch outcome.Status {
	case movies.StatusSuccess:
		s.Succeeded++
	case movies.StatusNoMatch:
		s.NoMatch++
	default:
		s.Failed++
	}
}

// Runner processes titles sequentially.
type Runner struct {
	resolver  Resolver
	extractor Extractor
	store     Store
	notifier  notifications.Service
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time
	newRunID  func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithNotifier sends run start, completion, and abort notices.
func WithNotifier(notifier notifications.Service) Option {
	return func(r *Runner) {
		if notifier != nil {
			r.notifier = notifier
		}
	}
}

// WithObserver attaches a progress observer.
func WithObserver(observer Observer) Option {
	return func(r *Runner) {
		r.observer = observer
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRunID overrides run identifier generation.
func WithRunID(fn func() string) Option {
	return func(r *Runner) {
		if fn != nil {
			r.newRunID = fn
		}
	}
}

// WithClock overrides the clock used for run duration.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner wires the processing loop.
func NewRunner(resolver Resolver, extractor Extractor, store Store, opts ...Option) (*Runner, error) {
	if resolver == nil {
		return nil, errors.New("pipeline: resolver is required")
	}
	if extractor == nil {
		return nil, errors.New("pipeline: extractor is required")
	}
	if store == nil {
		return nil, errors.New("pipeline: store is required")
	}
	r := &Runner{
		resolver:  resolver,
		extractor: extractor,
		store:     store,
		logger:    logging.NewNop(),
		now:       time.Now,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "pipeline")
	return r, nil
}

// Run processes every title in order and stores exactly one outcome for each.
// It returns early only when the store rejects a row or ctx is cancelled; the
// summary then covers the titles stored so far. A title interrupted by
// cancellation is not stored.
func (r *Runner) Run(ctx context.Context, titles []string) (Summary, error) {
	summary := Summary{RunID: r.newRunID(), Total: len(titles)}
	ctx = services.WithRequestID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	started := r.now()

	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("titles", len(titles)),
	)
	r.notify(logger, func(n notifications.Service) error {
		return n.NotifyRunStarted(ctx, len(titles))
	})

	for i, title := range titles {
		if err := ctx.Err(); err != nil {
			return r.abort(ctx, logger, summary, started, "run cancelled", err)
		}
		index := i + 1
		titleCtx := services.WithTitle(services.WithItemID(ctx, int64(index)), title)

		if r.observer != nil {
			r.observer.TitleStarted(index, len(titles), title)
		}
		outcome := r.Process(titleCtx, title)
		if err := ctx.Err(); err != nil {
			return r.abort(ctx, logger, summary, started, "run cancelled", err)
		}

		if _, err := r.store.Append(titleCtx, outcome); err != nil {
			wrapped := fmt.Errorf("store outcome for %q: %w", title, err)
			r.notify(logger, func(n notifications.Service) error {
				return n.NotifyError(context.WithoutCancel(ctx), wrapped, "result store")
			})
			return r.abort(ctx, logger, summary, started, "run aborted", wrapped)
		}
		summary.record(outcome)
		if r.observer != nil {
			r.observer.TitleFinished(index, len(titles), outcome)
		}
	}

	summary.Duration = r.now().Sub(started)
	logger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("no_match", summary.NoMatch),
		logging.Int("failed", summary.Failed),
		logging.Duration("duration", summary.Duration),
	)
	r.notify(logger, func(n notifications.Service) error {
		return n.NotifyRunCompleted(ctx, summary.RunStats())
	})
	return summary, nil
}

func (r *Runner) abort(ctx context.Context, logger *slog.Logger, summary Summary, started time.Time, msg string, err error) (Summary, error) {
	summary.Duration = r.now().Sub(started)
	logging.ErrorWithContext(logger, msg, "run_aborted",
		logging.Error(err),
		logging.Int("processed", summary.Processed()),
		logging.Int("remaining", summary.Total-summary.Processed()),
		logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
	)
	return summary, err
}

// Process resolves and extracts one title and classifies the result. It never
// returns an error: failures and panics become an error outcome.
func (r *Runner) Process(ctx context.Context, title string) (outcome movies.Outcome) {
	logger := logging.WithContext(ctx, r.logger)
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("panic: %v", rec)
			logging.ErrorWithContext(logger, "title processing panicked", "title_panic",
				logging.Error(err),
				logging.String(logging.FieldImpact, "title stored as error; run continues"),
			)
			outcome = movies.Failure(title, err)
		}
	}()

	ref, err := r.resolver.Resolve(services.WithStage(ctx, "resolve"), title)
	if err != nil {
		return r.failed(logger, title, "resolve", err)
	}
	if ref == nil {
		logger.Info("no exact match", logging.String(logging.FieldEventType, "title_no_match"))
		return movies.NoMatch(title)
	}

	bundle, err := r.extractor.Extract(services.WithStage(ctx, "extract"), *ref)
	if err != nil {
		return r.failed(logger, title, "extract", err)
	}
	logger.Info("title processed",
		logging.String(logging.FieldEventType, "title_success"),
		logging.String("record_url", ref.URL),
		logging.Int("release_year", ref.Year),
		logging.Bool("empty_bundle", bundle.Empty()),
	)
	return movies.Success(title, *ref, bundle)
}

func (r *Runner) failed(logger *slog.Logger, title, stage string, err error) movies.Outcome {
	logging.WarnWithContext(logger, "title failed", "title_failure",
		logging.String("failed_stage", stage),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, services.ErrorHint(err)),
		logging.String(logging.FieldImpact, "title stored as error; run continues"),
	)
	return movies.Failure(title, err)
}

func (r *Runner) notify(logger *slog.Logger, send func(notifications.Service) error) {
	if r.notifier == nil {
		return
	}
	if err := send(r.notifier); err != nil {
		logger.Debug("notification failed", logging.Error(err))
	}
}

// Discard is a Store that keeps nothing. It backs single-title lookups that
// should not touch the result database.
var Discard Store = discardStore{}

type discardStore struct{}

func (discardStore) Append(context.Context, movies.Outcome) (int64, error) { return 0, nil }
