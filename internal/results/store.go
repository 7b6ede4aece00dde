package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"marquee/internal/logging"
	"marquee/internal/movies"
	"marquee/internal/services"
)

// Store persists one row per processed title in SQLite. Rows are append-only
// and keep insertion order through the autoincrement id.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Option configures a Store.
type Option func(*Store)

// WithLogger attaches a logger for migration and write diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the processed_at timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open creates or connects to the result database at path, dropping a legacy
// table layout and applying pending migrations.
func Open(path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "store", "open", "database path is empty", nil)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, services.Wrap(services.ErrStorage, "store", "open", "create output directory", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "store", "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrStorage, "store", "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := newStore(db, path, opts...)
	if err := store.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, services.Wrap(services.ErrStorage, "store", "migrate", "", err)
	}
	return store, nil
}

func newStore(db *sql.DB, path string, opts ...Option) *Store {
	s := &Store{db: db, path: path, logger: logging.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "store")
	return s
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close checkpoints the WAL into the main file and closes the connection so
// the database file is complete when attached to a report.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	if _, err := s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		s.logger.Debug("wal checkpoint failed", logging.Error(err))
	}
	return s.db.Close()
}

// Checkpoint flushes the write-ahead log into the main database file.
func (s *Store) Checkpoint(ctx context.Context) error {
	if _, err := s.db.ExecContext(ensureContext(ctx), "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return services.Wrap(services.ErrStorage, "store", "checkpoint", "", err)
	}
	return nil
}

// Append stores one outcome and returns its row id. The run identifier is
// taken from the context when present.
func (s *Store) Append(ctx context.Context, outcome movies.Outcome) (int64, error) {
	ctx = ensureContext(ctx)
	runID, _ := services.RequestIDFromContext(ctx)

	var recordURL, releaseYear any
	if outcome.Reference != nil {
		recordURL = nullableString(outcome.Reference.URL)
		if outcome.Reference.Year > 0 {
			releaseYear = outcome.Reference.Year
		}
	}
	b := outcome.Bundle

	res, err := s.execWithRetry(ctx,
		`INSERT INTO movies (
            title, rating, popularity, metascore, genre, featured_reviews, user_reviews, status,
            record_url, release_year, run_id, processed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		outcome.Title,
		nullableText(b.Rating),
		nullableText(b.Popularity),
		nullableText(b.Metascore),
		nullableText(b.GenreText()),
		nullableText(b.ReviewText()),
		nullableText(b.UserReviewCount),
		outcome.StatusText(),
		recordURL,
		releaseYear,
		nullableString(runID),
		s.now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "store", "append", outcome.Title, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, services.Wrap(services.ErrStorage, "store", "append", "read row id", err)
	}
	return id, nil
}

// All returns every stored row in insertion order.
func (s *Store) All(ctx context.Context) ([]Row, error) {
	return s.query(ctx, "SELECT "+rowColumns+" FROM movies ORDER BY id")
}

// Recent returns the last limit rows in insertion order.
func (s *Store) Recent(ctx context.Context, limit int) ([]Row, error) {
	if limit <= 0 {
		return s.All(ctx)
	}
	return s.query(ctx, "SELECT "+rowColumns+" FROM (SELECT * FROM movies ORDER BY id DESC LIMIT ?) ORDER BY id", limit)
}

// ByRun returns the rows written by one run in insertion order.
func (s *Store) ByRun(ctx context.Context, runID string) ([]Row, error) {
	return s.query(ctx, "SELECT "+rowColumns+" FROM movies WHERE run_id = ? ORDER BY id", runID)
}

// Count returns the number of stored rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ensureContext(ctx), "SELECT COUNT(1) FROM movies").Scan(&count); err != nil {
		return 0, services.Wrap(services.ErrStorage, "store", "count", "", err)
	}
	return count, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, services.Wrap(services.ErrStorage, "store", "query", "", err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		row, err := scanRow(rows)
		if err != nil {
			return nil, services.Wrap(services.ErrStorage, "store", "scan", "", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrStorage, "store", "query", "", err)
	}
	return out, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil || !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			return lastErr
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyRetryMaxBackoff)
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}
