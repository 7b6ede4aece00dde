package report

import (
	"io"
	"time"

	"github.com/parquet-go/parquet-go"

	"marquee/internal/fileutil"
	"marquee/internal/movies"
	"marquee/internal/results"
)

// Record is the parquet row layout. Optional columns are nil when absent.
// Genres and Reviews repeat the joined text columns as lists.
type Record struct {
	ID              int64    `parquet:"id"`
	Title           string   `parquet:"title"`
	Rating          *string  `parquet:"rating,optional"`
	Popularity      *string  `parquet:"popularity,optional"`
	Metascore       *string  `parquet:"metascore,optional"`
	Genre           *string  `parquet:"genre,optional"`
	Genres          []string `parquet:"genres,list"`
	FeaturedReviews *string  `parquet:"featured_reviews,optional"`
	Reviews         []string `parquet:"reviews,list"`
	UserReviews     *string  `parquet:"user_reviews,optional"`
	Status          string   `parquet:"status"`
	RecordURL       *string  `parquet:"record_url,optional"`
	ReleaseYear     *int32   `parquet:"release_year,optional"`
	RunID           *string  `parquet:"run_id,optional"`
	ProcessedAt     *string  `parquet:"processed_at,optional"`
}

// NewRecord converts a stored row into its parquet layout.
func NewRecord(row results.Row) Record {
	rec := Record{
		ID:              row.ID,
		Title:           row.Title.Value,
		Rating:          optional(row.Rating),
		Popularity:      optional(row.Popularity),
		Metascore:       optional(row.Metascore),
		Genre:           optional(row.Genre),
		Genres:          movies.SplitGenres(row.Genre.Value),
		FeaturedReviews: optional(row.FeaturedReviews),
		Reviews:         movies.SplitReviews(row.FeaturedReviews.Value),
		UserReviews:     optional(row.UserReviews),
		Status:          row.Status.Value,
		RecordURL:       optional(row.RecordURL),
		RunID:           optional(row.RunID),
	}
	if row.ReleaseYear > 0 {
		year := int32(row.ReleaseYear)
		rec.ReleaseYear = &year
	}
	if !row.ProcessedAt.IsZero() {
		ts := row.ProcessedAt.UTC().Format(time.RFC3339)
		rec.ProcessedAt = &ts
	}
	return rec
}

// WriteParquetFile writes rows to path as a parquet file, replacing any
// previous file atomically.
func WriteParquetFile(path string, rows []results.Row) error {
	records := make([]Record, len(rows))
	for i, row := range rows {
		records[i] = NewRecord(row)
	}
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		writer := parquet.NewGenericWriter[Record](w)
		if len(records) > 0 {
			if _, err := writer.Write(records); err != nil {
				_ = writer.Close()
				return err
			}
		}
		return writer.Close()
	})
}

func optional(value movies.Text) *string {
	if !value.Valid {
		return nil
	}
	v := value.Value
	return &v
}
