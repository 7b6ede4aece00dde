package results

import (
	"database/sql"
	"strconv"
	"time"

	"marquee/internal/movies"
)

// Columns lists the persisted columns in table order. Exports use the same order.
var Columns = []string{
	"id", "title", "rating", "popularity", "metascore", "genre", "featured_reviews",
	"user_reviews", "status", "record_url", "release_year", "run_id", "processed_at",
}

const rowColumns = "id, title, rating, popularity, metascore, genre, featured_reviews, user_reviews, status, record_url, release_year, run_id, processed_at"

// Row is one persisted outcome. Optional columns hold movies.Text so a NULL
// stays distinguishable from an empty string.
type Row struct {
	ID              int64
	Title           movies.Text
	Rating          movies.Text
	Popularity      movies.Text
	Metascore       movies.Text
	Genre           movies.Text
	FeaturedReviews movies.Text
	UserReviews     movies.Text
	Status          movies.Text
	RecordURL       movies.Text
	ReleaseYear     int
	RunID           movies.Text
	ProcessedAt     time.Time
}

// Values renders the row in Columns order; absent values are invalid Text.
func (r Row) Values() []movies.Text {
	year := movies.Text{}
	if r.ReleaseYear > 0 {
		year = movies.Text{Value: strconv.Itoa(r.ReleaseYear), Valid: true}
	}
	processed := movies.Text{}
	if !r.ProcessedAt.IsZero() {
		processed = movies.Text{Value: r.ProcessedAt.UTC().Format(time.RFC3339), Valid: true}
	}
	return []movies.Text{
		{Value: strconv.FormatInt(r.ID, 10), Valid: true},
		r.Title, r.Rating, r.Popularity, r.Metascore, r.Genre, r.FeaturedReviews,
		r.UserReviews, r.Status, r.RecordURL, year, r.RunID, processed,
	}
}

// StatusKind classifies the persisted status text.
func (r Row) StatusKind() movies.Status {
	status, _ := movies.ParseStatusText(r.Status.Value)
	return status
}

func scanRow(scanner interface{ Scan(dest ...any) error }) (Row, error) {
	var (
		row         Row
		title       sql.NullString
		rating      sql.NullString
		popularity  sql.NullString
		metascore   sql.NullString
		genre       sql.NullString
		reviews     sql.NullString
		userReviews sql.NullString
		status      sql.NullString
		recordURL   sql.NullString
		releaseYear sql.NullInt64
		runID       sql.NullString
		processed   sql.NullString
	)
	if err := scanner.Scan(
		&row.ID,
		&title,
		&rating,
		&popularity,
		&metascore,
		&genre,
		&reviews,
		&userReviews,
		&status,
		&recordURL,
		&releaseYear,
		&runID,
		&processed,
	); err != nil {
		return Row{}, err
	}
	row.Title = fromNull(title)
	row.Rating = fromNull(rating)
	row.Popularity = fromNull(popularity)
	row.Metascore = fromNull(metascore)
	row.Genre = fromNull(genre)
	row.FeaturedReviews = fromNull(reviews)
	row.UserReviews = fromNull(userReviews)
	row.Status = fromNull(status)
	row.RecordURL = fromNull(recordURL)
	row.RunID = fromNull(runID)
	if releaseYear.Valid {
		row.ReleaseYear = int(releaseYear.Int64)
	}
	if processed.Valid {
		if ts, err := time.Parse(time.RFC3339Nano, processed.String); err == nil {
			row.ProcessedAt = ts
		}
	}
	return row, nil
}

func fromNull(value sql.NullString) movies.Text {
	return movies.Text{Value: value.String, Valid: value.Valid}
}

func nullableText(value movies.Text) any {
	if !value.Valid {
		return nil
	}
	return value.Value
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
