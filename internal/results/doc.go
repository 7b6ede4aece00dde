// Package results persists one row per processed title in a local SQLite
// database.
//
// Rows are append-only and ordered by their autoincrement id, which doubles as
// processing order. The schema is built from embedded migrations tracked in
// schema_migrations. A movies table left behind by the earlier layout (it
// carries a movie_name column) is dropped on open, discarding its rows, before
// the migrations run.
//
// Optional attributes are stored as NULL when absent so exports can tell a
// missing value from an empty one.
package results
