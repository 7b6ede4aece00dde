// Package identification resolves a free-text movie title to a single record
// on the movie database.
//
// The Resolver loads the film-restricted search page through a browser
// Session, enumerates candidates with the current result layout (falling back
// to the legacy findList table when the current layout yields nothing usable),
// and keeps only exact title matches that are not television entries. Among
// those the latest release year wins; ties keep the first rendered result.
//
// A nil reference with a nil error means "no exact match". Errors are reserved
// for navigation and wait failures so callers can record them per title.
package identification
