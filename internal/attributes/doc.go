// Package attributes extracts the optional attribute bundle (rating,
// popularity, metascore, genres, user review count, and the top reviews) for a
// resolved movie record. Each field is looked up independently across known
// page layouts; a missing field is recorded as absent and never fails the row.
package attributes
