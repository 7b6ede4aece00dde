// Package titles reads the list of movie titles to process from the active
// sheet of an xlsx workbook.
package titles
