package report

import (
	"bufio"
	"io"
	"strings"

	"marquee/internal/fileutil"
	"marquee/internal/results"
)

const csvDelimiter = ','

// WriteCSV writes a header line followed by one line per row. A value is
// quoted, with embedded quotes doubled, only when it contains the delimiter, a
// line break, or a quote, so every line parses with standard CSV readers.
// Absent values are written as empty fields.
func WriteCSV(w io.Writer, rows []results.Row) error {
	bw := bufio.NewWriter(w)
	header := make([]string, len(results.Columns))
	copy(header, results.Columns)
	if err := writeRecord(bw, header); err != nil {
		return err
	}
	for _, row := range rows {
		values := row.Values()
		fields := make([]string, len(values))
		for i, value := range values {
			if value.Valid {
				fields[i] = value.Value
			}
		}
		if err := writeRecord(bw, fields); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteCSVFile writes the CSV export to path, replacing any previous file
// atomically.
func WriteCSVFile(path string, rows []results.Row) error {
	return fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return WriteCSV(w, rows)
	})
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(csvDelimiter); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quoteField(field)); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func quoteField(field string) string {
	if !strings.ContainsAny(field, string(csvDelimiter)+"\r\n\"") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}
