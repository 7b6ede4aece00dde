package titles

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"

	"marquee/internal/services"
)

// DefaultColumn is the header that holds titles when none is configured.
const DefaultColumn = "Movies"

// ReadWorkbook returns the trimmed, non-empty values below the header named
// column on the active sheet, in sheet order. Header matching ignores case and
// surrounding whitespace. A workbook without that header is a configuration
// error; an empty sheet yields no titles.
func ReadWorkbook(path, column string) ([]string, error) {
	if strings.TrimSpace(column) == "" {
		column = DefaultColumn
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, "titles", "open workbook", path, err)
		}
		return nil, services.Wrap(services.ErrValidation, "titles", "open workbook", path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "titles", "read sheet", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	index := headerIndex(rows[0], column)
	if index < 0 {
		return nil, services.Wrap(
			services.ErrConfiguration,
			"titles",
			"locate column",
			fmt.Sprintf("workbook %s must have a %q column", path, column),
			nil,
		)
	}

	var out []string
	for _, row := range rows[1:] {
		if index >= len(row) {
			continue
		}
		if title := strings.TrimSpace(row[index]); title != "" {
			out = append(out, title)
		}
	}
	return out, nil
}

func headerIndex(header []string, column string) int {
	folder := cases.Fold()
	want := folder.String(strings.TrimSpace(column))
	for i, cell := range header {
		if folder.String(strings.TrimSpace(cell)) == want {
			return i
		}
	}
	return -1
}
