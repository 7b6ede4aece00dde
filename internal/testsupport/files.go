package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook saves an xlsx file whose first sheet has header in A1 and one
// value per row below it. An empty value leaves its cell blank.
func WriteWorkbook(t testing.TB, path, header string, values ...string) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetCellValue(sheet, "A1", header); err != nil {
		t.Fatalf("set header: %v", err)
	}
	for i, value := range values {
		if value == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}
	if err := f.SaveAs(filepath.Clean(path)); err != nil {
		t.Fatalf("save workbook %s: %v", path, err)
	}
	return path
}
