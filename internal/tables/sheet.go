package tables

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// readSheet loads the first sheet of an xlsx workbook as string rows.
// excelize trims trailing empty cells, so rows may be shorter than the
// header; callers pad where alignment matters.
func readSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return f.GetRows(f.GetSheetName(0))
}

// writeSheet writes rows to a fresh single-sheet workbook at path, creating
// parent directories as needed.
func writeSheet(path string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// padRow extends row with empty cells until it has width entries.
func padRow(row []string, width int) []string {
	for len(row) < width {
		row = append(row, "")
	}
	return row
}
