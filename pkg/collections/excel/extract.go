package excel

import (
	"fmt"
	"slices"
	"time"

	"github.com/xuri/excelize/v2"
)

func openWorkbook(path string) (*excelize.File, error) {
	return excelize.OpenFile(path)
}

// extractContent reads the requested sheets (all sheets when wanted is empty)
// and trims rows and columns that are entirely empty. A sheet that cannot be
// read is reported in its sheetData, not as a workbook-level failure.
func extractContent(path string, wanted []string) (*extraction, error) {
	start := time.Now()
	f, err := openWorkbook(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	available := f.GetSheetList()
	names := available
	if len(wanted) > 0 {
		names = wanted
	}

	out := &extraction{}
	for _, name := range names {
		sd := sheetData{Name: name}
		switch {
		case !slices.Contains(available, name):
			sd.Err = fmt.Sprintf("sheet %q not found in workbook", name)
		default:
			rows, err := f.GetRows(name)
			if err != nil {
				sd.Err = fmt.Sprintf("cannot read sheet: %v", err)
				break
			}
			sd.Rows, sd.NonEmptyCells = trimEmpty(rows)
			out.TotalRows += len(sd.Rows)
			if len(sd.Rows) > 0 && len(sd.Rows[0]) > out.TotalColumns {
				out.TotalColumns = len(sd.Rows[0])
			}
		}
		out.Sheets = append(out.Sheets, sd)
	}
	out.TotalSheets = len(out.Sheets)
	out.Duration = time.Since(start)
	return out, nil
}

// trimEmpty drops rows and columns with no content and pads the survivors to
// a rectangle. GetRows returns ragged rows, so the width is computed from the
// right-most populated cell across the whole sheet.
func trimEmpty(rows [][]string) ([][]string, int) {
	width := 0
	usedCols := map[int]bool{}
	nonEmpty := 0
	for _, row := range rows {
		for i, cell := range row {
			if cell == "" {
				continue
			}
			nonEmpty++
			usedCols[i] = true
			if i+1 > width {
				width = i + 1
			}
		}
	}
	if nonEmpty == 0 {
		return nil, 0
	}

	keep := make([]int, 0, len(usedCols))
	for i := 0; i < width; i++ {
		if usedCols[i] {
			keep = append(keep, i)
		}
	}

	var trimmed [][]string
	for _, row := range rows {
		if rowEmpty(row) {
			continue
		}
		cells := make([]string, len(keep))
		for j, i := range keep {
			if i < len(row) {
				cells[j] = row[i]
			}
		}
		trimmed = append(trimmed, cells)
	}
	return trimmed, nonEmpty
}

func rowEmpty(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

// columnLabel converts a zero-based column index into its spreadsheet letter
// (0 -> A, 25 -> Z, 26 -> AA).
func columnLabel(i int) string {
	label := ""
	for i >= 0 {
		label = string(rune('A'+i%26)) + label
		i = i/26 - 1
	}
	return label
}
