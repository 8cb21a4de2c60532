package ingest

import (
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/agentic-research/fextract/api"
)

// NewSpreadsheetHandler reads every sheet of a workbook as a cell grid.
func NewSpreadsheetHandler(available bool) *FormatHandler {
	return newGatedHandler(api.FormatExcel, CapSpreadsheet, available, extractSpreadsheet)
}

func extractSpreadsheet(path string) (any, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, parseUnlessIO("open workbook", err)
	}
	defer func() { _ = f.Close() }() // read-only

	sheets := make(map[string][][]any)
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, parseErrorf("sheet %q: %v", name, err)
		}
		grid, err := typedRows(f, name, rows)
		if err != nil {
			return nil, err
		}
		sheets[name] = grid
	}
	return &api.SpreadsheetPayload{Sheets: sheets}, nil
}

// typedRows converts raw cell strings to typed values and pads every row
// to the widest one with nulls.
func typedRows(f *excelize.File, sheet string, rows [][]string) ([][]any, error) {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	grid := make([][]any, len(rows))
	for r, row := range rows {
		cells := make([]any, width)
		for c, raw := range row {
			if raw == "" {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, parseErrorf("%v", err)
			}
			typ, err := f.GetCellType(sheet, ref)
			if err != nil {
				return nil, parseErrorf("cell %s!%s: %v", sheet, ref, err)
			}
			cells[c] = cellValue(typ, raw)
		}
		grid[r] = cells
	}
	return grid, nil
}

func cellValue(typ excelize.CellType, raw string) any {
	switch typ {
	case excelize.CellTypeBool:
		return raw == "1" || raw == "TRUE" || raw == "true"
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i
		}
		if fl, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(fl) && !math.IsInf(fl, 0) {
			return fl
		}
	}
	return raw
}
