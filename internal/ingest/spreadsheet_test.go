package ingest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentic-research/fextract/api"
)

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	cells := map[string]any{
		"A1": "name", "B1": "count",
		"A2": "widget", "B2": 3, "C2": true,
		"A3": "gadget", "B3": 2.5,
	}
	for ref, v := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", ref, v))
	}

	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "B2", "offset"))

	require.NoError(t, f.SaveAs(path))
}

func TestSpreadsheetHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeWorkbook(t, path)

	p := payloadOf[*api.SpreadsheetPayload](t, NewSpreadsheetHandler(true).Extract(path))
	require.Contains(t, p.Sheets, "Sheet1")
	assert.Equal(t, [][]any{
		{"name", "count", nil},
		{"widget", int64(3), true},
		{"gadget", 2.5, nil},
	}, p.Sheets["Sheet1"])

	// Empty leading row and column come back as nulls
	assert.Equal(t, [][]any{{nil, nil}, {nil, "offset"}}, p.Sheets["Notes"])
}

func TestSpreadsheetHandler_Failures(t *testing.T) {
	dir := t.TempDir()

	legacy := writeFixture(t, dir, "old.xls", []byte("\xd0\xcf\x11\xe0\xa1\xb1\x1a\xe1 legacy BIFF"))
	requireFailure(t, NewSpreadsheetHandler(true).Extract(legacy), api.FormatExcel, api.KindParse)

	requireFailure(t, NewSpreadsheetHandler(true).Extract(filepath.Join(dir, "missing.xlsx")), api.FormatExcel, api.KindIO)
	requireFailure(t, NewSpreadsheetHandler(false).Extract(legacy), api.FormatExcel, api.KindCapabilityUnavailable)
}
