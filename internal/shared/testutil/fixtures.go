package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

// Small vital statistics and shortage tables that join on Georgia. Georgia
// appears both by name and by code, with a thousands separator in one count.
const (
	VitalCSV    = "State,Year,Births\nGeorgia,2020,\"1,000\"\nGA,2021,2000\nAlabama,2020,500\n"
	ShortageCSV = "State,HPSA Score\nGeorgia,5\n"
)

// SpreadsheetBytes builds an xlsx workbook whose first sheet holds rows
func SpreadsheetBytes(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i, err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

// WriteFixture writes data to dir/name and returns the path
func WriteFixture(t *testing.T, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
