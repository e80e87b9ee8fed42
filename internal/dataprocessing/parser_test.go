package dataprocessing

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// buildWorkbook writes rows into the first sheet of a new workbook and
// returns the encoded bytes.
func buildWorkbook(t *testing.T, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestFormatFromFilename(t *testing.T) {
	tests := []struct {
		name string
		want domain.Format
	}{
		{"births.csv", domain.FormatCSV},
		{"births.TXT", domain.FormatCSV},
		{"hpsa.xlsx", domain.FormatSpreadsheet},
		{"HPSA.XLSM", domain.FormatSpreadsheet},
		{"noext", domain.FormatCSV},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFromFilename(tt.name))
		})
	}
}

func TestParseCSV(t *testing.T) {
	input := "State,Year,Births\nGeorgia,2020,\"1,000\"\nGA,2021\n\nAL,,5,extra\n"

	table, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"State", "Year", "Births"}, table.Header)
	require.Len(t, table.Rows, 3)

	assert.Equal(t, []any{"Georgia", "2020", "1,000"}, table.Rows[0])
	assert.Nil(t, table.Cell(1, 2), "ragged row reads as nil")
	assert.Nil(t, table.Cell(2, 1), "blank cell becomes nil")
	assert.Equal(t, "extra", table.Cell(2, 3))
}

func TestParseCSVEmpty(t *testing.T) {
	table, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.True(t, table.IsEmpty())

	table, err = ParseCSV(strings.NewReader("State,Births\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"State", "Births"}, table.Header)
	assert.Empty(t, table.Rows)
}

func TestReadTableCSV(t *testing.T) {
	data := []byte("state,births\nCaf\xe9,2\n")

	res, err := ReadTable(data, domain.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, EncodingLatin1, res.Encoding)
	assert.False(t, res.Replaced)
	assert.Equal(t, 2, res.Columns)
	assert.Equal(t, 1, res.Rows)
	assert.Equal(t, "Café", res.Table.Cell(0, 0))
	assert.Len(t, res.Checksum, 64)

	again, err := ReadTable(data, domain.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, res.Checksum, again.Checksum)
}

func TestReadTableCSVReplacementStillParses(t *testing.T) {
	res, err := ReadTable([]byte("state,births\nGeorgia,\x81\x00\xff\n"), domain.FormatCSV)
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	assert.Equal(t, 2, res.ReplacementCount)

	table := MapVitalStatistics(res.Table)
	require.Len(t, table.Records, 1)
	assert.Equal(t, "GA", *table.Records[0].Region)
	assert.Nil(t, table.Records[0].TotalBirths)
}

func TestReadTableSpreadsheet(t *testing.T) {
	data := buildWorkbook(t, [][]any{
		{"State", "HPSA Score"},
		{"Georgia", 5},
		{"Alabama", ""},
	})

	res, err := ReadTable(data, domain.FormatSpreadsheet)
	require.NoError(t, err)
	assert.Equal(t, domain.FormatSpreadsheet, res.Format)
	assert.Empty(t, res.Encoding)
	assert.Equal(t, []string{"State", "HPSA Score"}, res.Table.Header)
	require.Len(t, res.Table.Rows, 2)
	assert.Equal(t, "5", res.Table.Cell(0, 1))
	assert.Nil(t, res.Table.Cell(1, 1))
}

func TestReadTableErrors(t *testing.T) {
	_, err := ReadTable([]byte("not a zip"), domain.FormatSpreadsheet)
	assert.Error(t, err)

	_, err = ReadTable([]byte("a,b"), domain.Format("parquet"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}
