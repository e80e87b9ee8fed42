package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/blake2b"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// ErrUnknownFormat is returned by ReadTable for an unsupported format tag
var ErrUnknownFormat = errors.New("unknown table format")

// FormatFromFilename guesses the format tag from a file extension.
// Unknown extensions fall back to csv.
func FormatFromFilename(name string) domain.Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return domain.FormatSpreadsheet
	default:
		return domain.FormatCSV
	}
}

// ReadTable turns uploaded bytes into a RawTable. CSV input goes through the
// encoding cascade and never fails on text decoding; only an unreadable
// workbook or an unknown format tag is an error.
func ReadTable(data []byte, format domain.Format) (domain.IngestResult, error) {
	result := domain.IngestResult{Format: format, Checksum: Checksum(data)}

	switch format {
	case domain.FormatCSV:
		decoded := DecodeText(data)
		table, err := ParseCSV(strings.NewReader(decoded.Text))
		if err != nil {
			return result, err
		}
		result.Table = table
		result.Encoding = decoded.Encoding
		result.Replaced = decoded.Replaced
		result.ReplacementCount = decoded.ReplacementCount
		if decoded.Replaced {
			slog.Warn("CSV decoded with replacement characters",
				slog.Int("replacements", decoded.ReplacementCount),
				slog.Int("bytes", len(data)))
		}

	case domain.FormatSpreadsheet:
		table, err := ParseSpreadsheet(bytes.NewReader(data))
		if err != nil {
			return result, err
		}
		result.Table = table

	default:
		return result, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	result.Columns = len(result.Table.Header)
	result.Rows = len(result.Table.Rows)
	return result, nil
}

// ParseCSV reads delimited text into a RawTable. The first record is the
// header. Records may have differing lengths and blank cells become nil.
func ParseCSV(r io.Reader) (domain.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return domain.RawTable{}, nil
	}
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to read csv header: %w", err)
	}

	table := domain.RawTable{Header: header, Rows: [][]any{}}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return table, fmt.Errorf("failed to read csv row %d: %w", len(table.Rows)+2, err)
		}
		table.Rows = append(table.Rows, stringsToCells(record))
	}
	return table, nil
}

// ParseSpreadsheet reads the first sheet of a workbook into a RawTable,
// taking the first row as the header.
func ParseSpreadsheet(r io.Reader) (domain.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return domain.RawTable{}, nil
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return domain.RawTable{}, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	slog.Debug("Read spreadsheet", slog.String("sheet_name", sheets[0]), slog.Int("total_rows", len(rows)))

	if len(rows) == 0 {
		return domain.RawTable{}, nil
	}

	table := domain.RawTable{Header: rows[0], Rows: make([][]any, 0, len(rows)-1)}
	for _, row := range rows[1:] {
		table.Rows = append(table.Rows, stringsToCells(row))
	}
	return table, nil
}

func stringsToCells(record []string) []any {
	cells := make([]any, len(record))
	for i, v := range record {
		if strings.TrimSpace(v) == "" {
			continue
		}
		cells[i] = v
	}
	return cells
}

// Checksum returns the hex BLAKE2b-256 digest of data
func Checksum(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
