package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	bom bool
}

// NewCSVWriter creates a new CSV writer. With bom set every output starts
// with a UTF-8 byte order mark so Excel detects the encoding.
func NewCSVWriter(bom bool) *CSVWriter {
	return &CSVWriter{bom: bom}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers []string
	Records [][]string
}

// Write writes headers and records to w
func (c *CSVWriter) Write(w io.Writer, options WriteOptions) error {
	if c.bom {
		if _, err := w.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteFile writes a CSV file, creating parent directories as needed
func (c *CSVWriter) WriteFile(filePath string, options WriteOptions) error {
	slog.Info("Writing CSV file",
		slog.String("file_path", filePath),
		slog.Int("record_count", len(options.Records)))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := c.Write(file, options); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// WriteUnified writes the unified table with its present columns
func (c *CSVWriter) WriteUnified(w io.Writer, table domain.UnifiedTable) error {
	return c.Write(w, WriteOptions{
		Headers: UnifiedHeaders(table),
		Records: UnifiedRows(table),
	})
}

// WriteScored writes region-level opportunity scores
func (c *CSVWriter) WriteScored(w io.Writer, scored []domain.ScoredRecord) error {
	return c.Write(w, WriteOptions{
		Headers: ScoredHeaders,
		Records: ScoredRows(scored),
	})
}
