package exporter

import (
	"fmt"
	"io"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// ContentType returns the MIME type of an export format
func ContentType(format domain.ExportFormat) string {
	if format == domain.ExportXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// FileName returns the download name for an export
func FileName(table domain.ExportTable, format domain.ExportFormat) string {
	if format == domain.ExportXLSX {
		return "deep_south_health_equity.xlsx"
	}
	return fmt.Sprintf("deep_south_%s.csv", table)
}

// Export writes one filtered result in the requested table and format. The
// workbook format always carries both tables.
func Export(w io.Writer, result domain.FilteredResult, table domain.ExportTable, format domain.ExportFormat, bom bool) error {
	switch format {
	case domain.ExportXLSX:
		return WriteXLSX(w, result.Unified, result.Scored)
	case domain.ExportCSV:
		csvWriter := NewCSVWriter(bom)
		switch table {
		case domain.ExportUnified:
			return csvWriter.WriteUnified(w, result.Unified)
		case domain.ExportScored:
			return csvWriter.WriteScored(w, result.Scored)
		default:
			return fmt.Errorf("unknown export table %q", table)
		}
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}
