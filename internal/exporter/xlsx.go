package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// Sheet names of the workbook export
const (
	UnifiedSheet = "unified"
	ScoredSheet  = "scored"
)

// WriteXLSX writes a workbook with one sheet per output table. Numbers are
// stored as numeric cells; nulls are left blank.
func WriteXLSX(w io.Writer, unified domain.UnifiedTable, scored []domain.ScoredRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), UnifiedSheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ScoredSheet); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}

	unifiedRows := make([][]any, 0, len(unified.Records))
	for _, rec := range unified.Records {
		row := make([]any, len(unified.Fields))
		for i, role := range unified.Fields {
			row[i] = unifiedCell(rec, role)
		}
		unifiedRows = append(unifiedRows, row)
	}
	if err := writeSheet(f, UnifiedSheet, UnifiedHeaders(unified), unifiedRows, headerStyle); err != nil {
		return err
	}

	scoredRows := make([][]any, 0, len(scored))
	for _, rec := range scored {
		scoredRows = append(scoredRows, []any{rec.Region, rec.TotalBirths, rec.GapScore, rec.OpportunityIndex})
	}
	if err := writeSheet(f, ScoredSheet, ScoredHeaders, scoredRows, headerStyle); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	if len(headers) == 0 {
		return nil
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}

	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}
