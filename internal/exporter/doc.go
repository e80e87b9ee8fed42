// Package exporter writes pipeline output for download.
//
// CSVWriter writes the unified and scored tables as CSV with an optional
// UTF-8 BOM for Excel. WriteXLSX writes both tables into one workbook with
// "unified" and "scored" sheets. Null measures render as empty cells and
// numbers use the shortest form that round-trips.
//
// Example usage:
//
//	result := dataprocessing.ApplySelection(pipelineResult, selection)
//	err := exporter.Export(w, result, domain.ExportScored, domain.ExportCSV, true)
package exporter
