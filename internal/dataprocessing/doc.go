// Package dataprocessing turns two loosely structured regional health
// tables into a unified per-region, per-year dataset and a region-level
// opportunity index.
//
// # Inputs
//
// Source A is a vital-statistics table (births, prenatal visits, mother age,
// race). Source B is a shortage-score table (HPSA scores). Neither declares
// a schema. Column roles are discovered from header names through a small
// rule table (see VitalStatisticsRules and ShortageScoreRules): each role
// lists substrings a header must contain and substrings it must not, and the
// leftmost matching column wins.
//
// # Data Flow
//
//	bytes → ReadTable → RawTable
//	RawTable(A) → MapVitalStatistics ─┐
//	RawTable(B) → MapShortageScores ──┴→ Join → UnifiedTable → Score → []ScoredRecord
//	                                              └→ AvailableYears → FilterUnified / FilterScored
//
// Every stage returns a new value and never mutates its input, so the same
// raw tables always produce the same result.
//
// # Ingestion
//
// CSV bytes pass through DecodeText, which tries UTF-8, Latin-1, GBK and
// Shift JIS in order and falls back to a lossy UTF-8 decode. The encoding
// that won is reported on the IngestResult. Spreadsheets are read with
// excelize from the first sheet.
//
// # Usage
//
//	vital, _ := dataprocessing.ReadTable(vitalBytes, domain.FormatCSV)
//	shortage, _ := dataprocessing.ReadTable(shortageBytes, domain.FormatSpreadsheet)
//	result := dataprocessing.NewPipeline(logger).Run(ctx, vital.Table, shortage.Table)
//	view := dataprocessing.ApplySelection(result, dataprocessing.DefaultSelection(result.Years))
//
// # Error Handling
//
// Nothing in the pipeline returns an error. Missing columns become absent
// fields, empty or keyless input becomes a PipelineStatus, and a panic in a
// stage is recovered into PipelineResult.Warnings.
package dataprocessing
