package domain

// PipelineStatus is the structured outcome of a pipeline run
type PipelineStatus string

const (
	StatusOK          PipelineStatus = "ok"
	StatusEmptyInput  PipelineStatus = "empty-input"
	StatusNoCommonKey PipelineStatus = "no-common-key"
)

// PipelineResult is everything one run produces. Warnings carries
// non-fatal problems recovered during the run; partial output is kept.
type PipelineResult struct {
	Status   PipelineStatus `json:"status"`
	Unified  UnifiedTable   `json:"unified"`
	Scored   []ScoredRecord `json:"scored"`
	Years    []int          `json:"years"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Selection is the caller's filter: allowed regions and allowed years.
// An empty set admits nothing.
type Selection struct {
	Regions []RegionCode `json:"regions" validate:"dive,region"`
	Years   []int        `json:"years" validate:"dive,gt=0,lt=3000"`
}

// FilteredResult is a PipelineResult restricted to a Selection
type FilteredResult struct {
	Status    PipelineStatus `json:"status"`
	Selection Selection      `json:"selection"`
	Unified   UnifiedTable   `json:"unified"`
	Scored    []ScoredRecord `json:"scored"`
	Ranking   []ScoredRecord `json:"ranking"`
	Years     []int          `json:"years"`
	Warnings  []string       `json:"warnings,omitempty"`
}

// ExportTable selects which output table an export writes
type ExportTable string

const (
	ExportUnified ExportTable = "unified"
	ExportScored  ExportTable = "scored"
)

// ExportFormat selects the export file format
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)
