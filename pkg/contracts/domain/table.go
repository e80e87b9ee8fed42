package domain

// RawTable is a caller-supplied table of untyped cells. Cells hold nil, a
// string, or a Go numeric value. Rows may be shorter than the header; missing
// trailing cells read as nil.
type RawTable struct {
	Header []string `json:"header"`
	Rows   [][]any  `json:"rows"`
}

// IsEmpty reports whether the table has no rows or no columns.
func (t RawTable) IsEmpty() bool {
	return len(t.Header) == 0 || len(t.Rows) == 0
}

// Cell returns the value at row i, column j, or nil when the row is ragged.
func (t RawTable) Cell(i, j int) any {
	if i < 0 || i >= len(t.Rows) || j < 0 {
		return nil
	}
	row := t.Rows[i]
	if j >= len(row) {
		return nil
	}
	return row[j]
}

// Format is the declared format of an uploaded table
type Format string

const (
	FormatCSV         Format = "csv"
	FormatSpreadsheet Format = "spreadsheet"
)

// IsValid reports whether the format tag is supported
func (f Format) IsValid() bool {
	return f == FormatCSV || f == FormatSpreadsheet
}

// Source identifies which of the two input datasets a table belongs to
type Source string

const (
	// SourceVital is the vital-statistics dataset (births, prenatal visits)
	SourceVital Source = "vital"
	// SourceShortage is the shortage-score dataset (HPSA scores)
	SourceShortage Source = "shortage"
)

// IsValid reports whether the source is one of the two known datasets
func (s Source) IsValid() bool {
	return s == SourceVital || s == SourceShortage
}

// IngestResult is the outcome of reading raw bytes into a RawTable.
// Encoding names the text encoding that decoded the bytes; Replaced is true
// when every strict encoding failed and invalid bytes were substituted.
type IngestResult struct {
	Table            RawTable `json:"-"`
	Format           Format   `json:"format"`
	Encoding         string   `json:"encoding,omitempty"`
	Replaced         bool     `json:"replaced"`
	ReplacementCount int      `json:"replacement_count"`
	Checksum         string   `json:"checksum"`
	Columns          int      `json:"columns"`
	Rows             int      `json:"rows"`
}
