package exporter

import (
	"strconv"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// OpportunityIndexColumn is the only exported column that is not a mapper role
const OpportunityIndexColumn = "opportunity_index"

// ScoredHeaders is the fixed column order of the scored export
var ScoredHeaders = []string{
	string(domain.RoleRegion),
	string(domain.RoleTotalBirths),
	string(domain.RoleGapScore),
	OpportunityIndexColumn,
}

// formatFloat renders the shortest representation that round-trips
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatNullable renders a null measure as an empty cell
func formatNullable(f *float64) string {
	if f == nil {
		return ""
	}
	return formatFloat(*f)
}

// UnifiedHeaders returns the unified table's column names in field order
func UnifiedHeaders(table domain.UnifiedTable) []string {
	headers := make([]string, len(table.Fields))
	for i, f := range table.Fields {
		headers[i] = string(f)
	}
	return headers
}

// unifiedCell returns the value of one role for a record. Nil means null.
func unifiedCell(rec domain.UnifiedRecord, role domain.Role) any {
	switch role {
	case domain.RoleRegion:
		return rec.Region
	case domain.RoleYear:
		return nullable(rec.Year)
	case domain.RoleTotalBirths:
		return nullable(rec.TotalBirths)
	case domain.RolePrenatalVisits:
		return nullable(rec.PrenatalVisits)
	case domain.RoleMotherAge:
		return nullable(rec.MotherAge)
	case domain.RoleGapScore:
		return rec.GapScore
	default:
		return nil
	}
}

func nullable(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// UnifiedRows renders the unified table as CSV records
func UnifiedRows(table domain.UnifiedTable) [][]string {
	rows := make([][]string, 0, len(table.Records))
	for _, rec := range table.Records {
		row := make([]string, len(table.Fields))
		for i, role := range table.Fields {
			switch v := unifiedCell(rec, role).(type) {
			case string:
				row[i] = v
			case float64:
				row[i] = formatFloat(v)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ScoredRows renders scored records as CSV records
func ScoredRows(scored []domain.ScoredRecord) [][]string {
	rows := make([][]string, 0, len(scored))
	for _, rec := range scored {
		rows = append(rows, []string{
			rec.Region,
			formatFloat(rec.TotalBirths),
			formatFloat(rec.GapScore),
			formatFloat(rec.OpportunityIndex),
		})
	}
	return rows
}
