package dataprocessing

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// RoleRule describes how to recognise the column for one role. A column
// matches when its folded name contains every Require substring and none of
// the Exclude substrings. Fallback is tried only when no column matches.
type RoleRule struct {
	Role     domain.Role
	Require  []string
	Exclude  []string
	Fallback *RoleRule
}

// VitalStatisticsRules is the role table for the vital-statistics source.
var VitalStatisticsRules = []RoleRule{
	{Role: domain.RoleRegion, Require: []string{"state"}},
	{Role: domain.RoleYear, Require: []string{"year"}},
	{Role: domain.RoleTotalBirths, Require: []string{"birth"}, Exclude: []string{"rate", "mother", "year"}},
	{Role: domain.RolePrenatalVisits, Require: []string{"prenatal"}},
	{
		Role:     domain.RoleMotherAge,
		Require:  []string{"mother", "age"},
		Fallback: &RoleRule{Role: domain.RoleMotherAge, Require: []string{"age"}, Exclude: []string{"percent", "stage", "average", "avg"}},
	},
	{Role: domain.RoleRace, Require: []string{"race"}},
}

// ShortageScoreRules is the role table for the shortage-score source.
var ShortageScoreRules = []RoleRule{
	{Role: domain.RoleRegion, Require: []string{"state"}},
	{Role: domain.RoleGapScore, Require: []string{"hpsa", "score"}},
}

// foldHeader normalises a column name for matching only. A Caser is not
// safe for concurrent use, so each call builds its own.
func foldHeader(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

func (r RoleRule) matches(folded string) bool {
	for _, kw := range r.Require {
		if !strings.Contains(folded, kw) {
			return false
		}
	}
	for _, kw := range r.Exclude {
		if strings.Contains(folded, kw) {
			return false
		}
	}
	return true
}

// MatchColumns resolves each rule to a column index. The first column from
// the left wins; roles with no match are absent from the result.
func MatchColumns(header []string, rules []RoleRule) map[domain.Role]int {
	folded := make([]string, len(header))
	for i, h := range header {
		folded[i] = foldHeader(h)
	}

	matched := make(map[domain.Role]int, len(rules))
	for _, rule := range rules {
		for r := &rule; r != nil; r = r.Fallback {
			if idx := firstMatch(folded, *r); idx >= 0 {
				matched[rule.Role] = idx
				break
			}
		}
	}
	return matched
}

func firstMatch(folded []string, rule RoleRule) int {
	for i, name := range folded {
		if rule.matches(name) {
			return i
		}
	}
	return -1
}

// fieldsInOrder lists the matched roles in rule-table order.
func fieldsInOrder(rules []RoleRule, matched map[domain.Role]int) []domain.Role {
	fields := make([]domain.Role, 0, len(matched))
	for _, rule := range rules {
		if _, ok := matched[rule.Role]; ok {
			fields = append(fields, rule.Role)
		}
	}
	return fields
}

// MapVitalStatistics projects a raw vital-statistics table into canonical
// records. An empty raw table yields an empty table with no fields.
func MapVitalStatistics(raw domain.RawTable) domain.VitalTable {
	if raw.IsEmpty() {
		return domain.VitalTable{Fields: []domain.Role{}, Records: []domain.VitalRecord{}}
	}

	cols := MatchColumns(raw.Header, VitalStatisticsRules)
	table := domain.VitalTable{
		Fields:  fieldsInOrder(VitalStatisticsRules, cols),
		Records: make([]domain.VitalRecord, len(raw.Rows)),
	}

	number := func(row int, role domain.Role) *float64 {
		if idx, ok := cols[role]; ok {
			return NumberPtr(raw.Cell(row, idx))
		}
		return nil
	}

	for i := range raw.Rows {
		rec := domain.VitalRecord{
			Year:           number(i, domain.RoleYear),
			TotalBirths:    number(i, domain.RoleTotalBirths),
			PrenatalVisits: number(i, domain.RolePrenatalVisits),
			MotherAge:      number(i, domain.RoleMotherAge),
		}
		if idx, ok := cols[domain.RoleRegion]; ok {
			rec.Region = StandardizeRegionCell(raw.Cell(i, idx))
		}
		if idx, ok := cols[domain.RoleRace]; ok {
			if s, ok := CellString(raw.Cell(i, idx)); ok {
				rec.Race = stringPtr(s)
			}
		}
		table.Records[i] = rec
	}
	return table
}

// MapShortageScores projects a raw shortage-score table into canonical
// records. An empty raw table yields an empty table with no fields.
func MapShortageScores(raw domain.RawTable) domain.ShortageTable {
	if raw.IsEmpty() {
		return domain.ShortageTable{Fields: []domain.Role{}, Records: []domain.ShortageRecord{}}
	}

	cols := MatchColumns(raw.Header, ShortageScoreRules)
	table := domain.ShortageTable{
		Fields:  fieldsInOrder(ShortageScoreRules, cols),
		Records: make([]domain.ShortageRecord, len(raw.Rows)),
	}

	for i := range raw.Rows {
		var rec domain.ShortageRecord
		if idx, ok := cols[domain.RoleRegion]; ok {
			rec.Region = StandardizeRegionCell(raw.Cell(i, idx))
		}
		if idx, ok := cols[domain.RoleGapScore]; ok {
			rec.GapScore = NumberPtr(raw.Cell(i, idx))
		}
		table.Records[i] = rec
	}
	return table
}
