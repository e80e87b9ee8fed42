package dataprocessing

import (
	"math"
	"sort"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

const (
	minValidYear = 0    // years at or below are sentinels
	maxValidYear = 3000 // years at or above are sentinels
)

// IsSentinelYear reports whether y is outside the plausible year domain
func IsSentinelYear(y float64) bool {
	return y <= minValidYear || y >= maxValidYear
}

// AvailableYears lists the distinct years present in the unified table,
// ascending, with sentinel and fractional years removed. These are the year
// options offered to a caller for filtering.
func AvailableYears(table domain.UnifiedTable) []int {
	seen := make(map[int]struct{})
	for _, rec := range table.Records {
		if rec.Year == nil {
			continue
		}
		y := *rec.Year
		if IsSentinelYear(y) || y != math.Trunc(y) {
			continue
		}
		seen[int(y)] = struct{}{}
	}

	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// DefaultSelection admits every known region and every available year
func DefaultSelection(years []int) domain.Selection {
	yrs := make([]int, len(years))
	copy(yrs, years)
	return domain.Selection{Regions: domain.AllRegionCodes(), Years: yrs}
}

type selectionIndex struct {
	regions map[string]struct{}
	years   map[float64]struct{}
}

func indexSelection(sel domain.Selection) selectionIndex {
	idx := selectionIndex{
		regions: make(map[string]struct{}, len(sel.Regions)),
		years:   make(map[float64]struct{}, len(sel.Years)),
	}
	for _, r := range sel.Regions {
		idx.regions[string(r)] = struct{}{}
	}
	for _, y := range sel.Years {
		idx.years[float64(y)] = struct{}{}
	}
	return idx
}

// FilterUnified keeps records whose region is selected and, when the table
// has a year column, whose year is selected. An empty region or year set
// admits nothing. The input is not modified.
func FilterUnified(table domain.UnifiedTable, sel domain.Selection) domain.UnifiedTable {
	idx := indexSelection(sel)
	byYear := domain.HasRole(table.Fields, domain.RoleYear)

	out := domain.UnifiedTable{
		Fields:  append([]domain.Role(nil), table.Fields...),
		Records: make([]domain.UnifiedRecord, 0, len(table.Records)),
	}
	for _, rec := range table.Records {
		if _, ok := idx.regions[rec.Region]; !ok {
			continue
		}
		if byYear {
			if rec.Year == nil {
				continue
			}
			if _, ok := idx.years[*rec.Year]; !ok {
				continue
			}
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

// FilterScored keeps region-level rows whose region is selected
func FilterScored(scored []domain.ScoredRecord, sel domain.Selection) []domain.ScoredRecord {
	idx := indexSelection(sel)
	out := make([]domain.ScoredRecord, 0, len(scored))
	for _, rec := range scored {
		if _, ok := idx.regions[rec.Region]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// ApplySelection filters a pipeline result from scratch
func ApplySelection(result domain.PipelineResult, sel domain.Selection) domain.FilteredResult {
	scored := FilterScored(result.Scored, sel)
	return domain.FilteredResult{
		Status:    result.Status,
		Selection: sel,
		Unified:   FilterUnified(result.Unified, sel),
		Scored:    scored,
		Ranking:   RankByOpportunity(scored),
		Years:     result.Years,
		Warnings:  result.Warnings,
	}
}
