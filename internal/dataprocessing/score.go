package dataprocessing

import (
	"sort"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// Score collapses the unified table to one row per region and computes
//
//	opportunity_index = total_births / max_total_births * gap_score
//
// Births are summed with nulls counted as zero; gap scores are averaged.
// max_total_births is 1 when there are no regions or no positive totals.
// A table without a births column still yields one row per region, each
// with a zero index. Output is sorted by region.
func Score(table domain.UnifiedTable) []domain.ScoredRecord {
	type regionAgg struct {
		births float64
		gap    accumulator
	}

	groups := make(map[string]*regionAgg)
	var regions []string
	for _, rec := range table.Records {
		g, ok := groups[rec.Region]
		if !ok {
			g = &regionAgg{}
			groups[rec.Region] = g
			regions = append(regions, rec.Region)
		}
		if rec.TotalBirths != nil {
			g.births += *rec.TotalBirths
		}
		g.gap.add(floatPtr(rec.GapScore))
	}
	sort.Strings(regions)

	maxBirths := 0.0
	for _, g := range groups {
		if g.births > maxBirths {
			maxBirths = g.births
		}
	}
	if maxBirths <= 0 {
		maxBirths = 1
	}

	scored := make([]domain.ScoredRecord, 0, len(regions))
	for _, region := range regions {
		g := groups[region]
		gap := 0.0
		if m := g.gap.mean(); m != nil {
			gap = *m
		}
		scored = append(scored, domain.ScoredRecord{
			Region:           region,
			TotalBirths:      g.births,
			GapScore:         gap,
			OpportunityIndex: g.births / maxBirths * gap,
		})
	}
	return scored
}

// RankByOpportunity returns a copy of scored ordered by descending
// opportunity index. Ties are broken by region code.
func RankByOpportunity(scored []domain.ScoredRecord) []domain.ScoredRecord {
	ranked := make([]domain.ScoredRecord, len(scored))
	copy(ranked, scored)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].OpportunityIndex != ranked[j].OpportunityIndex {
			return ranked[i].OpportunityIndex > ranked[j].OpportunityIndex
		}
		return ranked[i].Region < ranked[j].Region
	})
	return ranked
}
