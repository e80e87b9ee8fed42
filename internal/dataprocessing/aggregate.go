package dataprocessing

import (
	"sort"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// accumulator keeps a null-ignoring running sum and count
type accumulator struct {
	sum   float64
	count int
}

func (a *accumulator) add(v *float64) {
	if v == nil {
		return
	}
	a.sum += *v
	a.count++
}

func (a accumulator) total() *float64 {
	if a.count == 0 {
		return nil
	}
	return floatPtr(a.sum)
}

func (a accumulator) mean() *float64 {
	if a.count == 0 {
		return nil
	}
	return floatPtr(a.sum / float64(a.count))
}

type vitalKey struct {
	region  string
	year    float64
	hasYear bool
}

type vitalGroup struct {
	births   accumulator
	prenatal accumulator
	age      accumulator
}

// AggregateVital collapses vital-statistics records to one row per
// (region, year). Births are summed; prenatal visits and mother age are
// averaged. Null contributions are ignored and an all-null group stays null.
// Rows without a region, or without a year when the year column exists,
// have no group key and are dropped. Without a year column the grouping is
// by region alone. GapScore is left at zero for the join to fill.
func AggregateVital(table domain.VitalTable) []domain.UnifiedRecord {
	byYear := domain.HasRole(table.Fields, domain.RoleYear)

	groups := make(map[vitalKey]*vitalGroup)
	var order []vitalKey
	for _, rec := range table.Records {
		if rec.Region == nil {
			continue
		}
		key := vitalKey{region: *rec.Region}
		if byYear {
			if rec.Year == nil {
				continue
			}
			key.year, key.hasYear = *rec.Year, true
		}

		g, ok := groups[key]
		if !ok {
			g = &vitalGroup{}
			groups[key] = g
			order = append(order, key)
		}
		g.births.add(rec.TotalBirths)
		g.prenatal.add(rec.PrenatalVisits)
		g.age.add(rec.MotherAge)
	}

	out := make([]domain.UnifiedRecord, 0, len(order))
	for _, key := range order {
		g := groups[key]
		rec := domain.UnifiedRecord{
			Region:         key.region,
			TotalBirths:    g.births.total(),
			PrenatalVisits: g.prenatal.mean(),
			MotherAge:      g.age.mean(),
		}
		if key.hasYear {
			rec.Year = floatPtr(key.year)
		}
		out = append(out, rec)
	}
	sortUnified(out)
	return out
}

// AggregateShortage averages gap scores per region. A region whose scores
// are all null maps to nil.
func AggregateShortage(table domain.ShortageTable) map[string]*float64 {
	groups := make(map[string]*accumulator)
	for _, rec := range table.Records {
		if rec.Region == nil {
			continue
		}
		acc, ok := groups[*rec.Region]
		if !ok {
			acc = &accumulator{}
			groups[*rec.Region] = acc
		}
		acc.add(rec.GapScore)
	}

	out := make(map[string]*float64, len(groups))
	for region, acc := range groups {
		out[region] = acc.mean()
	}
	return out
}

// Join aggregates both canonical tables and left-joins shortage scores onto
// the vital-statistics groups by region. Regions missing from the shortage
// data get a gap score of 0. When either table is empty or lacks a region
// column the result is empty with StatusNoCommonKey.
func Join(vital domain.VitalTable, shortage domain.ShortageTable) (domain.UnifiedTable, domain.PipelineStatus) {
	if vital.IsEmpty() || shortage.IsEmpty() ||
		!domain.HasRole(vital.Fields, domain.RoleRegion) ||
		!domain.HasRole(shortage.Fields, domain.RoleRegion) {
		return domain.UnifiedTable{Fields: []domain.Role{}, Records: []domain.UnifiedRecord{}}, domain.StatusNoCommonKey
	}

	records := AggregateVital(vital)
	scores := AggregateShortage(shortage)
	for i := range records {
		if gap := scores[records[i].Region]; gap != nil {
			records[i].GapScore = *gap
		}
	}

	return domain.UnifiedTable{Fields: unifiedFields(vital.Fields), Records: records}, domain.StatusOK
}

// unifiedFields keeps the numeric vital roles that exist and appends gap_score
func unifiedFields(vitalFields []domain.Role) []domain.Role {
	fields := []domain.Role{domain.RoleRegion}
	for _, role := range []domain.Role{domain.RoleYear, domain.RoleTotalBirths, domain.RolePrenatalVisits, domain.RoleMotherAge} {
		if domain.HasRole(vitalFields, role) {
			fields = append(fields, role)
		}
	}
	return append(fields, domain.RoleGapScore)
}

// sortUnified orders records by region, then year with null years first
func sortUnified(records []domain.UnifiedRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Region != b.Region {
			return a.Region < b.Region
		}
		switch {
		case a.Year == nil:
			return b.Year != nil
		case b.Year == nil:
			return false
		default:
			return *a.Year < *b.Year
		}
	})
}
