package domain

// Role is the semantic meaning a mapper assigns to a raw column
type Role string

const (
	RoleRegion         Role = "region"
	RoleYear           Role = "year"
	RoleTotalBirths    Role = "total_births"
	RolePrenatalVisits Role = "prenatal_visits"
	RoleMotherAge      Role = "mother_age"
	RoleRace           Role = "race"
	RoleGapScore       Role = "gap_score"
)

// HasRole reports whether role is present in fields.
func HasRole(fields []Role, role Role) bool {
	for _, f := range fields {
		if f == role {
			return true
		}
	}
	return false
}

// VitalRecord is one canonical row of the vital-statistics source. A nil
// pointer is a per-row null; whether the column exists at all is recorded in
// VitalTable.Fields.
type VitalRecord struct {
	Region         *string  `json:"region,omitempty"`
	Year           *float64 `json:"year,omitempty"`
	TotalBirths    *float64 `json:"total_births,omitempty"`
	PrenatalVisits *float64 `json:"prenatal_visits,omitempty"`
	MotherAge      *float64 `json:"mother_age,omitempty"`
	Race           *string  `json:"race,omitempty"`
}

// VitalTable is the canonical projection of a vital-statistics RawTable
type VitalTable struct {
	Fields  []Role        `json:"fields"`
	Records []VitalRecord `json:"records"`
}

// IsEmpty reports whether the table has no records
func (t VitalTable) IsEmpty() bool { return len(t.Records) == 0 }

// ShortageRecord is one canonical row of the shortage-score source
type ShortageRecord struct {
	Region   *string  `json:"region,omitempty"`
	GapScore *float64 `json:"gap_score,omitempty"`
}

// ShortageTable is the canonical projection of a shortage-score RawTable
type ShortageTable struct {
	Fields  []Role           `json:"fields"`
	Records []ShortageRecord `json:"records"`
}

// IsEmpty reports whether the table has no records
func (t ShortageTable) IsEmpty() bool { return len(t.Records) == 0 }

// UnifiedRecord is one aggregated (region, year) row. GapScore is never null:
// regions without shortage data carry 0.
type UnifiedRecord struct {
	Region         string   `json:"region"`
	Year           *float64 `json:"year"`
	TotalBirths    *float64 `json:"total_births"`
	PrenatalVisits *float64 `json:"prenatal_visits"`
	MotherAge      *float64 `json:"mother_age"`
	GapScore       float64  `json:"gap_score"`
}

// UnifiedTable is the joined output. Fields lists the vital-statistics roles
// that survived into the join plus gap_score.
type UnifiedTable struct {
	Fields  []Role          `json:"fields"`
	Records []UnifiedRecord `json:"records"`
}

// ScoredRecord is one region-level row with the derived opportunity index
type ScoredRecord struct {
	Region           string  `json:"region"`
	TotalBirths      float64 `json:"total_births"`
	GapScore         float64 `json:"gap_score"`
	OpportunityIndex float64 `json:"opportunity_index"`
}
