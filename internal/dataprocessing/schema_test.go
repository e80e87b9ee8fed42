package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

func TestMatchColumnsVital(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   map[domain.Role]int
	}{
		{
			name:   "simple",
			header: []string{"State", "Year", "Births"},
			want:   map[domain.Role]int{domain.RoleRegion: 0, domain.RoleYear: 1, domain.RoleTotalBirths: 2},
		},
		{
			name:   "birth rate is excluded",
			header: []string{"State", "Birth Rate", "Total Births"},
			want:   map[domain.Role]int{domain.RoleRegion: 0, domain.RoleTotalBirths: 2},
		},
		{
			name:   "first match wins",
			header: []string{"State Name", "State Code", "Births 2020", "Births"},
			want:   map[domain.Role]int{domain.RoleRegion: 0, domain.RoleTotalBirths: 2},
		},
		{
			name:   "decorative whitespace and mixed case",
			header: []string{"  STATE  ", " Prenatal Visits ", "Mother's Age", "Race of Mother"},
			want: map[domain.Role]int{
				domain.RoleRegion:         0,
				domain.RolePrenatalVisits: 1,
				domain.RoleMotherAge:      2,
				domain.RoleRace:           3,
			},
		},
		{
			name:   "mother age falls back to bare age",
			header: []string{"State", "Age Percent", "Stage", "Maternal Age"},
			want:   map[domain.Role]int{domain.RoleRegion: 0, domain.RoleMotherAge: 3},
		},
		{
			name:   "averages are not bare age",
			header: []string{"State", "Year", "Births (Average)", "Average Prenatal Visits", "Avg Visits"},
			want: map[domain.Role]int{
				domain.RoleRegion:         0,
				domain.RoleYear:           1,
				domain.RoleTotalBirths:    2,
				domain.RolePrenatalVisits: 3,
			},
		},
		{
			name:   "mother age at birth is not total births",
			header: []string{"State", "Mother's Age at Birth", "Births"},
			want:   map[domain.Role]int{domain.RoleRegion: 0, domain.RoleTotalBirths: 2, domain.RoleMotherAge: 1},
		},
		{
			name:   "mother age keyword beats earlier bare age",
			header: []string{"State", "Age", "Mother Age"},
			want:   map[domain.Role]int{domain.RoleRegion: 0, domain.RoleMotherAge: 2},
		},
		{
			name:   "birth year is not total births",
			header: []string{"State", "Birth Year", "Births"},
			want:   map[domain.Role]int{domain.RoleRegion: 0, domain.RoleYear: 1, domain.RoleTotalBirths: 2},
		},
		{
			name:   "no matches",
			header: []string{"foo", "bar"},
			want:   map[domain.Role]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchColumns(tt.header, VitalStatisticsRules))
		})
	}
}

func TestMatchColumnsShortage(t *testing.T) {
	got := MatchColumns([]string{"HPSA Name", "State", "HPSA Score"}, ShortageScoreRules)
	assert.Equal(t, map[domain.Role]int{domain.RoleRegion: 1, domain.RoleGapScore: 2}, got)

	got = MatchColumns([]string{"state", "score"}, ShortageScoreRules)
	assert.Equal(t, map[domain.Role]int{domain.RoleRegion: 0}, got)

	got = MatchColumns([]string{"STATE", "hpsa_score"}, ShortageScoreRules)
	assert.Equal(t, map[domain.Role]int{domain.RoleRegion: 0, domain.RoleGapScore: 1}, got)
}

func TestMapVitalStatistics(t *testing.T) {
	raw := domain.RawTable{
		Header: []string{"State", "Year", "Births", "Race"},
		Rows: [][]any{
			{"Georgia", "2020", "1,000", "White"},
			{"al", 2021.0, "bad"},
			{nil, "2020", "5"},
		},
	}

	table := MapVitalStatistics(raw)
	assert.Equal(t, []domain.Role{domain.RoleRegion, domain.RoleYear, domain.RoleTotalBirths, domain.RoleRace}, table.Fields)
	require.Len(t, table.Records, 3)

	first := table.Records[0]
	require.NotNil(t, first.Region)
	assert.Equal(t, "GA", *first.Region)
	assert.Equal(t, 2020.0, *first.Year)
	assert.Equal(t, 1000.0, *first.TotalBirths)
	assert.Equal(t, "White", *first.Race)
	assert.Nil(t, first.PrenatalVisits)
	assert.Nil(t, first.MotherAge)

	second := table.Records[1]
	assert.Equal(t, "AL", *second.Region)
	assert.Nil(t, second.TotalBirths, "unparsable births are null")
	assert.Nil(t, second.Race, "ragged row reads as null")

	assert.Nil(t, table.Records[2].Region)
}

func TestMapVitalStatisticsEmpty(t *testing.T) {
	tests := []struct {
		name string
		raw  domain.RawTable
	}{
		{"zero value", domain.RawTable{}},
		{"header only", domain.RawTable{Header: []string{"State", "Births"}}},
		{"rows without header", domain.RawTable{Rows: [][]any{{"GA"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := MapVitalStatistics(tt.raw)
			assert.Empty(t, table.Fields)
			assert.Empty(t, table.Records)
			assert.True(t, table.IsEmpty())
		})
	}
}

func TestMapShortageScores(t *testing.T) {
	raw := domain.RawTable{
		Header: []string{"State", "HPSA Score"},
		Rows: [][]any{
			{"Georgia", 5.0},
			{"MS", "12"},
			{"Louisiana", nil},
		},
	}

	table := MapShortageScores(raw)
	assert.Equal(t, []domain.Role{domain.RoleRegion, domain.RoleGapScore}, table.Fields)
	require.Len(t, table.Records, 3)
	assert.Equal(t, "GA", *table.Records[0].Region)
	assert.Equal(t, 5.0, *table.Records[0].GapScore)
	assert.Equal(t, 12.0, *table.Records[1].GapScore)
	assert.Nil(t, table.Records[2].GapScore)
}

func TestMappersAreIdempotent(t *testing.T) {
	raw := domain.RawTable{
		Header: []string{"State", "Year", "Births", "Prenatal Visits", "Mother Age"},
		Rows: [][]any{
			{"Georgia", "2020", "1,000", "9", "28"},
			{"GA", "2021", "2,000", "", "29.5"},
		},
	}
	assert.Equal(t, MapVitalStatistics(raw), MapVitalStatistics(raw))

	short := domain.RawTable{Header: []string{"state", "hpsa score"}, Rows: [][]any{{"Georgia", "5"}}}
	assert.Equal(t, MapShortageScores(short), MapShortageScores(short))
}
