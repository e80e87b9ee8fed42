package domain

// RegionCode is the two-letter geographic key shared by both datasets
type RegionCode string

const (
	RegionAL RegionCode = "AL"
	RegionFL RegionCode = "FL"
	RegionGA RegionCode = "GA"
	RegionLA RegionCode = "LA"
	RegionMS RegionCode = "MS"
	RegionSC RegionCode = "SC"
)

// Region pairs a code with its full name
type Region struct {
	Code RegionCode `json:"code"`
	Name string     `json:"name"`
}

// AllRegions lists the supported regions ordered by code.
var AllRegions = []Region{
	{Code: RegionAL, Name: "Alabama"},
	{Code: RegionFL, Name: "Florida"},
	{Code: RegionGA, Name: "Georgia"},
	{Code: RegionLA, Name: "Louisiana"},
	{Code: RegionMS, Name: "Mississippi"},
	{Code: RegionSC, Name: "South Carolina"},
}

// AllRegionCodes returns the codes of AllRegions in order.
func AllRegionCodes() []RegionCode {
	codes := make([]RegionCode, len(AllRegions))
	for i, r := range AllRegions {
		codes[i] = r.Code
	}
	return codes
}
