package dataprocessing

import (
	"strings"

	"github.com/Blaise762/FemTechBI-MVP/pkg/contracts/domain"
)

// StandardizeRegion maps a full state name or abbreviation to its two-letter
// code. Two-letter alphabetic input is upper-cased as-is. Anything else that
// does not match a known name comes back trimmed but otherwise unchanged.
func StandardizeRegion(value string) string {
	trimmed := strings.TrimSpace(value)
	if isTwoLetterCode(trimmed) {
		return strings.ToUpper(trimmed)
	}
	for _, r := range domain.AllRegions {
		if strings.EqualFold(trimmed, r.Name) {
			return string(r.Code)
		}
	}
	return trimmed
}

// StandardizeRegionCell applies StandardizeRegion to a raw cell. Nil stays nil.
func StandardizeRegionCell(cell any) *string {
	s, ok := CellString(cell)
	if !ok {
		return nil
	}
	return stringPtr(StandardizeRegion(s))
}

// IsKnownRegion reports whether code is one of the supported region codes
func IsKnownRegion(code string) bool {
	for _, r := range domain.AllRegions {
		if string(r.Code) == code {
			return true
		}
	}
	return false
}

func isTwoLetterCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		c := s[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}
