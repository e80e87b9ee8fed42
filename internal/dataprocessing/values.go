package dataprocessing

import (
	"math"
	"strconv"
	"strings"
)

// ToNumber converts a raw cell into a finite float64. It strips thousands
// separators from strings before parsing. Nil, blank, unparsable and
// non-finite input all report false; it never panics.
func ToNumber(cell any) (float64, bool) {
	var v float64
	switch c := cell.(type) {
	case nil:
		return 0, false
	case float64:
		v = c
	case float32:
		v = float64(c)
	case int:
		v = float64(c)
	case int8:
		v = float64(c)
	case int16:
		v = float64(c)
	case int32:
		v = float64(c)
	case int64:
		v = float64(c)
	case uint:
		v = float64(c)
	case uint8:
		v = float64(c)
	case uint16:
		v = float64(c)
	case uint32:
		v = float64(c)
	case uint64:
		v = float64(c)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(c), ",", "")
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// NumberPtr is ToNumber returning nil for null.
func NumberPtr(cell any) *float64 {
	v, ok := ToNumber(cell)
	if !ok {
		return nil
	}
	return &v
}

// CellString copies a categorical cell verbatim. Numbers are rendered
// without trailing zeros.
func CellString(cell any) (string, bool) {
	switch c := cell.(type) {
	case nil:
		return "", false
	case string:
		return c, true
	default:
		if v, ok := ToNumber(c); ok {
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
		return "", false
	}
}

func stringPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
