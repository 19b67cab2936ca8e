package utils

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber coerces a spreadsheet cell to float64. Only plain numeric text is accepted:
// "1299", " 12.5 ", "1e3". Currency symbols, thousands separators and words fail, the same way
// a strict numeric cast would. NaN and ±Inf are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.NewReplacer("\u00a0", "", "\u202f", "").Replace(s))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumberOrNaN is ParseNumber for feature columns: an uncoercible value becomes NaN.
func NumberOrNaN(s string) float64 {
	if f, ok := ParseNumber(s); ok {
		return f
	}
	return math.NaN()
}
