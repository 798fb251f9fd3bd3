package models

import "strings"

// Cost-factor domain bounds. Values on or outside these bounds are parse noise.
const (
	MinCostFactor = 0.1
	MaxCostFactor = 5.0
)

// maxAreaCodeLen bounds what counts as an area code when cataloguing areas.
// Longer values are concatenation artifacts in the source tables.
const maxAreaCodeLen = 10

// NormalizeAreaCode trims whitespace and any leading apostrophe markers that
// spreadsheet exports prepend to codes such as "'AR-4".
func NormalizeAreaCode(code string) string {
	return strings.TrimLeft(strings.TrimSpace(code), "'")
}

// ValidCostFactor returns v when it lies strictly inside the cost-factor
// domain and nil otherwise. Out-of-domain values are discarded, never clamped.
func ValidCostFactor(v *float64) *float64 {
	if v == nil {
		return nil
	}
	if *v <= MinCostFactor || *v >= MaxCostFactor {
		return nil
	}
	out := *v
	return &out
}

// IsAreaCode reports whether a normalized code looks like an assessor area
// code: short and alphanumeric once dashes and dots are removed.
func IsAreaCode(code string) bool {
	if code == "" || len(code) > maxAreaCodeLen {
		return false
	}
	stripped := strings.NewReplacer("-", "", ".", "").Replace(code)
	if stripped == "" {
		return false
	}
	for _, r := range stripped {
		isDigit := r >= '0' && r <= '9'
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isDigit && !isLetter {
			return false
		}
	}
	return true
}
