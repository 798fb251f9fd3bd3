package extract

import (
	"regexp"
	"strconv"
)

var (
	numberNoise    = regexp.MustCompile(`[,\s$]`)
	trailingLetter = regexp.MustCompile(`[a-zA-Z]+$`)
	splitGrouping  = regexp.MustCompile(`(\d)\s*,\s*(\d)`)
)

// CleanNumber parses an integer out of recognized text. Grouping commas,
// whitespace, currency signs and trailing marker letters ("231,890c") are
// dropped first. Anything still not an integer yields nil.
func CleanNumber(s string) *int64 {
	if s == "" {
		return nil
	}
	cleaned := numberNoise.ReplaceAllString(s, "")
	cleaned = trailingLetter.ReplaceAllString(cleaned, "")
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

// cleanOrZero is CleanNumber for fields whose absence is recorded as zero.
func cleanOrZero(s string) int64 {
	if v := CleanNumber(s); v != nil {
		return *v
	}
	return 0
}

// NormalizeOCRNumbers collapses spaces the recognizer inserts around
// grouping commas, so "192 , 337" becomes "192,337".
func NormalizeOCRNumbers(text string) string {
	return splitGrouping.ReplaceAllString(text, "${1},${2}")
}
