package dataset

import (
	"strconv"
	"strings"
)

var moneyReplacer = strings.NewReplacer("$", "", ",", "", " ", "")

// ParseMoney parses a currency cell such as "$242,500". Blank or malformed
// cells yield nil.
func ParseMoney(s string) *float64 {
	return parseFloat(moneyReplacer.Replace(strings.TrimSpace(s)))
}

// ParseRatio parses a plain numeric cell such as "0.872". Blank or malformed
// cells yield nil.
func ParseRatio(s string) *float64 {
	return parseFloat(strings.TrimSpace(s))
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
