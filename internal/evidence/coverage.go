package evidence

// CoverageStatus classifies an area's presence in the sales studies.
type CoverageStatus string

const (
	// CoverageCovered means the area has sales in the latest study.
	CoverageCovered CoverageStatus = "covered"
	// CoverageDropped means the area had sales in an earlier study but none
	// in the latest one.
	CoverageDropped CoverageStatus = "dropped"
	// CoverageNever means the area had no sales in any study.
	CoverageNever CoverageStatus = "never"
)

// YearCount is the number of an area's sales in one year's study.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// Coverage lists an area's sales count per study year, oldest first.
type Coverage []YearCount

// For returns the count for year.
func (c Coverage) For(year int) int {
	for _, yc := range c {
		if yc.Year == year {
			return yc.Count
		}
	}
	return 0
}

// Status classifies the coverage as of the newest year listed.
func (c Coverage) Status() CoverageStatus {
	if len(c) == 0 {
		return CoverageNever
	}
	if c[len(c)-1].Count > 0 {
		return CoverageCovered
	}
	for _, yc := range c[:len(c)-1] {
		if yc.Count > 0 {
			return CoverageDropped
		}
	}
	return CoverageNever
}

// DroppedYears lists the years with no sales after the area had appeared in
// an earlier study.
func (c Coverage) DroppedYears() []int {
	var dropped []int
	seen := false
	for _, yc := range c {
		switch {
		case yc.Count > 0:
			seen = true
		case seen:
			dropped = append(dropped, yc.Year)
		}
	}
	return dropped
}

// SalesCoverage counts the area's rows in each year's sales study. A year
// without a sales table, or whose table has no area column, counts zero.
func (a *Aggregator) SalesCoverage(code string) Coverage {
	years := a.bundle.Years()
	coverage := make(Coverage, 0, len(years))

	for _, year := range years {
		yc := YearCount{Year: year}
		if t, ok := a.bundle.Sales(year); ok && t.HasAreaCode {
			for _, r := range t.Rows {
				if r.AreaCode == code {
					yc.Count++
				}
			}
		}
		coverage = append(coverage, yc)
	}
	return coverage
}
