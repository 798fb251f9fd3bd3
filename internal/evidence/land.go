package evidence

import (
	"github.com/montanaflynn/stats"

	"github.com/stwalsh4118/taxappeal/internal/models"
)

// LandTrendRow is an area's land adjustment and land values for one year.
type LandTrendRow struct {
	AdjustFactor *float64 `json:"adjust_factor"`
	PriorValue   *float64 `json:"prior_land_value"`
	CurrentValue *float64 `json:"current_land_value"`
	Year         int      `json:"year"`
}

// LandValueTrend lists, oldest first, every study year whose adjustment
// table names the area.
func (a *Aggregator) LandValueTrend(code string) []LandTrendRow {
	var rows []LandTrendRow

	for _, year := range a.bundle.Years() {
		adj, ok := a.bundle.LandAdjustments(year)
		if !ok || !adj.HasAreaCode {
			continue
		}
		idx := -1
		for i, r := range adj.Rows {
			if r.AreaCode == code {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		row := LandTrendRow{Year: year, AdjustFactor: adj.Rows[idx].Factor}
		if land, ok := a.bundle.LandValues(year); ok {
			row.PriorValue, row.CurrentValue = landValues(land, code)
		}
		rows = append(rows, row)
	}
	return rows
}

// landValues picks the area's representative prior and current land values.
// The clean Area_Code column is preferred because ECF_Area values are
// sometimes concatenated with the subdivision name.
func landValues(t models.LandValueTable, code string) (prior, current *float64) {
	var priors, currents []float64

	for _, r := range t.Rows {
		var match bool
		switch {
		case t.HasAreaCode:
			match = r.AreaCode == code
		case t.HasECFArea:
			match = r.ECFArea == code
		}
		if !match {
			continue
		}
		if t.HasPrior && r.Prior != nil {
			priors = append(priors, *r.Prior)
		}
		if t.HasCurrent && r.Current != nil {
			currents = append(currents, *r.Current)
		}
	}
	return representative(priors), representative(currents)
}

// representative returns the unique most frequent value, or the median when
// no single value is most frequent.
func representative(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	if mode, ok := uniqueMode(values); ok {
		return &mode
	}
	median, _ := stats.Median(values)
	return &median
}

// uniqueMode reports the value occurring strictly more often than any other.
// stats.Mode returns every tied value, so ties are detected here.
func uniqueMode(values []float64) (float64, bool) {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	var mode float64
	best, tied := 0, false
	for v, n := range counts {
		switch {
		case n > best:
			mode, best, tied = v, n, false
		case n == best:
			tied = true
		}
	}
	if tied {
		return 0, false
	}
	return mode, true
}
