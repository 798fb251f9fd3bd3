package evidence

import (
	"github.com/stwalsh4118/taxappeal/internal/models"
)

// YearFactor is an area's average cost factor for one study year. A nil
// Factor means the area was absent from that year's study.
type YearFactor struct {
	Factor *float64 `json:"cost_factor"`
	Year   int      `json:"year"`
}

// CostFactorTrend lists an area's cost factor per study year, oldest first.
type CostFactorTrend []YearFactor

// For returns the factor recorded for year, or nil.
func (t CostFactorTrend) For(year int) *float64 {
	for _, yf := range t {
		if yf.Year == year {
			return yf.Factor
		}
	}
	return nil
}

// PropertyCostFactor is one sold property's own cost factor.
type PropertyCostFactor struct {
	SalePrice    *float64 `json:"sale_price,omitempty"`
	CostManual   *float64 `json:"cost_manual,omitempty"`
	Address      string   `json:"address"`
	ParcelNumber string   `json:"parcel_number"`
	CostFactor   float64  `json:"cost_factor"`
	Year         int      `json:"year"`
}

// CostFactorTrend reports the area's average cost factor for every study
// year. The first summary row for the area is authoritative.
func (a *Aggregator) CostFactorTrend(code string) CostFactorTrend {
	years := a.bundle.Years()
	trend := make(CostFactorTrend, 0, len(years))

	for _, year := range years {
		yf := YearFactor{Year: year}
		if t, ok := a.bundle.Summaries(year); ok {
			for _, r := range t.Rows {
				if r.AreaCode == code {
					yf.Factor = models.ValidCostFactor(r.AverageCostFactor)
					break
				}
			}
		}
		trend = append(trend, yf)
	}
	return trend
}

// PropertyCostFactors lists every sold property in the area that carries a
// cost factor, across all study years.
func (a *Aggregator) PropertyCostFactors(code string) []PropertyCostFactor {
	var out []PropertyCostFactor

	for _, year := range a.bundle.Years() {
		t, ok := a.bundle.CostFactors(year)
		if !ok || t.AreaColumn == "" {
			continue
		}
		for _, r := range t.Rows {
			if r.AreaCode != code {
				continue
			}
			ecf := models.ValidCostFactor(r.CostFactor)
			if ecf == nil {
				continue
			}
			out = append(out, PropertyCostFactor{
				Year:         year,
				Address:      r.StreetAddress,
				ParcelNumber: r.ParcelNumber,
				SalePrice:    r.SalePrice,
				CostManual:   r.CostManual,
				CostFactor:   *ecf,
			})
		}
	}
	return out
}

// SubdivisionName returns the area's display name. The newest summary table
// naming the area wins, then the newest land adjustment table, then the code
// itself.
func (a *Aggregator) SubdivisionName(code string) string {
	years := a.bundle.Years()

	for i := len(years) - 1; i >= 0; i-- {
		t, ok := a.bundle.Summaries(years[i])
		if !ok {
			continue
		}
		for _, r := range t.Rows {
			if r.AreaCode == code {
				if r.Subdivision != "" {
					return r.Subdivision
				}
				break
			}
		}
	}

	for i := len(years) - 1; i >= 0; i-- {
		t, ok := a.bundle.LandAdjustments(years[i])
		if !ok || !t.HasAreaCode {
			continue
		}
		for _, r := range t.Rows {
			if r.AreaCode == code {
				if r.Subdivision != "" {
					return r.Subdivision
				}
				break
			}
		}
	}

	return code
}
