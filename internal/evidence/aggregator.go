// Package evidence computes the market evidence for one assessment area from
// the township's yearly study tables.
package evidence

import (
	"github.com/stwalsh4118/taxappeal/internal/dataset"
	"github.com/stwalsh4118/taxappeal/internal/models"
)

// Evidence is everything known about one area, recomputed on every request.
type Evidence struct {
	AreaCode            string               `json:"area_code"`
	Subdivision         string               `json:"subdivision"`
	CostFactorTrend     CostFactorTrend      `json:"cost_factor_trend"`
	PropertyCostFactors []PropertyCostFactor `json:"property_cost_factors"`
	ComparableSales     []ComparableSale     `json:"comparable_sales"`
	LandTrend           []LandTrendRow       `json:"land_trend"`
	Coverage            Coverage             `json:"coverage"`
	LatestYear          int                  `json:"latest_year"`
}

// LatestCostFactor returns the area's cost factor for the most recent study
// year, or nil when the area was not in that year's study.
func (e Evidence) LatestCostFactor() *float64 {
	return e.CostFactorTrend.For(e.LatestYear)
}

// Aggregator reads evidence out of a loaded bundle. It holds no state of its
// own, so it is safe to share across requests.
type Aggregator struct {
	bundle *dataset.Bundle
}

// NewAggregator creates an Aggregator over b.
func NewAggregator(b *dataset.Bundle) *Aggregator {
	return &Aggregator{bundle: b}
}

// Bundle returns the tables the aggregator reads from.
func (a *Aggregator) Bundle() *dataset.Bundle {
	return a.bundle
}

// Aggregate computes all five evidence views for areaCode.
func (a *Aggregator) Aggregate(areaCode string) Evidence {
	code := models.NormalizeAreaCode(areaCode)
	return Evidence{
		AreaCode:            code,
		Subdivision:         a.SubdivisionName(code),
		CostFactorTrend:     a.CostFactorTrend(code),
		PropertyCostFactors: a.PropertyCostFactors(code),
		ComparableSales:     a.ComparableSales(code),
		LandTrend:           a.LandValueTrend(code),
		Coverage:            a.SalesCoverage(code),
		LatestYear:          a.bundle.LatestYear(),
	}
}
