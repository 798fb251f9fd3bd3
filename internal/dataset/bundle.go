// Package dataset holds the township's yearly residential study tables.
//
// A Bundle is built once at startup and shared read-only by every analysis.
// Nothing in the bundle is mutated after NewBundle returns, so it needs no
// locking and two analyses of the same area always see the same inputs.
package dataset

import (
	"sort"

	"github.com/stwalsh4118/taxappeal/internal/models"
)

// Tables groups the per-kind tables handed to NewBundle. Each slice holds at
// most one table per year; a year with no file simply has no entry.
type Tables struct {
	Sales           []models.SalesTable
	CostFactors     []models.CostFactorTable
	Summaries       []models.AreaSummaryTable
	LandValues      []models.LandValueTable
	LandAdjustments []models.LandAdjustmentTable
}

// Bundle is the immutable collection of yearly study tables.
type Bundle struct {
	sales           map[int]models.SalesTable
	costFactors     map[int]models.CostFactorTable
	summaries       map[int]models.AreaSummaryTable
	landValues      map[int]models.LandValueTable
	landAdjustments map[int]models.LandAdjustmentTable
	years           []int
	areas           []string
}

// NewBundle indexes the tables by year. years lists the study years the
// bundle covers, whether or not every kind of table exists for each.
func NewBundle(years []int, t Tables) *Bundle {
	b := &Bundle{
		years:           append([]int(nil), years...),
		sales:           make(map[int]models.SalesTable, len(t.Sales)),
		costFactors:     make(map[int]models.CostFactorTable, len(t.CostFactors)),
		summaries:       make(map[int]models.AreaSummaryTable, len(t.Summaries)),
		landValues:      make(map[int]models.LandValueTable, len(t.LandValues)),
		landAdjustments: make(map[int]models.LandAdjustmentTable, len(t.LandAdjustments)),
	}
	sort.Ints(b.years)

	for _, s := range t.Sales {
		b.sales[s.Year] = s
	}
	for _, c := range t.CostFactors {
		b.costFactors[c.Year] = c
	}
	for _, s := range t.Summaries {
		b.summaries[s.Year] = s
	}
	for _, l := range t.LandValues {
		b.landValues[l.Year] = l
	}
	for _, l := range t.LandAdjustments {
		b.landAdjustments[l.Year] = l
	}

	b.areas = b.catalogueAreas()
	return b
}

// Years returns the study years in ascending order.
func (b *Bundle) Years() []int {
	return append([]int(nil), b.years...)
}

// LatestYear returns the most recent study year, or 0 for an empty bundle.
func (b *Bundle) LatestYear() int {
	if len(b.years) == 0 {
		return 0
	}
	return b.years[len(b.years)-1]
}

// Sales returns the sales table for year.
func (b *Bundle) Sales(year int) (models.SalesTable, bool) {
	t, ok := b.sales[year]
	return t, ok
}

// CostFactors returns the per-property cost-factor table for year.
func (b *Bundle) CostFactors(year int) (models.CostFactorTable, bool) {
	t, ok := b.costFactors[year]
	return t, ok
}

// Summaries returns the area-level cost-factor summary for year.
func (b *Bundle) Summaries(year int) (models.AreaSummaryTable, bool) {
	t, ok := b.summaries[year]
	return t, ok
}

// LandValues returns the land analysis table for year.
func (b *Bundle) LandValues(year int) (models.LandValueTable, bool) {
	t, ok := b.landValues[year]
	return t, ok
}

// LandAdjustments returns the land adjustment table for year.
func (b *Bundle) LandAdjustments(year int) (models.LandAdjustmentTable, bool) {
	t, ok := b.landAdjustments[year]
	return t, ok
}

// Areas returns the sorted catalogue of area codes found in the area-level
// summaries and the land adjustment tables.
func (b *Bundle) Areas() []string {
	return append([]string(nil), b.areas...)
}

// HasArea reports whether code is in the area catalogue.
func (b *Bundle) HasArea(code string) bool {
	code = models.NormalizeAreaCode(code)
	i := sort.SearchStrings(b.areas, code)
	return i < len(b.areas) && b.areas[i] == code
}

func (b *Bundle) catalogueAreas() []string {
	seen := make(map[string]struct{})
	add := func(code string) {
		if models.IsAreaCode(code) {
			seen[code] = struct{}{}
		}
	}

	for _, year := range b.years {
		if t, ok := b.summaries[year]; ok {
			for _, r := range t.Rows {
				add(r.AreaCode)
			}
		}
		if t, ok := b.landAdjustments[year]; ok && t.HasAreaCode {
			for _, r := range t.Rows {
				add(r.AreaCode)
			}
		}
	}

	areas := make([]string, 0, len(seen))
	for code := range seen {
		areas = append(areas, code)
	}
	sort.Strings(areas)
	return areas
}
