package evidence

import (
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/montanaflynn/stats"
)

// LotOnlyThreshold is the adjusted sale price below which a sale is taken to
// be a vacant lot rather than a home.
const LotOnlyThreshold = 150000

// armsLengthMarker identifies arm's-length terms of sale, case-insensitively.
const armsLengthMarker = "ARM"

// ComparableSale is an arm's-length home sale in the area.
type ComparableSale struct {
	SalePrice     *float64   `json:"sale_price,omitempty"`
	SoldOn        *time.Time `json:"-"`
	ParcelNumber  string     `json:"parcel_number"`
	Address       string     `json:"address"`
	SaleDate      string     `json:"sale_date"`
	AdjustedPrice float64    `json:"adjusted_price"`
	Year          int        `json:"year"`
}

// ComparableSales collects the area's arm's-length home sales across all
// study years. A sale listed in several years' studies appears once, taking
// the row from the latest study. Sales are ordered newest first.
func (a *Aggregator) ComparableSales(code string) []ComparableSale {
	var all []ComparableSale

	for _, year := range a.bundle.Years() {
		t, ok := a.bundle.Sales(year)
		if !ok || !t.HasAreaCode || !t.HasTerms {
			continue
		}
		for _, r := range t.Rows {
			if r.AreaCode != code {
				continue
			}
			if !strings.Contains(strings.ToUpper(r.TermsOfSale), armsLengthMarker) {
				continue
			}
			if r.AdjustedPrice == nil || *r.AdjustedPrice < LotOnlyThreshold {
				continue
			}
			sale := ComparableSale{
				Year:          year,
				ParcelNumber:  r.ParcelNumber,
				Address:       r.StreetAddress,
				SaleDate:      r.SaleDate,
				SalePrice:     r.SalePrice,
				AdjustedPrice: *r.AdjustedPrice,
			}
			if when, err := dateparse.ParseAny(r.SaleDate); err == nil {
				sale.SoldOn = &when
			}
			all = append(all, sale)
		}
	}

	sales := dedupeSales(all)
	sort.SliceStable(sales, func(i, j int) bool {
		a, b := sales[i].SoldOn, sales[j].SoldOn
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return sales
}

// dedupeSales keeps the last occurrence of each (parcel, sale date) pair.
func dedupeSales(sales []ComparableSale) []ComparableSale {
	seen := make(map[string]struct{}, len(sales))
	kept := make([]ComparableSale, 0, len(sales))

	for i := len(sales) - 1; i >= 0; i-- {
		key := saleKey(sales[i])
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, sales[i])
	}

	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

func saleKey(s ComparableSale) string {
	date := strings.TrimSpace(s.SaleDate)
	if s.SoldOn != nil {
		date = s.SoldOn.Format("2006-01-02")
	}
	return strings.TrimSpace(s.ParcelNumber) + "_" + date
}

// SalesStats summarizes comparable sales against the homeowner's true cash
// value. Prices is nil when there are no sales.
type SalesStats struct {
	Prices *PriceStats `json:"prices,omitempty"`
	Count  int         `json:"count"`
}

// PriceStats describes the adjusted sale prices of a non-empty sales set.
type PriceStats struct {
	Mean            float64 `json:"mean"`
	Median          float64 `json:"median"`
	Min             float64 `json:"min"`
	Max             float64 `json:"max"`
	PctBelowTCV     float64 `json:"pct_below_tcv"`
	PctAboveTCV     float64 `json:"pct_above_tcv"`
	DeltaFromMedian float64 `json:"delta_from_median"`
	DeltaPct        float64 `json:"delta_pct"`
	BelowCount      int     `json:"below_count"`
}

// HasSales reports whether any comparable sale was found.
func (s SalesStats) HasSales() bool {
	return s.Count > 0 && s.Prices != nil
}

// ComputeSalesStats compares the sales to tcv.
func ComputeSalesStats(sales []ComparableSale, tcv float64) SalesStats {
	if len(sales) == 0 {
		return SalesStats{}
	}

	prices := make(stats.Float64Data, 0, len(sales))
	below := 0
	for _, s := range sales {
		prices = append(prices, s.AdjustedPrice)
		if s.AdjustedPrice < tcv {
			below++
		}
	}

	// The inputs are non-empty, which is the only error these return.
	mean, _ := prices.Mean()
	median, _ := prices.Median()
	lo, _ := prices.Min()
	hi, _ := prices.Max()

	count := len(prices)
	p := &PriceStats{
		Mean:            mean,
		Median:          median,
		Min:             lo,
		Max:             hi,
		BelowCount:      below,
		PctBelowTCV:     float64(below) / float64(count) * 100,
		DeltaFromMedian: tcv - median,
	}
	p.PctAboveTCV = 100 - p.PctBelowTCV
	if median > 0 {
		p.DeltaPct = (tcv - median) / median * 100
	}

	return SalesStats{Count: count, Prices: p}
}
