// Package valuation turns area evidence into a recommended assessed value
// and an appeal verdict.
package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/stwalsh4118/taxappeal/internal/evidence"
	"github.com/stwalsh4118/taxappeal/internal/models"
)

// RoundingIncrement is the step recommended assessed values are rounded to.
const RoundingIncrement = 5000

// Range is a recommended true cash value range. Low is the primary ask.
type Range struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Verdict is the outcome of valuing one property against its area evidence.
type Verdict struct {
	LatestCostFactor  *float64 `json:"latest_cost_factor,omitempty"`
	AdjustedTCV       *float64 `json:"cost_factor_adjusted_tcv,omitempty"`
	OvervaluationPct  *float64 `json:"overvaluation_pct,omitempty"`
	Range             Range    `json:"recommended_tcv_range"`
	AssessedValue     int64    `json:"assessed_value"`
	TrueCashValue     int64    `json:"true_cash_value"`
	RecommendedSEV    int64    `json:"recommended_assessed_value"`
	RecommendedTCV    int64    `json:"recommended_true_cash_value"`
	AppealRecommended bool     `json:"appeal_recommended"`
}

// SEVDelta is the requested change in assessed value.
func (v Verdict) SEVDelta() int64 {
	return v.RecommendedSEV - v.AssessedValue
}

// indicatesOvervaluation reports whether a cost factor is usable evidence of
// the cost approach overstating market value.
func indicatesOvervaluation(ecf *float64) bool {
	return ecf != nil && *ecf < 1.0
}

// RecommendedRange combines the cost factor and sales evidence into a
// recommended true cash value range. With no evidence the range collapses to
// the current value.
func RecommendedRange(latestFactor *float64, tcv float64, sales evidence.SalesStats) Range {
	var candidates []float64
	if indicatesOvervaluation(latestFactor) {
		adjusted := tcv * *latestFactor
		candidates = append(candidates, adjusted)
	}
	if sales.HasSales() {
		candidates = append(candidates, sales.Prices.Median, sales.Prices.Mean)
	}
	if len(candidates) == 0 {
		return Range{Low: tcv, High: tcv}
	}

	var primary float64
	switch {
	case sales.HasSales():
		primary = sales.Prices.Median
	case indicatesOvervaluation(latestFactor):
		primary = tcv * *latestFactor
	default:
		primary = tcv
	}

	high := candidates[0]
	for _, c := range candidates[1:] {
		if c > high {
			high = c
		}
	}
	return Range{Low: primary, High: high}
}

// RoundToIncrement rounds v to the nearest multiple of increment. Exact
// midpoints round away from zero.
func RoundToIncrement(v float64, increment int64) int64 {
	step := decimal.NewFromInt(increment)
	return decimal.NewFromFloat(v).Div(step).Round(0).Mul(step).IntPart()
}

// Evaluate values a property assessed at assessed against the latest cost
// factor and the comparable sales. An appeal is recommended only when the
// rounded recommended assessed value is below the current one.
func Evaluate(assessed int64, latestFactor *float64, sales evidence.SalesStats) Verdict {
	tcv := models.TCVFromSEV(assessed)
	r := RecommendedRange(latestFactor, float64(tcv), sales)

	recSEV := RoundToIncrement(r.Low/models.TCVMultiplier, RoundingIncrement)

	v := Verdict{
		LatestCostFactor:  latestFactor,
		OvervaluationPct:  OvervaluationPct(latestFactor),
		Range:             r,
		AssessedValue:     assessed,
		TrueCashValue:     tcv,
		RecommendedSEV:    recSEV,
		RecommendedTCV:    models.TCVFromSEV(recSEV),
		AppealRecommended: recSEV < assessed,
	}
	if indicatesOvervaluation(latestFactor) {
		v.AdjustedTCV = CostFactorAdjustedValue(latestFactor, float64(tcv))
	}
	return v
}

// CostFactorAdjustedValue applies a cost factor to a true cash value.
func CostFactorAdjustedValue(ecf *float64, tcv float64) *float64 {
	if ecf == nil || *ecf <= 0 {
		return nil
	}
	v := tcv * *ecf
	return &v
}

// OvervaluationPct is how far, in percent, the cost approach exceeds market
// value for a cost factor below one.
func OvervaluationPct(ecf *float64) *float64 {
	if !indicatesOvervaluation(ecf) {
		return nil
	}
	v := (1 - *ecf) * 100
	return &v
}
