package models

import "sort"

// TCVMultiplier is the statutory ratio between true cash value and
// state-equalized (assessed) value.
const TCVMultiplier = 2

// CurrentYear is the assessment year under appeal.
const CurrentYear = 2026

// AssessmentYear is one row of a record card's assessment history table.
// All monetary fields are nullable: nil means the value was not recognized.
type AssessmentYear struct {
	LandValue     *int64 `json:"land_value,omitempty"`
	BuildingValue *int64 `json:"building_value,omitempty"`
	AssessedValue *int64 `json:"assessed_value,omitempty"`
	TaxableValue  *int64 `json:"taxable_value,omitempty"`
	Year          int    `json:"year"`
}

// PropertyRecord is a homeowner's property as read from a record card or
// entered by hand. It is a value object: a new record replaces the old one
// whenever the input changes.
type PropertyRecord struct {
	CostFactor           *float64         `json:"cost_factor,omitempty"`
	ParcelNumber         string           `json:"parcel_number"`
	Address              string           `json:"address"`
	AreaCode             string           `json:"area_code"`
	Subdivision          string           `json:"subdivision"`
	Condition            string           `json:"condition,omitempty"`
	Style                string           `json:"style,omitempty"`
	RawTextPage1         string           `json:"-"`
	RawTextPage2         string           `json:"-"`
	History              []AssessmentYear `json:"assessment_history"`
	AssessedValue        int64            `json:"assessed_value"`
	TrueCashValue        int64            `json:"true_cash_value"`
	LandValue            int64            `json:"land_value"`
	TotalBaseNew         int64            `json:"total_base_new,omitempty"`
	TotalDepreciatedCost int64            `json:"total_depreciated_cost,omitempty"`
	CostApproachTCV      int64            `json:"cost_approach_tcv,omitempty"`
	FloorArea            int              `json:"floor_area,omitempty"`
	GroundArea           int              `json:"ground_area,omitempty"`
	BasementArea         int              `json:"basement_area,omitempty"`
	YearBuilt            int              `json:"year_built,omitempty"`
	EffectiveAge         int              `json:"effective_age,omitempty"`
}

// HistoryChange is the year-over-year movement of the assessed value.
type HistoryChange struct {
	ChangePct     *float64 `json:"change_pct,omitempty"`
	Change        *int64   `json:"change,omitempty"`
	Year          int      `json:"year"`
	AssessedValue int64    `json:"assessed_value"`
}

// TCVFromSEV returns the true cash value implied by an assessed value.
func TCVFromSEV(sev int64) int64 {
	return sev * TCVMultiplier
}

// SEVFromTCV returns the assessed value implied by a true cash value,
// rounded down to a whole currency unit.
func SEVFromTCV(tcv int64) int64 {
	return tcv / TCVMultiplier
}

// HistoryFor returns the history row for year, if present.
func (p *PropertyRecord) HistoryFor(year int) (AssessmentYear, bool) {
	for _, h := range p.History {
		if h.Year == year {
			return h, true
		}
	}
	return AssessmentYear{}, false
}

// TaxableValueFor returns the taxable value recorded for year, or nil.
func (p *PropertyRecord) TaxableValueFor(year int) *int64 {
	h, ok := p.HistoryFor(year)
	if !ok {
		return nil
	}
	return h.TaxableValue
}

// SortHistory orders the assessment history by ascending year.
func (p *PropertyRecord) SortHistory() {
	sort.SliceStable(p.History, func(i, j int) bool {
		return p.History[i].Year < p.History[j].Year
	})
}

// HistoryChanges lists each history row with an assessed value alongside its
// change from the previous such row. The first row carries no change.
func (p *PropertyRecord) HistoryChanges() []HistoryChange {
	changes := make([]HistoryChange, 0, len(p.History))
	var prev *int64
	for _, h := range p.History {
		if h.AssessedValue == nil {
			continue
		}
		c := HistoryChange{Year: h.Year, AssessedValue: *h.AssessedValue}
		if prev != nil {
			delta := *h.AssessedValue - *prev
			c.Change = &delta
			if *prev > 0 {
				pct := float64(delta) / float64(*prev) * 100
				c.ChangePct = &pct
			}
		}
		prev = h.AssessedValue
		changes = append(changes, c)
	}
	return changes
}
