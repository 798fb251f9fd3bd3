package models

// The township publishes five residential tables per study year. Column
// presence varies by year, so every table records which optional columns it
// carried and every nullable cell is a pointer. A missing column means the
// data is absent for the whole year, which is different from a zero value.

// SaleRow is one row of a year's residential sales analysis.
type SaleRow struct {
	SalePrice     *float64
	AdjustedPrice *float64
	AreaCode      string
	StreetAddress string
	ParcelNumber  string
	SaleDate      string
	TermsOfSale   string
}

// SalesTable is one year's sales analysis.
type SalesTable struct {
	Rows        []SaleRow
	Year        int
	HasAreaCode bool
	HasTerms    bool
}

// CostFactorRow is one property's entry in a year's cost-factor analysis.
type CostFactorRow struct {
	SalePrice     *float64
	CostManual    *float64
	CostFactor    *float64
	AreaCode      string
	StreetAddress string
	ParcelNumber  string
}

// CostFactorTable is one year's per-property cost-factor analysis.
// AreaColumn names the column the area codes were read from, or is empty
// when the year carried no area column at all.
type CostFactorTable struct {
	AreaColumn string
	Rows       []CostFactorRow
	Year       int
}

// AreaSummaryRow is one area's entry in a year's cost-factor summary.
type AreaSummaryRow struct {
	AverageCostFactor *float64
	AreaCode          string
	Subdivision       string
}

// AreaSummaryTable is one year's area-level cost-factor summary.
type AreaSummaryTable struct {
	Rows []AreaSummaryRow
	Year int
}

// LandValueRow is one row of a year's land analysis. Prior and Current hold
// the year-specific land value columns after they are normalized to roles.
type LandValueRow struct {
	Prior    *float64
	Current  *float64
	AreaCode string
	ECFArea  string
}

// LandValueTable is one year's land analysis.
type LandValueTable struct {
	Rows        []LandValueRow
	Year        int
	HasAreaCode bool
	HasECFArea  bool
	HasPrior    bool
	HasCurrent  bool
}

// LandAdjustmentRow is one area's land adjustment factor for a year.
type LandAdjustmentRow struct {
	Factor      *float64
	AreaCode    string
	Subdivision string
}

// LandAdjustmentTable is one year's land adjustment factors.
type LandAdjustmentTable struct {
	Rows        []LandAdjustmentRow
	Year        int
	HasAreaCode bool
}
