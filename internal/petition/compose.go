// Package petition renders area evidence and a valuation verdict as the plain
// text petition filed with the township Board of Review.
//
// The text is the artifact other formats are produced from, so its layout
// (banners, headings and their order, fixed legal wording) is part of its
// contract.
package petition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stwalsh4118/taxappeal/internal/evidence"
	"github.com/stwalsh4118/taxappeal/internal/models"
	"github.com/stwalsh4118/taxappeal/internal/valuation"
)

const (
	township       = "Pittsfield Charter Township"
	county         = "Washtenaw"
	schoolDistrict = "Ann Arbor Public Schools"
	classification = "Residential (401)"
	mailingSuffix  = ", Ypsilanti, MI 48197"
)

// Input is everything a petition is composed from.
type Input struct {
	Property *models.PropertyRecord
	Evidence evidence.Evidence
	Sales    evidence.SalesStats
	Verdict  valuation.Verdict
}

// Compose renders the petition. When no appeal is recommended a short
// analysis explaining why is returned instead of a petition.
func Compose(in Input) string {
	c := newComposer(in)
	if !in.Verdict.AppealRecommended {
		return strings.Join(c.notRecommended(), "\n")
	}
	return strings.Join(c.petition(), "\n")
}

type composer struct {
	in    Input
	n     numbers
	years []int
	sev   float64
	tcv   float64
}

func newComposer(in Input) *composer {
	years := make([]int, 0, len(in.Evidence.CostFactorTrend))
	for _, yf := range in.Evidence.CostFactorTrend {
		years = append(years, yf.Year)
	}
	sort.Ints(years)
	return &composer{
		in:    in,
		n:     newNumbers(),
		years: years,
		sev:   float64(in.Verdict.AssessedValue),
		tcv:   float64(in.Verdict.TrueCashValue),
	}
}

// studyPeriod renders the span of study years, such as "2024-2026".
func (c *composer) studyPeriod() string {
	if len(c.years) == 0 {
		return fmt.Sprint(models.CurrentYear)
	}
	first, last := c.years[0], c.years[len(c.years)-1]
	if first == last {
		return fmt.Sprint(first)
	}
	return fmt.Sprintf("%d-%d", first, last)
}

func (c *composer) latestFactor() *float64 {
	return c.in.Verdict.LatestCostFactor
}

func (c *composer) overvalued() bool {
	f := c.latestFactor()
	return f != nil && *f < 1.0
}

func (c *composer) address() string {
	if c.in.Property == nil {
		return ""
	}
	return c.in.Property.Address
}

func (c *composer) petition() []string {
	sections := [][]string{
		c.header(),
		c.propertyInformation(),
		c.assessmentValues(),
		c.grounds(),
		c.evidenceSections(),
		c.conclusion(),
		c.legalBasis(),
		c.petitioner(),
		c.footer(),
	}

	var out []string
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

func (c *composer) notRecommended() []string {
	ev := c.in.Evidence
	var l lines

	l.banner(heavyRule, "APPEAL ANALYSIS: NOT RECOMMENDED")
	l.blank()
	if addr := c.address(); addr != "" {
		l.addf("Property:  %s", addr)
	}
	l.addf("Area:      %s (%s)", ev.AreaCode, ev.Subdivision)
	l.addf("Your SEV:  %s  (TCV: %s)", c.n.money(c.sev), c.n.money(c.tcv))
	l.blank()
	l.add("Based on the available evidence, an appeal is NOT recommended")
	l.add("for this property. The current assessment appears to be at or")
	l.add("below market value:")
	l.blank()

	sales := c.in.Sales
	if sales.HasSales() {
		l.addf("  - Median of %d comparable sales: %s", sales.Count, c.n.money(sales.Prices.Median))
		l.addf("  - Average of %d comparable sales: %s", sales.Count, c.n.money(sales.Prices.Mean))
	}
	adjusted := c.in.Verdict.AdjustedTCV
	if adjusted != nil {
		l.addf("  - ECF-adjusted value (ECF=%s):   %s", ratio(*c.latestFactor()), c.n.money(*adjusted))
	}
	l.addf("  - Your current TCV:                      %s", c.n.money(c.tcv))
	l.blank()

	switch {
	case sales.HasSales() && sales.Prices.Median >= c.tcv:
		l.addf("The median sale price (%s) is at or above your", c.n.money(sales.Prices.Median))
		l.addf("TCV (%s), meaning comparable sales support the current", c.n.money(c.tcv))
		l.add("assessment. The Board of Review is unlikely to grant a reduction.")
	case adjusted != nil && *adjusted < c.tcv && sales.HasSales():
		l.addf("While the ECF (%s) suggests some overvaluation, the median", ratio(*c.latestFactor()))
		l.addf("sale price (%s) supports the current assessment.", c.n.money(sales.Prices.Median))
		l.add("An ECF-only argument would be aggressive and may not succeed.")
	}

	for _, year := range ev.Coverage.DroppedYears() {
		l.blank()
		l.addf("Note: %s was dropped from the %d sales study (no sales in that", ev.AreaCode, year)
		l.add("year's study).")
	}

	l.blank()
	l.add(heavyRule)
	return l
}

func (c *composer) header() []string {
	var l lines
	l.add("PETITION TO THE BOARD OF REVIEW")
	l.addf("%s, %s County, Michigan", township, county)
	l.addf("Tax Year %d", models.CurrentYear)
	l.blank()
	return l
}

func (c *composer) propertyInformation() []string {
	ev := c.in.Evidence
	prop := c.in.Property
	var l lines

	l.banner(heavyRule, "PROPERTY INFORMATION")
	if prop != nil {
		if prop.ParcelNumber != "" {
			l.addf("Parcel Number:    %s", prop.ParcelNumber)
		}
		if prop.Address != "" {
			l.addf("Property Address: %s%s", prop.Address, mailingSuffix)
		}
	}
	l.addf("Township:         %s", township)
	l.addf("County:           %s", county)
	l.addf("School District:  %s", schoolDistrict)
	l.addf("Classification:   %s", classification)
	l.addf("ECF Area:         %s (%s)", ev.AreaCode, ev.Subdivision)
	if prop != nil {
		var details []string
		if prop.Style != "" {
			details = append(details, prop.Style)
		}
		if prop.YearBuilt != 0 {
			details = append(details, fmt.Sprintf("Built %d", prop.YearBuilt))
		}
		if prop.FloorArea != 0 {
			details = append(details, c.n.count(prop.FloorArea)+" SF")
		}
		if len(details) > 0 {
			l.addf("Property:         %s", strings.Join(details, ", "))
		}
	}
	l.blank()
	return l
}

func (c *composer) assessmentValues() []string {
	v := c.in.Verdict
	var l lines

	l.banner(heavyRule, "ASSESSMENT VALUES")
	l.addf("%-30s %14s  %14s  %14s", "", fmt.Sprintf("Current %d", models.CurrentYear), "Petitioner", "Difference")
	l.addf("%s %s  %s  %s", strings.Repeat("-", 30), strings.Repeat("-", 14), strings.Repeat("-", 14), strings.Repeat("-", 14))

	recSEV := float64(v.RecommendedSEV)
	recTCV := float64(v.RecommendedTCV)
	l.addf("%-30s $%13s  $%13s  $%13s", "Assessed Value (SEV)",
		c.n.grouped(c.sev), c.n.grouped(recSEV), c.n.signed(recSEV-c.sev))
	l.addf("%-30s $%13s  $%13s  $%13s", "True Cash Value (TCV)",
		c.n.grouped(c.tcv), c.n.grouped(recTCV), c.n.signed(recTCV-c.tcv))

	if taxable := c.currentTaxable(); taxable != nil {
		t := float64(*taxable)
		l.addf("%-30s $%13s  $%13s  $%13s", "Taxable Value", c.n.grouped(t), c.n.grouped(t), "0")
	}
	l.blank()
	return l
}

func (c *composer) currentTaxable() *int64 {
	if c.in.Property == nil {
		return nil
	}
	t := c.in.Property.TaxableValueFor(models.CurrentYear)
	if t == nil || *t == 0 {
		return nil
	}
	return t
}

func (c *composer) grounds() []string {
	ev := c.in.Evidence
	v := c.in.Verdict
	var l lines

	l.banner(heavyRule, "GROUNDS FOR APPEAL")
	l.addf("The petitioner contends that the %d assessed value of %s", models.CurrentYear, c.n.money(c.sev))
	l.addf("(implying a True Cash Value of %s) exceeds the usual selling", c.n.money(c.tcv))
	l.addf("price for comparable properties in the %s subdivision (%s)", ev.Subdivision, ev.AreaCode)
	l.add("and surrounding area. The petitioner requests a reduction to an assessed")
	l.addf("value of %s (TCV of %s), supported by the following",
		c.n.money(float64(v.RecommendedSEV)), c.n.money(float64(v.RecommendedTCV)))
	l.add("evidence from the township's own records and market data.")
	l.blank()
	return l
}

// evidenceSections numbers only the evidence categories that have data.
func (c *composer) evidenceSections() []string {
	builders := []func(num int) []string{
		c.costFactorEvidence,
		c.salesEvidence,
		c.landEvidence,
		c.coverageEvidence,
	}

	var out []string
	num := 1
	for _, build := range builders {
		if s := build(num); len(s) > 0 {
			out = append(out, s...)
			num++
		}
	}
	return out
}

func (c *composer) costFactorEvidence(num int) []string {
	ecf := c.latestFactor()
	if ecf == nil {
		return nil
	}
	ev := c.in.Evidence
	var l lines

	title := "ANALYSIS"
	if c.overvalued() {
		title = "CONFIRMS OVER-ASSESSMENT"
	}
	l.banner(lightRule, fmt.Sprintf("EVIDENCE %d: TOWNSHIP ECF DATA %s", num, title))

	if c.overvalued() {
		over := (1 - *ecf) * 100
		l.addf("The township's own Economic Condition Factor (ECF) for %s is", ev.AreaCode)
		l.addf("%s (%d), meaning the cost-approach valuations used by the", ratio(*ecf), ev.LatestYear)
		l.addf("assessor EXCEED actual market sale prices by approximately %s%%.", pct(over))
		l.add("This has been consistent across available assessment years:")
		l.blank()
		for _, yf := range ev.CostFactorTrend {
			if yf.Factor != nil {
				l.addf("  - %d ECF: %s (cost exceeds market by %s%%)", yf.Year, ratio(*yf.Factor), pct((1-*yf.Factor)*100))
			} else {
				l.addf("  - %d ECF: Not available (area not in study)", yf.Year)
			}
		}
		l.blank()
		l.add("The ECF is calculated from the township's own analysis of actual arm's-")
		l.add("length sales compared to cost-approach values, confirming a systematic")
		l.add("pattern of over-assessment in this subdivision.")
		l.blank()
		l.add("Applying the ECF to the current assessment:")
		l.add("  TCV × ECF = ECF-Adjusted TCV")
		adjusted := 0.0
		if a := c.in.Verdict.AdjustedTCV; a != nil {
			adjusted = *a
		}
		l.addf("  %s × %s = %s", c.n.money(c.tcv), ratio(*ecf), c.n.money(adjusted))
		l.addf("  Implied over-assessment: %s", c.n.money(c.tcv-adjusted))
	} else {
		l.addf("The ECF for %s is %s (at or above 1.0), indicating", ev.AreaCode, ratio(*ecf))
		l.add("the cost approach does not systematically overvalue properties in this")
		l.add("area based on the township's own analysis.")
	}
	l.blank()
	return l
}

func (c *composer) salesEvidence(num int) []string {
	sales := c.in.Sales
	if !sales.HasSales() {
		return nil
	}
	ev := c.in.Evidence
	p := sales.Prices
	var l lines

	l.banner(lightRule, fmt.Sprintf("EVIDENCE %d: COMPARABLE SALES ANALYSIS", num))

	above := p.DeltaFromMedian > 0
	if above {
		l.addf("The assessed TCV of %s exceeds the median sale price of", c.n.money(c.tcv))
		l.addf("comparable arm's-length sales in %s. Of %d comparable sales", ev.AreaCode, sales.Count)
		l.addf("identified across the %s assessment data, %d (%s%%)", c.studyPeriod(), p.BelowCount, pct(p.PctBelowTCV))
		l.add("sold BELOW the assessed TCV.")
	} else {
		l.addf("Analysis of %d arm's-length sales in %s from the %s", sales.Count, ev.AreaCode, c.studyPeriod())
		l.add("assessment data:")
	}
	l.blank()

	if len(ev.ComparableSales) > 0 {
		l = append(l, c.salesTable()...)
		l.blank()
	}

	l.add("  Summary Statistics:")
	l.addf("  - Number of sales:       %d", sales.Count)
	l.addf("  - Median sale price:     %s", c.n.money(p.Median))
	l.addf("  - Average sale price:    %s", c.n.money(p.Mean))
	l.addf("  - Price range:           %s - %s", c.n.money(p.Min), c.n.money(p.Max))
	if above {
		l.addf("  - Your TCV vs median:    +%s (%s%% above)", c.n.money(p.DeltaFromMedian), pct(p.DeltaPct))
		l.addf("  - Sales below your TCV:  %d of %d (%s%%)", p.BelowCount, sales.Count, pct(p.PctBelowTCV))
	}
	l.blank()

	if above {
		l.addf("The average sale price of %s is %s below the", c.n.money(p.Mean), c.n.money(c.tcv-p.Mean))
		l.addf("assessed TCV of %s.", c.n.money(c.tcv))
	}
	l.blank()
	return l
}

// salesTable lists each sale with that property's own cost factor for the
// three most recent study years, joined on the uppercased street address.
func (c *composer) salesTable() []string {
	lookup := make(map[string]map[int]float64)
	for _, pcf := range c.in.Evidence.PropertyCostFactors {
		key := strings.ToUpper(strings.TrimSpace(pcf.Address))
		if lookup[key] == nil {
			lookup[key] = make(map[int]float64)
		}
		lookup[key][pcf.Year] = pcf.CostFactor
	}

	cols := c.recentYears(3)
	var l lines

	header := fmt.Sprintf("  %-28s %12s %12s %12s", "Address", "Sale Price", "Date", "vs TCV")
	rule := fmt.Sprintf("  %s %s %s %s", strings.Repeat("-", 28), strings.Repeat("-", 12), strings.Repeat("-", 12), strings.Repeat("-", 12))
	for _, year := range cols {
		header += fmt.Sprintf(" %7s", fmt.Sprintf("ECF %02d", year%100))
		rule += " " + strings.Repeat("-", 7)
	}
	l.add(header)
	l.add(rule)

	for _, s := range c.in.Evidence.ComparableSales {
		addr := strings.TrimSpace(s.Address)
		factors := lookup[strings.ToUpper(addr)]
		row := fmt.Sprintf("  %-28s $%11s %12s %12s",
			truncate(addr, 28),
			c.n.grouped(s.AdjustedPrice),
			truncate(strings.TrimSpace(s.SaleDate), 12),
			c.n.signedMoney(s.AdjustedPrice-c.tcv),
		)
		for _, year := range cols {
			cell := "   -  "
			if f, ok := factors[year]; ok {
				cell = ratio(f)
			}
			row += fmt.Sprintf(" %7s", cell)
		}
		l.add(row)
	}
	return l
}

// recentYears returns up to n study years, newest first.
func (c *composer) recentYears(n int) []int {
	out := make([]int, 0, n)
	for i := len(c.years) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, c.years[i])
	}
	return out
}

func (c *composer) landEvidence(num int) []string {
	ev := c.in.Evidence
	if len(ev.LandTrend) == 0 {
		return nil
	}
	var l lines

	l.banner(lightRule, fmt.Sprintf("EVIDENCE %d: LAND VALUE TREND", num))
	l.addf("The %s land values have changed as follows over %d years:", ev.AreaCode, len(c.years))
	l.blank()

	var first, last *float64
	for _, row := range ev.LandTrend {
		if row.PriorValue != nil && *row.PriorValue != 0 && first == nil {
			first = row.PriorValue
		}
		hasCurrent := row.CurrentValue != nil && *row.CurrentValue != 0
		if hasCurrent {
			last = row.CurrentValue
		}

		switch {
		case row.AdjustFactor != nil:
			current := "N/A"
			if hasCurrent {
				current = c.n.money(*row.CurrentValue)
			}
			f := *row.AdjustFactor
			l.addf("  - %d Land Value: %s (Adjustment Factor: %.4f, %s%%)", row.Year, current, f, signedPct((f-1)*100))
		case hasCurrent:
			l.addf("  - %d Land Value: %s", row.Year, c.n.money(*row.CurrentValue))
		}
	}

	if first != nil && last != nil && *first > 0 {
		total := (*last - *first) / *first * 100
		l.blank()
		l.addf("  Total land value change: %s -> %s (%s%%)", c.n.money(*first), c.n.money(*last), signedPct(total))
	}

	if c.overvalued() {
		l.blank()
		l.add("  While land values have increased, the ECF data shows that building")
		l.add("  cost valuations consistently exceed market. The combined effect")
		l.add("  produces assessments that overstate actual market conditions.")
	}
	l.blank()
	return l
}

// coverageEvidence is emitted only when the area dropped out of a study year.
func (c *composer) coverageEvidence(num int) []string {
	ev := c.in.Evidence
	dropped := ev.Coverage.DroppedYears()
	if len(dropped) == 0 {
		return nil
	}
	isDropped := make(map[int]bool, len(dropped))
	for _, y := range dropped {
		isDropped[y] = true
	}
	var l lines

	l.banner(lightRule, fmt.Sprintf("EVIDENCE %d: SALES STUDY COVERAGE", num))
	l.addf("The township's sales studies include the following sales in %s:", ev.AreaCode)
	l.blank()
	for _, yc := range ev.Coverage {
		note := ""
		if isDropped[yc.Year] {
			note = " (dropped from study)"
		}
		l.addf("  - %d: %d sales%s", yc.Year, yc.Count, note)
	}
	l.blank()
	for _, year := range dropped {
		l.addf("%s was dropped from the %d sales study. The %d assessment", ev.AreaCode, year, year)
		l.add("for this area is not validated by any sale in the township's own")
		l.add("sales analysis for that year.")
	}
	l.blank()
	return l
}

func (c *composer) conclusion() []string {
	ev := c.in.Evidence
	sales := c.in.Sales
	v := c.in.Verdict
	var l lines

	l.banner(heavyRule, "CONCLUSION AND REQUESTED RELIEF")

	var arguments []string
	if c.overvalued() {
		arguments = append(arguments, fmt.Sprintf(
			"the township's own ECF analysis confirming systematic over-assessment in %s (ECF = %s)",
			ev.AreaCode, ratio(*c.latestFactor())))
	}
	if sales.HasSales() && sales.Prices.DeltaFromMedian > 0 {
		arguments = append(arguments, fmt.Sprintf(
			"comparable sales evidence showing a median price of %s and an average of %s",
			c.n.money(sales.Prices.Median), c.n.money(sales.Prices.Mean)))
	}
	basis := "the evidence presented above"
	if len(arguments) > 0 {
		basis = strings.Join(arguments, ", ")
	}

	l.addf("Based on %s,", basis)
	l.add("the petitioner respectfully requests that the Board of Review reduce the")
	l.addf("%d assessed value from %s to %s, reflecting a", models.CurrentYear,
		c.n.money(c.sev), c.n.money(float64(v.RecommendedSEV)))
	l.addf("True Cash Value of %s.", c.n.money(float64(v.RecommendedTCV)))
	l.blank()

	l.add("This value is consistent with:")
	if sales.HasSales() {
		l.addf("  - The average of %d comparable arm's-length sales (%s)", sales.Count, c.n.money(sales.Prices.Mean))
	}
	if v.AdjustedTCV != nil {
		l.addf("  - The township's own ECF-adjusted cost approach (%s)", c.n.money(*v.AdjustedTCV))
	}
	l.add("  - The sales-comparison approach, which is the most persuasive valuation")
	l.add("    method for residential property under Michigan law")
	l.add("    (Meadowlanes Ltd v Holland, 437 Mich 473)")
	l.blank()
	return l
}

func (c *composer) legalBasis() []string {
	var l lines
	l.banner(lightRule, "LEGAL BASIS")
	l.add("Under MCL 211.27(1), true cash value means the usual selling price.")
	l.add("There is no presumption of validity for the assessor's value")
	l.add("(Alhi Development Co v Orion Twp, 110 Mich App 764, 1981).")
	l.add("The sales-comparison approach is the most persuasive valuation method")
	l.add("for residential property (Meadowlanes Ltd v Holland, 437 Mich 473).")
	l.blank()
	return l
}

func (c *composer) petitioner() []string {
	var l lines
	l.banner(heavyRule, "PETITIONER")
	l.blank()
	l.addf("Signature: ____________________________    Date: ___/___/%d", models.CurrentYear)
	l.blank()
	l.add("Printed Name: _________________________")
	if addr := c.address(); addr != "" {
		l.addf("Address: %s%s", addr, mailingSuffix)
	} else {
		l.add("Address: _____________________________")
	}
	l.add("Phone: ________________________________")
	l.add("Email: ________________________________")
	l.blank()
	return l
}

func (c *composer) footer() []string {
	var l lines
	l.add(lightRule)
	l.add("Note: This petition is submitted pursuant to MCL 211.30 and the General")
	l.add("Property Tax Act. The petitioner requests that the Board of Review")
	l.add("consider this written petition in lieu of a personal appearance, per")
	l.add("MCL 211.30(4).")
	l.blank()
	l.addf("Data source: Pittsfield Township official assessment documents (%s)", c.studyPeriod())
	l.add("Available at: pittsfield-mi.gov/2230/Property-Assessment-Data")
	l.blank()
	l.addf("APPEAL DEADLINE: March 10, %d at 5:00 PM", models.CurrentYear)
	l.add("Location: 6201 W. Michigan Ave, Ann Arbor, MI 48108")
	l.add("Phone: 734-822-3115 | Email: assessing@pittsfield-mi.gov")
	return l
}
