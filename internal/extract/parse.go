package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/stwalsh4118/taxappeal/internal/models"
)

// cascade is the ordered list of patterns tried for one field. The first
// pattern that matches supplies the field from its first capture group.
type cascade []*regexp.Regexp

func (c cascade) find(text string) (string, bool) {
	for _, re := range c {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1], true
		}
	}
	return "", false
}

const streetSuffixes = `(?:DR|LN|CT|RD|AVE|WAY|BLVD|CIR|ST|PL|TRL)`

const styleWords = `(?:TWO|ONE|TRI|BI|SPLIT|RANCH|CAPE|COLONIAL|BUNGALOW)`

// Figures are read up to the end of their line. Grouped digits may carry
// stray spaces that CleanNumber removes.
const figure = `(\d[\d, \t]*)`

// Page 1 fields.
var (
	parcelNumberCascade = cascade{
		regexp.MustCompile(`Parcel Number:\s*(L[ \t]*-[\d \t-]+)`),
	}

	addressCascade = cascade{
		regexp.MustCompile(`(?:Property Address|4\d{3}|[A-Z]\d{3,4})\s*\n?\s*(\d+\s+[A-Z][A-Z\s]+` + streetSuffixes + `)`),
		regexp.MustCompile(`\b(\d{3,5}\s+[A-Z][A-Z\s]+` + streetSuffixes + `)\b`),
	}

	landTablePattern = regexp.MustCompile(`Land\s+(?:Value\s+Estimates\s+for\s+)?Land\s+Table\s+(\S+?)\.(\S.*?)(?:\n|$)`)
	areaPrefix       = regexp.MustCompile(`^[A-Z0-9]+-(.+)`)

	estimatedTCVCascade = cascade{
		regexp.MustCompile(`2026\s+Est\s+TCV\s+` + figure),
	}

	landValueCascade = cascade{
		regexp.MustCompile(`Total\s+Est\.\s+Land\s+value\s*=\s*` + figure),
	}

	// year, land, building, assessed, taxable with its trailing marker letter
	historyRow = regexp.MustCompile(`[|(]?\s*(202[3-6])\s+([\d,]+)\s+([\d,]+)\s+([\d,]+)\s+([\d,]+)[cCsS]`)
)

// Page 2 fields.
var (
	styleCascade = cascade{
		regexp.MustCompile(`Building\s+Style:\s*(` + styleWords + `[\w-]*)`),
		regexp.MustCompile(`(?i)Single\s+Family\s+(` + styleWords + `[\w-]*)`),
	}

	yearBuiltCascade = cascade{
		regexp.MustCompile(`(?:Blt|B[Il]t)\s+(\d{4})`),
		regexp.MustCompile(`(\d{4})\s*Actua`),
		regexp.MustCompile(`Yr\s+Built.*?(\d{4})`),
	}

	conditionCascade    = cascade{regexp.MustCompile(`Condition:\s*(\w+)`)}
	effectiveAgeCascade = cascade{regexp.MustCompile(`Effec\.\s*Age:\s*(\d+)`)}
	floorAreaCascade    = cascade{regexp.MustCompile(`Floor\s+Area:\s*(\d[\d,]+)`)}
	groundAreaCascade   = cascade{regexp.MustCompile(`Ground\s+Area\s*=\s*(\d[\d,]+)\s*SF`)}
	basementAreaCascade = cascade{regexp.MustCompile(`Basement:\s*(\d[\d,]+)\s*S\.?F\.?`)}
	baseNewCascade      = cascade{regexp.MustCompile(`Total\s+Base\s+New:\s*` + figure)}
	depreciatedCascade  = cascade{regexp.MustCompile(`Total\s+Depr\s+Cost:\s*` + figure)}
	costFactorCascade   = cascade{regexp.MustCompile(`(?:E\.?C\.?F\.?|X)\s+(0\.\d{2,4})`)}
	costApproachCascade = cascade{regexp.MustCompile(`Estimated\s+T\.?[cC]\.?V\.?:?\s*` + figure)}
)

// ParseText builds a PropertyRecord from the recognized text of the two
// record card pages. Every field is extracted independently; a field that is
// not found keeps its zero value. Either page may be empty.
func ParseText(page1, page2 string) models.PropertyRecord {
	rec := models.PropertyRecord{RawTextPage1: page1, RawTextPage2: page2}

	if page1 != "" {
		parsePage1(page1, &rec)
	}
	if page2 != "" {
		parsePage2(page2, &rec)
	}

	// The history's assessed value is authoritative; a printed Est TCV only
	// stands in when the history is missing.
	switch {
	case rec.AssessedValue > 0:
		rec.TrueCashValue = models.TCVFromSEV(rec.AssessedValue)
	case rec.TrueCashValue > 0:
		rec.AssessedValue = models.SEVFromTCV(rec.TrueCashValue)
	}
	return rec
}

func parsePage1(text string, rec *models.PropertyRecord) {
	rec.ParcelNumber = parseParcelNumber(text)
	rec.Address = parseAddress(text)
	rec.AreaCode, rec.Subdivision = parseLandTable(text)

	if s, ok := estimatedTCVCascade.find(text); ok {
		rec.TrueCashValue = cleanOrZero(s)
	}
	if s, ok := landValueCascade.find(text); ok {
		rec.LandValue = cleanOrZero(s)
	}

	rec.History = parseHistory(text)
	if current, ok := rec.HistoryFor(models.CurrentYear); ok && current.AssessedValue != nil {
		rec.AssessedValue = *current.AssessedValue
	}
}

func parsePage2(text string, rec *models.PropertyRecord) {
	if s, ok := styleCascade.find(text); ok {
		rec.Style = strings.ToUpper(strings.TrimSpace(s))
	}
	if s, ok := yearBuiltCascade.find(text); ok {
		rec.YearBuilt, _ = strconv.Atoi(s)
	}
	if s, ok := conditionCascade.find(text); ok {
		rec.Condition = capitalize(s)
	}
	if s, ok := effectiveAgeCascade.find(text); ok {
		rec.EffectiveAge, _ = strconv.Atoi(s)
	}
	if s, ok := floorAreaCascade.find(text); ok {
		rec.FloorArea = int(cleanOrZero(s))
	}
	if s, ok := groundAreaCascade.find(text); ok {
		rec.GroundArea = int(cleanOrZero(s))
	}
	if s, ok := basementAreaCascade.find(text); ok {
		rec.BasementArea = int(cleanOrZero(s))
	}
	if s, ok := baseNewCascade.find(text); ok {
		rec.TotalBaseNew = cleanOrZero(s)
	}
	if s, ok := depreciatedCascade.find(text); ok {
		rec.TotalDepreciatedCost = cleanOrZero(s)
	}
	rec.CostFactor = parseCostFactor(text)
	if s, ok := costApproachCascade.find(text); ok {
		rec.CostApproachTCV = cleanOrZero(s)
	}
}

func parseParcelNumber(text string) string {
	s, ok := parcelNumberCascade.find(text)
	if !ok {
		return ""
	}
	return strings.Join(strings.Fields(s), "")
}

func parseAddress(text string) string {
	s, ok := addressCascade.find(text)
	if !ok {
		return ""
	}
	return strings.Join(strings.Fields(s), " ")
}

// parseLandTable reads "Land Table AR-4.AR4-MEADOWS OF ARBOR RIDGE" into the
// area code and the subdivision name without its code-like prefix.
func parseLandTable(text string) (code, subdivision string) {
	m := landTablePattern.FindStringSubmatch(text)
	if m == nil {
		return "", ""
	}
	code = strings.TrimSpace(m[1])

	raw := strings.TrimSpace(m[2])
	if p := areaPrefix.FindStringSubmatch(raw); p != nil {
		raw = strings.TrimSpace(p[1])
	}
	subdivision = strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(raw))
	return code, subdivision
}

// parseHistory reads the assessment history table, sorted by year.
func parseHistory(text string) []models.AssessmentYear {
	norm := NormalizeOCRNumbers(text)

	var history []models.AssessmentYear
	for _, m := range historyRow.FindAllStringSubmatch(norm, -1) {
		year, _ := strconv.Atoi(m[1])
		history = append(history, models.AssessmentYear{
			Year:          year,
			LandValue:     CleanNumber(m[2]),
			BuildingValue: CleanNumber(m[3]),
			AssessedValue: CleanNumber(m[4]),
			TaxableValue:  CleanNumber(m[5]),
		})
	}

	rec := models.PropertyRecord{History: history}
	rec.SortHistory()
	return rec.History
}

func parseCostFactor(text string) *float64 {
	s, ok := costFactorCascade.find(text)
	if !ok {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return models.ValidCostFactor(&v)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
