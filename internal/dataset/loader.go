package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/stwalsh4118/taxappeal/internal/logger"
	"github.com/stwalsh4118/taxappeal/internal/models"
)

// File name suffixes of the five yearly study tables. Each file lives at
// {dir}/{year}/{year}_{suffix}.
const (
	SalesFile          = "Residential_Sales_Analysis.csv"
	CostFactorFile     = "Residential_ECF_Analysis.csv"
	SummaryFile        = "Residential_ECF_Analysis_ECF_Summaries.csv"
	LandValueFile      = "Residential_Land_Analysis.csv"
	LandAdjustmentFile = "Residential_Land_Analysis_Adjustments.csv"
)

// TablePath returns the path of one year's table under dir.
func TablePath(dir string, year int, suffix string) string {
	return filepath.Join(dir, fmt.Sprint(year), fmt.Sprintf("%d_%s", year, suffix))
}

// Load reads every study table for the given years. A missing file leaves
// that table absent for the year; a file that cannot be parsed is an error.
func Load(dir string, years []int, log *logger.Logger) (*Bundle, error) {
	var t Tables

	for _, year := range years {
		sales, ok, err := loadSales(dir, year)
		if err != nil {
			return nil, err
		}
		if ok {
			t.Sales = append(t.Sales, sales)
		}

		costFactors, ok, err := loadCostFactors(dir, year)
		if err != nil {
			return nil, err
		}
		if ok {
			t.CostFactors = append(t.CostFactors, costFactors)
		}

		summaries, ok, err := loadSummaries(dir, year)
		if err != nil {
			return nil, err
		}
		if ok {
			t.Summaries = append(t.Summaries, summaries)
		}

		land, ok, err := loadLandValues(dir, year)
		if err != nil {
			return nil, err
		}
		if ok {
			t.LandValues = append(t.LandValues, land)
		}

		adjustments, ok, err := loadLandAdjustments(dir, year)
		if err != nil {
			return nil, err
		}
		if ok {
			t.LandAdjustments = append(t.LandAdjustments, adjustments)
		}
	}

	b := NewBundle(years, t)
	log.Info("Study tables loaded", map[string]interface{}{
		"dir":                  dir,
		"years":                years,
		"sales_tables":         len(t.Sales),
		"cost_factor_tables":   len(t.CostFactors),
		"summary_tables":       len(t.Summaries),
		"land_value_tables":    len(t.LandValues),
		"land_adjustment_tabs": len(t.LandAdjustments),
		"areas":                len(b.Areas()),
	})
	return b, nil
}

// sheet is a CSV file read into memory with its header indexed by name.
type sheet struct {
	columns map[string]int
	rows    [][]string
}

func (s *sheet) has(col string) bool {
	_, ok := s.columns[col]
	return ok
}

// get returns the cell for col, or "" when the column or cell is missing.
func (s *sheet) get(row []string, col string) string {
	i, ok := s.columns[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// readSheet opens one table. It reports ok=false when the file does not exist.
func readSheet(path string) (*sheet, bool, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return &sheet{columns: map[string]int{}}, true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	s := &sheet{columns: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := s.columns[name]; !dup {
			s.columns[name] = i
		}
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("failed to read %s: %w", path, err)
		}
		s.rows = append(s.rows, row)
	}

	return s, true, nil
}

func loadSales(dir string, year int) (models.SalesTable, bool, error) {
	s, ok, err := readSheet(TablePath(dir, year, SalesFile))
	if err != nil || !ok {
		return models.SalesTable{}, ok, err
	}

	t := models.SalesTable{
		Year:        year,
		HasAreaCode: s.has("ECF_Area"),
		HasTerms:    s.has("Terms_of_Sale"),
		Rows:        make([]models.SaleRow, 0, len(s.rows)),
	}
	for _, row := range s.rows {
		t.Rows = append(t.Rows, models.SaleRow{
			AreaCode:      models.NormalizeAreaCode(s.get(row, "ECF_Area")),
			StreetAddress: strings.TrimSpace(s.get(row, "Street_Address")),
			ParcelNumber:  strings.TrimSpace(s.get(row, "Parcel_Number")),
			SaleDate:      strings.TrimSpace(s.get(row, "Sale_Date")),
			TermsOfSale:   strings.TrimSpace(s.get(row, "Terms_of_Sale")),
			SalePrice:     ParseMoney(s.get(row, "Sale_Price")),
			AdjustedPrice: ParseMoney(s.get(row, "Adj_Sale")),
		})
	}
	return t, true, nil
}

func loadCostFactors(dir string, year int) (models.CostFactorTable, bool, error) {
	s, ok, err := readSheet(TablePath(dir, year, CostFactorFile))
	if err != nil || !ok {
		return models.CostFactorTable{}, ok, err
	}

	t := models.CostFactorTable{Year: year, Rows: make([]models.CostFactorRow, 0, len(s.rows))}
	switch {
	case s.has("ECF_Area_Code"):
		t.AreaColumn = "ECF_Area_Code"
	case s.has("ECF_Area"):
		t.AreaColumn = "ECF_Area"
	}

	for _, row := range s.rows {
		t.Rows = append(t.Rows, models.CostFactorRow{
			AreaCode:      models.NormalizeAreaCode(s.get(row, t.AreaColumn)),
			StreetAddress: strings.TrimSpace(s.get(row, "Street_Address")),
			ParcelNumber:  strings.TrimSpace(s.get(row, "Parcel_Number")),
			SalePrice:     ParseMoney(s.get(row, "Sale_Price")),
			CostManual:    ParseMoney(s.get(row, "Cost_Man")),
			CostFactor:    models.ValidCostFactor(ParseRatio(s.get(row, "ECF"))),
		})
	}
	return t, true, nil
}

// loadSummaries collapses duplicate area rows. Some years list individual
// property factors under an area's summary row; for each column the first
// non-blank value in file order is the area's official figure.
func loadSummaries(dir string, year int) (models.AreaSummaryTable, bool, error) {
	s, ok, err := readSheet(TablePath(dir, year, SummaryFile))
	if err != nil || !ok {
		return models.AreaSummaryTable{}, ok, err
	}

	t := models.AreaSummaryTable{Year: year}
	index := make(map[string]int)
	for _, row := range s.rows {
		code := models.NormalizeAreaCode(s.get(row, "ECF_Area"))
		if code == "" {
			continue
		}
		subdivision := strings.TrimSpace(s.get(row, "Subdivision"))
		ecf := ParseRatio(s.get(row, "Ave_ECF"))

		i, seen := index[code]
		if !seen {
			index[code] = len(t.Rows)
			t.Rows = append(t.Rows, models.AreaSummaryRow{
				AreaCode:          code,
				Subdivision:       subdivision,
				AverageCostFactor: ecf,
			})
			continue
		}
		if t.Rows[i].Subdivision == "" {
			t.Rows[i].Subdivision = subdivision
		}
		if t.Rows[i].AverageCostFactor == nil {
			t.Rows[i].AverageCostFactor = ecf
		}
	}
	return t, true, nil
}

func loadLandValues(dir string, year int) (models.LandValueTable, bool, error) {
	s, ok, err := readSheet(TablePath(dir, year, LandValueFile))
	if err != nil || !ok {
		return models.LandValueTable{}, ok, err
	}

	priorCol := fmt.Sprintf("Land_Value_%d", year-1)
	currentCol := fmt.Sprintf("Land_Value_%d", year)

	t := models.LandValueTable{
		Year:        year,
		HasAreaCode: s.has("Area_Code"),
		HasECFArea:  s.has("ECF_Area"),
		HasPrior:    s.has(priorCol),
		HasCurrent:  s.has(currentCol),
		Rows:        make([]models.LandValueRow, 0, len(s.rows)),
	}
	for _, row := range s.rows {
		t.Rows = append(t.Rows, models.LandValueRow{
			AreaCode: models.NormalizeAreaCode(s.get(row, "Area_Code")),
			ECFArea:  models.NormalizeAreaCode(s.get(row, "ECF_Area")),
			Prior:    ParseMoney(s.get(row, priorCol)),
			Current:  ParseMoney(s.get(row, currentCol)),
		})
	}
	return t, true, nil
}

func loadLandAdjustments(dir string, year int) (models.LandAdjustmentTable, bool, error) {
	s, ok, err := readSheet(TablePath(dir, year, LandAdjustmentFile))
	if err != nil || !ok {
		return models.LandAdjustmentTable{}, ok, err
	}

	t := models.LandAdjustmentTable{
		Year:        year,
		HasAreaCode: s.has("Area_Code"),
		Rows:        make([]models.LandAdjustmentRow, 0, len(s.rows)),
	}
	for _, row := range s.rows {
		t.Rows = append(t.Rows, models.LandAdjustmentRow{
			AreaCode:    models.NormalizeAreaCode(s.get(row, "Area_Code")),
			Subdivision: strings.TrimSpace(s.get(row, "Subdivision")),
			Factor:      ParseRatio(s.get(row, "Adjust_Factor")),
		})
	}
	return t, true, nil
}
