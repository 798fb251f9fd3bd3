package models

import "strings"

// ManualEntry carries the fields a homeowner types in when no record card
// could be read. Zero means "not provided" for every numeric field.
type ManualEntry struct {
	Address           string `json:"address" binding:"required"`
	ParcelNumber      string `json:"parcel_number"`
	AreaCode          string `json:"area_code"`
	Style             string `json:"style"`
	Condition         string `json:"condition"`
	AssessedValue     int64  `json:"assessed_value" binding:"gte=0,lte=2000000"`
	AssessedValue2025 int64  `json:"assessed_value_2025" binding:"gte=0,lte=2000000"`
	AssessedValue2024 int64  `json:"assessed_value_2024" binding:"gte=0,lte=2000000"`
	AssessedValue2023 int64  `json:"assessed_value_2023" binding:"gte=0,lte=2000000"`
	TaxableValue      int64  `json:"taxable_value" binding:"gte=0,lte=2000000"`
	LandValue         int64  `json:"land_value" binding:"gte=0,lte=500000"`
	YearBuilt         int    `json:"year_built" binding:"gte=0,lte=2026"`
	FloorArea         int    `json:"floor_area" binding:"gte=0,lte=20000"`
	BasementArea      int    `json:"basement_area" binding:"gte=0,lte=10000"`
}

// NewManualRecord builds a PropertyRecord from manual input. The current
// year's history row gets a building value only when the land value is known
// and smaller than the assessed value.
func NewManualRecord(e ManualEntry) PropertyRecord {
	history := make([]AssessmentYear, 0, 4)
	prior := []struct {
		year int
		sev  int64
	}{
		{2023, e.AssessedValue2023},
		{2024, e.AssessedValue2024},
		{2025, e.AssessedValue2025},
	}
	for _, p := range prior {
		if p.sev > 0 {
			history = append(history, AssessmentYear{Year: p.year, AssessedValue: int64Ptr(p.sev)})
		}
	}

	if e.AssessedValue > 0 {
		current := AssessmentYear{Year: CurrentYear, AssessedValue: int64Ptr(e.AssessedValue)}
		if e.TaxableValue > 0 {
			current.TaxableValue = int64Ptr(e.TaxableValue)
		}
		if e.LandValue > 0 {
			current.LandValue = int64Ptr(e.LandValue)
			if e.AssessedValue > e.LandValue {
				current.BuildingValue = int64Ptr(e.AssessedValue - e.LandValue)
			}
		}
		history = append(history, current)
	}

	return PropertyRecord{
		Address:       strings.ToUpper(strings.TrimSpace(e.Address)),
		ParcelNumber:  strings.TrimSpace(e.ParcelNumber),
		AreaCode:      NormalizeAreaCode(e.AreaCode),
		Style:         e.Style,
		Condition:     e.Condition,
		YearBuilt:     e.YearBuilt,
		FloorArea:     e.FloorArea,
		BasementArea:  e.BasementArea,
		LandValue:     e.LandValue,
		AssessedValue: e.AssessedValue,
		TrueCashValue: TCVFromSEV(e.AssessedValue),
		History:       history,
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}
