package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func i64(v int64) *int64 { return &v }

func f64(v float64) *float64 { return &v }

// TestTCVRelationship verifies TCV is exactly twice SEV in both directions
func TestTCVRelationship(t *testing.T) {
	tests := []struct {
		name    string
		sev     int64
		wantTCV int64
	}{
		{name: "round value", sev: 200000, wantTCV: 400000},
		{name: "odd value", sev: 121367, wantTCV: 242734},
		{name: "zero", sev: 0, wantTCV: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tcv := TCVFromSEV(tt.sev)
			assert.Equal(t, tt.wantTCV, tcv)
			assert.Equal(t, tt.sev, SEVFromTCV(tcv))
		})
	}
}

func TestSEVFromTCV_Floors(t *testing.T) {
	assert.Equal(t, int64(242732), SEVFromTCV(485465))
}

func TestNormalizeAreaCode(t *testing.T) {
	tests := map[string]string{
		"AR-4":      "AR-4",
		" 'AR-4 ":   "AR-4",
		"''ARF":     "ARF",
		"\tPF-12\n": "PF-12",
		"":          "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeAreaCode(in), "input %q", in)
	}
}

func TestValidCostFactor(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want *float64
	}{
		{name: "nil stays nil", in: nil, want: nil},
		{name: "typical value", in: f64(0.872), want: f64(0.872)},
		{name: "above one kept", in: f64(1.15), want: f64(1.15)},
		{name: "lower bound discarded", in: f64(0.1), want: nil},
		{name: "upper bound discarded", in: f64(5.0), want: nil},
		{name: "noise discarded", in: f64(87.2), want: nil},
		{name: "negative discarded", in: f64(-0.5), want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCostFactor(tt.in))
		})
	}
}

func TestIsAreaCode(t *testing.T) {
	assert.True(t, IsAreaCode("AR-4"))
	assert.True(t, IsAreaCode("ARF"))
	assert.True(t, IsAreaCode("PF.12"))
	assert.False(t, IsAreaCode(""))
	assert.False(t, IsAreaCode("AR-4AR4-MEADOWS"))
	assert.False(t, IsAreaCode("AR 4"))
	assert.False(t, IsAreaCode("--"))
}

func TestHistoryChanges(t *testing.T) {
	rec := PropertyRecord{
		History: []AssessmentYear{
			{Year: 2023, AssessedValue: i64(200000)},
			{Year: 2024, AssessedValue: nil},
			{Year: 2025, AssessedValue: i64(220000)},
			{Year: 2026, AssessedValue: i64(242000)},
		},
	}

	changes := rec.HistoryChanges()

	require.Len(t, changes, 3)
	assert.Nil(t, changes[0].Change)
	require.NotNil(t, changes[1].Change)
	assert.Equal(t, int64(20000), *changes[1].Change)
	assert.InDelta(t, 10.0, *changes[1].ChangePct, 1e-9)
	assert.Equal(t, int64(22000), *changes[2].Change)
	assert.Equal(t, 2026, changes[2].Year)
}

func TestSortHistoryAndLookup(t *testing.T) {
	rec := PropertyRecord{
		History: []AssessmentYear{
			{Year: 2026, TaxableValue: i64(213794)},
			{Year: 2024},
			{Year: 2025},
		},
	}

	rec.SortHistory()

	assert.Equal(t, 2024, rec.History[0].Year)
	assert.Equal(t, 2026, rec.History[2].Year)
	assert.Equal(t, i64(213794), rec.TaxableValueFor(2026))
	assert.Nil(t, rec.TaxableValueFor(2023))
}

func TestNewManualRecord(t *testing.T) {
	rec := NewManualRecord(ManualEntry{
		Address:           "  4806 paulina dr ",
		ParcelNumber:      " L-12-13-311-061 ",
		AreaCode:          "'AR-4",
		AssessedValue:     242732,
		AssessedValue2025: 231890,
		AssessedValue2023: 210000,
		TaxableValue:      213794,
		LandValue:         49600,
	})

	assert.Equal(t, "4806 PAULINA DR", rec.Address)
	assert.Equal(t, "L-12-13-311-061", rec.ParcelNumber)
	assert.Equal(t, "AR-4", rec.AreaCode)
	assert.Equal(t, int64(485464), rec.TrueCashValue)

	require.Len(t, rec.History, 3)
	assert.Equal(t, 2023, rec.History[0].Year)
	assert.Equal(t, 2025, rec.History[1].Year)

	current := rec.History[2]
	assert.Equal(t, 2026, current.Year)
	assert.Equal(t, i64(242732), current.AssessedValue)
	assert.Equal(t, i64(213794), current.TaxableValue)
	assert.Equal(t, i64(49600), current.LandValue)
	assert.Equal(t, i64(193132), current.BuildingValue)
}

func TestNewManualRecord_NoBuildingValueWhenLandExceedsAssessment(t *testing.T) {
	rec := NewManualRecord(ManualEntry{
		Address:       "1 LOT LN",
		AssessedValue: 40000,
		LandValue:     50000,
	})

	require.Len(t, rec.History, 1)
	assert.Nil(t, rec.History[0].BuildingValue)
	assert.Nil(t, rec.History[0].TaxableValue)
}

func TestNewManualRecord_NoCurrentYearWithoutAssessment(t *testing.T) {
	rec := NewManualRecord(ManualEntry{Address: "1 ELM ST", AssessedValue2024: 150000})

	require.Len(t, rec.History, 1)
	assert.Equal(t, 2024, rec.History[0].Year)
	assert.Zero(t, rec.TrueCashValue)
}
