// ABOUTME: Tests for row conversion between gorm rows and domain records.
// ABOUTME: Covers every value column and the custom-med split of medication_logs.
package remote

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/harperreed/anchor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryRowRoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		value models.Value
	}{
		{"bool", models.BoolValue(true)},
		{"number", models.NumberValue(-3)},
		{"text", models.TextValue("30 min walk")},
		{"json", models.JSONValue(json.RawMessage(`{"a":1}`))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := models.Entry{Date: "2025-01-02", ActivityID: "mood", Value: tt.value, UpdatedAt: now}
			row := entryToRow("u1", e)
			assert.Equal(t, "u1", row.UserID)

			set := 0
			if row.ValueBoolean != nil {
				set++
			}
			if row.ValueNumber != nil {
				set++
			}
			if row.ValueText != nil {
				set++
			}
			if len(row.ValueJSON) > 0 {
				set++
			}
			assert.Equal(t, 1, set, "exactly one value column")

			got := rowToEntry(row)
			assert.True(t, tt.value.Equal(got.Value))
			assert.Equal(t, e.Date, got.Date)
			assert.Equal(t, e.ActivityID, got.ActivityID)
		})
	}
}

func TestRowToEntryFirstNonNullWins(t *testing.T) {
	b := false
	n := 4.0
	row := dailyEntryRow{LogDate: "2025-01-02", ActivityID: "x", ValueBoolean: &b, ValueNumber: &n}
	got := rowToEntry(row)
	v, ok := got.Value.Bool()
	require.True(t, ok)
	assert.False(t, v)
}

func TestDoseRowRoundTrip(t *testing.T) {
	at := time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)
	dv := 1050.0
	l := models.DoseLog{MedicationID: "lithium", DoseNumber: 1, Taken: true, TakenAt: &at, DosageValue: &dv}
	row := doseToRow("u1", "2025-01-02", l)
	require.NotNil(t, row.MedicationID)
	assert.Nil(t, row.CustomMedName)

	got := rowToDose(row)
	assert.Equal(t, l.MedicationID, got.MedicationID)
	assert.Equal(t, l.DoseNumber, got.DoseNumber)
	assert.True(t, got.Taken)
	assert.Equal(t, at, *got.TakenAt)
	assert.Equal(t, dv, *got.DosageValue)
}

func TestRowToExtra(t *testing.T) {
	name := "Ibuprofen"
	dosage := "200mg"
	at := time.Date(2025, 1, 2, 14, 0, 0, 0, time.UTC)
	row := medicationLogRow{CustomMedName: &name, DosageTaken: &dosage, TakenAt: &at, Taken: true}
	got := rowToExtra(row)
	assert.Equal(t, row.ID.String(), got.ID)
	assert.Equal(t, "Ibuprofen", got.Name)
	assert.Equal(t, "200mg", got.Dosage)
	assert.Equal(t, at, got.TakenAt)
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	_, err := OpenPostgres(Options{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
