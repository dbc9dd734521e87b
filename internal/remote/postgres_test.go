// ABOUTME: Tests for the gorm Postgres store against a real database.
// ABOUTME: Run only when ANCHOR_TEST_POSTGRES_DSN points at a server; each test uses its own user id.
package remote

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/anchor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestPostgres(t *testing.T) (*PostgresStore, string) {
	t.Helper()

	dsn := os.Getenv("ANCHOR_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ANCHOR_TEST_POSTGRES_DSN not set")
	}

	s, err := OpenPostgres(Options{DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, s.Migrate())

	user := "anchor-test-" + uuid.NewString()
	t.Cleanup(func() {
		ctx := context.Background()
		for _, model := range []any{&dailyEntryRow{}, &medicationLogRow{}, &eveningMedTimeRow{}} {
			s.db.WithContext(ctx).Where("user_id = ?", user).Delete(model)
		}
		s.Close()
	})
	return s, user
}

func TestPostgresUpsertEntryReplacesValue(t *testing.T) {
	s, user := setupTestPostgres(t)
	ctx := context.Background()
	date := models.DateKey("2025-01-02")

	require.NoError(t, s.UpsertEntry(ctx, user, models.Entry{Date: date, ActivityID: "exercise", Value: models.BoolValue(true), UpdatedAt: time.Now()}))
	require.NoError(t, s.UpsertEntry(ctx, user, models.Entry{Date: date, ActivityID: "exercise", Value: models.TextValue("30 min walk"), UpdatedAt: time.Now()}))

	entries, err := s.ListEntries(ctx, user, date, date)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	text, ok := entries[0].Value.Text()
	require.True(t, ok, "old boolean column cleared on update")
	assert.Equal(t, "30 min walk", text)
}

func TestPostgresUpsertDoseLog(t *testing.T) {
	s, user := setupTestPostgres(t)
	ctx := context.Background()
	date := models.DateKey("2025-01-02")
	at := time.Date(2025, 1, 2, 8, 30, 0, 0, time.UTC)
	dosage := 1.5

	require.NoError(t, s.UpsertDoseLog(ctx, user, date, models.DoseLog{MedicationID: "propranolol", DoseNumber: 1, Taken: true, TakenAt: &at, UpdatedAt: time.Now()}))
	require.NoError(t, s.UpsertDoseLog(ctx, user, date, models.DoseLog{MedicationID: "propranolol", DoseNumber: 1, Taken: false, DosageValue: &dosage, UpdatedAt: time.Now()}))
	require.NoError(t, s.UpsertDoseLog(ctx, user, date, models.DoseLog{MedicationID: "propranolol", DoseNumber: 2, Taken: true, TakenAt: &at, UpdatedAt: time.Now()}))

	logs, err := s.ListDoseLogs(ctx, user, date)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.False(t, logs[0].Taken)
	assert.Nil(t, logs[0].TakenAt)
	require.NotNil(t, logs[0].DosageValue)
	assert.Equal(t, 1.5, *logs[0].DosageValue)
	assert.Equal(t, 2, logs[1].DoseNumber)
	require.NotNil(t, logs[1].TakenAt)
	assert.True(t, at.Equal(*logs[1].TakenAt))
}

func TestPostgresEveningTime(t *testing.T) {
	s, user := setupTestPostgres(t)
	ctx := context.Background()
	date := models.DateKey("2025-01-02")

	got, err := s.GetEveningTime(ctx, user, date)
	require.NoError(t, err)
	assert.Nil(t, got)

	first := time.Date(2025, 1, 2, 21, 0, 0, 0, time.UTC)
	second := first.Add(30 * time.Minute)
	require.NoError(t, s.UpsertEveningTime(ctx, user, date, first))
	require.NoError(t, s.UpsertEveningTime(ctx, user, date, second))

	got, err = s.GetEveningTime(ctx, user, date)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, second.Equal(*got))
}

func TestPostgresExtraMedsInInsertionOrder(t *testing.T) {
	s, user := setupTestPostgres(t)
	ctx := context.Background()
	date := models.DateKey("2025-01-02")
	afternoon := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)

	firstID, err := s.InsertExtraMed(ctx, user, date, NewExtraMed{Name: "Ibuprofen", Dosage: "200mg", TakenAt: afternoon})
	require.NoError(t, err)
	// logged second but backdated to the morning
	secondID, err := s.InsertExtraMed(ctx, user, date, NewExtraMed{Name: "Tylenol", TakenAt: afternoon.Add(-6 * time.Hour)})
	require.NoError(t, err)

	extras, err := s.ListExtraMeds(ctx, user, date)
	require.NoError(t, err)
	require.Len(t, extras, 2)
	assert.Equal(t, firstID, extras[0].ID)
	assert.Equal(t, "200mg", extras[0].Dosage)
	assert.Equal(t, secondID, extras[1].ID)

	logs, err := s.ListDoseLogs(ctx, user, date)
	require.NoError(t, err)
	assert.Empty(t, logs, "extra meds are not standing dose logs")

	require.NoError(t, s.DeleteMedicationLog(ctx, user, firstID))
	extras, err = s.ListExtraMeds(ctx, user, date)
	require.NoError(t, err)
	require.Len(t, extras, 1)
	assert.Equal(t, secondID, extras[0].ID)

	assert.Error(t, s.DeleteMedicationLog(ctx, user, "not-a-uuid"))
}

func TestPostgresActiveDatesAndResetDay(t *testing.T) {
	s, user := setupTestPostgres(t)
	ctx := context.Background()
	d1, d2, d3 := models.DateKey("2025-01-02"), models.DateKey("2025-01-05"), models.DateKey("2025-01-07")

	require.NoError(t, s.UpsertEntry(ctx, user, models.Entry{Date: d1, ActivityID: "mood", Value: models.NumberValue(2), UpdatedAt: time.Now()}))
	require.NoError(t, s.UpsertDoseLog(ctx, user, d1, models.DoseLog{MedicationID: "lithium", DoseNumber: 1, Taken: true, UpdatedAt: time.Now()}))
	require.NoError(t, s.UpsertEveningTime(ctx, user, d1, time.Now()))
	_, err := s.InsertExtraMed(ctx, user, d2, NewExtraMed{Name: "Melatonin", TakenAt: time.Now()})
	require.NoError(t, err)
	// evening time alone does not make a day active
	require.NoError(t, s.UpsertEveningTime(ctx, user, d3, time.Now()))

	dates, err := s.ActiveDates(ctx, user, "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, []models.DateKey{d1, d2}, dates)

	require.NoError(t, s.ResetDay(ctx, user, d1))

	entries, err := s.ListEntries(ctx, user, d1, d1)
	require.NoError(t, err)
	assert.Empty(t, entries)
	logs, err := s.ListDoseLogs(ctx, user, d1)
	require.NoError(t, err)
	assert.Empty(t, logs)
	evening, err := s.GetEveningTime(ctx, user, d1)
	require.NoError(t, err)
	assert.Nil(t, evening)

	dates, err = s.ActiveDates(ctx, user, "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, []models.DateKey{d2}, dates)
}
