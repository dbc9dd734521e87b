// ABOUTME: Tests for day reconstruction, the month calendar, and navigation.
// ABOUTME: Uses an in-memory day source.
package history

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/harperreed/anchor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSource struct {
	days map[models.DateKey]*models.DayRecords
	err  error
}

func (m *memSource) LoadDay(_ context.Context, date models.DateKey) (*models.DayRecords, error) {
	if m.err != nil {
		return nil, m.err
	}
	if d, ok := m.days[date]; ok {
		return d.Clone(), nil
	}
	return models.NewDayRecords(date), nil
}

func (m *memSource) ActiveDates(_ context.Context, from, to models.DateKey) ([]models.DateKey, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []models.DateKey
	for d, day := range m.days {
		if day.HasData() && !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

type staticMeds models.MedicationConfig

func (s staticMeds) Current() models.MedicationConfig { return models.MedicationConfig(s) }

func newReconstructor(days ...*models.DayRecords) *Reconstructor {
	src := &memSource{days: make(map[models.DateKey]*models.DayRecords)}
	for _, d := range days {
		src.days[d.Date] = d
	}
	return &Reconstructor{
		Source:      src,
		Activities:  models.DefaultActivities(),
		Medications: staticMeds(models.DefaultMedications()),
	}
}

func TestDayEmptyHasPlaceholderPerActivity(t *testing.T) {
	r := newReconstructor()
	view, err := r.Day(context.Background(), "2025-01-02")
	require.NoError(t, err)

	want := []string{
		"sleep-quality", "sleep-hours", "exercise", "stretch", "weather", "sunshine",
		"mood", "paranoia", "scrambled-brains", "journaling", "notes",
	}
	require.Len(t, view.Activities, len(want))
	for i, row := range view.Activities {
		assert.Equal(t, want[i], row.Activity.ID)
		assert.True(t, row.Missing, row.Activity.ID)
		assert.Nil(t, row.Value)
		assert.NotEmpty(t, row.Display)
	}
	assert.Equal(t, "No notes", view.Activities[10].Display)
	assert.Equal(t, "None", view.Activities[2].Display)
	assert.Equal(t, "No data", view.Activities[0].Display)
	assert.Empty(t, view.Daytime)
	assert.Empty(t, view.Evening)
	assert.False(t, view.HasData)
}

func TestDayFormatsRecordedValues(t *testing.T) {
	day := models.NewDayRecords("2025-01-02")
	day.Entries["mood"] = models.EntryValue{Value: models.NumberValue(-4)}
	day.Entries["paranoia"] = models.EntryValue{Value: models.NumberValue(5)}
	r := newReconstructor(day)

	view, err := r.Day(context.Background(), "2025-01-02")
	require.NoError(t, err)
	byID := make(map[string]ActivityRow)
	for _, row := range view.Activities {
		byID[row.Activity.ID] = row
	}
	assert.False(t, byID["mood"].Missing)
	assert.Equal(t, "-4 (Depressed)", byID["mood"].Display)
	assert.Equal(t, "5 (Moderate)", byID["paranoia"].Display)
	assert.True(t, byID["notes"].Missing)
	assert.True(t, view.HasData)
}

func TestDaySplitsMedications(t *testing.T) {
	day := models.NewDayRecords("2025-01-02")
	day.DoseLogs = []models.DoseLog{
		{MedicationID: "lamictal", DoseNumber: 1, Taken: true},
		{MedicationID: "xanax-xr", DoseNumber: 2, Taken: true},
		{MedicationID: "propranolol", DoseNumber: 2, Taken: false},
		{MedicationID: "xanax-xr", DoseNumber: 1, Taken: true},
		{MedicationID: "rexulti", DoseNumber: 1, Taken: true},
		{MedicationID: "retired-med", DoseNumber: 1, Taken: true},
	}
	day.ExtraMeds = []models.ExtraMed{{ID: "b", Name: "Second"}, {ID: "a", Name: "First"}}
	r := newReconstructor(day)

	view, err := r.Day(context.Background(), "2025-01-02")
	require.NoError(t, err)

	var daytime []string
	for _, row := range view.Daytime {
		daytime = append(daytime, row.Medication.ID+"#"+strconv.Itoa(row.DoseNumber))
	}
	assert.Equal(t, []string{"propranolol#2", "xanax-xr#1", "xanax-xr#2"}, daytime)

	var evening []string
	for _, row := range view.Evening {
		evening = append(evening, row.Medication.ID)
	}
	assert.Equal(t, []string{"rexulti", "lamictal", "retired-med"}, evening)

	assert.Equal(t, "Second", view.Extras[0].Name, "extras keep insertion order")
}

func TestDayMedicationWithoutLogsIsAbsent(t *testing.T) {
	day := models.NewDayRecords("2025-01-02")
	day.DoseLogs = []models.DoseLog{{MedicationID: "lithium", DoseNumber: 1, Taken: true}}
	r := newReconstructor(day)

	view, err := r.Day(context.Background(), "2025-01-02")
	require.NoError(t, err)
	assert.Empty(t, view.Daytime)
	require.Len(t, view.Evening, 1)
	assert.Equal(t, "lithium", view.Evening[0].Medication.ID)
}

func TestDaySourceError(t *testing.T) {
	r := &Reconstructor{Source: &memSource{err: errors.New("boom")}}
	_, err := r.Day(context.Background(), "2025-01-02")
	assert.Error(t, err)
}

func TestMonth(t *testing.T) {
	medOnly := models.NewDayRecords("2025-01-05")
	medOnly.DoseLogs = []models.DoseLog{{MedicationID: "lithium", DoseNumber: 1, Taken: true}}
	entry := models.NewDayRecords("2025-01-10")
	entry.Entries["mood"] = models.EntryValue{Value: models.NumberValue(0)}
	future := models.NewDayRecords("2025-01-20")
	future.Entries["mood"] = models.EntryValue{Value: models.NumberValue(0)}
	eveningOnly := models.NewDayRecords("2025-01-11")
	at := time.Now()
	eveningOnly.EveningTime = &at

	r := newReconstructor(medOnly, entry, future, eveningOnly)
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.Local)

	m, err := r.Month(context.Background(), 2025, time.January, now)
	require.NoError(t, err)
	require.Len(t, m.Days, 31)
	assert.Equal(t, []models.DateKey{"2025-01-05", "2025-01-10", "2025-01-20"}, m.DataDates())

	byDate := make(map[models.DateKey]CalendarDay)
	for _, d := range m.Days {
		byDate[d.Date] = d
	}
	assert.True(t, byDate["2025-01-05"].HasData, "medication-only day has data")
	assert.False(t, byDate["2025-01-11"].HasData)
	assert.True(t, byDate["2025-01-15"].IsToday)
	assert.True(t, byDate["2025-01-15"].Selectable)
	assert.True(t, byDate["2025-01-20"].HasData)
	assert.False(t, byDate["2025-01-20"].Selectable, "future day never selectable")
	assert.False(t, byDate["2025-01-16"].Selectable)
}

func TestMonthFebruaryLeapYear(t *testing.T) {
	r := newReconstructor()
	m, err := r.Month(context.Background(), 2024, time.February, time.Now())
	require.NoError(t, err)
	assert.Len(t, m.Days, 29)
}

func TestParseMonth(t *testing.T) {
	y, m, err := ParseMonth("2025-03")
	require.NoError(t, err)
	assert.Equal(t, 2025, y)
	assert.Equal(t, time.March, m)

	_, _, err = ParseMonth("March")
	assert.Error(t, err)
}

func TestNavigate(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.Local)
	assert.Equal(t, models.DateKey("2025-01-14"), DefaultDate(now))
	assert.Equal(t, models.DateKey("2025-01-13"), Navigate("2025-01-14", -1, now))
	assert.Equal(t, models.DateKey("2025-01-15"), Navigate("2025-01-14", 1, now))
	assert.Equal(t, models.DateKey("2025-01-15"), Navigate("2025-01-15", 1, now), "clamped to today")
	assert.Equal(t, models.DateKey("2025-02-01"), Navigate("2025-01-31", 1, time.Date(2025, 3, 1, 0, 0, 0, 0, time.Local)))
}
