// ABOUTME: Rebuilds a complete per-day view from configuration plus stored records.
// ABOUTME: Unanswered activities become missing placeholders; medications are grouped by category.
package history

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/harperreed/anchor/internal/display"
	"github.com/harperreed/anchor/internal/models"
)

// Source supplies stored days. tracker.Tracker satisfies it.
type Source interface {
	LoadDay(ctx context.Context, date models.DateKey) (*models.DayRecords, error)
	ActiveDates(ctx context.Context, from, to models.DateKey) ([]models.DateKey, error)
}

// MedicationSource supplies the current medication configuration.
type MedicationSource interface {
	Current() models.MedicationConfig
}

// Reconstructor builds day and month views.
type Reconstructor struct {
	Source      Source
	Activities  []models.Activity
	Medications MedicationSource
}

// ActivityRow is one configured activity on one day.
type ActivityRow struct {
	Activity  models.Activity `json:"activity"`
	Value     *models.Value   `json:"value,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
	Missing   bool            `json:"missing"`
	Display   string          `json:"display"`
}

// DoseRow is one logged dose of a standing medication.
type DoseRow struct {
	Medication  models.Medication `json:"medication"`
	DoseNumber  int               `json:"dose_number"`
	Taken       bool              `json:"taken"`
	TakenAt     *time.Time        `json:"taken_at,omitempty"`
	DosageValue *float64          `json:"dosage_value,omitempty"`
}

// DayView is the reconstructed history of one date.
type DayView struct {
	Date        models.DateKey    `json:"date"`
	Activities  []ActivityRow     `json:"activities"`
	Daytime     []DoseRow         `json:"daytime"`
	Evening     []DoseRow         `json:"evening"`
	EveningTime *time.Time        `json:"evening_time,omitempty"`
	Extras      []models.ExtraMed `json:"extras"`
	HasData     bool              `json:"has_data"`
}

// Day loads date and reconstructs its view.
func (r *Reconstructor) Day(ctx context.Context, date models.DateKey) (*DayView, error) {
	day, err := r.Source.LoadDay(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load history for %s: %w", date, err)
	}
	return Build(day, r.Activities, r.medications()), nil
}

func (r *Reconstructor) medications() models.MedicationConfig {
	if r.Medications == nil {
		return models.DefaultMedications()
	}
	return r.Medications.Current()
}

// Build merges one day's records with the configuration.
func Build(day *models.DayRecords, activities []models.Activity, meds models.MedicationConfig) *DayView {
	view := &DayView{
		Date:        day.Date,
		Activities:  make([]ActivityRow, 0, len(activities)),
		EveningTime: day.EveningTime,
		Extras:      append([]models.ExtraMed(nil), day.ExtraMeds...),
		HasData:     day.HasData(),
	}

	for _, a := range activities {
		row := ActivityRow{Activity: a}
		if ev, ok := day.Entries[a.ID]; ok && ev.Value.IsValid() {
			v := ev.Value
			at := ev.UpdatedAt
			row.Value = &v
			row.UpdatedAt = &at
			row.Display = display.FormatValue(a, v)
		} else {
			row.Missing = true
			row.Display = display.MissingPlaceholder(a)
		}
		view.Activities = append(view.Activities, row)
	}

	view.Daytime, view.Evening = splitDoses(day.DoseLogs, meds)
	return view
}

// splitDoses orders daytime logs by configuration then dose number, and
// evening logs by configuration. Logs for unconfigured ids go last as evening.
func splitDoses(logs []models.DoseLog, meds models.MedicationConfig) (daytime, evening []DoseRow) {
	byMed := make(map[string][]models.DoseLog)
	for _, l := range logs {
		byMed[l.MedicationID] = append(byMed[l.MedicationID], l)
	}

	take := func(m models.Medication) []DoseRow {
		group := byMed[m.ID]
		delete(byMed, m.ID)
		sort.Slice(group, func(i, j int) bool { return group[i].DoseNumber < group[j].DoseNumber })
		rows := make([]DoseRow, 0, len(group))
		for _, l := range group {
			rows = append(rows, DoseRow{
				Medication:  m,
				DoseNumber:  l.DoseNumber,
				Taken:       l.Taken,
				TakenAt:     l.TakenAt,
				DosageValue: l.DosageValue,
			})
		}
		return rows
	}

	for _, m := range meds.Daytime {
		daytime = append(daytime, take(m)...)
	}
	for _, m := range meds.Evening {
		evening = append(evening, take(m)...)
	}

	rest := make([]string, 0, len(byMed))
	for id := range byMed {
		rest = append(rest, id)
	}
	sort.Strings(rest)
	for _, id := range rest {
		evening = append(evening, take(models.Medication{ID: id, Name: id})...)
	}
	return daytime, evening
}
