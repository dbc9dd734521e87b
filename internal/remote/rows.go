// ABOUTME: gorm row types for daily_entries, medication_logs, and evening_med_times.
// ABOUTME: Converts between table rows and domain records.
package remote

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/anchor/internal/models"
	"gorm.io/datatypes"
)

type dailyEntryRow struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID       string         `gorm:"not null;uniqueIndex:idx_daily_entries_natural,priority:1"`
	LogDate      models.DateKey `gorm:"type:date;not null;uniqueIndex:idx_daily_entries_natural,priority:2"`
	ActivityID   string         `gorm:"not null;uniqueIndex:idx_daily_entries_natural,priority:3"`
	ValueBoolean *bool
	ValueNumber  *float64
	ValueText    *string
	ValueJSON    datatypes.JSON `gorm:"column:value_json;type:jsonb"`
	UpdatedAt    time.Time
}

func (dailyEntryRow) TableName() string { return "daily_entries" }

type medicationLogRow struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID           string         `gorm:"not null;uniqueIndex:idx_medication_logs_natural,priority:1;index:idx_medication_logs_day,priority:1"`
	MedicationID     *string        `gorm:"uniqueIndex:idx_medication_logs_natural,priority:2"`
	LogDate          models.DateKey `gorm:"type:date;not null;uniqueIndex:idx_medication_logs_natural,priority:3;index:idx_medication_logs_day,priority:2"`
	DoseNumber       int            `gorm:"not null;default:1;uniqueIndex:idx_medication_logs_natural,priority:4"`
	Taken            bool           `gorm:"not null;default:false"`
	TakenAt          *time.Time
	DosageValueTaken *float64
	CustomMedName    *string
	DosageTaken      *string
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time
}

func (medicationLogRow) TableName() string { return "medication_logs" }

type eveningMedTimeRow struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	UserID    string         `gorm:"not null;uniqueIndex:idx_evening_med_times_natural,priority:1"`
	LogDate   models.DateKey `gorm:"type:date;not null;uniqueIndex:idx_evening_med_times_natural,priority:2"`
	TakenAt   time.Time      `gorm:"not null"`
	UpdatedAt time.Time
}

func (eveningMedTimeRow) TableName() string { return "evening_med_times" }

func entryToRow(userID string, e models.Entry) dailyEntryRow {
	row := dailyEntryRow{
		ID:         uuid.New(),
		UserID:     userID,
		LogDate:    e.Date,
		ActivityID: e.ActivityID,
		UpdatedAt:  e.UpdatedAt,
	}
	switch e.Value.Kind() {
	case models.KindBool:
		b, _ := e.Value.Bool()
		row.ValueBoolean = &b
	case models.KindNumber:
		n, _ := e.Value.Number()
		row.ValueNumber = &n
	case models.KindText:
		s, _ := e.Value.Text()
		row.ValueText = &s
	case models.KindJSON:
		raw, _ := e.Value.JSON()
		row.ValueJSON = datatypes.JSON(raw)
	}
	return row
}

// rowToEntry takes the first non-null value column.
func rowToEntry(row dailyEntryRow) models.Entry {
	e := models.Entry{
		Date:       row.LogDate,
		ActivityID: row.ActivityID,
		UpdatedAt:  row.UpdatedAt,
	}
	switch {
	case row.ValueBoolean != nil:
		e.Value = models.BoolValue(*row.ValueBoolean)
	case row.ValueNumber != nil:
		e.Value = models.NumberValue(*row.ValueNumber)
	case row.ValueText != nil:
		e.Value = models.TextValue(*row.ValueText)
	case len(row.ValueJSON) > 0 && string(row.ValueJSON) != "null":
		e.Value = models.JSONValue(json.RawMessage(row.ValueJSON))
	}
	return e
}

func doseToRow(userID string, date models.DateKey, l models.DoseLog) medicationLogRow {
	medID := l.MedicationID
	return medicationLogRow{
		ID:               uuid.New(),
		UserID:           userID,
		MedicationID:     &medID,
		LogDate:          date,
		DoseNumber:       l.DoseNumber,
		Taken:            l.Taken,
		TakenAt:          l.TakenAt,
		DosageValueTaken: l.DosageValue,
		UpdatedAt:        l.UpdatedAt,
	}
}

func rowToDose(row medicationLogRow) models.DoseLog {
	l := models.DoseLog{
		DoseNumber:  row.DoseNumber,
		Taken:       row.Taken,
		TakenAt:     row.TakenAt,
		DosageValue: row.DosageValueTaken,
		UpdatedAt:   row.UpdatedAt,
	}
	if row.MedicationID != nil {
		l.MedicationID = *row.MedicationID
	}
	return l
}

func rowToExtra(row medicationLogRow) models.ExtraMed {
	m := models.ExtraMed{ID: row.ID.String()}
	if row.CustomMedName != nil {
		m.Name = *row.CustomMedName
	}
	if row.DosageTaken != nil {
		m.Dosage = *row.DosageTaken
	}
	if row.TakenAt != nil {
		m.TakenAt = *row.TakenAt
	}
	return m
}
