// ABOUTME: Per-day records: entries, dose logs, evening batch time, extra meds.
// ABOUTME: DayRecords groups everything stored under one date key.
package models

import (
	"sort"
	"time"
)

// EntryValue is the stored value of one activity on one day.
type EntryValue struct {
	Value     Value     `json:"value" yaml:"value"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Entry is an EntryValue with its natural key.
type Entry struct {
	Date       DateKey   `json:"date" yaml:"date"`
	ActivityID string    `json:"activity_id" yaml:"activity_id"`
	Value      Value     `json:"value" yaml:"value"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

// DoseKey identifies one dose slot of a medication on a day.
type DoseKey struct {
	MedicationID string
	DoseNumber   int
}

// DoseLog records what happened to one dose slot.
type DoseLog struct {
	MedicationID string     `json:"medication_id" yaml:"medication_id"`
	DoseNumber   int        `json:"dose_number" yaml:"dose_number"`
	Taken        bool       `json:"taken" yaml:"taken"`
	TakenAt      *time.Time `json:"taken_at,omitempty" yaml:"taken_at,omitempty"`
	DosageValue  *float64   `json:"dosage_value,omitempty" yaml:"dosage_value,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at" yaml:"updated_at"`
}

// Key returns the natural key of the log within its day.
func (l DoseLog) Key() DoseKey {
	return DoseKey{MedicationID: l.MedicationID, DoseNumber: l.DoseNumber}
}

// ExtraMed is a one-off medication logged by name.
type ExtraMed struct {
	ID      string    `json:"id" yaml:"id"`
	Name    string    `json:"name" yaml:"name"`
	Dosage  string    `json:"dosage,omitempty" yaml:"dosage,omitempty"`
	TakenAt time.Time `json:"taken_at" yaml:"taken_at"`
}

// DayRecords holds every record stored for one date key.
type DayRecords struct {
	Date        DateKey               `json:"date" yaml:"date"`
	Entries     map[string]EntryValue `json:"entries" yaml:"entries"`
	DoseLogs    []DoseLog             `json:"dose_logs" yaml:"dose_logs"`
	EveningTime *time.Time            `json:"evening_time,omitempty" yaml:"evening_time,omitempty"`
	ExtraMeds   []ExtraMed            `json:"extra_meds" yaml:"extra_meds"`
}

// NewDayRecords returns an empty day.
func NewDayRecords(date DateKey) *DayRecords {
	return &DayRecords{
		Date:    date,
		Entries: make(map[string]EntryValue),
	}
}

// IsEmpty reports whether nothing at all is recorded for the day.
func (d *DayRecords) IsEmpty() bool {
	return len(d.Entries) == 0 && len(d.DoseLogs) == 0 && d.EveningTime == nil && len(d.ExtraMeds) == 0
}

// HasData reports whether the day has an entry or any medication log.
func (d *DayRecords) HasData() bool {
	return len(d.Entries) > 0 || len(d.DoseLogs) > 0 || len(d.ExtraMeds) > 0
}

// FindDose returns the index of the log for key, or -1.
func (d *DayRecords) FindDose(key DoseKey) int {
	for i, l := range d.DoseLogs {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

// PutDose inserts or replaces the log with the same key.
func (d *DayRecords) PutDose(l DoseLog) {
	if i := d.FindDose(l.Key()); i >= 0 {
		d.DoseLogs[i] = l
		return
	}
	d.DoseLogs = append(d.DoseLogs, l)
}

// RemoveDose drops the log for key if present.
func (d *DayRecords) RemoveDose(key DoseKey) {
	if i := d.FindDose(key); i >= 0 {
		d.DoseLogs = append(d.DoseLogs[:i], d.DoseLogs[i+1:]...)
	}
}

// FindExtra returns the index of the extra med with id, or -1.
func (d *DayRecords) FindExtra(id string) int {
	for i, m := range d.ExtraMeds {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// SortedEntries returns entries ordered by activity id.
func (d *DayRecords) SortedEntries() []Entry {
	out := make([]Entry, 0, len(d.Entries))
	for id, ev := range d.Entries {
		out = append(out, Entry{Date: d.Date, ActivityID: id, Value: ev.Value, UpdatedAt: ev.UpdatedAt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActivityID < out[j].ActivityID })
	return out
}

// Clone returns a deep copy of the day.
func (d *DayRecords) Clone() *DayRecords {
	out := NewDayRecords(d.Date)
	for k, v := range d.Entries {
		out.Entries[k] = v
	}
	if len(d.DoseLogs) > 0 {
		out.DoseLogs = make([]DoseLog, len(d.DoseLogs))
		for i, l := range d.DoseLogs {
			l.TakenAt = cloneTime(l.TakenAt)
			l.DosageValue = cloneFloat(l.DosageValue)
			out.DoseLogs[i] = l
		}
	}
	out.EveningTime = cloneTime(d.EveningTime)
	if len(d.ExtraMeds) > 0 {
		out.ExtraMeds = make([]ExtraMed, len(d.ExtraMeds))
		copy(out.ExtraMeds, d.ExtraMeds)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
