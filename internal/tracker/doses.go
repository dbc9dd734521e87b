// ABOUTME: Medication Log Store mutations for standing medications.
// ABOUTME: Toggle rolls back on remote failure; time, dosage, and evening edits do not.
package tracker

import (
	"context"
	"time"

	"github.com/harperreed/anchor/internal/models"
)

// ToggleDose flips the taken state of one dose slot.
// Becoming taken stamps the current time; becoming untaken clears it.
func (t *Tracker) ToggleDose(ctx context.Context, date models.DateKey, medicationID string, dose int) (models.DoseLog, error) {
	if err := t.ensure(ctx, date); err != nil {
		return models.DoseLog{}, err
	}
	t.writes.RLock()
	defer t.writes.RUnlock()
	key := models.DoseKey{MedicationID: medicationID, DoseNumber: dose}
	pk := doseKey(date, key)

	t.mu.Lock()
	day := t.days[date]
	var prev *models.DoseLog
	next := models.DoseLog{MedicationID: medicationID, DoseNumber: dose}
	if i := day.FindDose(key); i >= 0 {
		p := day.DoseLogs[i]
		prev = &p
		next.DosageValue = p.DosageValue
		next.Taken = !p.Taken
	} else {
		next.Taken = true
	}
	now := t.opts.Now()
	if next.Taken {
		next.TakenAt = &now
	}
	next.UpdatedAt = now
	day.PutDose(next)
	err := t.persistLocked(day)
	if err == nil {
		t.markLocked(pk)
	}
	t.mu.Unlock()
	if err != nil {
		return models.DoseLog{}, err
	}

	if r := t.opts.Remote; r != nil {
		_ = t.dispatch(ctx, MutToggleDose, pk, func(ctx context.Context) error {
			return r.UpsertDoseLog(ctx, t.opts.UserID, date, next)
		}, func() {
			t.restoreDose(date, next, prev)
		})
	}
	return next, nil
}

// restoreDose puts back prev unless the slot changed again since written.
func (t *Tracker) restoreDose(date models.DateKey, written models.DoseLog, prev *models.DoseLog) {
	t.mu.Lock()
	defer t.mu.Unlock()
	day, ok := t.days[date]
	if !ok {
		return
	}
	i := day.FindDose(written.Key())
	if i < 0 || !sameDose(day.DoseLogs[i], written) {
		return
	}
	if prev == nil {
		day.RemoveDose(written.Key())
		return
	}
	day.DoseLogs[i] = *prev
}

func sameDose(a, b models.DoseLog) bool {
	return a.Taken == b.Taken && a.UpdatedAt.Equal(b.UpdatedAt)
}

// UpdateDoseTime overwrites the taken-at time and leaves taken unchanged.
func (t *Tracker) UpdateDoseTime(ctx context.Context, date models.DateKey, medicationID string, dose int, takenAt time.Time) (models.DoseLog, error) {
	return t.editDose(ctx, MutUpdateDoseTime, date, medicationID, dose, func(l *models.DoseLog) {
		l.TakenAt = &takenAt
	})
}

// UpdateDosage records the dosage actually taken for one dose.
// The standing medication configuration is not touched.
func (t *Tracker) UpdateDosage(ctx context.Context, date models.DateKey, medicationID string, dose int, value float64) (models.DoseLog, error) {
	return t.editDose(ctx, MutUpdateDosage, date, medicationID, dose, func(l *models.DoseLog) {
		l.DosageValue = &value
	})
}

func (t *Tracker) editDose(ctx context.Context, m Mutation, date models.DateKey, medicationID string, dose int, edit func(*models.DoseLog)) (models.DoseLog, error) {
	if err := t.ensure(ctx, date); err != nil {
		return models.DoseLog{}, err
	}
	t.writes.RLock()
	defer t.writes.RUnlock()
	key := models.DoseKey{MedicationID: medicationID, DoseNumber: dose}
	pk := doseKey(date, key)

	t.mu.Lock()
	day := t.days[date]
	next := models.DoseLog{MedicationID: medicationID, DoseNumber: dose}
	if i := day.FindDose(key); i >= 0 {
		next = day.DoseLogs[i]
	}
	edit(&next)
	next.UpdatedAt = t.opts.Now()
	day.PutDose(next)
	err := t.persistLocked(day)
	if err == nil {
		t.markLocked(pk)
	}
	t.mu.Unlock()
	if err != nil {
		return models.DoseLog{}, err
	}

	if r := t.opts.Remote; r != nil {
		_ = t.dispatch(ctx, m, pk, func(ctx context.Context) error {
			return r.UpsertDoseLog(ctx, t.opts.UserID, date, next)
		}, nil)
	}
	return next, nil
}

// SetEveningTime sets the single batch time for the day's evening medications.
func (t *Tracker) SetEveningTime(ctx context.Context, date models.DateKey, takenAt time.Time) error {
	if err := t.ensure(ctx, date); err != nil {
		return err
	}
	t.writes.RLock()
	defer t.writes.RUnlock()
	pk := eveningKey(date)

	t.mu.Lock()
	day := t.days[date]
	at := takenAt
	day.EveningTime = &at
	err := t.persistLocked(day)
	if err == nil {
		t.markLocked(pk)
	}
	t.mu.Unlock()
	if err != nil {
		return err
	}

	if r := t.opts.Remote; r != nil {
		_ = t.dispatch(ctx, MutSetEveningTime, pk, func(ctx context.Context) error {
			return r.UpsertEveningTime(ctx, t.opts.UserID, date, takenAt)
		}, nil)
	}
	return nil
}
