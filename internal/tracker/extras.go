// ABOUTME: Extra (one-off) medication logging with temporary ids.
// ABOUTME: The temp id is swapped for the store id when the insert returns.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/harperreed/anchor/internal/logger"
	"github.com/harperreed/anchor/internal/models"
	"github.com/harperreed/anchor/internal/remote"
)

// ErrExtraMedNotFound is returned when removing an id not logged on the day.
var ErrExtraMedNotFound = errors.New("extra medication not found")

// AddExtraMed logs a one-off medication as taken and returns it with a temporary id.
// A zero takenAt means now.
func (t *Tracker) AddExtraMed(ctx context.Context, date models.DateKey, name, dosage string, takenAt time.Time) (models.ExtraMed, error) {
	if err := t.ensure(ctx, date); err != nil {
		return models.ExtraMed{}, err
	}
	t.writes.RLock()
	defer t.writes.RUnlock()
	if takenAt.IsZero() {
		takenAt = t.opts.Now()
	}
	med := models.ExtraMed{ID: t.opts.NewTempID(), Name: name, Dosage: dosage, TakenAt: takenAt}
	pk := extraKey(date, med.ID)

	t.mu.Lock()
	day := t.days[date]
	day.ExtraMeds = append(day.ExtraMeds, med)
	err := t.persistLocked(day)
	if err == nil && t.opts.Remote != nil {
		t.temps[med.ID] = struct{}{}
		t.markLocked(pk)
	}
	t.mu.Unlock()
	if err != nil {
		return models.ExtraMed{}, err
	}

	if r := t.opts.Remote; r != nil {
		_ = t.dispatch(ctx, MutAddExtraMed, pk, func(ctx context.Context) error {
			id, err := r.InsertExtraMed(ctx, t.opts.UserID, date, remote.NewExtraMed{Name: name, Dosage: dosage, TakenAt: takenAt})
			if err != nil {
				return err
			}
			stored := med
			stored.ID = id
			return t.adoptExtraID(ctx, date, med.ID, stored)
		}, nil)
	}
	return med, nil
}

// adoptExtraID swaps tempID for the stored row's id. The stored row is
// deleted only when RemoveExtraMed dropped tempID while the insert was in flight.
func (t *Tracker) adoptExtraID(ctx context.Context, date models.DateKey, tempID string, stored models.ExtraMed) error {
	t.mu.Lock()
	delete(t.temps, tempID)
	t.aliases[tempID] = stored.ID
	_, removed := t.removedTemps[tempID]
	delete(t.removedTemps, tempID)
	if !removed {
		if day, ok := t.days[date]; ok {
			i := day.FindExtra(tempID)
			switch {
			case day.FindExtra(stored.ID) >= 0:
				// a reload already brought the stored row in
				if i >= 0 {
					day.ExtraMeds = append(day.ExtraMeds[:i], day.ExtraMeds[i+1:]...)
				}
			case i >= 0:
				day.ExtraMeds[i].ID = stored.ID
			default:
				day.ExtraMeds = append(day.ExtraMeds, stored)
			}
		}
		t.touchLocked(extraKey(date, stored.ID))
	}
	gone := extraRemovalKey(date, stored.ID)
	if removed {
		t.markLocked(gone)
	}
	t.mu.Unlock()

	if !removed {
		return nil
	}
	defer t.settle(gone)
	logger.Info("deleting extra med removed during insert", "date", date, "id", stored.ID)
	return t.opts.Remote.DeleteMedicationLog(ctx, t.opts.UserID, stored.ID)
}

// RemoveExtraMed drops an extra med by its current or temporary id.
func (t *Tracker) RemoveExtraMed(ctx context.Context, date models.DateKey, id string) error {
	if err := t.ensure(ctx, date); err != nil {
		return err
	}
	t.writes.RLock()
	defer t.writes.RUnlock()

	t.mu.Lock()
	day := t.days[date]
	i := day.FindExtra(id)
	if i < 0 {
		if real, ok := t.aliases[id]; ok {
			id = real
			i = day.FindExtra(id)
		}
	}
	if i < 0 {
		t.mu.Unlock()
		return ErrExtraMedNotFound
	}
	day.ExtraMeds = append(day.ExtraMeds[:i], day.ExtraMeds[i+1:]...)
	// a temp id still here means the insert is in flight or failed;
	// adoptExtraID deletes the row if the insert lands later
	_, unstored := t.temps[id]
	if unstored {
		t.removedTemps[id] = struct{}{}
	}
	err := t.persistLocked(day)
	pk := extraRemovalKey(date, id)
	if err == nil && !unstored {
		t.markLocked(pk)
	}
	t.mu.Unlock()
	if err != nil {
		return err
	}

	r := t.opts.Remote
	if r == nil || unstored {
		return nil
	}
	_ = t.dispatch(ctx, MutRemoveExtraMed, pk, func(ctx context.Context) error {
		return r.DeleteMedicationLog(ctx, t.opts.UserID, id)
	}, nil)
	return nil
}

// ResolveExtraID returns the store id a temporary id was swapped for,
// or id itself when no swap happened.
func (t *Tracker) ResolveExtraID(id string) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if real, ok := t.aliases[id]; ok {
		return real
	}
	return id
}
