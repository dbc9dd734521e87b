// ABOUTME: Entry Store mutations: one typed value per activity per day.
// ABOUTME: Local state is kept when the remote upsert fails.
package tracker

import (
	"context"
	"sort"

	"github.com/harperreed/anchor/internal/models"
)

// SetEntry records value for activityID on date.
// The value is stored as given; activity config only shapes input.
func (t *Tracker) SetEntry(ctx context.Context, date models.DateKey, activityID string, value models.Value) (models.Entry, error) {
	if _, err := models.FindActivity(t.opts.Activities, activityID); err != nil {
		return models.Entry{}, err
	}
	if err := t.ensure(ctx, date); err != nil {
		return models.Entry{}, err
	}
	t.writes.RLock()
	defer t.writes.RUnlock()

	key := entryKey(date, activityID)
	t.mu.Lock()
	day := t.days[date]
	entry := models.Entry{Date: date, ActivityID: activityID, Value: value, UpdatedAt: t.opts.Now()}
	day.Entries[activityID] = models.EntryValue{Value: value, UpdatedAt: entry.UpdatedAt}
	err := t.persistLocked(day)
	if err == nil {
		t.markLocked(key)
	}
	t.mu.Unlock()
	if err != nil {
		return models.Entry{}, err
	}

	if r := t.opts.Remote; r != nil {
		_ = t.dispatch(ctx, MutSetEntry, key, func(ctx context.Context) error {
			return r.UpsertEntry(ctx, t.opts.UserID, entry)
		}, nil)
	}
	return entry, nil
}

// SetEntryText coerces raw by the activity's render type, then records it.
func (t *Tracker) SetEntryText(ctx context.Context, date models.DateKey, activityID, raw string) (models.Entry, error) {
	act, err := models.FindActivity(t.opts.Activities, activityID)
	if err != nil {
		return models.Entry{}, err
	}
	v, err := act.Coerce(raw)
	if err != nil {
		return models.Entry{}, err
	}
	return t.SetEntry(ctx, date, activityID, v)
}

func sortDates(dates []models.DateKey) {
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })
}
