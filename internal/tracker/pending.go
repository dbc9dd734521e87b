// ABOUTME: Bookkeeping for records whose remote write is still in flight.
// ABOUTME: A reload keeps the optimistic copy of those records instead of the store's.
package tracker

import (
	"github.com/harperreed/anchor/internal/models"
)

type pendingKind int

const (
	pendingEntry pendingKind = iota + 1
	pendingDose
	pendingEvening
	// pendingExtra is an extra med row whose insert or id swap is in flight
	pendingExtra
	pendingExtraRemoval
)

// pendingKey names one record on one day.
type pendingKey struct {
	date models.DateKey
	kind pendingKind
	id   string
	dose int
}

func entryKey(date models.DateKey, activityID string) pendingKey {
	return pendingKey{date: date, kind: pendingEntry, id: activityID}
}

func doseKey(date models.DateKey, k models.DoseKey) pendingKey {
	return pendingKey{date: date, kind: pendingDose, id: k.MedicationID, dose: k.DoseNumber}
}

func eveningKey(date models.DateKey) pendingKey {
	return pendingKey{date: date, kind: pendingEvening}
}

func extraKey(date models.DateKey, id string) pendingKey {
	return pendingKey{date: date, kind: pendingExtra, id: id}
}

func extraRemovalKey(date models.DateKey, id string) pendingKey {
	return pendingKey{date: date, kind: pendingExtraRemoval, id: id}
}

// loadWatch collects every key touched for date while a Load reads the store.
type loadWatch struct {
	date models.DateKey
	keys map[pendingKey]struct{}
}

// markLocked records a write about to be dispatched. No-op without a remote.
func (t *Tracker) markLocked(k pendingKey) {
	if t.opts.Remote == nil {
		return
	}
	t.pending[k]++
	t.touchLocked(k)
}

// touchLocked tells running loads that k changed locally.
func (t *Tracker) touchLocked(k pendingKey) {
	for w := range t.watches {
		if w.date == k.date {
			w.keys[k] = struct{}{}
		}
	}
}

// settle drops one in-flight write for k.
func (t *Tracker) settle(k pendingKey) {
	if k.kind == 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending[k] <= 1 {
		delete(t.pending, k)
		return
	}
	t.pending[k]--
}

// watchLocked starts collecting keys for date, seeded with what is already in flight.
func (t *Tracker) watchLocked(date models.DateKey) *loadWatch {
	w := &loadWatch{date: date, keys: make(map[pendingKey]struct{})}
	for k := range t.pending {
		if k.date == date {
			w.keys[k] = struct{}{}
		}
	}
	t.watches[w] = struct{}{}
	return w
}

// carryLocked copies the cached state of every watched key from old into fresh.
func carryLocked(keys map[pendingKey]struct{}, old, fresh *models.DayRecords) {
	for k := range keys {
		switch k.kind {
		case pendingEntry:
			if ev, ok := old.Entries[k.id]; ok {
				fresh.Entries[k.id] = ev
			} else {
				delete(fresh.Entries, k.id)
			}
		case pendingDose:
			dk := models.DoseKey{MedicationID: k.id, DoseNumber: k.dose}
			if i := old.FindDose(dk); i >= 0 {
				fresh.PutDose(old.DoseLogs[i])
			} else {
				fresh.RemoveDose(dk)
			}
		case pendingEvening:
			fresh.EveningTime = old.EveningTime
		case pendingExtra:
			if i := old.FindExtra(k.id); i >= 0 && fresh.FindExtra(k.id) < 0 {
				fresh.ExtraMeds = append(fresh.ExtraMeds, old.ExtraMeds[i])
			}
		case pendingExtraRemoval:
			if i := fresh.FindExtra(k.id); i >= 0 {
				fresh.ExtraMeds = append(fresh.ExtraMeds[:i], fresh.ExtraMeds[i+1:]...)
			}
		}
	}
}
