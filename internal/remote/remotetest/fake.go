// ABOUTME: In-memory remote.Store for tests, with per-operation failure injection.
// ABOUTME: Records every call so tests can assert on the write sequence.
package remotetest

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/anchor/internal/models"
	"github.com/harperreed/anchor/internal/remote"
)

// ErrInjected is the default error returned by a failing operation.
var ErrInjected = errors.New("injected remote failure")

// Operation names accepted by Fail and reported by Calls.
const (
	OpUpsertEntry       = "UpsertEntry"
	OpListEntries       = "ListEntries"
	OpUpsertDoseLog     = "UpsertDoseLog"
	OpListDoseLogs      = "ListDoseLogs"
	OpUpsertEveningTime = "UpsertEveningTime"
	OpGetEveningTime    = "GetEveningTime"
	OpInsertExtraMed    = "InsertExtraMed"
	OpListExtraMeds     = "ListExtraMeds"
	OpDeleteMedLog      = "DeleteMedicationLog"
	OpResetDay          = "ResetDay"
	OpActiveDates       = "ActiveDates"
)

type entryKey struct {
	user, activity string
	date           models.DateKey
}

type doseKey struct {
	user string
	date models.DateKey
	key  models.DoseKey
}

type dayKey struct {
	user string
	date models.DateKey
}

type extraRow struct {
	user string
	date models.DateKey
	med  models.ExtraMed
}

// Store is a thread-safe fake of remote.Store.
type Store struct {
	mu       sync.Mutex
	entries  map[entryKey]models.Entry
	doses    map[doseKey]models.DoseLog
	evenings map[dayKey]time.Time
	extras   []extraRow
	failing  map[string]error
	calls    []string
	gate     chan struct{}
}

var _ remote.Store = (*Store)(nil)

// New returns an empty fake.
func New() *Store {
	return &Store{
		entries:  make(map[entryKey]models.Entry),
		doses:    make(map[doseKey]models.DoseLog),
		evenings: make(map[dayKey]time.Time),
		failing:  make(map[string]error),
	}
}

// Fail makes op return err (ErrInjected when nil) until Recover is called.
func (s *Store) Fail(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		err = ErrInjected
	}
	s.failing[op] = err
}

// Recover clears every injected failure.
func (s *Store) Recover() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = make(map[string]error)
}

// Hold blocks every write until the returned release func is called.
func (s *Store) Hold() (release func()) {
	s.mu.Lock()
	gate := make(chan struct{})
	s.gate = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Calls returns the operation names in call order.
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// begin records the call, waits on any held gate, and reports an injected error.
func (s *Store) begin(ctx context.Context, op string, write bool) error {
	s.mu.Lock()
	s.calls = append(s.calls, op)
	gate := s.gate
	s.mu.Unlock()
	if write && gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failing[op]
}

func (s *Store) UpsertEntry(ctx context.Context, userID string, e models.Entry) error {
	if err := s.begin(ctx, OpUpsertEntry, true); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entryKey{userID, e.ActivityID, e.Date}] = e
	return nil
}

func (s *Store) ListEntries(ctx context.Context, userID string, from, to models.DateKey) ([]models.Entry, error) {
	if err := s.begin(ctx, OpListEntries, false); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Entry
	for k, e := range s.entries {
		if k.user == userID && !k.date.Before(from) && !k.date.After(to) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ActivityID < out[j].ActivityID
	})
	return out, nil
}

func (s *Store) UpsertDoseLog(ctx context.Context, userID string, date models.DateKey, l models.DoseLog) error {
	if err := s.begin(ctx, OpUpsertDoseLog, true); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doses[doseKey{userID, date, l.Key()}] = l
	return nil
}

func (s *Store) ListDoseLogs(ctx context.Context, userID string, date models.DateKey) ([]models.DoseLog, error) {
	if err := s.begin(ctx, OpListDoseLogs, false); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.DoseLog
	for k, l := range s.doses {
		if k.user == userID && k.date == date {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].MedicationID != out[j].MedicationID {
			return out[i].MedicationID < out[j].MedicationID
		}
		return out[i].DoseNumber < out[j].DoseNumber
	})
	return out, nil
}

func (s *Store) UpsertEveningTime(ctx context.Context, userID string, date models.DateKey, takenAt time.Time) error {
	if err := s.begin(ctx, OpUpsertEveningTime, true); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evenings[dayKey{userID, date}] = takenAt
	return nil
}

func (s *Store) GetEveningTime(ctx context.Context, userID string, date models.DateKey) (*time.Time, error) {
	if err := s.begin(ctx, OpGetEveningTime, false); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.evenings[dayKey{userID, date}]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *Store) InsertExtraMed(ctx context.Context, userID string, date models.DateKey, m remote.NewExtraMed) (string, error) {
	if err := s.begin(ctx, OpInsertExtraMed, true); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.NewString()
	s.extras = append(s.extras, extraRow{
		user: userID,
		date: date,
		med:  models.ExtraMed{ID: id, Name: m.Name, Dosage: m.Dosage, TakenAt: m.TakenAt},
	})
	return id, nil
}

func (s *Store) ListExtraMeds(ctx context.Context, userID string, date models.DateKey) ([]models.ExtraMed, error) {
	if err := s.begin(ctx, OpListExtraMeds, false); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ExtraMed
	for _, r := range s.extras {
		if r.user == userID && r.date == date {
			out = append(out, r.med)
		}
	}
	return out, nil
}

func (s *Store) DeleteMedicationLog(ctx context.Context, userID, id string) error {
	if err := s.begin(ctx, OpDeleteMedLog, true); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.extras {
		if r.user == userID && r.med.ID == id {
			s.extras = append(s.extras[:i], s.extras[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) ResetDay(ctx context.Context, userID string, date models.DateKey) error {
	if err := s.begin(ctx, OpResetDay, true); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if k.user == userID && k.date == date {
			delete(s.entries, k)
		}
	}
	for k := range s.doses {
		if k.user == userID && k.date == date {
			delete(s.doses, k)
		}
	}
	delete(s.evenings, dayKey{userID, date})
	kept := s.extras[:0]
	for _, r := range s.extras {
		if r.user != userID || r.date != date {
			kept = append(kept, r)
		}
	}
	s.extras = kept
	return nil
}

func (s *Store) ActiveDates(ctx context.Context, userID string, from, to models.DateKey) ([]models.DateKey, error) {
	if err := s.begin(ctx, OpActiveDates, false); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[models.DateKey]bool)
	in := func(d models.DateKey) bool { return !d.Before(from) && !d.After(to) }
	for k := range s.entries {
		if k.user == userID && in(k.date) {
			seen[k.date] = true
		}
	}
	for k := range s.doses {
		if k.user == userID && in(k.date) {
			seen[k.date] = true
		}
	}
	for _, r := range s.extras {
		if r.user == userID && in(r.date) {
			seen[r.date] = true
		}
	}
	out := make([]models.DateKey, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func (s *Store) Close() error { return nil }

// Entry returns the stored entry, for assertions.
func (s *Store) Entry(userID string, date models.DateKey, activityID string) (models.Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entryKey{userID, activityID, date}]
	return e, ok
}

// Dose returns the stored dose log, for assertions.
func (s *Store) Dose(userID string, date models.DateKey, key models.DoseKey) (models.DoseLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.doses[doseKey{userID, date, key}]
	return l, ok
}

// String summarizes the fake's contents.
func (s *Store) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("entries=%d doses=%d evenings=%d extras=%d", len(s.entries), len(s.doses), len(s.evenings), len(s.extras))
}
