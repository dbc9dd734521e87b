// ABOUTME: Per-day entry and medication log state with optimistic remote sync.
// ABOUTME: Falls back to local day blobs when no remote store is configured.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/anchor/internal/logger"
	"github.com/harperreed/anchor/internal/models"
	"github.com/harperreed/anchor/internal/remote"
	"github.com/harperreed/anchor/internal/storage"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

// DefaultUserID is used when Options.UserID is empty.
const DefaultUserID = "default"

// Options configures a Tracker.
type Options struct {
	UserID string
	// Remote is the store of record. Nil means local-only.
	Remote remote.Store
	// Local persists days when Remote is nil. Nil keeps state in memory only.
	Local      *storage.Days
	Activities []models.Activity
	Now        func() time.Time
	NewTempID  func() string
	// OnRemoteError observes every failed remote call.
	OnRemoteError func(m Mutation, err error)
}

// Tracker holds the loaded days and routes writes to the configured store.
type Tracker struct {
	opts Options

	mu      sync.Mutex
	days    map[models.DateKey]*models.DayRecords
	aliases map[string]string
	pending map[pendingKey]int
	watches map[*loadWatch]struct{}

	// temps holds extra med ids not yet swapped for a store id
	temps map[string]struct{}

	// removedTemps holds temp ids removed before their insert returned
	removedTemps map[string]struct{}

	// writes is held for reading while a mutation dispatches and for
	// writing while Flush or ResetDay waits on inflight
	writes   sync.RWMutex
	inflight sync.WaitGroup
}

// New returns a Tracker. Missing options get defaults.
func New(opts Options) *Tracker {
	if opts.UserID == "" {
		opts.UserID = DefaultUserID
	}
	if opts.Activities == nil {
		opts.Activities = models.DefaultActivities()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewTempID == nil {
		opts.NewTempID = func() string { return "extra-" + ulid.Make().String() }
	}
	return &Tracker{
		opts:         opts,
		days:         make(map[models.DateKey]*models.DayRecords),
		aliases:      make(map[string]string),
		temps:        make(map[string]struct{}),
		removedTemps: make(map[string]struct{}),
		pending:      make(map[pendingKey]int),
		watches:      make(map[*loadWatch]struct{}),
	}
}

// UserID returns the identity every remote row is written under.
func (t *Tracker) UserID() string { return t.opts.UserID }

// IsRemote reports whether a remote store is configured.
func (t *Tracker) IsRemote() bool { return t.opts.Remote != nil }

// Activities returns the activity catalog in display order.
func (t *Tracker) Activities() []models.Activity { return t.opts.Activities }

// Now returns the tracker clock.
func (t *Tracker) Now() time.Time { return t.opts.Now() }

// Today returns the date key for the tracker clock.
func (t *Tracker) Today() models.DateKey { return models.Today(t.opts.Now()) }

// Load reads date from the store of record into memory, replacing any cached copy.
// Records with a remote write still in flight keep their cached value.
// A failed remote read is logged: the first load starts the day empty and
// a reload keeps the cached day.
func (t *Tracker) Load(ctx context.Context, date models.DateKey) (*models.DayRecords, error) {
	t.mu.Lock()
	w := t.watchLocked(date)
	t.mu.Unlock()

	day, err := t.read(ctx, date)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.watches, w)
	old, cached := t.days[date]
	if err != nil {
		if t.opts.Remote == nil {
			return nil, err
		}
		logger.Warn("remote load failed", "date", date, "cached", cached, "error", err)
		if cached {
			return old.Clone(), nil
		}
		day = models.NewDayRecords(date)
	} else if cached {
		carryLocked(w.keys, old, day)
	}
	t.days[date] = day
	return day.Clone(), nil
}

// LoadDay returns the cached day when loaded, otherwise reads it without caching.
func (t *Tracker) LoadDay(ctx context.Context, date models.DateKey) (*models.DayRecords, error) {
	t.mu.Lock()
	if day, ok := t.days[date]; ok {
		out := day.Clone()
		t.mu.Unlock()
		return out, nil
	}
	t.mu.Unlock()
	return t.read(ctx, date)
}

// ActiveDates returns days in [from, to] with an entry or a medication log.
func (t *Tracker) ActiveDates(ctx context.Context, from, to models.DateKey) ([]models.DateKey, error) {
	if t.opts.Remote != nil {
		return t.opts.Remote.ActiveDates(ctx, t.opts.UserID, from, to)
	}
	if t.opts.Local != nil {
		return t.opts.Local.Dates(from, to)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	var out []models.DateKey
	for date, day := range t.days {
		if day.HasData() && !date.Before(from) && !date.After(to) {
			out = append(out, date)
		}
	}
	sortDates(out)
	return out, nil
}

func (t *Tracker) read(ctx context.Context, date models.DateKey) (*models.DayRecords, error) {
	if t.opts.Remote == nil {
		if t.opts.Local == nil {
			return models.NewDayRecords(date), nil
		}
		return t.opts.Local.Load(date)
	}

	day := models.NewDayRecords(date)
	var (
		entries []models.Entry
		doses   []models.DoseLog
		evening *time.Time
		extras  []models.ExtraMed
	)
	r, user := t.opts.Remote, t.opts.UserID
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		entries, err = r.ListEntries(gctx, user, date, date)
		return err
	})
	g.Go(func() (err error) {
		doses, err = r.ListDoseLogs(gctx, user, date)
		return err
	})
	g.Go(func() (err error) {
		evening, err = r.GetEveningTime(gctx, user, date)
		return err
	})
	g.Go(func() (err error) {
		extras, err = r.ListExtraMeds(gctx, user, date)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load %s: %w", date, err)
	}

	for _, e := range entries {
		day.Entries[e.ActivityID] = models.EntryValue{Value: e.Value, UpdatedAt: e.UpdatedAt}
	}
	day.DoseLogs = doses
	day.EveningTime = evening
	day.ExtraMeds = extras
	return day, nil
}

// ensure returns the cached day, loading it first when absent. Caller holds no lock.
func (t *Tracker) ensure(ctx context.Context, date models.DateKey) error {
	t.mu.Lock()
	_, ok := t.days[date]
	t.mu.Unlock()
	if ok {
		return nil
	}
	_, err := t.Load(ctx, date)
	return err
}

// persistLocked saves the day to the local blob store in local-only mode.
func (t *Tracker) persistLocked(day *models.DayRecords) error {
	if t.opts.Remote != nil || t.opts.Local == nil {
		return nil
	}
	if err := t.opts.Local.Save(day); err != nil {
		return fmt.Errorf("save %s locally: %w", day.Date, err)
	}
	return nil
}

func (t *Tracker) reportRemote(m Mutation, err error) {
	logger.Error("remote write failed", "op", string(m), "policy", PolicyFor(m).String(), "error", err)
	if t.opts.OnRemoteError != nil {
		t.opts.OnRemoteError(m, err)
	}
}

// Day returns a copy of the cached day, empty when not loaded.
func (t *Tracker) Day(date models.DateKey) *models.DayRecords {
	t.mu.Lock()
	defer t.mu.Unlock()
	if day, ok := t.days[date]; ok {
		return day.Clone()
	}
	return models.NewDayRecords(date)
}

// Entries returns the activity values recorded for date.
func (t *Tracker) Entries(date models.DateKey) map[string]models.EntryValue {
	return t.Day(date).Entries
}

// DoseLog returns the log for one dose slot, or nil when never logged.
func (t *Tracker) DoseLog(date models.DateKey, medicationID string, dose int) *models.DoseLog {
	day := t.Day(date)
	i := day.FindDose(models.DoseKey{MedicationID: medicationID, DoseNumber: dose})
	if i < 0 {
		return nil
	}
	l := day.DoseLogs[i]
	return &l
}

// IsDoseTaken reports whether the dose slot is logged as taken.
func (t *Tracker) IsDoseTaken(date models.DateKey, medicationID string, dose int) bool {
	l := t.DoseLog(date, medicationID, dose)
	return l != nil && l.Taken
}

// EveningTime returns the evening batch time for date, if set.
func (t *Tracker) EveningTime(date models.DateKey) *time.Time {
	return t.Day(date).EveningTime
}

// ExtraMeds returns the one-off medications logged on date, in insertion order.
func (t *Tracker) ExtraMeds(date models.DateKey) []models.ExtraMed {
	return t.Day(date).ExtraMeds
}

// Flush waits for every in-flight remote write.
func (t *Tracker) Flush() {
	t.writes.Lock()
	defer t.writes.Unlock()
	t.inflight.Wait()
}

// Close flushes pending writes and closes the remote store.
func (t *Tracker) Close() error {
	t.Flush()
	if t.opts.Remote != nil {
		return t.opts.Remote.Close()
	}
	return nil
}
