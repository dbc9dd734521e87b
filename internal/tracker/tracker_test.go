// ABOUTME: Tests for the tracker's load, entry, and reset behavior.
// ABOUTME: Remote calls go to an in-memory fake with failure injection.
package tracker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/anchor/internal/models"
	"github.com/harperreed/anchor/internal/remote/remotetest"
	"github.com/harperreed/anchor/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDate models.DateKey = "2025-01-02"

// stepClock advances one minute on every read.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2025, 1, 2, 8, 0, 0, 0, time.Local)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Minute)
	return c.t
}

func setupRemote(t *testing.T) (*Tracker, *remotetest.Store) {
	t.Helper()
	fake := remotetest.New()
	tr := New(Options{UserID: "u1", Remote: fake, Now: newStepClock().Now})
	t.Cleanup(func() { _ = tr.Close() })
	return tr, fake
}

func setupLocal(t *testing.T) (*Tracker, *storage.Days) {
	t.Helper()
	kv, err := storage.OpenBadgerInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	days := storage.NewDays(kv)
	return New(Options{Local: days, Now: newStepClock().Now}), days
}

func TestNewDefaults(t *testing.T) {
	tr := New(Options{})
	assert.Equal(t, DefaultUserID, tr.UserID())
	assert.False(t, tr.IsRemote())
	assert.Len(t, tr.Activities(), len(models.DefaultActivities()))
}

func TestPoliciesDeclared(t *testing.T) {
	want := map[Mutation]FailurePolicy{
		MutSetEntry:       KeepLocal,
		MutToggleDose:     RollBack,
		MutUpdateDoseTime: KeepLocal,
		MutUpdateDosage:   KeepLocal,
		MutSetEveningTime: KeepLocal,
		MutAddExtraMed:    KeepLocal,
		MutRemoveExtraMed: KeepLocal,
		MutResetDay:       ReturnError,
	}
	assert.Equal(t, want, Policies)
	assert.Equal(t, KeepLocal, PolicyFor("unknown"))
	assert.Equal(t, "roll-back", RollBack.String())
}

func TestEntriesEmptyForUnknownDate(t *testing.T) {
	tr, _ := setupRemote(t)
	assert.Empty(t, tr.Entries("2030-01-01"))
}

func TestSetEntryRoundTrip(t *testing.T) {
	ctx := context.Background()
	tr, fake := setupRemote(t)

	_, err := tr.SetEntry(ctx, testDate, "mood", models.NumberValue(-2))
	require.NoError(t, err)

	got := tr.Entries(testDate)
	require.Contains(t, got, "mood")
	assert.True(t, got["mood"].Value.Equal(models.NumberValue(-2)))

	tr.Flush()
	e, ok := fake.Entry("u1", testDate, "mood")
	require.True(t, ok)
	assert.True(t, e.Value.Equal(models.NumberValue(-2)))
}

func TestSetEntryAcceptsOutOfRange(t *testing.T) {
	tr, _ := setupRemote(t)
	_, err := tr.SetEntry(context.Background(), testDate, "sleep-quality", models.NumberValue(9))
	require.NoError(t, err)
	n, ok := tr.Entries(testDate)["sleep-quality"].Value.Number()
	require.True(t, ok)
	assert.Equal(t, 9.0, n)
}

func TestSetEntryUnknownActivity(t *testing.T) {
	tr, _ := setupRemote(t)
	_, err := tr.SetEntry(context.Background(), testDate, "nope", models.BoolValue(true))
	assert.ErrorIs(t, err, models.ErrUnknownActivity)
}

func TestSetEntryKeepsLocalOnRemoteFailure(t *testing.T) {
	ctx := context.Background()
	var failed []Mutation
	fake := remotetest.New()
	tr := New(Options{Remote: fake, OnRemoteError: func(m Mutation, err error) { failed = append(failed, m) }})
	defer tr.Close()

	fake.Fail(remotetest.OpUpsertEntry, nil)
	_, err := tr.SetEntry(ctx, testDate, "stretch", models.BoolValue(true))
	require.NoError(t, err)
	tr.Flush()

	assert.Contains(t, tr.Entries(testDate), "stretch")
	assert.Equal(t, []Mutation{MutSetEntry}, failed)
}

func TestSetEntryText(t *testing.T) {
	tr, _ := setupRemote(t)
	e, err := tr.SetEntryText(context.Background(), testDate, "journaling", "yes")
	require.NoError(t, err)
	b, ok := e.Value.Bool()
	assert.True(t, ok)
	assert.True(t, b)

	_, err = tr.SetEntryText(context.Background(), testDate, "sunshine", "lots")
	assert.Error(t, err)
}

func TestLoadFromRemote(t *testing.T) {
	ctx := context.Background()
	tr, fake := setupRemote(t)
	at := time.Date(2025, 1, 2, 21, 0, 0, 0, time.Local)
	require.NoError(t, fake.UpsertEntry(ctx, "u1", models.Entry{Date: testDate, ActivityID: "mood", Value: models.NumberValue(1)}))
	require.NoError(t, fake.UpsertDoseLog(ctx, "u1", testDate, models.DoseLog{MedicationID: "lithium", DoseNumber: 1, Taken: true}))
	require.NoError(t, fake.UpsertEveningTime(ctx, "u1", testDate, at))

	day, err := tr.Load(ctx, testDate)
	require.NoError(t, err)
	assert.Len(t, day.Entries, 1)
	assert.Len(t, day.DoseLogs, 1)
	require.NotNil(t, day.EveningTime)
	assert.True(t, at.Equal(*day.EveningTime))
	assert.True(t, tr.IsDoseTaken(testDate, "lithium", 1))
}

func TestLoadRemoteFailureLeavesDayEmpty(t *testing.T) {
	ctx := context.Background()
	tr, fake := setupRemote(t)
	require.NoError(t, fake.UpsertEntry(ctx, "u1", models.Entry{Date: testDate, ActivityID: "mood", Value: models.NumberValue(1)}))
	fake.Fail(remotetest.OpListDoseLogs, nil)

	day, err := tr.Load(ctx, testDate)
	require.NoError(t, err)
	assert.True(t, day.IsEmpty())
	assert.Empty(t, tr.Entries(testDate))
}

func TestLocalModePersists(t *testing.T) {
	ctx := context.Background()
	tr, days := setupLocal(t)

	_, err := tr.SetEntry(ctx, testDate, "notes", models.TextValue("calm day"))
	require.NoError(t, err)
	_, err = tr.ToggleDose(ctx, testDate, "propranolol", 1)
	require.NoError(t, err)

	fresh := New(Options{Local: days})
	day, err := fresh.Load(ctx, testDate)
	require.NoError(t, err)
	assert.Contains(t, day.Entries, "notes")
	assert.True(t, fresh.IsDoseTaken(testDate, "propranolol", 1))

	dates, err := fresh.ActiveDates(ctx, "2025-01-01", "2025-01-31")
	require.NoError(t, err)
	assert.Equal(t, []models.DateKey{testDate}, dates)
}

func TestResetDay(t *testing.T) {
	ctx := context.Background()
	tr, fake := setupRemote(t)

	_, err := tr.SetEntry(ctx, testDate, "mood", models.NumberValue(0))
	require.NoError(t, err)
	_, err = tr.ToggleDose(ctx, testDate, "xanax-xr", 2)
	require.NoError(t, err)
	require.NoError(t, tr.SetEveningTime(ctx, testDate, time.Now()))
	_, err = tr.AddExtraMed(ctx, testDate, "Ibuprofen", "200mg", time.Time{})
	require.NoError(t, err)

	require.NoError(t, tr.ResetDay(ctx, testDate))
	assert.True(t, tr.Day(testDate).IsEmpty())

	dates, err := fake.ActiveDates(ctx, "u1", testDate, testDate)
	require.NoError(t, err)
	assert.Empty(t, dates)
	got, err := fake.GetEveningTime(ctx, "u1", testDate)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResetDayReturnsRemoteError(t *testing.T) {
	tr, fake := setupRemote(t)
	fake.Fail(remotetest.OpResetDay, nil)
	err := tr.ResetDay(context.Background(), testDate)
	assert.ErrorIs(t, err, remotetest.ErrInjected)
}

func TestResetDayLocal(t *testing.T) {
	ctx := context.Background()
	tr, days := setupLocal(t)
	_, err := tr.SetEntry(ctx, testDate, "stretch", models.BoolValue(true))
	require.NoError(t, err)

	require.NoError(t, tr.ResetDay(ctx, testDate))
	day, err := days.Load(testDate)
	require.NoError(t, err)
	assert.True(t, day.IsEmpty())
}

func TestLoadDayPrefersCache(t *testing.T) {
	ctx := context.Background()
	tr, fake := setupRemote(t)
	fake.Fail(remotetest.OpUpsertEntry, nil)
	_, err := tr.SetEntry(ctx, testDate, "mood", models.NumberValue(3))
	require.NoError(t, err)
	tr.Flush()

	day, err := tr.LoadDay(ctx, testDate)
	require.NoError(t, err)
	assert.Contains(t, day.Entries, "mood")

	other, err := tr.LoadDay(ctx, "2025-01-03")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestReloadDuringEntryWriteKeepsValue(t *testing.T) {
	ctx := context.Background()
	tr, fake := setupRemote(t)

	release := fake.Hold()
	_, err := tr.SetEntry(ctx, testDate, "mood", models.NumberValue(-2))
	require.NoError(t, err)
	_, err = tr.Load(ctx, testDate)
	require.NoError(t, err)
	release()
	tr.Flush()

	ev, ok := tr.Entries(testDate)["mood"]
	require.True(t, ok)
	n, _ := ev.Value.Number()
	assert.Equal(t, -2.0, n)
}

func TestReloadFailureKeepsCachedDay(t *testing.T) {
	ctx := context.Background()
	tr, fake := setupRemote(t)
	_, err := tr.SetEntry(ctx, testDate, "stretch", models.BoolValue(true))
	require.NoError(t, err)
	tr.Flush()

	fake.Fail(remotetest.OpListEntries, nil)
	day, err := tr.Load(ctx, testDate)
	require.NoError(t, err)
	assert.Contains(t, day.Entries, "stretch")
}

func TestResetDayWaitsForInFlightWrites(t *testing.T) {
	ctx := context.Background()
	tr, fake := setupRemote(t)

	release := fake.Hold()
	_, err := tr.SetEntry(ctx, testDate, "mood", models.NumberValue(1))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- tr.ResetDay(ctx, testDate) }()
	release()
	require.NoError(t, <-done)

	_, stored := fake.Entry("u1", testDate, "mood")
	assert.False(t, stored, "upsert landed before the reset delete")
	assert.True(t, tr.Day(testDate).IsEmpty())
}

func TestConcurrentWritesAndReset(t *testing.T) {
	ctx := context.Background()
	tr, _ := setupRemote(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tr.SetEntry(ctx, testDate, "mood", models.NumberValue(float64(i%5)))
			assert.NoError(t, err)
		}()
		if i%7 == 0 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, tr.ResetDay(ctx, testDate))
			}()
		}
	}
	wg.Wait()
	tr.Flush()
}
