// ABOUTME: ResetDay clears every record type for one date, locally and remotely.
// ABOUTME: Unlike other mutations it waits for the remote delete and returns its error.
package tracker

import (
	"context"
	"fmt"

	"github.com/harperreed/anchor/internal/logger"
	"github.com/harperreed/anchor/internal/models"
)

// ResetDay deletes entries, dose logs, the evening time, and extra meds for date.
func (t *Tracker) ResetDay(ctx context.Context, date models.DateKey) error {
	// no mutation dispatches until the reset is done, and in-flight
	// writes land before the delete
	t.writes.Lock()
	defer t.writes.Unlock()
	t.inflight.Wait()

	t.mu.Lock()
	t.days[date] = models.NewDayRecords(date)
	t.mu.Unlock()

	if t.opts.Local != nil {
		if err := t.opts.Local.Delete(date); err != nil {
			return fmt.Errorf("reset %s locally: %w", date, err)
		}
	}

	if r := t.opts.Remote; r != nil {
		if err := t.dispatch(ctx, MutResetDay, pendingKey{}, func(ctx context.Context) error {
			return r.ResetDay(ctx, t.opts.UserID, date)
		}, nil); err != nil {
			return fmt.Errorf("reset %s remotely: %w", date, err)
		}
	}
	logger.Info("day reset", "date", date)
	return nil
}
