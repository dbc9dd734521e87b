// ABOUTME: Declared failure policy for every tracker mutation.
// ABOUTME: The dispatcher reads this table; no call site decides rollback on its own.
package tracker

import (
	"context"
)

// Mutation names a state-changing tracker operation.
type Mutation string

const (
	MutSetEntry       Mutation = "set_entry"
	MutToggleDose     Mutation = "toggle_dose"
	MutUpdateDoseTime Mutation = "update_dose_time"
	MutUpdateDosage   Mutation = "update_dosage"
	MutSetEveningTime Mutation = "set_evening_time"
	MutAddExtraMed    Mutation = "add_extra_med"
	MutRemoveExtraMed Mutation = "remove_extra_med"
	MutResetDay       Mutation = "reset_day"
)

// FailurePolicy is what happens to local state when the remote write fails.
type FailurePolicy int

const (
	// KeepLocal logs the failure; the optimistic local state stands.
	KeepLocal FailurePolicy = iota
	// RollBack restores the local state from before the mutation.
	RollBack
	// ReturnError runs the remote write synchronously and returns its error.
	ReturnError
)

func (p FailurePolicy) String() string {
	switch p {
	case KeepLocal:
		return "keep-local"
	case RollBack:
		return "roll-back"
	case ReturnError:
		return "return-error"
	}
	return "unknown"
}

// Policies declares the failure policy of each mutation.
var Policies = map[Mutation]FailurePolicy{
	MutSetEntry:       KeepLocal,
	MutToggleDose:     RollBack,
	MutUpdateDoseTime: KeepLocal,
	MutUpdateDosage:   KeepLocal,
	MutSetEveningTime: KeepLocal,
	MutAddExtraMed:    KeepLocal,
	MutRemoveExtraMed: KeepLocal,
	MutResetDay:       ReturnError,
}

// PolicyFor returns the declared policy, KeepLocal when undeclared.
func PolicyFor(m Mutation) FailurePolicy {
	if p, ok := Policies[m]; ok {
		return p
	}
	return KeepLocal
}

// dispatch sends write to the remote store under m's policy.
// Asynchronous writes outlive ctx cancellation and are tracked for Flush;
// the caller holds t.writes for reading and has marked k.
// rollback runs only under the RollBack policy, before k settles.
func (t *Tracker) dispatch(ctx context.Context, m Mutation, k pendingKey, write func(context.Context) error, rollback func()) error {
	policy := PolicyFor(m)
	if policy == ReturnError {
		defer t.settle(k)
		if err := write(ctx); err != nil {
			t.reportRemote(m, err)
			return err
		}
		return nil
	}

	bg := context.WithoutCancel(ctx)
	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		defer t.settle(k)
		if err := write(bg); err != nil {
			t.reportRemote(m, err)
			if policy == RollBack && rollback != nil {
				rollback()
			}
		}
	}()
	return nil
}
