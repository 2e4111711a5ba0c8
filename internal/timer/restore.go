package timer

import (
	"context"
	"fmt"

	"github.com/alexanderramin/efficiency/internal/domain"
)

// RestoreReport describes what Restore found in the store. A non-nil
// ActiveErr or StackErr means the slot was discarded; RepairErr means the
// store could not be brought in line with the restored engine. The engine
// is usable in every case.
type RestoreReport struct {
	ActiveErr    error
	StackErr     error
	RepairErr    error
	Collapsed    int
	RestoredFrom domain.SessionState
}

// Restore boots an engine from store. A missing, unreadable or inconsistent
// active slot boots Idle rather than guessing. A running session keeps its
// persisted segment start, so time spent while the process was down is
// counted on the next read; a paused session keeps its frozen BaseSeconds.
// Stack entries are taken verbatim.
func Restore(ctx context.Context, clock Clock, store StateStore) (*Engine, RestoreReport) {
	e := NewEngine(clock, store)
	var report RestoreReport

	st, err := store.LoadStack(ctx)
	if err != nil {
		report.StackErr = fmt.Errorf("loading suspended stack: %w", err)
	} else {
		e.stack = stackFromState(st)
	}

	active, err := store.LoadActive(ctx)
	switch {
	case err != nil:
		report.ActiveErr = fmt.Errorf("loading active session: %w", err)
	case active == nil:
	default:
		if verr := active.Validate(); verr != nil {
			report.ActiveErr = fmt.Errorf("%w: %v", ErrCorruptState, verr)
			break
		}
		e.active = active
		report.RestoredFrom = active.State
	}

	if report.ActiveErr != nil {
		// Fail closed: make the durable slot agree with the in-memory Idle.
		if err := store.ClearActive(ctx); err != nil {
			report.RepairErr = fmt.Errorf("clearing discarded active session: %w", err)
		}
	}

	if e.active != nil && e.active.ID != "" {
		id := e.active.ID
		report.Collapsed = e.stack.remove(func(entry domain.SuspendedEntry) bool {
			return entry.SessionID == id
		})
		if report.Collapsed > 0 {
			if err := e.saveStack(ctx); err != nil {
				report.RepairErr = err
			}
		}
	}

	return e, report
}
