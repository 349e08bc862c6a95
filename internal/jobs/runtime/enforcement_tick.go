// Package runtime hosts the enforcement process's background routines.
package runtime

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"warden/internal/enforcement"
	"warden/internal/state"
)

const enforcementTickInterval = 30 * time.Second

// WindowScheduler arms and disarms the start/end job pair of a monitoring
// window. Satisfied by interval.Scheduler.
type WindowScheduler interface {
	ScheduleWindow(sessionID string, start, end time.Time) error
	CancelWindow(sessionID string) error
}

// StartEnforcementRoutine periodically reconciles the applied rule set with
// the shared state. It arms the local window jobs for sessions started by the
// interactive process, catches windows whose end callback was lost (the
// enforcement process was down when it fired), and picks up rule changes made
// between callbacks.
func StartEnforcementRoutine(ctx context.Context, adapter *enforcement.Adapter, scheduler WindowScheduler, store state.Store) {
	ticker := time.NewTicker(enforcementTickInterval)
	defer ticker.Stop()

	armed := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			armed = reconcile(ctx, adapter, scheduler, store, armed)
		}
	}
}

// reconcile runs one tick. armed is the session id whose window jobs this
// process currently has scheduled; the return value is its new value.
func reconcile(ctx context.Context, adapter *enforcement.Adapter, scheduler WindowScheduler, store state.Store, armed string) string {
	current, err := state.SessionFromStore(ctx, store)
	if err != nil {
		log.Error("Failed to load session state", "error", err)
		return armed
	}

	if current.DurationSeconds > 0 && current.ID != "" {
		if _, ok := current.Remaining(time.Now()); !ok {
			// The window elapsed while nobody was listening.
			log.Warn("Found expired monitoring window, closing it", "session", current.ID)
			if armed != "" {
				_ = scheduler.CancelWindow(armed)
			}
			adapter.HandleIntervalEnd(ctx, current.ID)
			return ""
		}
	}

	// Arm the window locally so the end fires at the boundary instead of on
	// the next tick. Sessions are armed once; a changed id means the
	// interactive process replaced the window.
	if current.ID != armed {
		if armed != "" {
			if err := scheduler.CancelWindow(armed); err != nil {
				log.Warn("Failed to cancel stale window", "session", armed, "error", err)
			}
		}
		armed = ""
		if current.ID != "" && current.Active {
			if err := scheduler.ScheduleWindow(current.ID, current.StartTime, current.EndTime()); err != nil {
				log.Error("Failed to arm monitoring window", "session", current.ID, "error", err)
			} else {
				armed = current.ID
			}
		}
	}

	enabled, err := store.BlockingEnabled(ctx)
	if err != nil {
		log.Error("Failed to read blocking flag", "error", err)
		return armed
	}
	if !enabled {
		// Blocking was switched off since the last apply; whatever is still
		// in force comes off now.
		if err := adapter.Clear(ctx); err != nil {
			log.Error("Failed to clear rules", "error", err)
		}
		return armed
	}

	if err := adapter.Reapply(ctx); err != nil {
		log.Error("Failed to reapply rules", "error", err)
	}
	return armed
}
