package enforcement

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"warden/internal/config"
	"warden/internal/domain"
	"warden/internal/state"
)

// RuleSource produces the rule set in effect at a given instant.
type RuleSource interface {
	ActiveRules(ctx context.Context, at time.Time) ([]domain.BlockingRule, error)
}

// Adapter reacts to the OS scheduler's interval callbacks. It holds no state
// of its own: every callback rebuilds the picture from the shared store and
// the rule source, so a crashed and restarted enforcement process behaves the
// same as one that ran the whole time.
//
// Handlers never report errors back to the scheduler. A failed apply is
// logged and the completion hook still fires; the scheduler has nothing
// useful to do with the error and must not retry into a half-applied state.
type Adapter struct {
	store  state.Store
	rules  RuleSource
	port   Port
	clock  func() time.Time
	onDone func(sessionID, event string)

	rebuild singleflight.Group

	statsMu sync.Mutex
}

// AdapterOption tweaks adapter construction.
type AdapterOption func(*Adapter)

// WithAdapterClock swaps the time source, for tests.
func WithAdapterClock(clock func() time.Time) AdapterOption {
	return func(a *Adapter) {
		a.clock = clock
	}
}

// WithCompletion installs a hook invoked after every handled callback,
// success or not. The scheduler uses it to release the window.
func WithCompletion(hook func(sessionID, event string)) AdapterOption {
	return func(a *Adapter) {
		a.onDone = hook
	}
}

func NewAdapter(store state.Store, rules RuleSource, port Port, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		store: store,
		rules: rules,
		port:  port,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// HandleIntervalStart begins enforcement for the window. The full rule set is
// rebuilt and applied; on failure the window is still considered handled.
func (a *Adapter) HandleIntervalStart(ctx context.Context, sessionID string) {
	defer a.complete(sessionID, "start")

	rules, err := a.currentRules(ctx)
	if err != nil {
		log.Error("Failed to rebuild rule set at interval start", "session", sessionID, "error", err)
		return
	}

	if err := a.port.Apply(ctx, rules); err != nil {
		log.Error("Failed to apply rules at interval start", "session", sessionID, "error", err)
		return
	}

	log.Info("Interval started", "session", sessionID, "rules", len(rules))
}

// HandleIntervalEnd ends enforcement for the window. The clear is
// unconditional: even if this process never saw the matching start, whatever
// is applied right now must come off.
func (a *Adapter) HandleIntervalEnd(ctx context.Context, sessionID string) {
	defer a.complete(sessionID, "end")

	if err := a.port.Clear(ctx); err != nil {
		log.Error("Failed to clear rules at interval end", "session", sessionID, "error", err)
	}

	if err := a.markSessionEnded(ctx); err != nil {
		log.Error("Failed to mark session ended", "session", sessionID, "error", err)
		return
	}

	log.Info("Interval ended", "session", sessionID)
}

// Reapply rebuilds and applies the current rule set outside the interval
// callbacks, e.g. after a config broadcast or a cache invalidation.
func (a *Adapter) Reapply(ctx context.Context) error {
	rules, err := a.currentRules(ctx)
	if err != nil {
		return err
	}
	return a.port.Apply(ctx, rules)
}

// Clear takes whatever is currently applied off without touching the session
// bookkeeping. Idempotent; clearing with nothing applied is a no-op.
func (a *Adapter) Clear(ctx context.Context) error {
	return a.port.Clear(ctx)
}

// RecordBlocked registers one blocked attempt and persists the updated
// statistics snapshot.
func (a *Adapter) RecordBlocked(ctx context.Context, kind domain.RuleKind, identifier, category string) error {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()

	stats, err := a.store.LoadStatistics(ctx)
	if err != nil {
		return err
	}

	stats.RecordBlock(kind, identifier, category, a.clock(), config.TimeSavedCredit())
	return a.store.SaveStatistics(ctx, stats)
}

// Statistics returns the persisted snapshot.
func (a *Adapter) Statistics(ctx context.Context) (domain.Statistics, error) {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	return a.store.LoadStatistics(ctx)
}

// ResetStatistics clears the persisted snapshot.
func (a *Adapter) ResetStatistics(ctx context.Context) error {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	return a.store.SaveStatistics(ctx, domain.NewStatistics())
}

// currentRules merges the schedule/profile rules with the stored ad-hoc
// selection. Concurrent callers share one rebuild.
func (a *Adapter) currentRules(ctx context.Context) ([]domain.BlockingRule, error) {
	result, err, _ := a.rebuild.Do("rules", func() (any, error) {
		rules, err := a.rules.ActiveRules(ctx, a.clock())
		if err != nil {
			return nil, err
		}

		enabled, err := a.store.BlockingEnabled(ctx)
		if err != nil {
			return nil, err
		}
		if enabled {
			selection, has, err := a.store.StoredSelection(ctx)
			if err != nil {
				return nil, err
			}
			if has {
				rules = append(rules, selection.Rules()...)
			}
		}

		return domain.DedupeRules(rules), nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.BlockingRule), nil
}

func (a *Adapter) markSessionEnded(ctx context.Context) error {
	if err := a.store.SetBlockingEnabled(ctx, false); err != nil {
		return err
	}
	if err := a.store.SetSessionDuration(ctx, 0); err != nil {
		return err
	}
	return a.store.SetSessionID(ctx, "")
}

func (a *Adapter) complete(sessionID, event string) {
	if a.onDone != nil {
		a.onDone(sessionID, event)
	}
}
