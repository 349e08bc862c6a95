package runtime

import (
	"context"
	"sync"
	"testing"
	"time"

	"warden/internal/domain"
	"warden/internal/enforcement"
	"warden/internal/state"
)

type recordingPort struct {
	mu      sync.Mutex
	applies int
	clears  int
}

func (p *recordingPort) Apply(context.Context, []domain.BlockingRule) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.applies++
	return nil
}

func (p *recordingPort) Clear(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clears++
	return nil
}

func (p *recordingPort) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applies, p.clears
}

type staticRules struct {
	rules []domain.BlockingRule
}

func (s staticRules) ActiveRules(context.Context, time.Time) ([]domain.BlockingRule, error) {
	return s.rules, nil
}

type recordingWindows struct {
	scheduled []string
	cancelled []string
}

func (w *recordingWindows) ScheduleWindow(sessionID string, _, _ time.Time) error {
	w.scheduled = append(w.scheduled, sessionID)
	return nil
}

func (w *recordingWindows) CancelWindow(sessionID string) error {
	w.cancelled = append(w.cancelled, sessionID)
	return nil
}

func tickFixture() (*enforcement.Adapter, *recordingPort, *recordingWindows, *state.MemoryStore) {
	port := &recordingPort{}
	store := state.NewMemoryStore()
	adapter := enforcement.NewAdapter(store, staticRules{}, port)
	return adapter, port, &recordingWindows{}, store
}

func TestReconcile_ClearsAfterDisable(t *testing.T) {
	adapter, port, windows, store := tickFixture()
	ctx := context.Background()

	if err := store.SetBlockingEnabled(ctx, true); err != nil {
		t.Fatal(err)
	}
	reconcile(ctx, adapter, windows, store, "")
	if applies, clears := port.counts(); applies != 1 || clears != 0 {
		t.Fatalf("after enabled tick: applies=%d clears=%d", applies, clears)
	}

	if err := store.SetBlockingEnabled(ctx, false); err != nil {
		t.Fatal(err)
	}
	reconcile(ctx, adapter, windows, store, "")
	if _, clears := port.counts(); clears != 1 {
		t.Fatalf("filters stayed applied after blocking was disabled (clears=%d)", clears)
	}

	// Disabled ticks keep clearing; the port must tolerate the repetition.
	reconcile(ctx, adapter, windows, store, "")
	if _, clears := port.counts(); clears != 2 {
		t.Fatalf("repeated disabled tick clears=%d, want 2", clears)
	}
}

func TestReconcile_ArmsWindowOnce(t *testing.T) {
	adapter, _, windows, store := tickFixture()
	ctx := context.Background()

	if err := store.SetSessionID(ctx, "win-1"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSessionStartTime(ctx, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSessionDuration(ctx, 600); err != nil {
		t.Fatal(err)
	}
	if err := store.SetBlockingEnabled(ctx, true); err != nil {
		t.Fatal(err)
	}

	armed := reconcile(ctx, adapter, windows, store, "")
	if armed != "win-1" {
		t.Fatalf("armed = %q, want win-1", armed)
	}
	if len(windows.scheduled) != 1 || windows.scheduled[0] != "win-1" {
		t.Fatalf("scheduled windows = %v", windows.scheduled)
	}

	armed = reconcile(ctx, adapter, windows, store, armed)
	if armed != "win-1" || len(windows.scheduled) != 1 {
		t.Fatalf("second tick re-armed the window: %v", windows.scheduled)
	}
}

func TestReconcile_ReplacesChangedWindow(t *testing.T) {
	adapter, _, windows, store := tickFixture()
	ctx := context.Background()

	if err := store.SetSessionID(ctx, "win-2"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSessionStartTime(ctx, time.Now()); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSessionDuration(ctx, 300); err != nil {
		t.Fatal(err)
	}
	if err := store.SetBlockingEnabled(ctx, true); err != nil {
		t.Fatal(err)
	}

	armed := reconcile(ctx, adapter, windows, store, "win-1")
	if armed != "win-2" {
		t.Fatalf("armed = %q, want win-2", armed)
	}
	if len(windows.cancelled) != 1 || windows.cancelled[0] != "win-1" {
		t.Fatalf("cancelled windows = %v, want [win-1]", windows.cancelled)
	}
}

func TestReconcile_ClosesExpiredWindow(t *testing.T) {
	adapter, port, windows, store := tickFixture()
	ctx := context.Background()

	if err := store.SetSessionID(ctx, "old"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSessionStartTime(ctx, time.Now().Add(-2*time.Minute)); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSessionDuration(ctx, 60); err != nil {
		t.Fatal(err)
	}
	if err := store.SetBlockingEnabled(ctx, true); err != nil {
		t.Fatal(err)
	}

	armed := reconcile(ctx, adapter, windows, store, "old")
	if armed != "" {
		t.Fatalf("armed = %q, want empty", armed)
	}
	if _, clears := port.counts(); clears != 1 {
		t.Fatalf("expired window did not clear the port (clears=%d)", clears)
	}
	if enabled, _ := store.BlockingEnabled(ctx); enabled {
		t.Fatal("blocking still enabled after expired window was closed")
	}
	if id, _ := store.SessionID(ctx); id != "" {
		t.Fatalf("session id %q survived the expired window", id)
	}
}
