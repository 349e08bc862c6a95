package state

import (
	"context"
	"testing"
	"time"

	"warden/internal/domain"
)

func TestMemoryStoreDefaults(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	enabled, err := store.BlockingEnabled(ctx)
	if err != nil || enabled {
		t.Fatalf("BlockingEnabled default = %v, %v; want false, nil", enabled, err)
	}

	if _, ok, _ := store.SessionStartTime(ctx); ok {
		t.Fatal("SessionStartTime default should be absent")
	}

	duration, _ := store.SessionDuration(ctx)
	if duration != 0 {
		t.Fatalf("SessionDuration default = %d, want 0", duration)
	}

	listID, _ := store.LastActiveListID(ctx)
	if listID != "" {
		t.Fatalf("LastActiveListID default = %q, want empty", listID)
	}

	has, _ := store.HasStoredSelection(ctx)
	if has {
		t.Fatal("HasStoredSelection default = true, want false")
	}

	stats, err := store.LoadStatistics(ctx)
	if err != nil {
		t.Fatalf("LoadStatistics: %v", err)
	}
	if stats.BlockedRequests != 0 || stats.ByDay == nil {
		t.Fatal("LoadStatistics default should be an empty, map-initialized snapshot")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	start := time.Date(2024, time.June, 1, 8, 0, 0, 0, time.UTC)

	if err := store.SetBlockingEnabled(ctx, true); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSessionStartTime(ctx, start); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSessionDuration(ctx, 600); err != nil {
		t.Fatal(err)
	}
	if err := store.SetLastActiveListID(ctx, "42"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetSessionID(ctx, "session-1"); err != nil {
		t.Fatal(err)
	}

	session, err := SessionFromStore(ctx, store)
	if err != nil {
		t.Fatalf("SessionFromStore: %v", err)
	}
	if !session.Active {
		t.Fatal("expected active session")
	}
	if session.ID != "session-1" || session.DurationSeconds != 600 || !session.StartTime.Equal(start) {
		t.Fatalf("unexpected session: %+v", session)
	}
}

func TestMemoryStoreSelection(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	at := time.Now()

	selection := domain.Selection{Apps: []string{"com.example.game"}, Domains: []string{"x.com"}}
	if err := store.SaveSelection(ctx, selection, at); err != nil {
		t.Fatal(err)
	}

	got, ok, err := store.StoredSelection(ctx)
	if err != nil || !ok {
		t.Fatalf("StoredSelection = %v, %v", ok, err)
	}
	if len(got.Apps) != 1 || len(got.Domains) != 1 {
		t.Fatalf("unexpected selection: %+v", got)
	}

	if has, _ := store.HasStoredSelection(ctx); !has {
		t.Fatal("HasStoredSelection = false after save")
	}
	if _, ok, _ := store.SelectionTimestamp(ctx); !ok {
		t.Fatal("SelectionTimestamp absent after save")
	}

	if err := store.ClearSelection(ctx); err != nil {
		t.Fatal(err)
	}
	if has, _ := store.HasStoredSelection(ctx); has {
		t.Fatal("HasStoredSelection = true after clear")
	}
}

func TestMemoryStoreClearAll(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.SetBlockingEnabled(ctx, true)
	_ = store.SetSessionDuration(ctx, 600)
	_ = store.SetLastActiveListID(ctx, "7")
	_ = store.SaveSelection(ctx, domain.Selection{Domains: []string{"x.com"}}, time.Now())

	stats := domain.NewStatistics()
	stats.RecordBlock(domain.RuleKindDomain, "x.com", "social", time.Now(), 0)
	_ = store.SaveStatistics(ctx, stats)
	_ = store.SaveProfiles(ctx, []domain.BlockingProfile{{ID: "focus", IsActive: true}})

	if err := store.ClearAll(ctx); err != nil {
		t.Fatal(err)
	}

	if enabled, _ := store.BlockingEnabled(ctx); enabled {
		t.Fatal("BlockingEnabled survived ClearAll")
	}
	if duration, _ := store.SessionDuration(ctx); duration != 0 {
		t.Fatal("SessionDuration survived ClearAll")
	}
	if has, _ := store.HasStoredSelection(ctx); has {
		t.Fatal("selection survived ClearAll")
	}
	loaded, _ := store.LoadStatistics(ctx)
	if loaded.BlockedRequests != 0 {
		t.Fatal("statistics survived ClearAll")
	}
	if profiles, _ := store.LoadProfiles(ctx); len(profiles) != 0 {
		t.Fatal("profiles survived ClearAll")
	}
}

func TestMemoryStoreProfiles(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if profiles, err := store.LoadProfiles(ctx); err != nil || len(profiles) != 0 {
		t.Fatalf("LoadProfiles default = %v, %v; want empty, nil", profiles, err)
	}

	saved := []domain.BlockingProfile{{ID: "focus", Name: "Focus", IsActive: true}}
	if err := store.SaveProfiles(ctx, saved); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.LoadProfiles(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 1 || loaded[0].ID != "focus" || !loaded[0].IsActive {
		t.Fatalf("loaded profiles = %+v", loaded)
	}

	// The store hands out copies; mutating them must not leak back.
	loaded[0].IsActive = false
	again, _ := store.LoadProfiles(ctx)
	if !again[0].IsActive {
		t.Fatal("LoadProfiles returned a shared slice")
	}
}

func TestStateKeyNames(t *testing.T) {
	// The six core key names are a cross-process contract.
	want := map[string]string{
		KeyBlockingEnabled:    "isBlockingEnabled",
		KeySessionStartTime:   "sessionStartTime",
		KeySessionDuration:    "sessionDuration",
		KeyLastActiveListID:   "lastActiveListId",
		KeyHasStoredSelection: "hasStoredSelection",
		KeySelectionTimestamp: "selectionTimestamp",
	}
	for got, expected := range want {
		if got != expected {
			t.Fatalf("state key %q, want %q", got, expected)
		}
	}
}
