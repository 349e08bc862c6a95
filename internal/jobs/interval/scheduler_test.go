package interval

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingHandler struct {
	mu     sync.Mutex
	starts []string
	ends   []string
	fired  chan string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{fired: make(chan string, 16)}
}

func (h *recordingHandler) HandleIntervalStart(_ context.Context, sessionID string) {
	h.mu.Lock()
	h.starts = append(h.starts, sessionID)
	h.mu.Unlock()
	h.fired <- "start:" + sessionID
}

func (h *recordingHandler) HandleIntervalEnd(_ context.Context, sessionID string) {
	h.mu.Lock()
	h.ends = append(h.ends, sessionID)
	h.mu.Unlock()
	h.fired <- "end:" + sessionID
}

func waitFor(t *testing.T, ch <-chan string, want string) {
	t.Helper()
	select {
	case got := <-ch:
		if got != want {
			t.Fatalf("fired %q, want %q", got, want)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func TestScheduleWindowFiresStartAndEnd(t *testing.T) {
	handler := newRecordingHandler()
	scheduler, err := NewScheduler(handler)
	if err != nil {
		t.Fatal(err)
	}
	defer scheduler.Stop()
	scheduler.Start()

	now := time.Now()
	if err := scheduler.ScheduleWindow("s1", now, now.Add(300*time.Millisecond)); err != nil {
		t.Fatalf("ScheduleWindow: %v", err)
	}

	waitFor(t, handler.fired, "start:s1")
	waitFor(t, handler.fired, "end:s1")
}

func TestCancelWindowSuppressesCallbacks(t *testing.T) {
	handler := newRecordingHandler()
	scheduler, err := NewScheduler(handler)
	if err != nil {
		t.Fatal(err)
	}
	defer scheduler.Stop()
	scheduler.Start()

	start := time.Now().Add(time.Hour)
	if err := scheduler.ScheduleWindow("s1", start, start.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := scheduler.CancelWindow("s1"); err != nil {
		t.Fatalf("CancelWindow: %v", err)
	}

	// Unknown sessions are a no-op.
	if err := scheduler.CancelWindow("nope"); err != nil {
		t.Fatalf("CancelWindow unknown: %v", err)
	}

	select {
	case fired := <-handler.fired:
		t.Fatalf("callback %q fired after cancel", fired)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestScheduleWindowRejectsInvertedWindow(t *testing.T) {
	scheduler, err := NewScheduler(newRecordingHandler())
	if err != nil {
		t.Fatal(err)
	}
	defer scheduler.Stop()

	now := time.Now()
	if err := scheduler.ScheduleWindow("s1", now, now); err == nil {
		t.Fatal("expected error for zero-length window")
	}
}
