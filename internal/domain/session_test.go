package domain

import (
	"testing"
	"time"
)

func TestSessionRemaining(t *testing.T) {
	start := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	session := Session{ID: "s1", Active: true, StartTime: start, DurationSeconds: 600}

	remaining, ok := session.Remaining(start.Add(599 * time.Second))
	if !ok {
		t.Fatal("expected active session at +599s")
	}
	if remaining != time.Second {
		t.Fatalf("Remaining = %v, want 1s", remaining)
	}

	if _, ok := session.Remaining(start.Add(601 * time.Second)); ok {
		t.Fatal("expected expired session at +601s")
	}
	if remaining, _ := session.Remaining(start.Add(2 * time.Hour)); remaining != 0 {
		t.Fatalf("Remaining after expiry = %v, want 0", remaining)
	}
}

func TestSessionRemaining_Inactive(t *testing.T) {
	session := Session{Active: false, StartTime: time.Now(), DurationSeconds: 600}
	if _, ok := session.Remaining(time.Now()); ok {
		t.Fatal("inactive session reported remaining time")
	}

	zeroDuration := Session{Active: true, StartTime: time.Now()}
	if _, ok := zeroDuration.Remaining(time.Now()); ok {
		t.Fatal("zero-duration session reported remaining time")
	}
}
