package domain

import "time"

// Session is the single bounded monitoring window. It lives in the shared
// state store so the enforcement process can reconstruct it after a restart.
type Session struct {
	ID              string    `json:"id"`
	Active          bool      `json:"active"`
	StartTime       time.Time `json:"start_time"`
	DurationSeconds int64     `json:"duration_seconds"`
	LastListID      uint      `json:"last_list_id,omitempty"`
}

// EndTime returns the instant the window closes.
func (s Session) EndTime() time.Time {
	return s.StartTime.Add(time.Duration(s.DurationSeconds) * time.Second)
}

// Remaining returns the time left in the window at now, and whether the
// session is still running. The duration is never negative.
func (s Session) Remaining(now time.Time) (time.Duration, bool) {
	if !s.Active || s.DurationSeconds <= 0 {
		return 0, false
	}

	left := s.EndTime().Sub(now)
	if left <= 0 {
		return 0, false
	}
	return left, true
}
