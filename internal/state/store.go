// Package state is the durable key/value store shared by the interactive
// process and the enforcement process. Every externally visible enforcement
// effect must be derivable from its contents alone; neither process may rely
// on in-memory state surviving a restart.
package state

import (
	"context"
	"time"

	"warden/internal/domain"
)

// The fixed key schema. The six core keys are an interoperability contract
// between the two processes and must not be renamed.
const (
	KeyBlockingEnabled    = "isBlockingEnabled"
	KeySessionStartTime   = "sessionStartTime"
	KeySessionDuration    = "sessionDuration"
	KeyLastActiveListID   = "lastActiveListId"
	KeyHasStoredSelection = "hasStoredSelection"
	KeySelectionTimestamp = "selectionTimestamp"

	// Auxiliary keys carried over the same store: the raw selection payload,
	// the current session id, the statistics snapshot the enforcement
	// process writes back, and the blocking profile set.
	KeySelectionPayload = "selectionPayload"
	KeySessionID        = "sessionId"
	KeyStatistics       = "statistics"
	KeyProfiles         = "profiles"
)

// Store is the cross-process state contract. Getters return the documented
// defaults rather than failing when a key is unset.
type Store interface {
	SetBlockingEnabled(ctx context.Context, enabled bool) error
	BlockingEnabled(ctx context.Context) (bool, error)

	SetSessionStartTime(ctx context.Context, t time.Time) error
	// SessionStartTime returns the stored timestamp and whether one is set.
	SessionStartTime(ctx context.Context) (time.Time, bool, error)

	SetSessionDuration(ctx context.Context, seconds int64) error
	SessionDuration(ctx context.Context) (int64, error)

	SetLastActiveListID(ctx context.Context, id string) error
	LastActiveListID(ctx context.Context) (string, error)

	SetSessionID(ctx context.Context, id string) error
	SessionID(ctx context.Context) (string, error)

	SaveSelection(ctx context.Context, selection domain.Selection, at time.Time) error
	// StoredSelection returns the persisted selection and whether one exists.
	StoredSelection(ctx context.Context) (domain.Selection, bool, error)
	HasStoredSelection(ctx context.Context) (bool, error)
	SelectionTimestamp(ctx context.Context) (time.Time, bool, error)
	ClearSelection(ctx context.Context) error

	SaveStatistics(ctx context.Context, stats domain.Statistics) error
	LoadStatistics(ctx context.Context) (domain.Statistics, error)

	// SaveProfiles replaces the shared blocking profile set. Both processes
	// read profiles from here; neither holds them in memory.
	SaveProfiles(ctx context.Context, profiles []domain.BlockingProfile) error
	LoadProfiles(ctx context.Context) ([]domain.BlockingProfile, error)

	// ClearAll resets every key to its default.
	ClearAll(ctx context.Context) error
}

// SessionFromStore reconstructs the session view both processes agree on.
func SessionFromStore(ctx context.Context, store Store) (domain.Session, error) {
	var session domain.Session

	enabled, err := store.BlockingEnabled(ctx)
	if err != nil {
		return session, err
	}
	start, hasStart, err := store.SessionStartTime(ctx)
	if err != nil {
		return session, err
	}
	duration, err := store.SessionDuration(ctx)
	if err != nil {
		return session, err
	}
	id, err := store.SessionID(ctx)
	if err != nil {
		return session, err
	}

	session.ID = id
	session.Active = enabled && hasStart && duration > 0
	session.StartTime = start
	session.DurationSeconds = duration
	return session, nil
}
