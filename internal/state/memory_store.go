package state

import (
	"context"
	"sync"
	"time"

	"warden/internal/domain"
)

// MemoryStore is an in-process Store used in tests and as a fallback when no
// redis is configured. It offers no cross-process durability.
type MemoryStore struct {
	mu sync.RWMutex

	blockingEnabled  bool
	sessionStart     time.Time
	hasSessionStart  bool
	sessionDuration  int64
	lastActiveListID string
	sessionID        string

	selection          domain.Selection
	hasSelection       bool
	selectionTimestamp time.Time

	stats    domain.Statistics
	hasStats bool

	profiles []domain.BlockingProfile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SetBlockingEnabled(_ context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blockingEnabled = enabled
	return nil
}

func (s *MemoryStore) BlockingEnabled(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.blockingEnabled, nil
}

func (s *MemoryStore) SetSessionStartTime(_ context.Context, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionStart = t
	s.hasSessionStart = true
	return nil
}

func (s *MemoryStore) SessionStartTime(_ context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionStart, s.hasSessionStart, nil
}

func (s *MemoryStore) SetSessionDuration(_ context.Context, seconds int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionDuration = seconds
	return nil
}

func (s *MemoryStore) SessionDuration(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionDuration, nil
}

func (s *MemoryStore) SetLastActiveListID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActiveListID = id
	return nil
}

func (s *MemoryStore) LastActiveListID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActiveListID, nil
}

func (s *MemoryStore) SetSessionID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionID = id
	return nil
}

func (s *MemoryStore) SessionID(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID, nil
}

func (s *MemoryStore) SaveSelection(_ context.Context, selection domain.Selection, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = selection
	s.hasSelection = true
	s.selectionTimestamp = at
	return nil
}

func (s *MemoryStore) StoredSelection(_ context.Context) (domain.Selection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection, s.hasSelection, nil
}

func (s *MemoryStore) HasStoredSelection(_ context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasSelection, nil
}

func (s *MemoryStore) SelectionTimestamp(_ context.Context) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectionTimestamp, s.hasSelection, nil
}

func (s *MemoryStore) ClearSelection(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = domain.Selection{}
	s.hasSelection = false
	s.selectionTimestamp = time.Time{}
	return nil
}

func (s *MemoryStore) SaveStatistics(_ context.Context, stats domain.Statistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats = stats
	s.hasStats = true
	return nil
}

func (s *MemoryStore) LoadStatistics(_ context.Context) (domain.Statistics, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasStats {
		return domain.NewStatistics(), nil
	}
	return s.stats, nil
}

func (s *MemoryStore) SaveProfiles(_ context.Context, profiles []domain.BlockingProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = append([]domain.BlockingProfile(nil), profiles...)
	return nil
}

func (s *MemoryStore) LoadProfiles(_ context.Context) ([]domain.BlockingProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.BlockingProfile(nil), s.profiles...), nil
}

func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blockingEnabled = false
	s.sessionStart = time.Time{}
	s.hasSessionStart = false
	s.sessionDuration = 0
	s.lastActiveListID = ""
	s.sessionID = ""
	s.selection = domain.Selection{}
	s.hasSelection = false
	s.selectionTimestamp = time.Time{}
	s.stats = domain.Statistics{}
	s.hasStats = false
	s.profiles = nil
	return nil
}
