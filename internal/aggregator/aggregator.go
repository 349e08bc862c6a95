// Package aggregator caches the three config entity families and computes
// the canonical active rule set for any instant.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"warden/internal/config"
	"warden/internal/domain"
)

// ErrProfileNotFound reports an activation request for an unknown profile.
var ErrProfileNotFound = errors.New("aggregator: profile not found")

// Repository is the slice of the remote config API the aggregator consumes.
type Repository interface {
	FetchBlockLists(ctx context.Context) ([]domain.BlockList, error)
	FetchSchedules(ctx context.Context) ([]domain.Schedule, error)
	FetchAppCategories(ctx context.Context) ([]domain.AppCategory, error)
}

// ProfileStore persists the blocking profile set where every process can see
// it. Satisfied by state.Store; without one the aggregator falls back to a
// process-local set.
type ProfileStore interface {
	SaveProfiles(ctx context.Context, profiles []domain.BlockingProfile) error
	LoadProfiles(ctx context.Context) ([]domain.BlockingProfile, error)
}

// listSnapshot and friends hold the last committed fetch per family. The
// generation counter implements latest-wins: a fetch only commits if no newer
// fetch started and no invalidation happened while it was in flight.
type listSnapshot struct {
	data       []domain.BlockList
	fetchedAt  time.Time
	valid      bool
	generation uint64
}

type scheduleSnapshot struct {
	data       []domain.Schedule
	fetchedAt  time.Time
	valid      bool
	generation uint64
}

type categorySnapshot struct {
	data       []domain.AppCategory
	fetchedAt  time.Time
	valid      bool
	generation uint64
}

// Aggregator merges lists, schedules, direct items, the active profile, and
// the default rules into one deduplicated active set.
type Aggregator struct {
	repo         Repository
	clock        func() time.Time
	cacheTimeout time.Duration

	mu         sync.Mutex
	lists      listSnapshot
	schedules  scheduleSnapshot
	categories categorySnapshot

	// profileMu serializes profile read-modify-write cycles within this
	// process; the store itself is last-write-wins across processes.
	profileMu sync.Mutex
	profiles  ProfileStore
}

// Option tweaks aggregator construction.
type Option func(*Aggregator)

// WithClock swaps the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(a *Aggregator) {
		a.clock = clock
	}
}

// WithCacheTimeout overrides the configured snapshot lifetime.
func WithCacheTimeout(timeout time.Duration) Option {
	return func(a *Aggregator) {
		a.cacheTimeout = timeout
	}
}

// WithProfileStore backs the profile set by a shared store instead of
// process-local memory.
func WithProfileStore(profiles ProfileStore) Option {
	return func(a *Aggregator) {
		a.profiles = profiles
	}
}

func New(repo Repository, opts ...Option) *Aggregator {
	a := &Aggregator{
		repo:         repo,
		clock:        time.Now,
		cacheTimeout: config.CacheTimeout(),
		profiles:     &memoryProfiles{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BlockLists returns the cached snapshot, refetching when stale.
func (a *Aggregator) BlockLists(ctx context.Context) ([]domain.BlockList, error) {
	a.mu.Lock()
	if a.lists.valid && a.clock().Sub(a.lists.fetchedAt) <= a.cacheTimeout {
		data := a.lists.data
		a.mu.Unlock()
		return data, nil
	}
	generation := a.lists.generation + 1
	a.lists.generation = generation
	a.mu.Unlock()

	data, err := a.repo.FetchBlockLists(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.lists.generation == generation {
		a.lists = listSnapshot{data: data, fetchedAt: a.clock(), valid: true, generation: generation}
	}
	// A superseded fetch still returns its own data; it just never enters
	// the cache.
	return data, nil
}

// Schedules returns the cached snapshot, refetching when stale.
func (a *Aggregator) Schedules(ctx context.Context) ([]domain.Schedule, error) {
	a.mu.Lock()
	if a.schedules.valid && a.clock().Sub(a.schedules.fetchedAt) <= a.cacheTimeout {
		data := a.schedules.data
		a.mu.Unlock()
		return data, nil
	}
	generation := a.schedules.generation + 1
	a.schedules.generation = generation
	a.mu.Unlock()

	data, err := a.repo.FetchSchedules(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.schedules.generation == generation {
		a.schedules = scheduleSnapshot{data: data, fetchedAt: a.clock(), valid: true, generation: generation}
	}
	return data, nil
}

// AppCategories returns the cached snapshot, refetching when stale.
func (a *Aggregator) AppCategories(ctx context.Context) ([]domain.AppCategory, error) {
	a.mu.Lock()
	if a.categories.valid && a.clock().Sub(a.categories.fetchedAt) <= a.cacheTimeout {
		data := a.categories.data
		a.mu.Unlock()
		return data, nil
	}
	generation := a.categories.generation + 1
	a.categories.generation = generation
	a.mu.Unlock()

	data, err := a.repo.FetchAppCategories(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.categories.generation == generation {
		a.categories = categorySnapshot{data: data, fetchedAt: a.clock(), valid: true, generation: generation}
	}
	return data, nil
}

// InvalidateBlockLists forces a refetch on the next list read. Called after
// every successful mutation of the family through the repository.
func (a *Aggregator) InvalidateBlockLists() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lists.valid = false
	a.lists.generation++
}

func (a *Aggregator) InvalidateSchedules() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.schedules.valid = false
	a.schedules.generation++
}

func (a *Aggregator) InvalidateAppCategories() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.categories.valid = false
	a.categories.generation++
}

// RefreshAll fetches the three families concurrently and commits them
// together. If any fetch fails nothing is committed.
func (a *Aggregator) RefreshAll(ctx context.Context) error {
	a.mu.Lock()
	a.lists.generation++
	a.schedules.generation++
	a.categories.generation++
	listGen := a.lists.generation
	scheduleGen := a.schedules.generation
	categoryGen := a.categories.generation
	a.mu.Unlock()

	var (
		lists      []domain.BlockList
		schedules  []domain.Schedule
		categories []domain.AppCategory
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		lists, err = a.repo.FetchBlockLists(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		schedules, err = a.repo.FetchSchedules(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		categories, err = a.repo.FetchAppCategories(groupCtx)
		return err
	})

	if err := group.Wait(); err != nil {
		return fmt.Errorf("aggregator: refresh all: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.clock()
	if a.lists.generation == listGen {
		a.lists = listSnapshot{data: lists, fetchedAt: now, valid: true, generation: listGen}
	}
	if a.schedules.generation == scheduleGen {
		a.schedules = scheduleSnapshot{data: schedules, fetchedAt: now, valid: true, generation: scheduleGen}
	}
	if a.categories.generation == categoryGen {
		a.categories = categorySnapshot{data: categories, fetchedAt: now, valid: true, generation: categoryGen}
	}
	return nil
}

// Profiles returns the shared blocking profile set.
func (a *Aggregator) Profiles(ctx context.Context) ([]domain.BlockingProfile, error) {
	return a.profiles.LoadProfiles(ctx)
}

// SetProfiles replaces the profile set, keeping at most one active.
func (a *Aggregator) SetProfiles(ctx context.Context, profiles []domain.BlockingProfile) error {
	a.profileMu.Lock()
	defer a.profileMu.Unlock()

	normalized := make([]domain.BlockingProfile, len(profiles))
	copy(normalized, profiles)

	seenActive := false
	for i := range normalized {
		if !normalized[i].IsActive {
			continue
		}
		if seenActive {
			normalized[i].IsActive = false
			continue
		}
		seenActive = true
	}

	return a.profiles.SaveProfiles(ctx, normalized)
}

// ActivateProfile marks the given profile active and every other profile
// inactive. Activation is serialized; two profiles can never end up active
// together.
func (a *Aggregator) ActivateProfile(ctx context.Context, id string) error {
	a.profileMu.Lock()
	defer a.profileMu.Unlock()

	profiles, err := a.profiles.LoadProfiles(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range profiles {
		if profiles[i].ID == id {
			profiles[i].IsActive = true
			found = true
		} else {
			profiles[i].IsActive = false
		}
	}
	if !found {
		return fmt.Errorf("%w: %q", ErrProfileNotFound, id)
	}
	return a.profiles.SaveProfiles(ctx, profiles)
}

// DeactivateProfiles switches every profile off.
func (a *Aggregator) DeactivateProfiles(ctx context.Context) error {
	a.profileMu.Lock()
	defer a.profileMu.Unlock()

	profiles, err := a.profiles.LoadProfiles(ctx)
	if err != nil {
		return err
	}
	for i := range profiles {
		profiles[i].IsActive = false
	}
	return a.profiles.SaveProfiles(ctx, profiles)
}

func (a *Aggregator) activeProfile(ctx context.Context) (domain.BlockingProfile, bool, error) {
	profiles, err := a.profiles.LoadProfiles(ctx)
	if err != nil {
		return domain.BlockingProfile{}, false, err
	}
	for _, profile := range profiles {
		if profile.IsActive {
			return profile, true, nil
		}
	}
	return domain.BlockingProfile{}, false, nil
}

// memoryProfiles is the process-local fallback used when no shared store is
// configured, mainly in tests.
type memoryProfiles struct {
	mu       sync.Mutex
	profiles []domain.BlockingProfile
}

func (m *memoryProfiles) SaveProfiles(_ context.Context, profiles []domain.BlockingProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles = append([]domain.BlockingProfile(nil), profiles...)
	return nil
}

func (m *memoryProfiles) LoadProfiles(_ context.Context) ([]domain.BlockingProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.BlockingProfile(nil), m.profiles...), nil
}
