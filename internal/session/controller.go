// Package session drives authorization, enabling/disabling enforcement, and
// monitored time windows. All durable effects go through the shared state
// store so the enforcement process can act on them independently.
package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"warden/internal/config"
	"warden/internal/domain"
	"warden/internal/state"
)

// Phase is the controller's lifecycle position. Authorization runs orthogonal
// to the enable/disable cycle.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseAuthorizing Phase = "authorizing"
	PhaseEnabling    Phase = "enabling"
	PhaseActive      Phase = "active"
	PhaseEnding      Phase = "ending"
)

// Controller is the interactive process's session state machine.
type Controller struct {
	repo      Repository
	store     state.Store
	scheduler IntervalScheduler
	auth      AuthorizationPort
	cache     cacheInvalidator
	clock     func() time.Time

	mu         sync.Mutex
	phase      Phase
	authorized bool
}

// Option tweaks controller construction.
type Option func(*Controller)

// WithClock swaps the time source, for tests.
func WithClock(clock func() time.Time) Option {
	return func(c *Controller) {
		c.clock = clock
	}
}

func NewController(repo Repository, store state.Store, scheduler IntervalScheduler, auth AuthorizationPort, cache cacheInvalidator, opts ...Option) *Controller {
	c := &Controller{
		repo:      repo,
		store:     store,
		scheduler: scheduler,
		auth:      auth,
		cache:     cache,
		clock:     time.Now,
		phase:     PhaseIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current lifecycle position.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// CheckAuthorization queries the platform permission. Idempotent.
func (c *Controller) CheckAuthorization(ctx context.Context) (bool, error) {
	granted, err := c.auth.Status(ctx)
	if err != nil {
		return false, fmt.Errorf("session: check authorization: %w", err)
	}

	c.mu.Lock()
	c.authorized = granted
	c.mu.Unlock()
	return granted, nil
}

// RequestAuthorization asks the platform for permission. Idempotent; a
// denial surfaces as ErrNotAuthorized.
func (c *Controller) RequestAuthorization(ctx context.Context) error {
	c.setPhase(PhaseAuthorizing)
	defer c.setPhase(PhaseIdle)

	granted, err := c.auth.Request(ctx)
	if err != nil {
		return fmt.Errorf("session: request authorization: %w", err)
	}
	if !granted {
		return ErrNotAuthorized
	}

	c.mu.Lock()
	c.authorized = true
	c.mu.Unlock()
	return nil
}

// EnableBlocking resolves a block list and hands its items to the
// enforcement path. With a nil listID it falls back to the last active list,
// then to the well-known default list, creating the latter when missing.
func (c *Controller) EnableBlocking(ctx context.Context, listID *uint) error {
	c.setPhase(PhaseEnabling)

	list, err := c.resolveList(ctx, listID)
	if err != nil {
		c.setPhase(PhaseIdle)
		return err
	}

	selection := selectionFromItems(list.ActiveItems())
	if err := c.store.SaveSelection(ctx, selection, c.clock()); err != nil {
		c.setPhase(PhaseIdle)
		return err
	}
	if err := c.store.SetLastActiveListID(ctx, strconv.FormatUint(uint64(list.ID), 10)); err != nil {
		c.setPhase(PhaseIdle)
		return err
	}
	if err := c.store.SetBlockingEnabled(ctx, true); err != nil {
		c.setPhase(PhaseIdle)
		return err
	}

	c.setPhase(PhaseActive)
	log.Info("Blocking enabled", "list", list.Name, "items", len(list.ActiveItems()))
	return nil
}

// EnableBlockingWithSelection bypasses lists entirely: the raw selection is
// persisted and applied as-is.
func (c *Controller) EnableBlockingWithSelection(ctx context.Context, selection domain.Selection) error {
	c.setPhase(PhaseEnabling)

	if err := c.store.SaveSelection(ctx, selection, c.clock()); err != nil {
		c.setPhase(PhaseIdle)
		return err
	}
	if err := c.store.SetBlockingEnabled(ctx, true); err != nil {
		c.setPhase(PhaseIdle)
		return err
	}

	c.setPhase(PhaseActive)
	log.Info("Blocking enabled from selection", "apps", len(selection.Apps), "domains", len(selection.Domains))
	return nil
}

// StartMonitoring opens the window [now, now+duration) and arms the interval
// pair against it. Any prior window is stopped first; sessions never overlap.
func (c *Controller) StartMonitoring(ctx context.Context, duration time.Duration) (domain.Session, error) {
	if duration <= 0 {
		return domain.Session{}, fmt.Errorf("session: monitoring duration must be positive, got %v", duration)
	}

	if err := c.StopMonitoring(ctx); err != nil {
		return domain.Session{}, err
	}

	now := c.clock()
	session := domain.Session{
		ID:              uuid.NewString(),
		Active:          true,
		StartTime:       now,
		DurationSeconds: int64(duration / time.Second),
	}

	if err := c.store.SetSessionID(ctx, session.ID); err != nil {
		return domain.Session{}, err
	}
	if err := c.store.SetSessionStartTime(ctx, session.StartTime); err != nil {
		return domain.Session{}, err
	}
	if err := c.store.SetSessionDuration(ctx, session.DurationSeconds); err != nil {
		return domain.Session{}, err
	}
	if err := c.store.SetBlockingEnabled(ctx, true); err != nil {
		return domain.Session{}, err
	}

	if err := c.scheduler.ScheduleWindow(session.ID, session.StartTime, session.EndTime()); err != nil {
		return domain.Session{}, fmt.Errorf("session: schedule monitoring window: %w", err)
	}

	c.setPhase(PhaseActive)
	log.Info("Monitoring started", "session", session.ID, "duration", duration)
	return session, nil
}

// StopMonitoring tears the current window down. Idempotent; stopping with no
// session running is a no-op.
func (c *Controller) StopMonitoring(ctx context.Context) error {
	c.setPhase(PhaseEnding)
	defer c.setPhase(PhaseIdle)

	sessionID, err := c.store.SessionID(ctx)
	if err != nil {
		return err
	}
	if sessionID != "" {
		if err := c.scheduler.CancelWindow(sessionID); err != nil {
			log.Warn("Failed to cancel monitoring window", "session", sessionID, "error", err)
		}
	}

	if err := c.store.SetBlockingEnabled(ctx, false); err != nil {
		return err
	}
	if err := c.store.SetSessionDuration(ctx, 0); err != nil {
		return err
	}
	return c.store.SetSessionID(ctx, "")
}

// DisableBlocking clears enforcement and session metadata. Idempotent.
func (c *Controller) DisableBlocking(ctx context.Context) error {
	if err := c.StopMonitoring(ctx); err != nil {
		return err
	}
	return c.store.ClearSelection(ctx)
}

// RemainingTime reports the time left in the current window, never negative.
// Once the window is over (or none is running) it returns ErrNoActiveSession.
func (c *Controller) RemainingTime(ctx context.Context) (time.Duration, error) {
	session, err := state.SessionFromStore(ctx, c.store)
	if err != nil {
		return 0, err
	}

	remaining, ok := session.Remaining(c.clock())
	if !ok {
		return 0, ErrNoActiveSession
	}
	return remaining, nil
}

// SaveSelectionAsList persists the stored selection as a new block list and
// makes it the active list.
func (c *Controller) SaveSelectionAsList(ctx context.Context, name, description string) (domain.BlockList, error) {
	selection, has, err := c.store.StoredSelection(ctx)
	if err != nil {
		return domain.BlockList{}, err
	}
	if !has || selection.IsEmpty() {
		return domain.BlockList{}, ErrInvalidSelection
	}

	list := domain.BlockList{
		Name:        name,
		Description: description,
		IsActive:    true,
		Items:       itemsFromSelection(selection),
	}

	created, err := c.repo.CreateBlockList(ctx, list)
	if err != nil {
		return domain.BlockList{}, err
	}
	c.cache.InvalidateBlockLists()

	if err := c.store.SetLastActiveListID(ctx, strconv.FormatUint(uint64(created.ID), 10)); err != nil {
		return domain.BlockList{}, err
	}

	log.Info("Selection saved as list", "list", created.Name, "items", len(created.Items))
	return created, nil
}

// resolveList implements the listID → last-active → default fallback chain.
func (c *Controller) resolveList(ctx context.Context, listID *uint) (domain.BlockList, error) {
	lists, err := c.repo.FetchBlockLists(ctx)
	if err != nil {
		return domain.BlockList{}, err
	}

	wanted := uint(0)
	if listID != nil {
		wanted = *listID
	} else if raw, err := c.store.LastActiveListID(ctx); err != nil {
		return domain.BlockList{}, err
	} else if raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			wanted = uint(parsed)
		}
	}

	if wanted != 0 {
		for _, list := range lists {
			if list.ID == wanted {
				return list, nil
			}
		}
		if listID != nil {
			return domain.BlockList{}, fmt.Errorf("session: block list %d not found", wanted)
		}
		// The remembered list is gone; fall through to the default.
	}

	return c.defaultList(ctx, lists)
}

// defaultList looks the well-known default list up by name, creating and
// seeding it when absent. Look-up-before-create keeps the operation
// idempotent.
func (c *Controller) defaultList(ctx context.Context, lists []domain.BlockList) (domain.BlockList, error) {
	cfg := config.GetConfig().DefaultList
	name := cfg.Name
	if name == "" {
		name = "Distractions"
	}

	for _, list := range lists {
		if list.HasName(name) {
			return list, nil
		}
	}

	created, err := c.repo.CreateBlockList(ctx, domain.BlockList{
		Name:        name,
		Description: cfg.Description,
		IsActive:    true,
		IsDefault:   true,
		Items:       starterItems(cfg.StarterRules),
	})
	if err != nil {
		return domain.BlockList{}, fmt.Errorf("%w: %v", ErrFailedToCreateDefaultList, err)
	}
	c.cache.InvalidateBlockLists()

	log.Info("Created default block list", "name", created.Name)
	return created, nil
}

func (c *Controller) setPhase(phase Phase) {
	c.mu.Lock()
	c.phase = phase
	c.mu.Unlock()
}

func selectionFromItems(items []domain.BlockItem) domain.Selection {
	var selection domain.Selection
	for _, item := range items {
		switch item.Kind {
		case domain.ItemKindDomain:
			selection.Domains = append(selection.Domains, item.Identifier)
		default:
			selection.Apps = append(selection.Apps, item.Identifier)
		}
	}
	return selection
}

func itemsFromSelection(selection domain.Selection) []domain.BlockItem {
	items := make([]domain.BlockItem, 0, len(selection.Domains)+len(selection.Apps))
	for _, host := range selection.Domains {
		items = append(items, domain.BlockItem{
			Kind:       domain.ItemKindDomain,
			Identifier: host,
			Name:       host,
			IsActive:   true,
		})
	}
	for _, app := range selection.Apps {
		items = append(items, domain.BlockItem{
			Kind:       domain.ItemKindApp,
			Identifier: app,
			Name:       app,
			IsActive:   true,
		})
	}
	return items
}

func starterItems(starters []config.StarterRule) []domain.BlockItem {
	items := make([]domain.BlockItem, 0, len(starters))
	for _, starter := range starters {
		kind := domain.ItemKindApp
		if starter.Kind == string(domain.ItemKindDomain) || starter.Kind == string(domain.RuleKindDomain) {
			kind = domain.ItemKindDomain
		}
		items = append(items, domain.BlockItem{
			Kind:       kind,
			Identifier: starter.Pattern,
			Name:       starter.Name,
			IsActive:   true,
		})
	}
	return items
}
