// Package interval arms the OS-level job pair that opens and closes a
// monitoring window. Each window is two one-shot jobs: one at the window
// start, one at the window end.
package interval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// Handler receives the interval callbacks. Handlers must not block for long;
// they are invoked on the scheduler's goroutines.
type Handler interface {
	HandleIntervalStart(ctx context.Context, sessionID string)
	HandleIntervalEnd(ctx context.Context, sessionID string)
}

type windowJobs struct {
	start uuid.UUID
	end   uuid.UUID
}

// Scheduler turns monitoring windows into scheduled start/end callbacks.
type Scheduler struct {
	scheduler gocron.Scheduler
	handler   Handler

	mu      sync.Mutex
	windows map[string]windowJobs
}

func NewScheduler(handler Handler) (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("interval: create scheduler: %w", err)
	}

	return &Scheduler{
		scheduler: s,
		handler:   handler,
		windows:   make(map[string]windowJobs),
	}, nil
}

// Start begins dispatching scheduled callbacks.
func (s *Scheduler) Start() {
	s.scheduler.Start()
}

// Stop shuts the scheduler down, waiting for running callbacks to finish.
func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// ScheduleWindow arms the start/end pair for one session. A window already
// armed for the same session is replaced.
func (s *Scheduler) ScheduleWindow(sessionID string, start, end time.Time) error {
	if !end.After(start) {
		return fmt.Errorf("interval: window end %v is not after start %v", end, start)
	}

	if err := s.CancelWindow(sessionID); err != nil {
		return err
	}

	startSpec := gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(start))
	if !start.After(time.Now()) {
		startSpec = gocron.OneTimeJob(gocron.OneTimeJobStartImmediately())
	}

	startJob, err := s.scheduler.NewJob(
		startSpec,
		gocron.NewTask(s.fireStart, sessionID),
		gocron.WithName(fmt.Sprintf("interval-start-%s", sessionID)),
	)
	if err != nil {
		return fmt.Errorf("interval: schedule window start: %w", err)
	}

	endJob, err := s.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(end)),
		gocron.NewTask(s.fireEnd, sessionID),
		gocron.WithName(fmt.Sprintf("interval-end-%s", sessionID)),
	)
	if err != nil {
		_ = s.scheduler.RemoveJob(startJob.ID())
		return fmt.Errorf("interval: schedule window end: %w", err)
	}

	s.mu.Lock()
	s.windows[sessionID] = windowJobs{start: startJob.ID(), end: endJob.ID()}
	s.mu.Unlock()

	log.Debug("Monitoring window armed", "session", sessionID, "start", start, "end", end)
	return nil
}

// CancelWindow disarms both jobs of a window. Cancelling an unknown session
// is a no-op.
func (s *Scheduler) CancelWindow(sessionID string) error {
	s.mu.Lock()
	jobs, ok := s.windows[sessionID]
	delete(s.windows, sessionID)
	s.mu.Unlock()

	if !ok {
		return nil
	}

	// RemoveJob on an already-fired one-shot job errors; that is fine.
	if err := s.scheduler.RemoveJob(jobs.start); err != nil {
		log.Debug("Window start job already gone", "session", sessionID, "error", err)
	}
	if err := s.scheduler.RemoveJob(jobs.end); err != nil {
		log.Debug("Window end job already gone", "session", sessionID, "error", err)
	}
	return nil
}

func (s *Scheduler) fireStart(sessionID string) {
	s.handler.HandleIntervalStart(context.Background(), sessionID)
}

func (s *Scheduler) fireEnd(sessionID string) {
	s.handler.HandleIntervalEnd(context.Background(), sessionID)

	s.mu.Lock()
	delete(s.windows, sessionID)
	s.mu.Unlock()
}
