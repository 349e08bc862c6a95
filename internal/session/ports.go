package session

import (
	"context"
	"time"

	"warden/internal/domain"
)

// AuthorizationPort is the platform permission surface. Both calls are
// idempotent and safe to repeat.
type AuthorizationPort interface {
	// Status reports whether enforcement permission is currently granted.
	Status(ctx context.Context) (bool, error)
	// Request asks the platform for permission; false means denied.
	Request(ctx context.Context) (bool, error)
}

// IntervalScheduler arms the OS-level interval-start/interval-end pair for a
// monitoring window. Scheduling a window for a new session replaces nothing
// implicitly; the controller cancels the prior window first.
type IntervalScheduler interface {
	ScheduleWindow(sessionID string, start, end time.Time) error
	CancelWindow(sessionID string) error
}

// Repository is the slice of the remote config API the controller needs.
type Repository interface {
	FetchBlockLists(ctx context.Context) ([]domain.BlockList, error)
	CreateBlockList(ctx context.Context, list domain.BlockList) (domain.BlockList, error)
}

// cacheInvalidator lets the controller mirror its list mutations into the
// aggregator cache.
type cacheInvalidator interface {
	InvalidateBlockLists()
}
