package domain

import "time"

// BlockingProfile bundles blocking rules that toggle on and off as a unit,
// independent of any schedule. At most one profile is active at a time; the
// aggregator enforces the exclusivity.
type BlockingProfile struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	IsActive    bool           `json:"is_active"`
	Rules       []BlockingRule `json:"rules"`
	Schedule    *Schedule      `json:"schedule,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
