// Package enforcement turns the aggregated rule set into platform effects.
// The adapter is driven by the OS-level interval scheduler; everything it
// needs is reconstructed from the shared state store and the aggregator on
// every callback.
package enforcement

import (
	"context"

	"warden/internal/domain"
)

// Port is the platform surface that actually blocks things. Apply replaces
// the full rule set; partial updates are not expressible, so every call
// carries the complete set. Clear removes everything regardless of what was
// applied before.
type Port interface {
	Apply(ctx context.Context, rules []domain.BlockingRule) error
	Clear(ctx context.Context) error
}
