package enforcement

import (
	"context"

	"github.com/charmbracelet/log"

	"warden/internal/domain"
)

// LogPort only logs what it would enforce. Used when no platform filter is
// available, and as the safe default in development.
type LogPort struct{}

func NewLogPort() *LogPort {
	return &LogPort{}
}

func (p *LogPort) Apply(_ context.Context, rules []domain.BlockingRule) error {
	log.Info("Enforcement rules applied", "count", len(rules))
	for _, rule := range rules {
		log.Debug("Rule active", "kind", rule.Kind, "pattern", rule.Pattern, "category", rule.Category)
	}
	return nil
}

func (p *LogPort) Clear(context.Context) error {
	log.Info("Enforcement rules cleared")
	return nil
}
