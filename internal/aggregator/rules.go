package aggregator

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"warden/internal/config"
	"warden/internal/domain"
)

// ActiveRules computes the deduplicated active rule set for the given
// instant: items of every schedule in effect (via lists and direct
// attachments), plus the active profile's rules and the default rules.
// Order is first-seen; duplicates collapse by value identity.
func (a *Aggregator) ActiveRules(ctx context.Context, at time.Time) ([]domain.BlockingRule, error) {
	schedules, err := a.Schedules(ctx)
	if err != nil {
		return nil, err
	}
	lists, err := a.BlockLists(ctx)
	if err != nil {
		return nil, err
	}
	categories, err := a.AppCategories(ctx)
	if err != nil {
		return nil, err
	}

	listsByID := make(map[uint]domain.BlockList, len(lists))
	itemsByID := make(map[uint]domain.BlockItem)
	for _, list := range lists {
		listsByID[list.ID] = list
		for _, item := range list.Items {
			itemsByID[item.ID] = item
		}
	}
	categoriesBySystemID := make(map[string]domain.AppCategory, len(categories))
	for _, category := range categories {
		categoriesBySystemID[category.SystemID] = category
	}

	var rules []domain.BlockingRule

	for _, schedule := range schedules {
		if !schedule.ActiveAt(at) {
			continue
		}

		for _, listID := range schedule.ListIDs {
			list, ok := listsByID[listID]
			if !ok {
				// The list was deleted after the schedule referenced it.
				log.Debug("schedule references missing list", "schedule", schedule.ID, "list", listID)
				continue
			}
			for _, item := range list.ActiveItems() {
				if rule, ok := a.translateItem(item, categoriesBySystemID); ok {
					rules = append(rules, rule)
				}
			}
		}

		for _, itemID := range schedule.DirectItemIDs {
			item, ok := itemsByID[itemID]
			if !ok {
				log.Debug("schedule references missing item", "schedule", schedule.ID, "item", itemID)
				continue
			}
			if !item.IsActive {
				continue
			}
			if rule, ok := a.translateItem(item, categoriesBySystemID); ok {
				rules = append(rules, rule)
			}
		}
	}

	profile, ok, err := a.activeProfile(ctx)
	if err != nil {
		return nil, err
	}
	if ok {
		// Profile rules are always-on while the profile is active,
		// independent of any schedule, and pull the default rules in with
		// them.
		for _, rule := range profile.Rules {
			if rule.IsActive {
				rules = append(rules, rule)
			}
		}
		rules = append(rules, DefaultRules()...)
	}

	return domain.DedupeRules(rules), nil
}

// translateItem maps a block item to its canonical rule. Items pointing at a
// disabled app category are dropped.
func (a *Aggregator) translateItem(item domain.BlockItem, categories map[string]domain.AppCategory) (domain.BlockingRule, bool) {
	category := ""
	if item.Kind == domain.ItemKindAppCategory {
		if entry, ok := categories[item.Identifier]; ok && !entry.IsActive {
			return domain.BlockingRule{}, false
		}
		category = config.CategoryFor(item.Identifier)
	}
	return domain.RuleFromItem(item, category), true
}

// DefaultRules materializes the configured always-on rules.
func DefaultRules() []domain.BlockingRule {
	starters := config.GetConfig().DefaultRules
	rules := make([]domain.BlockingRule, 0, len(starters))
	for _, starter := range starters {
		rules = append(rules, RuleFromStarter(starter))
	}
	return rules
}

// RuleFromStarter converts a settings-file seed rule into its domain form.
func RuleFromStarter(starter config.StarterRule) domain.BlockingRule {
	kind := domain.RuleKind(starter.Kind)
	switch kind {
	case domain.RuleKindDomain, domain.RuleKindApp, domain.RuleKindKeyword, domain.RuleKindIPAddress:
	default:
		kind = domain.RuleKindDomain
	}

	pattern := starter.Pattern
	if kind == domain.RuleKindDomain {
		pattern = domain.NormalizeHostPattern(pattern)
	}

	category := starter.Category
	if category == "" {
		category = domain.CategoryCustom
	}

	return domain.BlockingRule{
		ID:       uuid.NewString(),
		Name:     starter.Name,
		Kind:     kind,
		Pattern:  pattern,
		IsActive: true,
		Category: category,
	}
}
