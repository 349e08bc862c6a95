package domain

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// RuleKind classifies the canonical, enforcement-ready form of a rule.
type RuleKind string

const (
	RuleKindDomain    RuleKind = "domain"
	RuleKindApp       RuleKind = "app"
	RuleKindKeyword   RuleKind = "keyword"
	RuleKindIPAddress RuleKind = "ipAddress"
)

// CategoryCustom is the fallback category for rules translated from items
// with no explicit category mapping.
const CategoryCustom = "custom"

// BlockingRule is the canonical post-merge form of a block item. Identity for
// merge purposes is the value key (name, kind, pattern, category); the id is
// regenerated on every translation and deliberately excluded.
type BlockingRule struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Kind     RuleKind `json:"kind"`
	Pattern  string   `json:"pattern"`
	IsActive bool     `json:"is_active"`
	Category string   `json:"category"`
}

// Key returns the value identity used for deduplication.
func (r BlockingRule) Key() string {
	return r.Name + "|" + string(r.Kind) + "|" + r.Pattern + "|" + r.Category
}

// RuleFromItem translates a block item into its canonical rule form.
// Domain items get a normalized hostname pattern; app and appCategory items
// both translate to app rules, the latter carrying the mapped category.
func RuleFromItem(item BlockItem, category string) BlockingRule {
	if category == "" {
		category = CategoryCustom
	}

	rule := BlockingRule{
		ID:       uuid.NewString(),
		Name:     item.Name,
		IsActive: item.IsActive,
		Category: category,
	}

	switch item.Kind {
	case ItemKindDomain:
		rule.Kind = RuleKindDomain
		rule.Pattern = NormalizeHostPattern(item.Identifier)
	default:
		rule.Kind = RuleKindApp
		rule.Pattern = strings.TrimSpace(item.Identifier)
	}

	if rule.Name == "" {
		rule.Name = rule.Pattern
	}
	return rule
}

// NormalizeHostPattern trims, lowercases, and strips scheme/path noise from a
// domain pattern. Unparseable input is returned trimmed rather than dropped so
// the enforcement port can decide what to do with it.
func NormalizeHostPattern(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil || parsed.Hostname() == "" {
		return strings.ToLower(trimmed)
	}

	return strings.Trim(strings.ToLower(parsed.Hostname()), ".")
}

// DedupeRules removes value-identical rules while preserving first-seen order.
func DedupeRules(rules []BlockingRule) []BlockingRule {
	seen := make(map[string]struct{}, len(rules))
	deduped := make([]BlockingRule, 0, len(rules))

	for _, rule := range rules {
		key := rule.Key()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		deduped = append(deduped, rule)
	}
	return deduped
}
