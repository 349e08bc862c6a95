package domain

// Selection is an opaque set of app and domain identifiers produced by an
// external picker. The engine never interprets the identifiers beyond
// translating them into blocking rules.
type Selection struct {
	Apps    []string `json:"apps"`
	Domains []string `json:"domains"`
}

// IsEmpty reports whether the selection contains nothing blockable.
func (s Selection) IsEmpty() bool {
	return len(s.Apps) == 0 && len(s.Domains) == 0
}

// Rules translates the selection into canonical blocking rules.
func (s Selection) Rules() []BlockingRule {
	rules := make([]BlockingRule, 0, len(s.Domains)+len(s.Apps))
	for _, host := range s.Domains {
		rules = append(rules, RuleFromItem(BlockItem{
			Kind:       ItemKindDomain,
			Identifier: host,
			IsActive:   true,
		}, ""))
	}
	for _, app := range s.Apps {
		rules = append(rules, RuleFromItem(BlockItem{
			Kind:       ItemKindApp,
			Identifier: app,
			IsActive:   true,
		}, ""))
	}
	return DedupeRules(rules)
}
