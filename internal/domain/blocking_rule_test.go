package domain

import (
	"reflect"
	"testing"
)

func TestNormalizeHostPattern(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{" Example.com ", "example.com"},
		{"https://Example.com/path?x=1", "example.com"},
		{"sub.example.com.", "sub.example.com"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := NormalizeHostPattern(tc.input); got != tc.want {
			t.Errorf("NormalizeHostPattern(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestRuleFromItem(t *testing.T) {
	t.Run("domain item", func(t *testing.T) {
		item := BlockItem{Kind: ItemKindDomain, Identifier: "https://News.example.com", Name: "News", IsActive: true}
		rule := RuleFromItem(item, "")

		if rule.Kind != RuleKindDomain {
			t.Fatalf("kind = %q, want %q", rule.Kind, RuleKindDomain)
		}
		if rule.Pattern != "news.example.com" {
			t.Fatalf("pattern = %q, want news.example.com", rule.Pattern)
		}
		if rule.Category != CategoryCustom {
			t.Fatalf("category = %q, want %q", rule.Category, CategoryCustom)
		}
		if rule.ID == "" {
			t.Fatal("expected generated rule id")
		}
	})

	t.Run("app category item keeps mapped category", func(t *testing.T) {
		item := BlockItem{Kind: ItemKindAppCategory, Identifier: "games", Name: "Games", IsActive: true}
		rule := RuleFromItem(item, "entertainment")

		if rule.Kind != RuleKindApp {
			t.Fatalf("kind = %q, want %q", rule.Kind, RuleKindApp)
		}
		if rule.Category != "entertainment" {
			t.Fatalf("category = %q, want entertainment", rule.Category)
		}
	})

	t.Run("empty name falls back to pattern", func(t *testing.T) {
		item := BlockItem{Kind: ItemKindApp, Identifier: "com.example.game"}
		rule := RuleFromItem(item, "")

		if rule.Name != "com.example.game" {
			t.Fatalf("name = %q, want com.example.game", rule.Name)
		}
	})
}

func TestDedupeRules_ValueIdentity(t *testing.T) {
	// Two rules from different lists carry distinct generated ids but the
	// same value key; dedup must collapse them.
	a := BlockingRule{ID: "id-a", Name: "X", Kind: RuleKindDomain, Pattern: "x.com", Category: "social", IsActive: true}
	b := BlockingRule{ID: "id-b", Name: "X", Kind: RuleKindDomain, Pattern: "x.com", Category: "social", IsActive: true}
	c := BlockingRule{ID: "id-c", Name: "Y", Kind: RuleKindDomain, Pattern: "y.com", Category: "social", IsActive: true}

	got := DedupeRules([]BlockingRule{a, b, c})
	if len(got) != 2 {
		t.Fatalf("DedupeRules returned %d rules, want 2", len(got))
	}
	if got[0].ID != "id-a" || got[1].ID != "id-c" {
		t.Fatalf("DedupeRules did not preserve first-seen order: %v", got)
	}

	// Were identity part of the key, nothing would collapse. Guard against
	// that interpretation explicitly.
	if a.Key() != b.Key() {
		t.Fatal("value keys of identical rules with different ids must match")
	}
}

func TestDedupeRules_PreservesOrder(t *testing.T) {
	rules := []BlockingRule{
		{Name: "C", Kind: RuleKindApp, Pattern: "c"},
		{Name: "A", Kind: RuleKindDomain, Pattern: "a.com"},
		{Name: "B", Kind: RuleKindDomain, Pattern: "b.com"},
		{Name: "A", Kind: RuleKindDomain, Pattern: "a.com"},
	}

	got := DedupeRules(rules)
	var names []string
	for _, r := range got {
		names = append(names, r.Name)
	}

	want := []string{"C", "A", "B"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("DedupeRules order = %v, want %v", names, want)
	}
}
