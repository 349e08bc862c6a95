package domain

import (
	"time"

	"golang.org/x/net/publicsuffix"
)

// DayKey formats a timestamp as the per-day bucket key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// Statistics accumulates enforcement counters. Counters are append-only and
// cleared only by an explicit reset; only the enforcement adapter mutates
// them.
type Statistics struct {
	BlockedRequests   uint64            `json:"blocked_requests"`
	TimeSavedSeconds  uint64            `json:"time_saved_seconds"`
	ByCategory        map[string]uint64 `json:"blocked_by_category"`
	ByDay             map[string]uint64 `json:"blocked_by_day"`
	DomainCounts      map[string]uint64 `json:"domain_counts"`
	AppCounts         map[string]uint64 `json:"app_counts"`
	MostBlockedDomain string            `json:"most_blocked_domain,omitempty"`
	MostBlockedApp    string            `json:"most_blocked_app,omitempty"`
}

// NewStatistics returns an empty, map-initialized statistics value.
func NewStatistics() Statistics {
	return Statistics{
		ByCategory:   make(map[string]uint64),
		ByDay:        make(map[string]uint64),
		DomainCounts: make(map[string]uint64),
		AppCounts:    make(map[string]uint64),
	}
}

// RecordBlock registers one blocked attempt and updates the derived
// most-blocked fields. Domains are grouped by registrable domain where one
// can be derived, so api.example.com and www.example.com count together.
func (s *Statistics) RecordBlock(kind RuleKind, identifier, category string, at time.Time, timeCredit time.Duration) {
	s.ensureMaps()

	s.BlockedRequests++
	s.ByDay[DayKey(at)]++
	if timeCredit > 0 {
		s.TimeSavedSeconds += uint64(timeCredit / time.Second)
	}
	if category == "" {
		category = CategoryCustom
	}
	s.ByCategory[category]++

	switch kind {
	case RuleKindDomain:
		s.DomainCounts[registrableDomain(identifier)]++
		s.MostBlockedDomain = argMax(s.DomainCounts)
	case RuleKindApp:
		s.AppCounts[identifier]++
		s.MostBlockedApp = argMax(s.AppCounts)
	}
}

// Reset clears every counter.
func (s *Statistics) Reset() {
	*s = NewStatistics()
}

func (s *Statistics) ensureMaps() {
	if s.ByCategory == nil {
		s.ByCategory = make(map[string]uint64)
	}
	if s.ByDay == nil {
		s.ByDay = make(map[string]uint64)
	}
	if s.DomainCounts == nil {
		s.DomainCounts = make(map[string]uint64)
	}
	if s.AppCounts == nil {
		s.AppCounts = make(map[string]uint64)
	}
}

// argMax picks the key with the highest count; ties resolve to the
// lexicographically smallest key so the result is deterministic.
func argMax(counts map[string]uint64) string {
	var (
		bestKey   string
		bestCount uint64
	)
	for key, count := range counts {
		if count > bestCount || (count == bestCount && bestCount > 0 && key < bestKey) {
			bestKey = key
			bestCount = count
		}
	}
	return bestKey
}

func registrableDomain(host string) string {
	normalized := NormalizeHostPattern(host)
	if normalized == "" {
		return host
	}
	if base, err := publicsuffix.EffectiveTLDPlusOne(normalized); err == nil {
		return base
	}
	return normalized
}
