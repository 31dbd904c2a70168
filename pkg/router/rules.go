package router

import (
	"sort"
	"strings"

	"github.com/zen-systems/askroute/pkg/config"
)

// RuleSet holds the keyword vocabulary for the rule stage.
type RuleSet struct {
	// Longer keywords first, so the reported keyword is the most specific one.
	keywords []string
}

// NewRuleSet creates a new rule set from routing configuration.
func NewRuleSet(cfg *config.RoutingConfig) *RuleSet {
	rs := &RuleSet{}
	if cfg == nil {
		cfg = config.DefaultRoutingConfig()
	}
	for _, kw := range cfg.WeatherKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			rs.keywords = append(rs.keywords, kw)
		}
	}
	sort.SliceStable(rs.keywords, func(i, j int) bool {
		return len(rs.keywords[i]) > len(rs.keywords[j])
	})
	return rs
}

// Match reports the first weather keyword found in the query as a whole word.
// An empty or whitespace-only query never matches.
func (rs *RuleSet) Match(query string) (string, bool) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return "", false
	}

	for _, kw := range rs.keywords {
		if containsTrigger(query, kw) {
			return kw, true
		}
	}
	return "", false
}

// Keywords returns the configured vocabulary.
func (rs *RuleSet) Keywords() []string {
	return append([]string(nil), rs.keywords...)
}

// containsTrigger checks if the prompt contains the trigger as a whole word or
// phrase. Every occurrence is checked, so "temperatures and temp" still
// matches "temp".
func containsTrigger(prompt, trigger string) bool {
	if trigger == "" {
		return false
	}
	offset := 0
	for {
		idx := strings.Index(prompt[offset:], trigger)
		if idx == -1 {
			return false
		}
		start := offset + idx
		end := start + len(trigger)

		boundedBefore := start == 0 || !isWordChar(prompt[start-1])
		boundedAfter := end == len(prompt) || !isWordChar(prompt[end])
		if boundedBefore && boundedAfter {
			return true
		}
		offset = start + 1
	}
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}
