// Package location turns free-form weather questions into place names a
// weather provider can resolve.
package location

import (
	"regexp"
	"strings"

	"github.com/zen-systems/askroute/pkg/config"
)

var (
	placePhrase = regexp.MustCompile(`(?i)\b(?:in|at|for|of)\s+([A-Za-z0-9][A-Za-z0-9 ,.'-]{1,80})\b`)
	placeName   = regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]{1,64}$`)
)

const trailingPunct = "?.!,;:"

// Resolver produces ordered location candidates from a query, most specific
// first. It is a best-effort cascade, not a geocoder.
type Resolver struct {
	generic     map[string]bool
	timeWords   map[string]bool
	countryHint string
}

// NewResolver builds a resolver from the cascade settings.
func NewResolver(cfg config.LocationConfig) *Resolver {
	r := &Resolver{
		generic:     make(map[string]bool, len(cfg.GenericPlaceTokens)),
		timeWords:   make(map[string]bool, len(cfg.TrailingTimeTokens)),
		countryHint: cfg.CountryHint,
	}
	for _, w := range cfg.GenericPlaceTokens {
		r.generic[strings.ToLower(w)] = true
	}
	for _, w := range cfg.TrailingTimeTokens {
		r.timeWords[strings.ToLower(w)] = true
	}
	return r
}

// ExtractCandidates returns de-duplicated location candidates for the query,
// or nil when no place phrase is found.
func (r *Resolver) ExtractCandidates(query string) []string {
	primary := r.primary(query)
	if primary == "" {
		return nil
	}

	candidates := []string{primary}

	tokens := strings.Fields(primary)
	if len(tokens) >= 2 {
		last := tokens[len(tokens)-1]
		prev := tokens[len(tokens)-2]
		if !r.isGeneric(last) {
			candidates = append(candidates, last)
		}
		if !r.isGeneric(prev) && !r.isGeneric(last) {
			candidates = append(candidates, prev+" "+last)
		}
	}

	if r.countryHint != "" {
		city := tokens[len(tokens)-1]
		if placeName.MatchString(city) {
			candidates = append(candidates, city+", "+r.countryHint)
		}
	}

	return dedupe(candidates)
}

// primary extracts the most specific place phrase, or "".
func (r *Resolver) primary(query string) string {
	m := placePhrase.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	loc := strings.TrimRight(strings.TrimSpace(m[1]), trailingPunct)

	// "sector 23 of nerul" names nerul; keep what follows the last " of ".
	if idx := strings.LastIndex(strings.ToLower(loc), " of "); idx >= 0 {
		loc = strings.TrimSpace(loc[idx+len(" of "):])
	}

	tokens := strings.Fields(loc)
	for len(tokens) > 0 && r.timeWords[strings.ToLower(tokens[len(tokens)-1])] {
		tokens = tokens[:len(tokens)-1]
		if len(tokens) > 0 && strings.ToLower(tokens[len(tokens)-1]) == "this" {
			tokens = tokens[:len(tokens)-1]
		}
	}
	return strings.Join(tokens, " ")
}

func (r *Resolver) isGeneric(token string) bool {
	return r.generic[strings.ToLower(token)]
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
