package config

import "strings"

// LocationConfig tunes the location candidate cascade.
type LocationConfig struct {
	// GenericPlaceTokens are administrative nouns never tried on their own.
	GenericPlaceTokens []string `yaml:"generic_place_tokens"`
	// TrailingTimeTokens are stripped from the end of a captured place.
	TrailingTimeTokens []string `yaml:"trailing_time_tokens"`
	// CountryHint is appended to a bare place name as a last resort.
	// Set to "-" to disable the qualified variant.
	CountryHint string `yaml:"country_hint"`
}

var (
	DefaultGenericPlaceTokens = []string{
		"sector", "block", "area", "district", "zone", "ward", "locality", "city", "town", "village",
	}
	DefaultTrailingTimeTokens = []string{
		"today", "now", "tonight", "tomorrow", "morning", "afternoon", "evening",
	}
)

// DefaultCountryHint is the ISO country code used for qualified candidates.
const DefaultCountryHint = "IN"

func applyLocationDefaults(cfg *LocationConfig) {
	if len(cfg.GenericPlaceTokens) == 0 {
		cfg.GenericPlaceTokens = append([]string(nil), DefaultGenericPlaceTokens...)
	}
	if len(cfg.TrailingTimeTokens) == 0 {
		cfg.TrailingTimeTokens = append([]string(nil), DefaultTrailingTimeTokens...)
	}
	cfg.GenericPlaceTokens = normalizeWords(cfg.GenericPlaceTokens)
	cfg.TrailingTimeTokens = normalizeWords(cfg.TrailingTimeTokens)

	switch hint := strings.TrimSpace(cfg.CountryHint); hint {
	case "":
		cfg.CountryHint = DefaultCountryHint
	case "-":
		cfg.CountryHint = ""
	default:
		cfg.CountryHint = strings.ToUpper(hint)
	}
}

// DefaultLocationConfig returns the built-in cascade settings.
func DefaultLocationConfig() LocationConfig {
	var cfg LocationConfig
	applyLocationDefaults(&cfg)
	return cfg
}
