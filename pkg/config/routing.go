package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RoutingConfig holds the query routing rules.
type RoutingConfig struct {
	// WeatherKeywords are matched case-insensitively as whole words.
	WeatherKeywords []string `yaml:"weather_keywords"`
	// ClassifierAdapter and ClassifierModel override llm.adapter and
	// llm.router_model for the fallback classifier.
	ClassifierAdapter string `yaml:"classifier_adapter,omitempty"`
	ClassifierModel   string `yaml:"classifier_model,omitempty"`
}

// DefaultWeatherKeywords is the built-in weather-intent vocabulary.
var DefaultWeatherKeywords = []string{
	"weather", "temperature", "temp", "rain", "raining", "forecast", "humidity",
	"wind", "climate", "umbrella", "drizzle", "storm", "cloudy", "sunny",
}

// LoadRoutingConfig reads routing configuration from a YAML file.
func LoadRoutingConfig(path string) (*RoutingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg RoutingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyRoutingDefaults(&cfg)
	return &cfg, nil
}

// DefaultRoutingConfig returns the default routing configuration.
func DefaultRoutingConfig() *RoutingConfig {
	cfg := &RoutingConfig{}
	applyRoutingDefaults(cfg)
	return cfg
}

func applyRoutingDefaults(cfg *RoutingConfig) {
	if cfg == nil {
		return
	}
	if len(cfg.WeatherKeywords) == 0 {
		cfg.WeatherKeywords = append([]string(nil), DefaultWeatherKeywords...)
	}
	cfg.WeatherKeywords = normalizeWords(cfg.WeatherKeywords)
	cfg.ClassifierAdapter = strings.TrimSpace(cfg.ClassifierAdapter)
	cfg.ClassifierModel = strings.TrimSpace(cfg.ClassifierModel)
}

// normalizeWords lowercases, trims and de-duplicates a word list.
func normalizeWords(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}
