package config

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// userAliasesFile is looked up under the home directory before any bundled file.
const userAliasesFile = ".askroute/models.yaml"

// ModelAliases maps short model names to provider model IDs and lists the
// models each provider serves. A nil *ModelAliases resolves nothing and
// validates everything.
type ModelAliases struct {
	Aliases   map[string]string   `yaml:"aliases"`
	Providers map[string][]string `yaml:"providers"`
}

func emptyAliases() *ModelAliases {
	return &ModelAliases{
		Aliases:   map[string]string{},
		Providers: map[string][]string{},
	}
}

// LoadAliases parses a models.yaml file.
func LoadAliases(path string) (*ModelAliases, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model aliases %s: %w", path, err)
	}

	a := emptyAliases()
	if err := yaml.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("parse model aliases %s: %w", path, err)
	}
	if a.Aliases == nil {
		a.Aliases = map[string]string{}
	}
	if a.Providers == nil {
		a.Providers = map[string][]string{}
	}
	return a, nil
}

// LoadAliasesWithFallback prefers ~/.askroute/models.yaml, then bundledPath.
// With neither present it returns an empty table and no error.
func LoadAliasesWithFallback(bundledPath string) (*ModelAliases, error) {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, userAliasesFile))
	}
	if bundledPath != "" {
		paths = append(paths, bundledPath)
	}

	for _, path := range paths {
		_, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("stat model aliases %s: %w", path, err)
		}
		return LoadAliases(path)
	}
	return emptyAliases(), nil
}

// Resolve maps an alias to its model ID. Anything else passes through.
func (a *ModelAliases) Resolve(name string) string {
	if a == nil {
		return name
	}
	if model, ok := a.Aliases[name]; ok {
		return model
	}
	return name
}

func (a *ModelAliases) IsAlias(name string) bool {
	if a == nil {
		return false
	}
	_, ok := a.Aliases[name]
	return ok
}

// ValidateModel reports whether provider lists model. Without a provider
// table there is nothing to check against.
func (a *ModelAliases) ValidateModel(provider, model string) error {
	if a == nil || a.Providers == nil {
		return nil
	}
	models, ok := a.Providers[provider]
	if !ok {
		return fmt.Errorf("no model list for adapter %q", provider)
	}
	if !slices.Contains(models, model) {
		return fmt.Errorf("adapter %q does not serve model %q", provider, model)
	}
	return nil
}

// ListAliases returns a copy of the alias table.
func (a *ModelAliases) ListAliases() map[string]string {
	if a == nil || a.Aliases == nil {
		return map[string]string{}
	}
	return maps.Clone(a.Aliases)
}

// ListProviders returns provider names in sorted order.
func (a *ModelAliases) ListProviders() []string {
	if a == nil || len(a.Providers) == 0 {
		return nil
	}
	return slices.Sorted(maps.Keys(a.Providers))
}

func (a *ModelAliases) GetProviderModels(provider string) []string {
	if a == nil {
		return nil
	}
	return a.Providers[provider]
}

// GetProviderForModel names the first provider, in sorted order, that serves
// model, or "" when none does.
func (a *ModelAliases) GetProviderForModel(model string) string {
	for _, provider := range a.ListProviders() {
		if slices.Contains(a.Providers[provider], model) {
			return provider
		}
	}
	return ""
}

// ValidateConfig checks that every model the pipeline calls resolves to a
// model the selected adapter serves. The embedding model is checked against
// the openai provider list, since embeddings always go through OpenAI.
func (a *ModelAliases) ValidateConfig(cfg *Config) []error {
	if a == nil || cfg == nil {
		return nil
	}

	var errs []error
	check := func(role, adapter, model string) {
		err := a.ValidateModel(adapter, a.Resolve(model))
		switch {
		case err == nil:
		case a.IsAlias(model):
			errs = append(errs, fmt.Errorf("%s (alias %q): %w", role, model, err))
		default:
			errs = append(errs, fmt.Errorf("%s: %w", role, err))
		}
	}

	check("chat_model", cfg.LLM.Adapter, cfg.LLM.ChatModel)
	check("location_model", cfg.LLM.Adapter, cfg.LLM.LocationModel)

	routerAdapter := cfg.LLM.Adapter
	routerModel := cfg.LLM.RouterModel
	if cfg.RoutingConfig != nil {
		if cfg.RoutingConfig.ClassifierAdapter != "" {
			routerAdapter = cfg.RoutingConfig.ClassifierAdapter
		}
		if cfg.RoutingConfig.ClassifierModel != "" {
			routerModel = cfg.RoutingConfig.ClassifierModel
		}
	}
	check("router_model", routerAdapter, routerModel)
	check("embedding.model", "openai", cfg.Embedding.Model)

	return errs
}

// DefaultAliases returns the default model aliases configuration.
func DefaultAliases() *ModelAliases {
	return &ModelAliases{
		Aliases: map[string]string{
			// OpenAI
			"fast":    "gpt-4o-mini",
			"quality": "gpt-4o",
			"router":  "gpt-4o-mini",
			"embed":   "text-embedding-3-small",
			// Anthropic
			"claude":      "claude-sonnet-4-20250514",
			"claude-fast": "claude-3-5-haiku-latest",
			// Google
			"gemini": "gemini-2.0-flash",
			// DeepSeek
			"cheap": "deepseek-chat",
		},
		Providers: map[string][]string{
			"anthropic": {"claude-sonnet-4-20250514", "claude-3-5-haiku-latest"},
			"openai":    {"gpt-4o-mini", "gpt-4o", "gpt-4.1-mini", "gpt-4.1", "text-embedding-3-small", "text-embedding-3-large"},
			"google":    {"gemini-2.0-flash", "gemini-2.5-flash"},
			"deepseek":  {"deepseek-chat", "deepseek-reasoner"},
			"mock":      {"mock-1"},
		},
	}
}
