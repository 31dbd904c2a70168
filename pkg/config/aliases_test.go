package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	aliases := &ModelAliases{
		Aliases: map[string]string{
			"fast":   "gpt-4o-mini",
			"claude": "claude-sonnet-4-20250514",
		},
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "resolve known alias", input: "fast", expected: "gpt-4o-mini"},
		{name: "resolve another alias", input: "claude", expected: "claude-sonnet-4-20250514"},
		{name: "unknown alias returns input unchanged", input: "unknown-model", expected: "unknown-model"},
		{name: "canonical model returns unchanged", input: "gpt-4o-mini", expected: "gpt-4o-mini"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := aliases.Resolve(tt.input); result != tt.expected {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestResolve_NilAliases(t *testing.T) {
	var aliases *ModelAliases
	if result := aliases.Resolve("fast"); result != "fast" {
		t.Errorf("Resolve on nil should return input, got %q", result)
	}
}

func TestIsAlias(t *testing.T) {
	aliases := &ModelAliases{Aliases: map[string]string{"fast": "gpt-4o-mini"}}

	if !aliases.IsAlias("fast") {
		t.Error("IsAlias should return true for known alias")
	}
	if aliases.IsAlias("gpt-4o-mini") {
		t.Error("IsAlias should return false for canonical model name")
	}
}

func TestValidateModel(t *testing.T) {
	aliases := &ModelAliases{
		Providers: map[string][]string{
			"openai":    {"gpt-4o-mini", "gpt-4o"},
			"anthropic": {"claude-sonnet-4-20250514"},
		},
	}

	tests := []struct {
		name      string
		adapter   string
		model     string
		wantError bool
	}{
		{name: "valid model for provider", adapter: "openai", model: "gpt-4o-mini"},
		{name: "another valid model", adapter: "anthropic", model: "claude-sonnet-4-20250514"},
		{name: "invalid model for provider", adapter: "openai", model: "claude-sonnet-4-20250514", wantError: true},
		{name: "unknown adapter", adapter: "unknown", model: "some-model", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := aliases.ValidateModel(tt.adapter, tt.model)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateModel(%q, %q) error = %v, wantError %v",
					tt.adapter, tt.model, err, tt.wantError)
			}
		})
	}
}

func TestLoadAliases(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "models.yaml")

	content := `aliases:
  router: gpt-4o-mini

providers:
  openai:
    - gpt-4o-mini
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	aliases, err := LoadAliases(configPath)
	if err != nil {
		t.Fatalf("LoadAliases() error = %v", err)
	}
	if aliases.Resolve("router") != "gpt-4o-mini" {
		t.Error("alias 'router' should resolve to 'gpt-4o-mini'")
	}
	if aliases.GetProviderForModel("gpt-4o-mini") != "openai" {
		t.Error("gpt-4o-mini should be in openai provider")
	}
}

func TestLoadAliasesWithFallback(t *testing.T) {
	setHomeEnv(t, t.TempDir())

	dir := t.TempDir()
	fallbackPath := filepath.Join(dir, "models.yaml")
	if err := os.WriteFile(fallbackPath, []byte("aliases:\n  test-alias: test-model\n"), 0644); err != nil {
		t.Fatal(err)
	}

	aliases, err := LoadAliasesWithFallback(fallbackPath)
	if err != nil {
		t.Fatalf("LoadAliasesWithFallback() error = %v", err)
	}
	if aliases.Resolve("test-alias") != "test-model" {
		t.Error("fallback config should be loaded")
	}
}

func TestLoadAliasesWithFallback_UserFileWins(t *testing.T) {
	home := t.TempDir()
	setHomeEnv(t, home)

	userDir := filepath.Join(home, ".askroute")
	if err := os.MkdirAll(userDir, 0700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(userDir, "models.yaml"), []byte("aliases:\n  a: from-user\n"), 0644); err != nil {
		t.Fatal(err)
	}
	fallbackPath := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(fallbackPath, []byte("aliases:\n  a: from-fallback\n"), 0644); err != nil {
		t.Fatal(err)
	}

	aliases, err := LoadAliasesWithFallback(fallbackPath)
	if err != nil {
		t.Fatalf("LoadAliasesWithFallback() error = %v", err)
	}
	if got := aliases.Resolve("a"); got != "from-user" {
		t.Errorf("Resolve(a) = %q, want from-user", got)
	}
}

func TestLoadAliasesWithFallback_NoFile(t *testing.T) {
	setHomeEnv(t, t.TempDir())

	aliases, err := LoadAliasesWithFallback("/nonexistent/path/models.yaml")
	if err != nil {
		t.Fatalf("LoadAliasesWithFallback() should not error, got %v", err)
	}
	if aliases.Resolve("any") != "any" {
		t.Error("empty aliases should return input unchanged")
	}
}

func TestListAliasesReturnsCopy(t *testing.T) {
	aliases := &ModelAliases{Aliases: map[string]string{"fast": "gpt-4o-mini"}}

	list := aliases.ListAliases()
	list["new"] = "value"
	if aliases.Aliases["new"] == "value" {
		t.Error("ListAliases should return a copy, not the original")
	}
}

func TestValidateConfig(t *testing.T) {
	aliases := DefaultAliases()

	cfg := &Config{
		LLM: LLMConfig{
			Adapter:       "openai",
			ChatModel:     "fast",
			RouterModel:   "router",
			LocationModel: "gpt-4o",
		},
		Embedding:     EmbeddingConfig{Model: "embed"},
		RoutingConfig: DefaultRoutingConfig(),
	}
	if errs := aliases.ValidateConfig(cfg); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	cfg.LLM.LocationModel = "nonexistent-model"
	cfg.RoutingConfig.ClassifierAdapter = "anthropic"
	cfg.RoutingConfig.ClassifierModel = "claude"
	errs := aliases.ValidateConfig(cfg)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
}

func TestValidateConfigNamesAlias(t *testing.T) {
	aliases := DefaultAliases()
	cfg := &Config{
		LLM: LLMConfig{
			Adapter:       "anthropic",
			ChatModel:     "claude",
			RouterModel:   "fast",
			LocationModel: "claude-fast",
		},
		Embedding:     EmbeddingConfig{Model: "embed"},
		RoutingConfig: DefaultRoutingConfig(),
	}

	errs := aliases.ValidateConfig(cfg)
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(errs), errs)
	}
	msg := errs[0].Error()
	if !strings.Contains(msg, "router_model") || !strings.Contains(msg, `alias "fast"`) || !strings.Contains(msg, "gpt-4o-mini") {
		t.Fatalf("error should name the role, alias and model: %s", msg)
	}
}

func TestLoadAliasesErrors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := LoadAliases(missing); !errors.Is(err, fs.ErrNotExist) || !strings.Contains(err.Error(), missing) {
		t.Fatalf("missing file error = %v", err)
	}

	bad := filepath.Join(t.TempDir(), "models.yaml")
	if err := os.WriteFile(bad, []byte("aliases: [oops"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadAliases(bad); err == nil || !strings.Contains(err.Error(), "parse model aliases") {
		t.Fatalf("bad yaml error = %v", err)
	}
}

func TestDefaultAliases(t *testing.T) {
	aliases := DefaultAliases()
	if len(aliases.Aliases) == 0 || len(aliases.Providers) == 0 {
		t.Fatal("DefaultAliases should have aliases and providers")
	}
	if aliases.Resolve("fast") != "gpt-4o-mini" {
		t.Error("'fast' alias should resolve to 'gpt-4o-mini'")
	}
}
