package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration. It is built once at startup and
// handed to component constructors; nothing reads the environment after Load.
type Config struct {
	AnthropicAPIKey   string `yaml:"-"`
	OpenAIAPIKey      string `yaml:"-"`
	GoogleAPIKey      string `yaml:"-"`
	DeepSeekAPIKey    string `yaml:"-"`
	OpenWeatherAPIKey string `yaml:"-"`
	QdrantAPIKey      string `yaml:"-"`

	LLM       LLMConfig       `yaml:"llm"`
	Weather   WeatherConfig   `yaml:"weather"`
	RAG       RAGConfig       `yaml:"rag"`
	Qdrant    QdrantConfig    `yaml:"qdrant"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Location  LocationConfig  `yaml:"location"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`

	RoutingConfig *RoutingConfig `yaml:"routing"`
	ConfigDir     string         `yaml:"-"`
}

// LLMConfig selects the chat adapter and the model used by each caller.
// RouterModel and LocationModel fall back to ChatModel when unset.
type LLMConfig struct {
	Adapter       string `yaml:"adapter"`
	ChatModel     string `yaml:"chat_model"`
	RouterModel   string `yaml:"router_model"`
	LocationModel string `yaml:"location_model"`
}

// WeatherConfig configures the OpenWeatherMap client.
type WeatherConfig struct {
	BaseURL     string `yaml:"base_url"`
	Units       string `yaml:"units"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RAGConfig configures retrieval over the ingested document.
type RAGConfig struct {
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"`
}

// QdrantConfig configures the vector store.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	Collection  string `yaml:"collection"`
	VectorName  string `yaml:"vector_name"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// EmbeddingConfig configures the embedding model.
type EmbeddingConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// IngestConfig configures PDF ingestion.
type IngestConfig struct {
	PDFPath      string `yaml:"pdf_path"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	BatchSize    int    `yaml:"batch_size"`
}

// TelemetryConfig configures OpenTelemetry tracing.
type TelemetryConfig struct {
	Enabled      bool   `yaml:"enabled"`
	OTLPEndpoint string `yaml:"otlp_endpoint"`
	ServiceName  string `yaml:"service_name"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads ~/.askroute/config.yaml (if present), then applies environment
// overrides and defaults.
func Load() (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return load(configDir, filepath.Join(configDir, "config.yaml"), false)
}

// LoadFile loads configuration from an explicit file. Unlike Load, a missing
// file is an error.
func LoadFile(path string) (*Config, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return load(configDir, path, true)
}

func load(configDir, path string, required bool) (*Config, error) {
	cfg := &Config{ConfigDir: configDir}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case required || !os.IsNotExist(err):
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	// A routing.yaml next to config.yaml replaces the inline routing section.
	routingPath := filepath.Join(configDir, "routing.yaml")
	if _, err := os.Stat(routingPath); err == nil {
		routing, err := LoadRoutingConfig(routingPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load routing config: %w", err)
		}
		cfg.RoutingConfig = routing
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables. API keys come only from the
// environment.
func applyEnv(cfg *Config) {
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.GoogleAPIKey = os.Getenv("GOOGLE_API_KEY")
	cfg.DeepSeekAPIKey = os.Getenv("DEEPSEEK_API_KEY")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.QdrantAPIKey = os.Getenv("QDRANT_API_KEY")

	cfg.LLM.Adapter = getEnvOrDefault("ASKROUTE_LLM_ADAPTER", cfg.LLM.Adapter)
	cfg.LLM.ChatModel = getEnvOrDefault("OPENAI_CHAT_MODEL", cfg.LLM.ChatModel)
	cfg.LLM.RouterModel = getEnvOrDefault("OPENAI_ROUTER_MODEL", cfg.LLM.RouterModel)
	cfg.LLM.LocationModel = getEnvOrDefault("OPENAI_LOCATION_MODEL", cfg.LLM.LocationModel)

	cfg.RAG.TopK = getEnvInt("RAG_TOP_K", cfg.RAG.TopK)
	cfg.RAG.MinScore = getEnvFloat("QDRANT_MIN_SCORE", cfg.RAG.MinScore)

	cfg.Qdrant.URL = getEnvOrDefault("QDRANT_URL", cfg.Qdrant.URL)
	cfg.Qdrant.Collection = getEnvOrDefault("QDRANT_COLLECTION", cfg.Qdrant.Collection)
	cfg.Qdrant.VectorName = getEnvOrDefault("QDRANT_VECTOR_NAME", cfg.Qdrant.VectorName)
	cfg.Qdrant.TimeoutSecs = getEnvInt("QDRANT_TIMEOUT_SECONDS", cfg.Qdrant.TimeoutSecs)

	cfg.Embedding.Model = getEnvOrDefault("OPENAI_EMBEDDING_MODEL", cfg.Embedding.Model)

	cfg.Ingest.PDFPath = getEnvOrDefault("PDF_PATH", cfg.Ingest.PDFPath)
	cfg.Ingest.BatchSize = getEnvInt("QDRANT_UPSERT_BATCH_SIZE", cfg.Ingest.BatchSize)

	cfg.Telemetry.Enabled = getEnvBool("OTEL_ENABLED", cfg.Telemetry.Enabled)
	cfg.Telemetry.OTLPEndpoint = getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Telemetry.OTLPEndpoint)

	cfg.Server.Addr = getEnvOrDefault("ASKROUTE_ADDR", cfg.Server.Addr)
	cfg.Log.Level = getEnvOrDefault("ASKROUTE_LOG_LEVEL", cfg.Log.Level)
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.Adapter == "" {
		cfg.LLM.Adapter = "openai"
	}
	if cfg.LLM.ChatModel == "" {
		cfg.LLM.ChatModel = "gpt-4o-mini"
	}
	if cfg.LLM.RouterModel == "" {
		cfg.LLM.RouterModel = cfg.LLM.ChatModel
	}
	if cfg.LLM.LocationModel == "" {
		cfg.LLM.LocationModel = cfg.LLM.ChatModel
	}

	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = "https://api.openweathermap.org/data/2.5"
	}
	if cfg.Weather.Units == "" {
		cfg.Weather.Units = "metric"
	}
	if cfg.Weather.TimeoutSecs == 0 {
		cfg.Weather.TimeoutSecs = 15
	}

	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 4
	}
	if cfg.RAG.MinScore == 0 {
		cfg.RAG.MinScore = 0.25
	}

	if cfg.Qdrant.URL == "" {
		cfg.Qdrant.URL = "http://localhost:6333"
	}
	cfg.Qdrant.URL = strings.TrimRight(cfg.Qdrant.URL, "/")
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = "documents"
	}
	if cfg.Qdrant.VectorName == "" {
		cfg.Qdrant.VectorName = "text"
	}
	if cfg.Qdrant.TimeoutSecs == 0 {
		cfg.Qdrant.TimeoutSecs = 120
	}

	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "text-embedding-3-small"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1536
	}

	if cfg.Ingest.ChunkSize == 0 {
		cfg.Ingest.ChunkSize = 800
	}
	if cfg.Ingest.ChunkOverlap == 0 {
		cfg.Ingest.ChunkOverlap = 100
	}
	if cfg.Ingest.BatchSize == 0 {
		cfg.Ingest.BatchSize = 16
	}

	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "askroute"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.RoutingConfig == nil {
		cfg.RoutingConfig = DefaultRoutingConfig()
	} else {
		applyRoutingDefaults(cfg.RoutingConfig)
	}
	applyLocationDefaults(&cfg.Location)
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	if c.RAG.TopK < 1 {
		return fmt.Errorf("rag.top_k must be at least 1, got %d", c.RAG.TopK)
	}
	if c.RAG.MinScore < 0 || c.RAG.MinScore > 1 {
		return fmt.Errorf("rag.min_score must be within [0, 1], got %g", c.RAG.MinScore)
	}
	if c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap (%d) must be smaller than ingest.chunk_size (%d)",
			c.Ingest.ChunkOverlap, c.Ingest.ChunkSize)
	}
	if c.Ingest.BatchSize < 1 {
		return fmt.Errorf("ingest.batch_size must be at least 1, got %d", c.Ingest.BatchSize)
	}
	return nil
}

// HasAdapter returns true if the API key for the given adapter is configured.
func (c *Config) HasAdapter(name string) bool {
	switch name {
	case "anthropic":
		return c.AnthropicAPIKey != ""
	case "openai":
		return c.OpenAIAPIKey != ""
	case "google":
		return c.GoogleAPIKey != ""
	case "deepseek":
		return c.DeepSeekAPIKey != ""
	case "mock":
		return true
	default:
		return false
	}
}

// getEnvOrDefault returns the environment variable value if set,
// otherwise returns the default value.
func getEnvOrDefault(envVar, defaultValue string) string {
	if val := os.Getenv(envVar); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(envVar string, defaultValue int) int {
	if val := os.Getenv(envVar); val != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(envVar string, defaultValue float64) float64 {
	if val := os.Getenv(envVar); val != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(envVar string, defaultValue bool) bool {
	if val := os.Getenv(envVar); val != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	configDir := filepath.Join(home, ".askroute")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", err
	}
	return configDir, nil
}
