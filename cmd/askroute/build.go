package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/zen-systems/askroute/pkg/adapter"
	"github.com/zen-systems/askroute/pkg/config"
	"github.com/zen-systems/askroute/pkg/embedding"
	"github.com/zen-systems/askroute/pkg/ingest"
	"github.com/zen-systems/askroute/pkg/location"
	"github.com/zen-systems/askroute/pkg/pipeline"
	"github.com/zen-systems/askroute/pkg/rag"
	"github.com/zen-systems/askroute/pkg/router"
	"github.com/zen-systems/askroute/pkg/vectorstore"
	"github.com/zen-systems/askroute/pkg/weather"
)

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	level := cfg.Log.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	logger = newLogger(level)

	aliases, err = config.LoadAliasesWithFallback("configs/models.yaml")
	if err != nil || len(aliases.ListAliases()) == 0 {
		if err != nil {
			logger.Warn().Err(err).Msg("model aliases unreadable, using defaults")
		}
		aliases = config.DefaultAliases()
	}

	return cfg, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.WarnLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(lvl).
		With().Timestamp().Logger()
}

func createAdapters(cfg *config.Config) (map[string]adapter.Adapter, error) {
	adapters := make(map[string]adapter.Adapter)

	if cfg.AnthropicAPIKey != "" {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		adapters["anthropic"] = a
	}

	if cfg.OpenAIAPIKey != "" {
		a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai adapter: %w", err)
		}
		adapters["openai"] = a
	}

	if cfg.GoogleAPIKey != "" {
		a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google adapter: %w", err)
		}
		adapters["google"] = a
	}

	if cfg.DeepSeekAPIKey != "" {
		a, err := adapter.NewDeepSeekAdapter(cfg.DeepSeekAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek adapter: %w", err)
		}
		adapters["deepseek"] = a
	}

	adapters["mock"] = adapter.NewMockAdapter()

	return adapters, nil
}

func pickAdapter(adapters map[string]adapter.Adapter, name string) (adapter.Adapter, error) {
	a, ok := adapters[name]
	if !ok {
		return nil, fmt.Errorf("adapter %q not available (missing API key?)", name)
	}
	return a, nil
}

func component(name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

func buildRouter(cfg *config.Config, adapters map[string]adapter.Adapter) (*router.HybridRouter, error) {
	name := cfg.LLM.Adapter
	model := cfg.LLM.RouterModel
	if cfg.RoutingConfig.ClassifierAdapter != "" {
		name = cfg.RoutingConfig.ClassifierAdapter
	}
	if cfg.RoutingConfig.ClassifierModel != "" {
		model = cfg.RoutingConfig.ClassifierModel
	}

	a, err := pickAdapter(adapters, name)
	if err != nil {
		return nil, fmt.Errorf("router: %w", err)
	}
	classifier := router.NewClassifier(a, aliases.Resolve(model))
	routerLog := component("router")
	routerLog.Debug().
		Str("adapter", a.Name()).
		Str("model", classifier.Model()).
		Msg("routing classifier ready")
	return router.NewRouter(cfg.RoutingConfig, classifier, router.WithLogger(component("router"))), nil
}

func buildQdrant(cfg *config.Config) (*vectorstore.Qdrant, error) {
	return vectorstore.NewQdrant(vectorstore.Config{
		URL:        cfg.Qdrant.URL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.Qdrant.Collection,
		VectorName: cfg.Qdrant.VectorName,
		Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
	})
}

func buildEmbedder(cfg *config.Config) (*embedding.OpenAIEmbedder, error) {
	e, err := embedding.NewOpenAIEmbedder(cfg.OpenAIAPIKey, aliases.Resolve(cfg.Embedding.Model))
	if err != nil {
		return nil, fmt.Errorf("embeddings: %w", err)
	}
	embedLog := component("embedding")
	embedLog.Debug().Str("model", e.Model()).Msg("embedder ready")
	return e, nil
}

// buildAgent wires the router and both handlers from config.
func buildAgent(cfg *config.Config) (*pipeline.Agent, error) {
	adapters, err := createAdapters(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create adapters: %w", err)
	}

	r, err := buildRouter(cfg, adapters)
	if err != nil {
		return nil, err
	}

	llm, err := pickAdapter(adapters, cfg.LLM.Adapter)
	if err != nil {
		return nil, err
	}
	chatModel := aliases.Resolve(cfg.LLM.ChatModel)

	provider, err := weather.NewOpenWeatherMap(cfg.OpenWeatherAPIKey,
		weather.WithBaseURL(cfg.Weather.BaseURL),
		weather.WithUnits(cfg.Weather.Units),
		weather.WithTimeout(time.Duration(cfg.Weather.TimeoutSecs)*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("weather provider: %w", err)
	}
	assembler := weather.NewAssembler(
		location.NewResolver(cfg.Location),
		location.NewLLMExtractor(llm, aliases.Resolve(cfg.LLM.LocationModel)),
		provider,
		weather.NewLLMSummarizer(llm, chatModel),
		weather.WithLogger(component("weather")),
	)

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildQdrant(cfg)
	if err != nil {
		return nil, err
	}
	retriever := rag.NewRetriever(embedder, store, cfg.RAG.TopK, cfg.RAG.MinScore,
		rag.WithRetrieverLogger(component("retriever")))
	answers := rag.NewService(retriever, llm, chatModel, rag.WithLogger(component("rag")))

	return pipeline.NewAgent(r, assembler, answers, pipeline.WithLogger(component("agent"))), nil
}

func buildIngester(cfg *config.Config) (*ingest.Ingester, *vectorstore.Qdrant, error) {
	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := buildQdrant(cfg)
	if err != nil {
		return nil, nil, err
	}
	ing := ingest.NewIngester(embedder, store, cfg.Ingest,
		ingest.WithDimension(cfg.Embedding.Dimensions),
		ingest.WithLogger(component("ingest")),
	)
	return ing, store, nil
}
