package router

import (
	"context"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zen-systems/askroute/pkg/config"
)

var tracer = otel.Tracer("askroute/router")

// HybridRouter decides between the weather and pdf handlers: keyword rules
// first, then the LLM classifier when the rules abstain.
type HybridRouter struct {
	rules      *RuleSet
	classifier *Classifier
	logger     zerolog.Logger
}

// RouterOption configures a HybridRouter.
type RouterOption func(*HybridRouter)

// WithLogger sets the logger for routing decisions.
func WithLogger(logger zerolog.Logger) RouterOption {
	return func(r *HybridRouter) {
		r.logger = logger
	}
}

// NewRouter creates a router from routing config and a fallback classifier.
func NewRouter(cfg *config.RoutingConfig, classifier *Classifier, opts ...RouterOption) *HybridRouter {
	r := &HybridRouter{
		rules:      NewRuleSet(cfg),
		classifier: classifier,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route returns the routing decision for a query. It fails only when the
// classifier call itself fails.
func (r *HybridRouter) Route(ctx context.Context, query string) (*Decision, error) {
	ctx, span := tracer.Start(ctx, "router.route")
	defer span.End()

	if kw, ok := r.rules.Match(query); ok {
		decision := &Decision{Route: RouteWeather, Reason: ReasonRuleMatch, Keyword: kw}
		span.SetAttributes(
			attribute.String("route", string(decision.Route)),
			attribute.String("stage", "rules"),
		)
		r.logger.Debug().
			Str("route", string(decision.Route)).
			Str("keyword", kw).
			Msg("rule stage matched")
		return decision, nil
	}

	decision, err := r.classifier.Classify(ctx, query)
	if err != nil {
		span.RecordError(err)
		r.logger.Error().Err(err).Msg("routing classifier failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("route", string(decision.Route)),
		attribute.String("stage", "classifier"),
		attribute.String("model", decision.ClassifierModel),
	)
	r.logger.Debug().
		Str("route", string(decision.Route)).
		Str("model", decision.ClassifierModel).
		Str("output", decision.ClassifierOutput).
		Msg("classifier decided")
	return decision, nil
}

// Rules returns the rule stage, for inspection.
func (r *HybridRouter) Rules() *RuleSet {
	return r.rules
}
