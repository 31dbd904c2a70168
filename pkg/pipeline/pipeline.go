// Package pipeline runs a single question end to end: route it, then hand it
// to exactly one answer handler.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zen-systems/askroute/pkg/rag"
	"github.com/zen-systems/askroute/pkg/router"
	"github.com/zen-systems/askroute/pkg/weather"
)

var tracer = otel.Tracer("askroute/pipeline")

// Router picks the handler for a query.
type Router interface {
	Route(ctx context.Context, query string) (*router.Decision, error)
}

// WeatherHandler answers weather questions.
type WeatherHandler interface {
	Answer(ctx context.Context, query string) (*weather.Result, error)
}

// PDFHandler answers questions about the ingested document.
type PDFHandler interface {
	Answer(ctx context.Context, query string) (*rag.Result, error)
}

// Agent is the entry point callers use to ask a question.
type Agent struct {
	router  Router
	weather WeatherHandler
	pdf     PDFHandler
	logger  zerolog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithLogger sets the agent logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// NewAgent wires a router to its two handlers.
func NewAgent(r Router, w WeatherHandler, p PDFHandler, opts ...Option) *Agent {
	a := &Agent{router: r, weather: w, pdf: p, logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run answers one query. Errors are turn-level failures from the router or
// the chosen handler; no partial response is returned with them.
func (a *Agent) Run(ctx context.Context, query string) (*Response, error) {
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()
	start := time.Now()

	decision, err := a.router.Route(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("route query: %w", err)
	}
	span.SetAttributes(
		attribute.String("route", string(decision.Route)),
		attribute.String("route_reason", decision.Reason),
	)

	resp := &Response{
		Query:       query,
		Route:       decision.Route,
		RouteReason: decision.Reason,
		Decision:    decision,
	}

	switch decision.Route {
	case router.RouteWeather:
		res, err := a.weather.Answer(ctx, query)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("weather handler: %w", err)
		}
		resp.Weather = res
		resp.Answer = res.Answer
		if res.RouteReason != "" {
			resp.RouteReason = res.RouteReason
		}
	default:
		res, err := a.pdf.Answer(ctx, query)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("pdf handler: %w", err)
		}
		resp.PDF = res
		resp.Answer = res.Answer
	}

	a.logger.Info().
		Str("route", string(resp.Route)).
		Str("route_reason", resp.RouteReason).
		Dur("elapsed", time.Since(start)).
		Msg("query answered")
	return resp, nil
}
