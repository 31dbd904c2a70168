package weather

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zen-systems/askroute/pkg/router"
)

var tracer = otel.Tracer("askroute/weather")

// ReasonLocationFallback tags answers found through LLM location extraction
// after every rule candidate came back not-found.
const ReasonLocationFallback = "llm_location_fallback"

const (
	clarificationAnswer = "Please provide a location, e.g. 'What's the weather in Mumbai?'"
	notFoundAnswer      = "I couldn't find that location (%q) in OpenWeatherMap. " +
		"Try a city name like 'Amritsar' or 'Amritsar, IN'."
	reportAnswer = "Current weather in %s:\n%s"
)

// CandidateSource produces ordered location candidates from a query.
type CandidateSource interface {
	ExtractCandidates(query string) []string
}

// LocationExtractor names the location in a query, or returns "".
type LocationExtractor interface {
	Extract(ctx context.Context, query string) (string, error)
}

// Summarizer turns a raw report into the user-facing answer.
type Summarizer interface {
	Summarize(ctx context.Context, location, report string) (string, error)
}

// Result is the weather handler's answer.
type Result struct {
	Query       string  `json:"query"`
	Location    *string `json:"location"`
	Answer      string  `json:"answer"`
	RawWeather  *string `json:"raw_weather"`
	Error       string  `json:"error,omitempty"`
	RouteReason string  `json:"route_reason,omitempty"`
}

// Fields returns the result as response fields.
func (r *Result) Fields() map[string]any {
	fields := map[string]any{
		"route":       router.RouteWeather,
		"query":       r.Query,
		"location":    r.Location,
		"answer":      r.Answer,
		"raw_weather": r.RawWeather,
	}
	if r.Error != "" {
		fields["error"] = r.Error
	}
	if r.RouteReason != "" {
		fields["route_reason"] = r.RouteReason
	}
	return fields
}

// Assembler runs the location cascade against a provider and summarizes the
// first report found.
type Assembler struct {
	candidates CandidateSource
	extractor  LocationExtractor
	provider   Provider
	summarizer Summarizer
	logger     zerolog.Logger
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithLogger sets the logger for candidate trials.
func WithLogger(logger zerolog.Logger) AssemblerOption {
	return func(a *Assembler) {
		a.logger = logger
	}
}

// NewAssembler wires the cascade collaborators.
func NewAssembler(candidates CandidateSource, extractor LocationExtractor, provider Provider, summarizer Summarizer, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		candidates: candidates,
		extractor:  extractor,
		provider:   provider,
		summarizer: summarizer,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Answer resolves the query to a weather answer. Unknown locations and
// missing locations produce a Result, never an error; an error means a
// provider or model call failed outright.
func (a *Assembler) Answer(ctx context.Context, query string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "weather.answer")
	defer span.End()

	candidates := a.candidates.ExtractCandidates(query)
	if len(candidates) == 0 {
		loc, err := a.extractor.Extract(ctx, query)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if loc == "" {
			a.logger.Debug().Msg("no location in query")
			return &Result{Query: query, Answer: clarificationAnswer}, nil
		}
		candidates = []string{loc}
	}
	span.SetAttributes(attribute.StringSlice("candidates", candidates))

	tried := make(map[string]bool, len(candidates))
	var lastNotFound error
	for _, loc := range candidates {
		tried[locationKey(loc)] = true
		res, lookup, err := a.attempt(ctx, query, loc)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if res != nil {
			return res, nil
		}
		lastNotFound = lookup.Err
	}

	// Every candidate was unknown to the provider; give the model one shot at
	// naming the place.
	loc, err := a.extractor.Extract(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if loc != "" && !tried[locationKey(loc)] {
		res, lookup, err := a.attempt(ctx, query, loc)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		if res != nil {
			res.RouteReason = ReasonLocationFallback
			return res, nil
		}
		lastNotFound = lookup.Err
	}

	errMsg := ErrNotFound.Error()
	if lastNotFound != nil {
		errMsg = lastNotFound.Error()
	}
	first := candidates[0]
	a.logger.Info().
		Strs("candidates", candidates).
		Str("error", errMsg).
		Msg("no candidate resolved")
	return &Result{
		Query:    query,
		Location: &first,
		Answer:   fmt.Sprintf(notFoundAnswer, first),
		Error:    errMsg,
	}, nil
}

// attempt tries one location. A nil result with a nil error means the
// provider did not know the place; the lookup carries the reason.
func (a *Assembler) attempt(ctx context.Context, query, location string) (*Result, Lookup, error) {
	lookup := a.provider.Lookup(ctx, location)
	a.logger.Debug().
		Str("candidate", location).
		Str("outcome", lookup.Status.String()).
		Msg("weather lookup")

	switch lookup.Status {
	case StatusOK:
		answer, err := a.summarizer.Summarize(ctx, location, lookup.Report)
		if err != nil {
			return nil, lookup, err
		}
		if strings.TrimSpace(answer) == "" {
			a.logger.Warn().Str("candidate", location).Msg("empty weather summary, answering with the report")
			answer = fmt.Sprintf(reportAnswer, location, lookup.Report)
		}
		loc, report := location, lookup.Report
		return &Result{Query: query, Location: &loc, Answer: answer, RawWeather: &report}, lookup, nil
	case StatusNotFound:
		return nil, lookup, nil
	default:
		err := lookup.Err
		if err == nil {
			err = fmt.Errorf("weather lookup for %q failed", location)
		}
		return nil, lookup, err
	}
}

// locationKey folds case and surrounding space so "Darjeeling" and
// "darjeeling" count as the same place.
func locationKey(loc string) string {
	return strings.ToLower(strings.TrimSpace(loc))
}
