package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/zen-systems/askroute/pkg/adapter"
)

const classifierSystemPrompt = "You are a routing classifier.\n" +
	"Return ONLY one token: either 'weather' or 'pdf'.\n" +
	"Choose 'weather' only if the user is asking about real-time weather conditions/forecast for a location.\n" +
	"Choose 'pdf' for everything else (questions answered from the ingested PDF).\n"

// Classifier asks a chat model to pick a route when no keyword matched.
type Classifier struct {
	adapter adapter.Adapter
	model   string
}

// NewClassifier creates a classifier backed by the given adapter and model.
func NewClassifier(a adapter.Adapter, model string) *Classifier {
	return &Classifier{adapter: a, model: model}
}

// Model returns the classifier model name.
func (c *Classifier) Model() string {
	return c.model
}

// Classify sends the raw query to the model. Any reply mentioning "weather"
// routes to weather; everything else, including garbage, routes to pdf.
// Adapter failures are returned as is, with no retry.
func (c *Classifier) Classify(ctx context.Context, query string) (*Decision, error) {
	if c == nil || c.adapter == nil {
		return nil, fmt.Errorf("routing classifier not configured")
	}

	resp, err := c.adapter.Generate(ctx, c.model, adapter.Prompt{
		System: classifierSystemPrompt,
		User:   query,
	})
	if err != nil {
		return nil, fmt.Errorf("routing classifier: %w", err)
	}

	var output string
	if resp != nil {
		output = resp.Content
	}

	return &Decision{
		Route:             parseClassifierResponse(output),
		Reason:            classifierReason(c.model),
		UsedLLM:           true,
		ClassifierAdapter: c.adapter.Name(),
		ClassifierModel:   c.model,
		ClassifierOutput:  strings.TrimSpace(output),
	}, nil
}

func parseClassifierResponse(content string) Route {
	if strings.Contains(strings.ToLower(content), string(RouteWeather)) {
		return RouteWeather
	}
	return RoutePDF
}
