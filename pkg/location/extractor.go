package location

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/zen-systems/askroute/pkg/adapter"
)

const extractorSystemPrompt = "Extract the location from the user's weather question.\n" +
	"Return ONLY valid JSON with this schema:\n" +
	"{ \"location\": string | null }\n" +
	"If no location is present, return {\"location\": null}.\n" +
	"The location should be a city/region string suitable for OpenWeatherMap.\n" +
	"Do not include time words like today/now/tonight.\n"

// LLMExtractor asks a chat model for the location in a query.
type LLMExtractor struct {
	adapter adapter.Adapter
	model   string
}

// NewLLMExtractor creates an extractor backed by the given adapter and model.
func NewLLMExtractor(a adapter.Adapter, model string) *LLMExtractor {
	return &LLMExtractor{adapter: a, model: model}
}

// Extract returns the location named in the query, or "" when the model says
// there is none or replies with anything that is not the expected JSON.
// Adapter failures are returned.
func (e *LLMExtractor) Extract(ctx context.Context, query string) (string, error) {
	resp, err := e.adapter.Generate(ctx, e.model, adapter.Prompt{
		System: extractorSystemPrompt,
		User:   query,
	})
	if err != nil {
		return "", fmt.Errorf("location extraction: %w", err)
	}
	if resp == nil {
		return "", nil
	}
	return parseExtraction(resp.Content), nil
}

func parseExtraction(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var out struct {
		Location any `json:"location"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return ""
	}
	loc, ok := out.Location.(string)
	if !ok {
		return ""
	}
	return strings.TrimRight(strings.TrimSpace(loc), trailingPunct)
}
