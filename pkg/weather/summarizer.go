package weather

import (
	"context"
	"fmt"
	"strings"

	"github.com/zen-systems/askroute/pkg/adapter"
)

const summarizerSystemPrompt = "You are a helpful assistant that summarizes weather information " +
	"clearly and concisely for users."

// LLMSummarizer turns a raw weather report into a short answer.
type LLMSummarizer struct {
	adapter adapter.Adapter
	model   string
}

// NewLLMSummarizer creates a summarizer backed by the given adapter and model.
func NewLLMSummarizer(a adapter.Adapter, model string) *LLMSummarizer {
	return &LLMSummarizer{adapter: a, model: model}
}

// Summarize asks the model for a friendly summary of the report. A blank
// reply comes back as "".
func (s *LLMSummarizer) Summarize(ctx context.Context, location, report string) (string, error) {
	resp, err := s.adapter.Generate(ctx, s.model, adapter.Prompt{
		System: summarizerSystemPrompt,
		User: fmt.Sprintf("Location: %s\nWeather data:\n%s\n\nProvide a clear and friendly weather summary.",
			location, report),
	})
	if err != nil {
		return "", fmt.Errorf("weather summary: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("weather summary: empty response")
	}
	return strings.TrimSpace(resp.Content), nil
}
