package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicAdapter implements the Adapter interface for Claude models.
type AnthropicAdapter struct {
	client anthropic.Client
}

// NewAnthropicAdapter creates a new Anthropic adapter. Extra request options
// are passed to the client.
func NewAnthropicAdapter(apiKey string, opts ...option.RequestOption) (*AnthropicAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := anthropic.NewClient(opts...)
	return &AnthropicAdapter{client: client}, nil
}

// Name returns the adapter identifier.
func (a *AnthropicAdapter) Name() string {
	return "anthropic"
}

// Models returns the list of supported Claude models.
func (a *AnthropicAdapter) Models() []string {
	return []string{
		"claude-sonnet-4-20250514",
		"claude-3-5-haiku-latest",
	}
}

// Generate sends a prompt to Claude and returns the reply.
func (a *AnthropicAdapter) Generate(ctx context.Context, model string, prompt Prompt) (*Response, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt.User)),
		},
		Temperature: anthropic.Float(0),
	}
	if prompt.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: prompt.System}}
	}

	resp, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return nil, anthropicError(err)
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == "text" {
			content += block.Text
		}
	}

	prompted := int(resp.Usage.InputTokens)
	completed := int(resp.Usage.OutputTokens)
	return &Response{
		Content: content,
		Adapter: a.Name(),
		Model:   model,
		Usage: &Usage{
			PromptTokens:     prompted,
			CompletionTokens: completed,
			TotalTokens:      prompted + completed,
		},
	}, nil
}

func anthropicError(err error) error {
	wrapped := fmt.Errorf("anthropic API error: %w", err)
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return &AdapterError{Status: apiErr.StatusCode, Err: wrapped}
	}
	return wrapped
}
