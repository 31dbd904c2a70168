package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIAdapter implements the Adapter interface for OpenAI models.
type OpenAIAdapter struct {
	client openai.Client
}

// NewOpenAIAdapter creates a new OpenAI adapter. Extra request options are
// passed to the client.
func NewOpenAIAdapter(apiKey string, opts ...option.RequestOption) (*OpenAIAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	client := openai.NewClient(opts...)
	return &OpenAIAdapter{client: client}, nil
}

// Name returns the adapter identifier.
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// Models returns the list of supported OpenAI models.
func (a *OpenAIAdapter) Models() []string {
	return []string{
		"gpt-4o-mini",
		"gpt-4o",
		"gpt-4.1-mini",
		"gpt-4.1",
	}
}

// Generate sends a prompt to OpenAI and returns the reply.
func (a *OpenAIAdapter) Generate(ctx context.Context, model string, prompt Prompt) (*Response, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if prompt.System != "" {
		messages = append(messages, openai.SystemMessage(prompt.System))
	}
	messages = append(messages, openai.UserMessage(prompt.User))

	resp, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(model),
		Messages:            messages,
		MaxCompletionTokens: openai.Int(4096),
		Temperature:         openai.Float(0),
	})
	if err != nil {
		return nil, openaiError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	return &Response{
		Content: resp.Choices[0].Message.Content,
		Adapter: a.Name(),
		Model:   model,
		Usage: &Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// openaiError keeps the HTTP status of API failures so IsTransient can see
// throttling and upstream outages.
func openaiError(err error) error {
	wrapped := fmt.Errorf("openai API error: %w", err)
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &AdapterError{Status: apiErr.StatusCode, Err: wrapped}
	}
	return wrapped
}
