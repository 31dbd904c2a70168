package adapter

import "context"

// Adapter defines the interface for LLM provider adapters.
type Adapter interface {
	// Generate sends a prompt to the model and returns its reply.
	// Implementations run at temperature 0.
	Generate(ctx context.Context, model string, prompt Prompt) (*Response, error)

	// Name returns the adapter's identifier.
	Name() string

	// Models returns the list of supported models.
	Models() []string
}

// Prompt is a single-turn chat prompt.
type Prompt struct {
	System string
	User   string
}
