package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zen-systems/askroute/pkg/adapter"
	"github.com/zen-systems/askroute/pkg/router"
)

const (
	notCoveredAnswer = "I couldn't find relevant information for that question in the ingested PDF. " +
		"Try asking something covered by the document."

	answerSystemPrompt = "You are a helpful assistant.\n" +
		"Answer ONLY using the provided context.\n" +
		"If the answer is not in the context, say you don't know.\n" +
		"You MUST include citations in the final answer using (page, chunk_ref) from the context items.\n"
)

// ChunkRetriever finds document chunks relevant to a query.
type ChunkRetriever interface {
	Retrieve(ctx context.Context, query string) ([]Chunk, error)
}

// Citation points at a chunk an answer was grounded on.
type Citation struct {
	Page     int    `json:"page"`
	ChunkRef string `json:"chunk_ref"`
}

// Result is the pdf handler's answer.
type Result struct {
	Query     string     `json:"query"`
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// Fields returns the result as response fields.
func (r *Result) Fields() map[string]any {
	citations := r.Citations
	if citations == nil {
		citations = []Citation{}
	}
	return map[string]any{
		"route":     router.RoutePDF,
		"query":     r.Query,
		"answer":    r.Answer,
		"citations": citations,
	}
}

// Service answers questions from retrieved chunks.
type Service struct {
	retriever ChunkRetriever
	adapter   adapter.Adapter
	model     string
	logger    zerolog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates an answer service.
func NewService(retriever ChunkRetriever, a adapter.Adapter, model string, opts ...ServiceOption) *Service {
	s := &Service{
		retriever: retriever,
		adapter:   a,
		model:     model,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer retrieves context for the query and asks the chat model for a cited
// answer. With nothing retrieved it says so without calling the model.
func (s *Service) Answer(ctx context.Context, query string) (*Result, error) {
	ctx, span := tracer.Start(ctx, "rag.answer")
	defer span.End()
	span.SetAttributes(attribute.String("model", s.model))

	chunks, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if len(chunks) == 0 {
		s.logger.Info().Msg("no chunks retrieved")
		return &Result{Query: query, Answer: notCoveredAnswer, Citations: []Citation{}}, nil
	}

	resp, err := s.adapter.Generate(ctx, s.model, adapter.Prompt{
		System: answerSystemPrompt,
		User: fmt.Sprintf("Question:\n%s\n\nContext:\n%s\n\n"+
			"Write the answer and include citations like: (page=7, chunk_ref=...).",
			query, formatContext(chunks)),
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("rag answer: %w", err)
	}

	var answer string
	if resp != nil {
		answer = resp.Content
	}
	citations := citationsFor(chunks)
	span.SetAttributes(attribute.Int("citations", len(citations)))
	return &Result{Query: query, Answer: answer, Citations: citations}, nil
}

// formatContext numbers the chunks so the model can cite them.
func formatContext(chunks []Chunk) string {
	blocks := make([]string, len(chunks))
	for i, c := range chunks {
		blocks[i] = fmt.Sprintf("[%d] page=%d chunk_ref=%s\n%s", i+1, c.Page, c.ChunkRef, strings.TrimSpace(c.Text))
	}
	return strings.Join(blocks, "\n\n")
}

// citationsFor collapses chunks sharing (page, chunk_ref), keeping first-seen
// order.
func citationsFor(chunks []Chunk) []Citation {
	seen := make(map[Citation]bool, len(chunks))
	out := make([]Citation, 0, len(chunks))
	for _, c := range chunks {
		key := Citation{Page: c.Page, ChunkRef: c.ChunkRef}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, key)
	}
	return out
}
