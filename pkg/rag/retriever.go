// Package rag answers questions from the ingested PDF: retrieve chunks from
// the vector store, then have a chat model answer with citations.
package rag

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zen-systems/askroute/pkg/vectorstore"
)

var tracer = otel.Tracer("askroute/rag")

// Embedder turns texts into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Searcher runs a nearest-neighbour query.
type Searcher interface {
	Search(ctx context.Context, vector []float64, limit int) ([]vectorstore.Hit, error)
}

// Chunk is a retrieved piece of the document.
type Chunk struct {
	Text     string  `json:"text"`
	Page     int     `json:"page"`
	Source   string  `json:"source,omitempty"`
	ChunkRef string  `json:"chunk_ref"`
	Score    float64 `json:"score"`
}

// Retriever embeds a query and returns the relevant chunks.
type Retriever struct {
	embedder Embedder
	store    Searcher
	topK     int
	minScore float64
	logger   zerolog.Logger
}

// RetrieverOption configures a Retriever.
type RetrieverOption func(*Retriever)

// WithRetrieverLogger sets the retrieval logger.
func WithRetrieverLogger(logger zerolog.Logger) RetrieverOption {
	return func(r *Retriever) {
		r.logger = logger
	}
}

// NewRetriever creates a retriever returning at most topK chunks scoring at
// least minScore.
func NewRetriever(embedder Embedder, store Searcher, topK int, minScore float64, opts ...RetrieverOption) *Retriever {
	if topK <= 0 {
		topK = 4
	}
	r := &Retriever{
		embedder: embedder,
		store:    store,
		topK:     topK,
		minScore: minScore,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns chunks for the query in score order, dropping any below the
// minimum score. An empty result means the document does not cover the query.
func (r *Retriever) Retrieve(ctx context.Context, query string) ([]Chunk, error) {
	ctx, span := tracer.Start(ctx, "rag.retrieve")
	defer span.End()
	span.SetAttributes(attribute.Int("top_k", r.topK))

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: expected 1 vector, got %d", len(vectors))
	}

	hits, err := r.store.Search(ctx, vectors[0], r.topK)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("vector search: %w", err)
	}

	var best float64
	chunks := make([]Chunk, 0, len(hits))
	for i, h := range hits {
		if i == 0 || h.Score > best {
			best = h.Score
		}
		if h.Score < r.minScore {
			continue
		}
		chunks = append(chunks, chunkFromPayload(h))
	}

	span.SetAttributes(
		attribute.Int("hits", len(hits)),
		attribute.Int("kept", len(chunks)),
	)
	r.logger.Debug().
		Int("hits", len(hits)).
		Int("kept", len(chunks)).
		Float64("top_score", best).
		Float64("min_score", r.minScore).
		Msg("retrieval")
	return chunks, nil
}

func chunkFromPayload(h vectorstore.Hit) Chunk {
	c := Chunk{Score: h.Score}
	if v, ok := h.Payload["text"].(string); ok {
		c.Text = v
	}
	if v, ok := h.Payload["source"].(string); ok {
		c.Source = v
	}
	if v, ok := h.Payload["chunk_ref"].(string); ok {
		c.ChunkRef = v
	}
	switch v := h.Payload["page"].(type) {
	case float64:
		c.Page = int(v)
	case int:
		c.Page = v
	}
	return c
}
