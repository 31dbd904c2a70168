// Package ingest loads a PDF, chunks it, embeds the chunks and stores them in
// the vector collection the pdf route searches.
package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/zen-systems/askroute/pkg/config"
	"github.com/zen-systems/askroute/pkg/vectorstore"
)

// Embedder turns texts into vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// Store is the vector collection chunks are written to.
type Store interface {
	EnsureCollection(ctx context.Context, dimension int) (bool, error)
	Upsert(ctx context.Context, points []vectorstore.Point) error
}

// Chunk is a piece of a page ready for embedding.
type Chunk struct {
	Text     string
	Page     int
	Source   string
	ChunkRef string
	PointID  string
}

// Result summarizes an ingestion run.
type Result struct {
	Pages             int
	Chunks            int
	Stored            int
	CreatedCollection bool
	Elapsed           time.Duration
}

// ChunkRef is the stable citation reference for a chunk: it only changes when
// the chunk text does.
func ChunkRef(source string, page int, text string) string {
	if source == "" {
		source = "unknown_source"
	}
	sum := sha1.Sum([]byte(text))
	return source + "::p" + strconv.Itoa(page) + "::" + hex.EncodeToString(sum[:])[:12]
}

// PointID derives the vector store id for a chunk ref.
func PointID(chunkRef string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkRef)).String()
}

// ChunkPages splits every page and assigns refs and ids.
func ChunkPages(pages []Page, splitter *Splitter) []Chunk {
	var chunks []Chunk
	for _, p := range pages {
		for _, text := range splitter.Split(p.Text) {
			ref := ChunkRef(p.Source, p.Number, text)
			chunks = append(chunks, Chunk{
				Text:     text,
				Page:     p.Number,
				Source:   p.Source,
				ChunkRef: ref,
				PointID:  PointID(ref),
			})
		}
	}
	return chunks
}

// Ingester writes PDF pages into the vector store.
type Ingester struct {
	embedder  Embedder
	store     Store
	splitter  *Splitter
	batchSize int
	dimension int
	logger    zerolog.Logger
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets the progress logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(ing *Ingester) {
		ing.logger = logger
	}
}

// WithDimension rejects embeddings whose length differs from n.
func WithDimension(n int) Option {
	return func(ing *Ingester) {
		ing.dimension = n
	}
}

// NewIngester creates an ingester using the chunking and batching settings
// in cfg.
func NewIngester(embedder Embedder, store Store, cfg config.IngestConfig, opts ...Option) *Ingester {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 16
	}
	ing := &Ingester{
		embedder:  embedder,
		store:     store,
		splitter:  NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		batchSize: batch,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ing)
	}
	return ing
}

// Ingest chunks, embeds and upserts pages. Point ids are deterministic so a
// second run over the same document overwrites the first.
func (ing *Ingester) Ingest(ctx context.Context, pages []Page) (*Result, error) {
	start := time.Now()
	chunks := ChunkPages(pages, ing.splitter)
	res := &Result{Pages: len(pages), Chunks: len(chunks)}

	ing.logger.Info().
		Int("pages", len(pages)).
		Int("chunks", len(chunks)).
		Msg("chunking complete")

	if len(chunks) == 0 {
		res.Elapsed = time.Since(start)
		return res, nil
	}

	for i := 0; i < len(chunks); i += ing.batchSize {
		end := i + ing.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, c := range batch {
			texts[j] = c.Text
		}
		vectors, err := ing.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed batch %d-%d: %w", i, end, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("embed batch %d-%d: got %d vectors for %d chunks", i, end, len(vectors), len(batch))
		}

		if i == 0 {
			if ing.dimension > 0 && len(vectors[0]) != ing.dimension {
				return nil, fmt.Errorf("embedding dimension %d does not match configured %d", len(vectors[0]), ing.dimension)
			}
			created, err := ing.store.EnsureCollection(ctx, len(vectors[0]))
			if err != nil {
				return nil, fmt.Errorf("ensure collection: %w", err)
			}
			res.CreatedCollection = created
		}

		points := make([]vectorstore.Point, len(batch))
		for j, c := range batch {
			points[j] = vectorstore.Point{
				ID:     c.PointID,
				Vector: vectors[j],
				Payload: map[string]any{
					"text":      c.Text,
					"page":      c.Page,
					"source":    c.Source,
					"chunk_ref": c.ChunkRef,
				},
			}
		}
		if err := ing.store.Upsert(ctx, points); err != nil {
			return nil, fmt.Errorf("upsert batch %d-%d: %w", i, end, err)
		}
		res.Stored += len(points)

		ing.logger.Debug().
			Int("stored", res.Stored).
			Int("total", len(chunks)).
			Msg("upserted batch")
	}

	res.Elapsed = time.Since(start)
	ing.logger.Info().
		Int("chunks", res.Chunks).
		Int("stored", res.Stored).
		Dur("elapsed", res.Elapsed).
		Msg("ingestion complete")
	return res, nil
}
