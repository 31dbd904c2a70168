// Package vectorstore is a minimal REST client for Qdrant collections with a
// single named vector.
package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Point is a vector with its payload, keyed by a UUID string.
type Point struct {
	ID      string
	Vector  []float64
	Payload map[string]any
}

// Hit is one search result.
type Hit struct {
	ID      any
	Score   float64
	Payload map[string]any
}

// Config configures a Qdrant client.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	VectorName string
	Timeout    time.Duration
}

// Qdrant talks to one collection over the REST API.
type Qdrant struct {
	url        string
	apiKey     string
	collection string
	vectorName string
	client     *http.Client
}

// NewQdrant creates a client. Timeout defaults to 15s.
func NewQdrant(cfg Config) (*Qdrant, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	if cfg.Collection == "" {
		return nil, fmt.Errorf("qdrant collection is required")
	}
	if cfg.VectorName == "" {
		cfg.VectorName = "text"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Qdrant{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		vectorName: cfg.VectorName,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

// Collection returns the collection name.
func (q *Qdrant) Collection() string {
	return q.collection
}

// EnsureCollection creates the collection with a cosine named vector of the
// given size unless it already exists.
func (q *Qdrant) EnsureCollection(ctx context.Context, dimension int) (created bool, err error) {
	if dimension <= 0 {
		return false, fmt.Errorf("invalid dimension %d", dimension)
	}

	status, err := q.do(ctx, http.MethodGet, q.collectionURL(""), nil, nil)
	if err != nil && status != http.StatusNotFound {
		return false, err
	}
	if status == http.StatusOK {
		return false, nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			q.vectorName: map[string]any{
				"size":     dimension,
				"distance": "Cosine",
			},
		},
	}
	if _, err := q.do(ctx, http.MethodPut, q.collectionURL(""), body, nil); err != nil {
		return false, err
	}
	return true, nil
}

// Upsert writes points, waiting for the write to be applied.
func (q *Qdrant) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	wire := make([]map[string]any, len(points))
	for i, p := range points {
		wire[i] = map[string]any{
			"id":      p.ID,
			"vector":  map[string]any{q.vectorName: p.Vector},
			"payload": p.Payload,
		}
	}
	_, err := q.do(ctx, http.MethodPut, q.collectionURL("/points?wait=true"), map[string]any{"points": wire}, nil)
	return err
}

// Search returns up to limit nearest points by the named vector, with payload.
func (q *Qdrant) Search(ctx context.Context, vector []float64, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 4
	}
	req := map[string]any{
		"vector": map[string]any{
			"name":   q.vectorName,
			"vector": vector,
		},
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if _, err := q.do(ctx, http.MethodPost, q.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, Hit{ID: r.ID, Score: r.Score, Payload: r.Payload})
	}
	return hits, nil
}

func (q *Qdrant) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", q.url, url.PathEscape(q.collection), suffix)
}

// do sends a JSON request and decodes a 2xx reply into out. The HTTP status is
// returned even when it is an error status.
func (q *Qdrant) do(ctx context.Context, method, endpoint string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if q.apiKey != "" {
		req.Header.Set("api-key", q.apiKey)
	}

	resp, err := q.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("qdrant %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return resp.StatusCode, fmt.Errorf("qdrant %s %s failed: %s: %s",
			method, endpoint, resp.Status, strings.TrimSpace(string(msg)))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse qdrant response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
