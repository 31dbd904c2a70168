package embedding

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
)

func newTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("network listen not available: %v", err)
	}
	srv := httptest.NewUnstartedServer(handler)
	srv.Listener = ln
	srv.Start()
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIEmbedderOrdersByIndex(t *testing.T) {
	var got struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"object":"list","model":"text-embedding-3-small",
			"data":[{"object":"embedding","index":1,"embedding":[0.3,0.4]},
			        {"object":"embedding","index":0,"embedding":[0.1,0.2]}],
			"usage":{"prompt_tokens":2,"total_tokens":2}}`))
	}))

	e, err := NewOpenAIEmbedder("key", "text-embedding-3-small",
		option.WithBaseURL(srv.URL+"/"), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("new embedder: %v", err)
	}

	vectors, err := e.Embed(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 0.1 || vectors[1][0] != 0.3 {
		t.Fatalf("vectors = %v", vectors)
	}
	if got.Model != "text-embedding-3-small" || len(got.Input) != 2 {
		t.Fatalf("request = %+v", got)
	}
}

func TestOpenAIEmbedderEmptyInput(t *testing.T) {
	e, err := NewOpenAIEmbedder("key", "m")
	if err != nil {
		t.Fatalf("new embedder: %v", err)
	}
	vectors, err := e.Embed(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Fatalf("expected no call for empty input, got %v %v", vectors, err)
	}
}

func TestNewOpenAIEmbedderRequiresKey(t *testing.T) {
	if _, err := NewOpenAIEmbedder("", "m"); err == nil {
		t.Fatal("expected error without API key")
	}
}
