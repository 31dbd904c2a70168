package adapter

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
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

func TestDeepSeekGenerateSendsSystemAndUser(t *testing.T) {
	var got deepseekRequest
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"weather"}}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	}))

	a, err := NewDeepSeekAdapter("key")
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}
	a.baseURL = srv.URL

	resp, err := a.Generate(context.Background(), "deepseek-chat", Prompt{System: "sys", User: "hi"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "weather" {
		t.Fatalf("content = %q", resp.Content)
	}
	if resp.Usage == nil || resp.Usage.TotalTokens != 4 {
		t.Fatalf("usage = %+v", resp.Usage)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "hi" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
	if got.Temperature != 0 {
		t.Fatalf("temperature = %v", got.Temperature)
	}
}

func TestDeepSeekGenerateStatusError(t *testing.T) {
	srv := newTestServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"busy"}}`))
	}))

	a, _ := NewDeepSeekAdapter("key")
	a.baseURL = srv.URL

	_, err := a.Generate(context.Background(), "deepseek-chat", Prompt{User: "hi"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !IsTransient(err) {
		t.Fatalf("expected 503 to be transient: %v", err)
	}
}

func TestMockAdapterResponses(t *testing.T) {
	m := NewMockAdapterWithResponses(map[string]string{"q": "pdf"}, "")
	resp, err := m.Generate(context.Background(), "", Prompt{System: "s", User: "q"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if resp.Content != "pdf" || resp.Model != "mock-1" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}
