package adapter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaioption "github.com/openai/openai-go/option"
	"google.golang.org/genai"
)

func statusHandler(t *testing.T, wantPath string, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != wantPath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"message":"upstream says no","type":"error"}}`))
	})
}

func TestOpenAIGenerateKeepsStatus(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{status: http.StatusTooManyRequests, transient: true},
		{status: http.StatusServiceUnavailable, transient: true},
		{status: http.StatusUnauthorized, transient: false},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := newTestServer(t, statusHandler(t, "/chat/completions", tt.status))
			a, err := NewOpenAIAdapter("key", openaioption.WithBaseURL(srv.URL+"/"), openaioption.WithMaxRetries(0))
			if err != nil {
				t.Fatalf("new adapter: %v", err)
			}

			_, err = a.Generate(context.Background(), "gpt-4o-mini", Prompt{User: "hi"})
			var adapterErr *AdapterError
			if !errors.As(err, &adapterErr) || adapterErr.Status != tt.status {
				t.Fatalf("expected AdapterError with status %d, got %v", tt.status, err)
			}
			if got := IsTransient(fmt.Errorf("route query: %w", err)); got != tt.transient {
				t.Fatalf("IsTransient = %v, want %v", got, tt.transient)
			}
		})
	}
}

func TestAnthropicGenerateKeepsStatus(t *testing.T) {
	srv := newTestServer(t, statusHandler(t, "/v1/messages", http.StatusTooManyRequests))
	a, err := NewAnthropicAdapter("key", anthropicoption.WithBaseURL(srv.URL+"/"), anthropicoption.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("new adapter: %v", err)
	}

	_, err = a.Generate(context.Background(), "claude-3-5-haiku-latest", Prompt{System: "s", User: "hi"})
	if !IsTransient(err) {
		t.Fatalf("expected throttling to be transient, got %v", err)
	}
}

func TestGoogleErrorMapsCode(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
	}{
		{name: "unavailable", err: genai.APIError{Code: 503, Status: "UNAVAILABLE"}, transient: true},
		{name: "quota", err: genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, transient: true},
		{name: "bad request", err: genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, transient: false},
		{name: "other", err: errors.New("dial tcp: refused"), transient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(googleError(tt.err)); got != tt.transient {
				t.Fatalf("IsTransient = %v, want %v", got, tt.transient)
			}
		})
	}
}
