package location

import (
	"context"
	"errors"
	"testing"

	"github.com/zen-systems/askroute/pkg/adapter"
)

type stubAdapter struct {
	reply string
	err   error
	calls int
}

func (a *stubAdapter) Generate(_ context.Context, model string, _ adapter.Prompt) (*adapter.Response, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return &adapter.Response{Content: a.reply, Model: model}, nil
}

func (a *stubAdapter) Name() string { return "stub" }

func (a *stubAdapter) Models() []string { return []string{"stub-1"} }

func TestLLMExtractorParsesReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{name: "plain json", reply: `{"location": "Mumbai"}`, want: "Mumbai"},
		{name: "fenced json", reply: "```json\n{\"location\": \"Navi Mumbai, IN\"}\n```", want: "Navi Mumbai, IN"},
		{name: "trailing punctuation", reply: `{"location": " Shimla?. "}`, want: "Shimla"},
		{name: "null", reply: `{"location": null}`, want: ""},
		{name: "non-string", reply: `{"location": 42}`, want: ""},
		{name: "missing key", reply: `{"city": "Pune"}`, want: ""},
		{name: "malformed", reply: `location: Pune`, want: ""},
		{name: "empty", reply: ``, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewLLMExtractor(&stubAdapter{reply: tt.reply}, "loc-model")
			got, err := e.Extract(context.Background(), "is it cold up north?")
			if err != nil {
				t.Fatalf("extract: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLLMExtractorPropagatesAdapterErrors(t *testing.T) {
	boom := errors.New("connection reset")
	e := NewLLMExtractor(&stubAdapter{err: boom}, "loc-model")

	if _, err := e.Extract(context.Background(), "q"); !errors.Is(err, boom) {
		t.Fatalf("expected adapter error, got %v", err)
	}
}
