package rag

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/zen-systems/askroute/pkg/adapter"
	"github.com/zen-systems/askroute/pkg/router"
)

type stubRetriever struct {
	chunks []Chunk
	err    error
}

func (r *stubRetriever) Retrieve(context.Context, string) ([]Chunk, error) {
	return r.chunks, r.err
}

type recordingAdapter struct {
	calls   int
	prompts []adapter.Prompt
	reply   string
	err     error
}

func (a *recordingAdapter) Generate(_ context.Context, model string, prompt adapter.Prompt) (*adapter.Response, error) {
	a.calls++
	a.prompts = append(a.prompts, prompt)
	if a.err != nil {
		return nil, a.err
	}
	return &adapter.Response{Content: a.reply, Adapter: "recording", Model: model}, nil
}

func (a *recordingAdapter) Name() string { return "recording" }

func (a *recordingAdapter) Models() []string { return []string{"mock-1"} }

func TestAnswerNoChunksSkipsModel(t *testing.T) {
	a := &recordingAdapter{reply: "should not be used"}
	svc := NewService(&stubRetriever{}, a, "gpt-4o-mini")

	res, err := svc.Answer(context.Background(), "what is the capital of mars?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if a.calls != 0 {
		t.Fatalf("model called %d times", a.calls)
	}
	if !strings.HasPrefix(res.Answer, "I couldn't find relevant information") {
		t.Fatalf("answer = %q", res.Answer)
	}
	if res.Citations == nil || len(res.Citations) != 0 {
		t.Fatalf("citations = %#v, want empty slice", res.Citations)
	}
}

func TestAnswerDedupesCitations(t *testing.T) {
	chunks := []Chunk{
		{Text: " first ", Page: 3, ChunkRef: "d::p3::aaa"},
		{Text: "second", Page: 1, ChunkRef: "d::p1::bbb"},
		{Text: "first again", Page: 3, ChunkRef: "d::p3::aaa"},
		{Text: "same page other chunk", Page: 3, ChunkRef: "d::p3::ccc"},
	}
	a := &recordingAdapter{reply: "Transformers use attention (page=3, chunk_ref=d::p3::aaa)."}
	svc := NewService(&stubRetriever{chunks: chunks}, a, "gpt-4o-mini")

	res, err := svc.Answer(context.Background(), "what are transformers?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	want := []Citation{
		{Page: 3, ChunkRef: "d::p3::aaa"},
		{Page: 1, ChunkRef: "d::p1::bbb"},
		{Page: 3, ChunkRef: "d::p3::ccc"},
	}
	if !reflect.DeepEqual(res.Citations, want) {
		t.Fatalf("citations = %+v", res.Citations)
	}
	if res.Answer != a.reply {
		t.Fatalf("answer = %q", res.Answer)
	}

	if a.calls != 1 {
		t.Fatalf("expected one model call, got %d", a.calls)
	}
	user := a.prompts[0].User
	if !strings.Contains(user, "[1] page=3 chunk_ref=d::p3::aaa\nfirst\n\n[2] page=1") {
		t.Fatalf("context not numbered as expected:\n%s", user)
	}
	if !strings.HasPrefix(user, "Question:\nwhat are transformers?\n\nContext:\n") {
		t.Fatalf("unexpected prompt start:\n%s", user)
	}
	if !strings.Contains(a.prompts[0].System, "Answer ONLY using the provided context") {
		t.Fatalf("system prompt missing grounding instruction")
	}
}

func TestAnswerErrors(t *testing.T) {
	boom := errors.New("boom")

	if _, err := NewService(&stubRetriever{err: boom}, &recordingAdapter{}, "m").Answer(context.Background(), "q"); !errors.Is(err, boom) {
		t.Fatalf("expected retrieval error, got %v", err)
	}

	chunks := []Chunk{{Text: "t", Page: 0, ChunkRef: "r"}}
	if _, err := NewService(&stubRetriever{chunks: chunks}, &recordingAdapter{err: boom}, "m").Answer(context.Background(), "q"); !errors.Is(err, boom) {
		t.Fatalf("expected model error, got %v", err)
	}
}

func TestResultFields(t *testing.T) {
	res := &Result{Query: "q", Answer: "a"}
	fields := res.Fields()
	if fields["route"] != router.RoutePDF {
		t.Fatalf("route = %v", fields["route"])
	}
	if c, ok := fields["citations"].([]Citation); !ok || c == nil {
		t.Fatalf("citations = %#v", fields["citations"])
	}
}
