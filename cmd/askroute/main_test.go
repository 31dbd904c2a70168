package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/zen-systems/askroute/pkg/config"
	"github.com/zen-systems/askroute/pkg/pipeline"
	"github.com/zen-systems/askroute/pkg/rag"
	"github.com/zen-systems/askroute/pkg/router"
	"github.com/zen-systems/askroute/pkg/weather"
)

func TestPrintResponsePDF(t *testing.T) {
	resp := &pipeline.Response{
		Route:       router.RoutePDF,
		RouteReason: "llm_router(model=gpt-4o-mini)",
		Answer:      "Self-attention relates positions (page=3, chunk_ref=a).",
		PDF: &rag.Result{Citations: []rag.Citation{
			{Page: 3, ChunkRef: "doc.pdf::p3::aaa"},
			{Page: 5, ChunkRef: "doc.pdf::p5::bbb"},
		}},
	}

	var buf bytes.Buffer
	printResponse(&buf, resp)

	want := "Self-attention relates positions (page=3, chunk_ref=a).\n\n" +
		"[route] pdf (llm_router(model=gpt-4o-mini))\n" +
		"[citations]\n" +
		"- page=3 chunk_ref=doc.pdf::p3::aaa\n" +
		"- page=5 chunk_ref=doc.pdf::p5::bbb\n"
	if buf.String() != want {
		t.Fatalf("output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestPrintResponseWeather(t *testing.T) {
	resp := &pipeline.Response{
		Route:       router.RouteWeather,
		RouteReason: router.ReasonRuleMatch,
		Answer:      "Clear skies in Pune.",
		Weather:     &weather.Result{Answer: "Clear skies in Pune."},
	}

	var buf bytes.Buffer
	printResponse(&buf, resp)

	if strings.Contains(buf.String(), "[citations]") {
		t.Fatalf("weather output should not list citations:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "[route] weather (rule_match(weather_keywords))") {
		t.Fatalf("missing route line:\n%s", buf.String())
	}
}

func TestPrintDecisionRules(t *testing.T) {
	r := router.NewRouter(config.DefaultRoutingConfig(), nil)
	decision, err := r.Route(context.Background(), "will it rain in pune?")
	if err != nil {
		t.Fatalf("route: %v", err)
	}

	var buf bytes.Buffer
	if err := printDecision(&buf, decision, r.Rules().Keywords()); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "KEYWORD") || !strings.Contains(out, "rain") {
		t.Fatalf("missing keyword line:\n%s", out)
	}
	if !strings.Contains(out, "RULES") || !strings.Contains(out, "weather") {
		t.Fatalf("missing rules line:\n%s", out)
	}

	buf.Reset()
	if err := printDecision(&buf, decision, nil); err != nil {
		t.Fatalf("print: %v", err)
	}
	if strings.Contains(buf.String(), "RULES") {
		t.Fatalf("rules should only print when asked:\n%s", buf.String())
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "debug", want: "debug"},
		{in: "INFO", want: "info"},
		{in: "", want: "warn"},
		{in: "nonsense", want: "warn"},
	}

	for _, tt := range tests {
		if got := newLogger(tt.in).GetLevel().String(); got != tt.want {
			t.Errorf("newLogger(%q) level = %s, want %s", tt.in, got, tt.want)
		}
	}
}
