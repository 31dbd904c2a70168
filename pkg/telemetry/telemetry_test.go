package telemetry

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/zen-systems/askroute/pkg/config"
)

func TestInitDisabled(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.TelemetryConfig
	}{
		{name: "disabled", cfg: config.TelemetryConfig{Enabled: false, OTLPEndpoint: "localhost:4317"}},
		{name: "no endpoint", cfg: config.TelemetryConfig{Enabled: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shutdown, err := Init(context.Background(), tt.cfg, "test", zerolog.Nop())
			if err != nil {
				t.Fatalf("init: %v", err)
			}
			if err := shutdown(context.Background()); err != nil {
				t.Fatalf("shutdown: %v", err)
			}
		})
	}
}
