package adapter

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "deadline", err: fmt.Errorf("call: %w", context.DeadlineExceeded), want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "throttled", err: &AdapterError{Status: 429}, want: true},
		{name: "upstream 502", err: fmt.Errorf("wrap: %w", &AdapterError{Status: 502}), want: true},
		{name: "unauthorized", err: &AdapterError{Status: 401}, want: false},
		{name: "flagged temporary", err: &AdapterError{Temporary: true}, want: true},
		{name: "plain", err: errors.New("boom"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
