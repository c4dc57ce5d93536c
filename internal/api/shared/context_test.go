package shared

import (
	"context"
	"regexp"
	"testing"
)

func TestTraceIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := GetTraceID(ctx); got != "" {
		t.Errorf("Expected empty trace ID on a bare context, got %q", got)
	}

	ctx = SetTraceID(ctx)
	traceID := GetTraceID(ctx)
	if traceID == "" {
		t.Fatal("Expected a trace ID after SetTraceID")
	}

	if !regexp.MustCompile(`^[0-9a-f]{32}$`).MatchString(traceID) {
		t.Errorf("Expected 32 hex characters, got %q", traceID)
	}

	// Fresh contexts get fresh IDs.
	other := GetTraceID(SetTraceID(context.Background()))
	if other == traceID {
		t.Error("Expected distinct trace IDs for distinct contexts")
	}
}
