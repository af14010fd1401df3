//go:build !trace

package tracing

import (
	"context"
	"testing"
)

func TestTraceStubNoOps(t *testing.T) {
	if err := Start(); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	Stop()

	ctx, endTask := StartTask(context.Background(), "unit-test-task")
	if ctx == nil {
		t.Fatal("expected non-nil context")
	}
	endTask()

	endRegion := StartRegion(ctx, "unit-test-region")
	endRegion()

	Log(ctx, "category", "message")
}
