package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

// TestRunStopsOnContext verifies the assembled service starts and shuts
// down cleanly when the context ends.
func TestRunStopsOnContext(t *testing.T) {
	t.Setenv("GRIDFALL_HTTP_PORT", "0")
	t.Setenv("GRIDFALL_HEALTH_PORT", "0")
	t.Setenv("GRIDFALL_DB_PATH", filepath.Join(t.TempDir(), "gridfall.db"))
	t.Setenv("GRIDFALL_OTEL_ENABLED", "false")

	ctx, cancel := context.WithCancel(context.Background())
	runErr := make(chan error, 1)
	go func() {
		runErr <- Run(ctx)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-runErr:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop on cancel")
	}
}

// TestRunRejectsBadStoragePath verifies storage failures surface at startup.
func TestRunRejectsBadStoragePath(t *testing.T) {
	t.Setenv("GRIDFALL_HTTP_PORT", "0")
	t.Setenv("GRIDFALL_HEALTH_PORT", "0")
	t.Setenv("GRIDFALL_DB_PATH", "")
	t.Setenv("GRIDFALL_OTEL_ENABLED", "false")

	if err := Run(context.Background()); err == nil {
		t.Fatal("expected storage error for empty path")
	}
}
