package sync

import (
	"context"
	"testing"
	"time"
)

func TestFixedPacer_WaitsForDelay(t *testing.T) {
	pacer := NewFixedPacer(10 * time.Millisecond)
	started := time.Now()
	if err := pacer.Pause(context.Background()); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if elapsed := time.Since(started); elapsed < 10*time.Millisecond {
		t.Fatalf("expected at least 10ms pause, got %v", elapsed)
	}
}

func TestFixedPacer_ZeroDelayIsImmediate(t *testing.T) {
	pacer := NewFixedPacer(0)
	if err := pacer.Pause(context.Background()); err != nil {
		t.Fatalf("pause: %v", err)
	}
}

func TestFixedPacer_CancelledContext(t *testing.T) {
	pacer := NewFixedPacer(time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := pacer.Pause(ctx); err == nil {
		t.Fatalf("expected cancelled context to interrupt the pause")
	}
}
