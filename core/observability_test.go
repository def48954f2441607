package core

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"
)

type recordingMetrics struct {
	mu         sync.Mutex
	counters   map[string]int64
	histograms map[string][]float64
	tags       map[string]map[string]string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters:   map[string]int64{},
		histograms: map[string][]float64{},
		tags:       map[string]map[string]string{},
	}
}

func (m *recordingMetrics) IncCounter(_ context.Context, name string, value int64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += value
	m.tags[name] = tags
}

func (m *recordingMetrics) ObserveHistogram(_ context.Context, name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.histograms[name] = append(m.histograms[name], value)
	m.tags[name] = tags
}

func TestObserver_EmitsCounterAndHistogram(t *testing.T) {
	metrics := newRecordingMetrics()
	observer := &Observer{Metrics: metrics}

	observer.Observe(context.Background(), time.Now(), "Sync Run", nil, map[string]any{
		"metric": "sleep",
	})

	if got := metrics.counters["daypulse.sync_run.total"]; got != 1 {
		t.Fatalf("expected counter increment, got %d", got)
	}
	if got := len(metrics.histograms["daypulse.sync_run.duration_ms"]); got != 1 {
		t.Fatalf("expected one duration observation, got %d", got)
	}
	tags := metrics.tags["daypulse.sync_run.total"]
	if tags["status"] != "success" {
		t.Fatalf("expected success status tag, got %q", tags["status"])
	}
	if tags["metric"] != "sleep" {
		t.Fatalf("expected metric tag, got %q", tags["metric"])
	}
}

func TestObserver_FailureStatusOnError(t *testing.T) {
	metrics := newRecordingMetrics()
	observer := &Observer{Metrics: metrics}

	observer.Observe(context.Background(), time.Now(), "day_sync", stderrors.New("boom"), nil)

	tags := metrics.tags["daypulse.day_sync.total"]
	if tags["status"] != "failure" {
		t.Fatalf("expected failure status tag, got %q", tags["status"])
	}
}

func TestObserver_NilReceiverIsSafe(t *testing.T) {
	var observer *Observer
	observer.Observe(context.Background(), time.Now(), "noop", nil, nil)
	observer.LogInfo(context.Background(), "noop", nil)
}
