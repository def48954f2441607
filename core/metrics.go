package core

import "context"

// NopMetricsRecorder discards every measurement. One-shot CLI runs wire it
// in when no metrics backend is configured, so the engine observes
// unconditionally.
type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

var _ MetricsRecorder = NopMetricsRecorder{}
