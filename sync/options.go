package sync

import (
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/daypulse/daypulse/core"
)

type engineBuilder struct {
	logger          core.Logger
	loggerProvider  core.LoggerProvider
	metricsRecorder core.MetricsRecorder
	tracker         core.TrackerClient
	store           core.StoreClient
	registry        core.AdapterRegistry
	pacer           core.Pacer
	ledger          core.RunLedger
	now             func() time.Time
}

type Option func(*engineBuilder)

func WithLogger(logger core.Logger) Option {
	return func(b *engineBuilder) {
		b.logger = logger
	}
}

func WithLoggerProvider(provider core.LoggerProvider) Option {
	return func(b *engineBuilder) {
		b.loggerProvider = provider
	}
}

func WithMetricsRecorder(recorder core.MetricsRecorder) Option {
	return func(b *engineBuilder) {
		b.metricsRecorder = recorder
	}
}

func WithTracker(tracker core.TrackerClient) Option {
	return func(b *engineBuilder) {
		b.tracker = tracker
	}
}

func WithStore(store core.StoreClient) Option {
	return func(b *engineBuilder) {
		b.store = store
	}
}

func WithRegistry(registry core.AdapterRegistry) Option {
	return func(b *engineBuilder) {
		b.registry = registry
	}
}

func WithPacer(pacer core.Pacer) Option {
	return func(b *engineBuilder) {
		b.pacer = pacer
	}
}

func WithRunLedger(ledger core.RunLedger) Option {
	return func(b *engineBuilder) {
		b.ledger = ledger
	}
}

func WithNow(now func() time.Time) Option {
	return func(b *engineBuilder) {
		b.now = now
	}
}

func defaultEngineBuilder(cfg core.Config) engineBuilder {
	loggerProvider, logger := glog.Resolve("daypulse", nil, nil)
	return engineBuilder{
		logger:          logger,
		loggerProvider:  loggerProvider,
		metricsRecorder: core.NopMetricsRecorder{},
		registry:        core.NewMetricAdapterRegistry(),
		pacer:           NewFixedPacer(cfg.CallDelay()),
		now:             time.Now,
	}
}
