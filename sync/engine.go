package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/daypulse/daypulse/core"
)

// Engine runs one reconciliation pass per request: plan the window, index the
// destination, then walk the window oldest-first classifying every date into
// CREATE, UPDATE, SKIP, or per-day error.
type Engine struct {
	config   core.Config
	zone     *time.Location
	tracker  core.TrackerClient
	store    core.StoreClient
	registry core.AdapterRegistry
	pacer    core.Pacer
	ledger   core.RunLedger
	observer *core.Observer
	now      func() time.Time
}

func NewEngine(cfg core.Config, options ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, core.ConfigError(err, "sync: engine config invalid")
	}
	zone, err := cfg.Location()
	if err != nil {
		return nil, core.ConfigError(err, "sync: engine timezone invalid")
	}

	builder := defaultEngineBuilder(cfg)
	for _, option := range options {
		if option != nil {
			option(&builder)
		}
	}

	if builder.tracker == nil {
		return nil, core.ConfigError(fmt.Errorf("sync: tracker client is required"), "sync: engine build failed")
	}
	if builder.store == nil {
		return nil, core.ConfigError(fmt.Errorf("sync: store client is required"), "sync: engine build failed")
	}
	if builder.registry == nil {
		builder.registry = core.NewMetricAdapterRegistry()
	}
	if builder.pacer == nil {
		builder.pacer = NewFixedPacer(cfg.CallDelay())
	}
	if builder.now == nil {
		builder.now = time.Now
	}

	return &Engine{
		config:   cfg,
		zone:     zone,
		tracker:  builder.tracker,
		store:    builder.store,
		registry: builder.registry,
		pacer:    builder.pacer,
		ledger:   builder.ledger,
		observer: &core.Observer{Logger: builder.logger, Metrics: builder.metricsRecorder},
		now:      builder.now,
	}, nil
}

// Registry exposes the adapter registry so callers can register metric
// adapters after construction.
func (e *Engine) Registry() core.AdapterRegistry {
	if e == nil {
		return nil
	}
	return e.registry
}

// Run executes one pass. Fatal failures (bad request, missing adapter or
// collection, index build) abort before the day loop; fetch and write
// failures are contained to their date and only bump the errored counter.
func (e *Engine) Run(ctx context.Context, req core.RunSyncRequest) (core.SyncOutcome, error) {
	if e == nil {
		return core.SyncOutcome{}, core.ConfigError(fmt.Errorf("sync: engine is nil"), "sync: run failed")
	}
	startedAt := e.now()

	metric, err := core.ParseMetricID(string(req.Metric))
	if err != nil {
		return core.SyncOutcome{}, core.MapSyncError(err)
	}
	adapter, ok := e.registry.Get(metric)
	if !ok {
		return core.SyncOutcome{}, core.MetricNotFoundError(string(metric))
	}
	collection, err := e.config.Collection(metric)
	if err != nil {
		return core.SyncOutcome{}, core.ConfigError(err, "sync: run failed")
	}

	lookback := req.LookbackDays
	if lookback <= 0 {
		lookback = e.config.Sync.LookbackDays
	}
	window := PlanWindow(startedAt, e.zone, lookback)
	policy := e.config.Policy(e.zone)

	outcome := core.SyncOutcome{
		Metric:    metric,
		Window:    window,
		StartedAt: startedAt,
	}

	index, err := BuildSinkIndex(ctx, e.store, adapter, core.SinkQuery{
		Collection: collection,
		StartDate:  window.StartDate(),
		EndDate:    window.EndDate(),
		PageSize:   e.config.Sync.PageSize,
	})
	if err != nil {
		outcome.FinishedAt = e.now()
		e.observer.Observe(ctx, startedAt, "sync_run", err, map[string]any{
			"metric": string(metric),
			"window": window.StartDate() + ".." + window.EndDate(),
		})
		e.recordRun(ctx, outcome, err)
		return outcome, err
	}
	outcome.DuplicateDates = index.DuplicateDates()

	e.observer.LogInfo(ctx, "destination index built", map[string]any{
		"metric":          string(metric),
		"window":          window.StartDate() + ".." + window.EndDate(),
		"indexed_dates":   len(index.Dates()),
		"indexed_entries": index.TotalEntries(),
		"duplicate_dates": outcome.DuplicateDates,
	})

	for _, date := range window.Days() {
		day, err := e.syncDay(ctx, adapter, collection, index, date, policy, req.DryRun)
		if err != nil {
			// Context cancellation aborts the whole run mid-window.
			outcome.FinishedAt = e.now()
			e.recordRun(ctx, outcome, err)
			return outcome, core.MapSyncError(err)
		}
		outcome.Track(day)
		e.observeDay(ctx, metric, day)
	}

	outcome.FinishedAt = e.now()
	e.observer.Observe(ctx, startedAt, "sync_run", nil, map[string]any{
		"metric":          string(metric),
		"window":          window.StartDate() + ".." + window.EndDate(),
		"created":         outcome.Created,
		"updated":         outcome.Updated,
		"skipped":         outcome.Skipped,
		"errored":         outcome.Errored,
		"duplicate_dates": outcome.DuplicateDates,
		"dry_run":         req.DryRun,
	})
	e.recordRun(ctx, outcome, nil)
	return outcome, nil
}

// syncDay classifies and executes one date. The returned error is reserved
// for run-fatal conditions (context cancellation); per-day failures come back
// as a DayErrored result.
func (e *Engine) syncDay(
	ctx context.Context,
	adapter core.MetricAdapter,
	collection string,
	index *core.SinkIndex,
	date string,
	policy core.NormalizePolicy,
	dryRun bool,
) (core.DayResult, error) {
	entries := index.Entries(date)

	// A single trustworthy record is enough: skip without touching the
	// tracker at all.
	if len(entries) > 0 && index.AnyValid(date) {
		return core.DayResult{Date: date, State: core.DaySkipped}, nil
	}

	if err := e.pacer.Pause(ctx); err != nil {
		return core.DayResult{}, err
	}
	src, found, err := e.tracker.FetchDaily(ctx, adapter.ID(), date)
	if err != nil {
		if ctx.Err() != nil {
			return core.DayResult{}, ctx.Err()
		}
		wrapped := core.FetchError(err, "sync: source fetch failed for "+date)
		return core.DayResult{Date: date, State: core.DayErrored, Error: wrapped.Error()}, nil
	}
	if !found {
		return core.DayResult{Date: date, State: core.DaySkipped}, nil
	}

	rec, ok := adapter.Normalize(src, date, policy)
	if !ok {
		return core.DayResult{Date: date, State: core.DaySkipped}, nil
	}
	fields := adapter.BuildFields(rec)

	if dryRun {
		state := core.DayCreated
		if len(entries) > 0 {
			state = core.DayUpdated
		}
		return core.DayResult{Date: date, State: state}, nil
	}

	if err := e.pacer.Pause(ctx); err != nil {
		return core.DayResult{}, err
	}

	if len(entries) == 0 {
		recordID, err := e.store.CreateRecord(ctx, core.CreateRecordInput{
			Collection: collection,
			Fields:     fields,
			Icon:       adapter.Icon(rec),
		})
		if err != nil {
			if ctx.Err() != nil {
				return core.DayResult{}, ctx.Err()
			}
			wrapped := core.WriteError(err, "sync: destination create failed for "+date)
			return core.DayResult{Date: date, State: core.DayErrored, Error: wrapped.Error()}, nil
		}
		return core.DayResult{Date: date, State: core.DayCreated, RecordIDs: []string{recordID}}, nil
	}

	// Every invalid entry for the date gets the same repair write, duplicates
	// included.
	recordIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := e.store.UpdateRecord(ctx, entry.RecordID, fields); err != nil {
			if ctx.Err() != nil {
				return core.DayResult{}, ctx.Err()
			}
			wrapped := core.WriteError(err, "sync: destination update failed for "+date)
			return core.DayResult{Date: date, State: core.DayErrored, RecordIDs: recordIDs, Error: wrapped.Error()}, nil
		}
		recordIDs = append(recordIDs, entry.RecordID)
	}
	return core.DayResult{Date: date, State: core.DayUpdated, RecordIDs: recordIDs}, nil
}

func (e *Engine) observeDay(ctx context.Context, metric core.MetricID, day core.DayResult) {
	fields := map[string]any{
		"metric": string(metric),
		"date":   day.Date,
		"state":  string(day.State),
	}
	if len(day.RecordIDs) > 0 {
		fields["records"] = len(day.RecordIDs)
	}
	if day.State == core.DayErrored {
		fields["error"] = day.Error
		e.observer.LogError(ctx, "day sync failed", fields)
		return
	}
	e.observer.LogInfo(ctx, "day sync "+string(day.State), fields)
}

func (e *Engine) recordRun(ctx context.Context, outcome core.SyncOutcome, runErr error) {
	if e.ledger == nil {
		return
	}
	record := core.RunRecord{
		ID:             uuid.New().String(),
		Metric:         string(outcome.Metric),
		WindowStart:    outcome.Window.StartDate(),
		WindowEnd:      outcome.Window.EndDate(),
		Created:        outcome.Created,
		Updated:        outcome.Updated,
		Skipped:        outcome.Skipped,
		Errored:        outcome.Errored,
		DuplicateDates: outcome.DuplicateDates,
		Status:         core.RunStatusCompleted,
		StartedAt:      outcome.StartedAt,
		FinishedAt:     outcome.FinishedAt,
	}
	if runErr != nil {
		record.Status = core.RunStatusFailed
		record.Error = strings.TrimSpace(runErr.Error())
	}
	if _, err := e.ledger.Record(ctx, record); err != nil {
		e.observer.LogError(ctx, "run ledger write failed", map[string]any{
			"metric": record.Metric,
			"error":  err.Error(),
		})
	}
}
