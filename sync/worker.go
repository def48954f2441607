package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/daypulse/daypulse/core"
	"github.com/daypulse/daypulse/providers/common"
)

// JobRunner is the slice of the engine the worker needs.
type JobRunner interface {
	Run(ctx context.Context, req core.RunSyncRequest) (core.SyncOutcome, error)
}

// RequestParameters encodes a run request into queue message parameters.
func RequestParameters(req core.RunSyncRequest) map[string]any {
	return map[string]any{
		"metric":        string(req.Metric),
		"lookback_days": req.LookbackDays,
		"dry_run":       req.DryRun,
	}
}

// RequestFromParameters decodes queue message parameters back into a run
// request.
func RequestFromParameters(params map[string]any) (core.RunSyncRequest, error) {
	metric, err := core.ParseMetricID(common.StringAt(params, "metric"))
	if err != nil {
		return core.RunSyncRequest{}, err
	}
	return core.RunSyncRequest{
		Metric:       metric,
		LookbackDays: int(common.Int64At(params, "lookback_days")),
		DryRun:       common.BoolAt(params, "dry_run"),
	}, nil
}

// Worker drains queued sync jobs and drives the engine. Malformed messages
// dead-letter; engine failures requeue with a delay so transient upstream
// trouble retries on the next attempt.
type Worker struct {
	runner     JobRunner
	dequeuer   core.JobDequeuer
	observer   *core.Observer
	retryDelay time.Duration
	hooks      []core.JobWorkerHook
}

type WorkerOption func(*Worker)

func WithWorkerObserver(observer *core.Observer) WorkerOption {
	return func(w *Worker) {
		w.observer = observer
	}
}

func WithWorkerRetryDelay(delay time.Duration) WorkerOption {
	return func(w *Worker) {
		w.retryDelay = delay
	}
}

func WithWorkerHook(hook core.JobWorkerHook) WorkerOption {
	return func(w *Worker) {
		if hook != nil {
			w.hooks = append(w.hooks, hook)
		}
	}
}

func NewWorker(runner JobRunner, dequeuer core.JobDequeuer, options ...WorkerOption) (*Worker, error) {
	if runner == nil {
		return nil, fmt.Errorf("sync: worker requires a runner")
	}
	if dequeuer == nil {
		return nil, fmt.Errorf("sync: worker requires a dequeuer")
	}
	worker := &Worker{
		runner:     runner,
		dequeuer:   dequeuer,
		observer:   &core.Observer{},
		retryDelay: 30 * time.Second,
	}
	for _, option := range options {
		if option != nil {
			option(worker)
		}
	}
	return worker, nil
}

// Run consumes deliveries until the context is cancelled or the queue closes.
func (w *Worker) Run(ctx context.Context) error {
	for {
		delivery, err := w.dequeuer.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		w.handle(ctx, delivery)
	}
}

func (w *Worker) handle(ctx context.Context, delivery core.JobDelivery) {
	msg := delivery.Message()
	if msg == nil {
		_ = delivery.Nack(ctx, core.JobNackOptions{DeadLetter: true, Reason: "empty delivery"})
		return
	}
	startedAt := time.Now()
	event := core.JobWorkerEvent{Message: msg, StartedAt: startedAt}
	for _, hook := range w.hooks {
		hook.OnStart(ctx, event)
	}

	req, err := RequestFromParameters(msg.Parameters)
	if err != nil {
		// The message can never succeed; do not requeue it.
		w.finish(ctx, delivery, event, err, core.JobNackOptions{
			DeadLetter: true,
			Reason:     strings.TrimSpace(err.Error()),
		})
		return
	}

	outcome, err := w.runner.Run(ctx, req)
	if err != nil {
		nack := core.JobNackOptions{
			Requeue: true,
			Delay:   w.retryDelay,
			Reason:  strings.TrimSpace(err.Error()),
		}
		if core.IsFatalSyncError(err) {
			nack = core.JobNackOptions{DeadLetter: true, Reason: nack.Reason}
		}
		w.finish(ctx, delivery, event, err, nack)
		return
	}

	w.observer.LogInfo(ctx, "queued sync run finished", map[string]any{
		"job_id":  msg.JobID,
		"metric":  string(outcome.Metric),
		"summary": outcome.Summary(),
	})
	event.Duration = time.Since(startedAt)
	for _, hook := range w.hooks {
		hook.OnSuccess(ctx, event)
	}
	if err := delivery.Ack(ctx); err != nil {
		w.observer.LogError(ctx, "delivery ack failed", map[string]any{
			"job_id": msg.JobID,
			"error":  err.Error(),
		})
	}
}

func (w *Worker) finish(ctx context.Context, delivery core.JobDelivery, event core.JobWorkerEvent, runErr error, nack core.JobNackOptions) {
	w.observer.LogError(ctx, "queued sync run failed", map[string]any{
		"job_id":      event.Message.JobID,
		"error":       runErr.Error(),
		"dead_letter": nack.DeadLetter,
	})
	event.Err = runErr
	event.Duration = time.Since(event.StartedAt)
	for _, hook := range w.hooks {
		hook.OnFailure(ctx, event)
	}
	if err := delivery.Nack(ctx, nack); err != nil {
		w.observer.LogError(ctx, "delivery nack failed", map[string]any{
			"job_id": event.Message.JobID,
			"error":  err.Error(),
		})
	}
}
