package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/daypulse/daypulse/adapters/gojob"
	"github.com/daypulse/daypulse/adapters/gologger"
	"github.com/daypulse/daypulse/core"
	"github.com/daypulse/daypulse/sync"
)

// WorkerOptions holds flags for the worker command.
type WorkerOptions struct {
	*RootOptions
	Interval     time.Duration
	LookbackDays int
}

// NewWorkerCommand creates the worker command.
func NewWorkerCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WorkerOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run scheduled syncs for every metric until interrupted",
		Long: `Run as a long-lived worker that queues a sync for every metric on a
fixed interval and processes the queue with bounded retries.

Example:
  daypulse worker --interval 6h`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd, opts)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 6*time.Hour, "time between scheduled sync rounds")
	cmd.Flags().IntVar(&opts.LookbackDays, "lookback", 0, "days to scan per run (0 uses the configured default)")

	return cmd
}

func runWorker(cmd *cobra.Command, opts *WorkerOptions) error {
	if opts.Interval <= 0 {
		return fmt.Errorf("cli: interval must be positive")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := buildRuntime(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.close()

	observer, queueLogger := gologger.WorkerTelemetry(rt.config.ServiceName, nil)

	queue := gojob.NewMemoryQueue(0, gojob.WithQueueLogger(queueLogger))
	defer queue.Close()

	enqueuer := gojob.NewEnqueuerAdapter(queue)
	dequeuer := gojob.NewDequeuerAdapter(queue, gojob.RetryPolicy{
		MaxAttempts:     5,
		MaxDelay:        5 * time.Minute,
		DeadLetterOnMax: true,
	})

	worker, err := sync.NewWorker(rt.engine, dequeuer, sync.WithWorkerObserver(observer))
	if err != nil {
		return err
	}

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- worker.Run(ctx)
	}()

	metrics := []core.MetricID{core.MetricSleep, core.MetricSteps, core.MetricActivity}
	if err := enqueueRound(ctx, enqueuer, metrics, opts.LookbackDays, time.Now()); err != nil {
		return err
	}

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case stamp := <-ticker.C:
			if err := enqueueRound(ctx, enqueuer, metrics, opts.LookbackDays, stamp); err != nil {
				return err
			}
		case err := <-workerDone:
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		case <-ctx.Done():
			<-workerDone
			return nil
		}
	}
}

func enqueueRound(
	ctx context.Context,
	enqueuer core.JobEnqueuer,
	metrics []core.MetricID,
	lookbackDays int,
	stamp time.Time,
) error {
	for _, metric := range metrics {
		msg := &core.JobExecutionMessage{
			JobID: gojob.JobIDRunSync,
			Parameters: sync.RequestParameters(core.RunSyncRequest{
				Metric:       metric,
				LookbackDays: lookbackDays,
			}),
			IdempotencyKey: fmt.Sprintf("%s::%s", metric, stamp.UTC().Format(time.RFC3339)),
			DedupPolicy:    "drop",
		}
		if err := enqueuer.Enqueue(ctx, msg); err != nil {
			return fmt.Errorf("cli: enqueue %s sync: %w", metric, err)
		}
	}
	return nil
}
