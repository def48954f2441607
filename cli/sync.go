package cli

import (
	"fmt"

	gocmd "github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	daypulsecommand "github.com/daypulse/daypulse/command"
	"github.com/daypulse/daypulse/core"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	LookbackDays int
	DryRun       bool
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync <metric>",
		Short: "Run one reconciliation pass for a metric",
		Long: `Run one reconciliation pass for a metric (sleep, steps, or activity).

The pass scans the configured lookback window ending today, indexes the
destination collection, and creates missing records or repairs invalid
ones. Already-synced days are skipped without contacting the tracker.

Example:
  daypulse sync sleep
  daypulse sync steps --lookback 7 --dry-run`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, opts, args[0])
		},
	}

	cmd.Flags().IntVar(&opts.LookbackDays, "lookback", 0, "days to scan, ending today (0 uses the configured default)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "classify every day without writing to the destination")

	return cmd
}

func runSync(cmd *cobra.Command, opts *SyncOptions, rawMetric string) error {
	ctx := cmd.Context()

	metric, err := core.ParseMetricID(rawMetric)
	if err != nil {
		return err
	}

	rt, err := buildRuntime(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.close()

	sub := commanddispatcher.SubscribeCommand(daypulsecommand.NewRunSyncCommand(rt.engine))
	defer sub.Unsubscribe()

	collector := gocmd.NewResult[core.SyncOutcome]()
	ctx = gocmd.ContextWithResult(ctx, collector)

	msg := daypulsecommand.RunSyncMessage{Request: core.RunSyncRequest{
		Metric:       metric,
		LookbackDays: opts.LookbackDays,
		DryRun:       opts.DryRun,
	}}
	if err := commanddispatcher.Dispatch(ctx, msg); err != nil {
		return err
	}

	outcome, ok := collector.Load()
	if !ok {
		return fmt.Errorf("cli: sync produced no outcome")
	}
	fmt.Fprintln(cmd.OutOrStdout(), outcome.Summary())
	return nil
}
