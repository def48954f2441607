package cli

import (
	"fmt"
	"time"

	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/spf13/cobra"

	"github.com/daypulse/daypulse/core"
	"github.com/daypulse/daypulse/query"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sync runs",
		Long: `List recorded sync runs, newest first.

Requires a storage DSN so runs are written to the run ledger.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of runs to show")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	ctx := cmd.Context()

	cfg, err := loadConfig(ctx, opts.RootOptions)
	if err != nil {
		return err
	}
	ledger, closeLedger, err := openLedger(ctx, cfg)
	if err != nil {
		return err
	}
	if ledger == nil {
		return fmt.Errorf("cli: history requires a storage dsn")
	}
	defer closeLedger()

	sub := commanddispatcher.SubscribeQuery(query.NewListRunsQuery(ledger))
	defer sub.Unsubscribe()

	runs, err := commanddispatcher.Query[query.ListRunsMessage, []core.RunRecord](
		ctx,
		query.ListRunsMessage{Limit: opts.Limit},
	)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no recorded runs")
		return nil
	}

	out := cmd.OutOrStdout()
	for _, run := range runs {
		line := fmt.Sprintf(
			"%s  %-8s  %s..%s  created=%d updated=%d skipped=%d errored=%d duplicates=%d  %s",
			run.CreatedAt.Format(time.RFC3339),
			run.Metric,
			run.WindowStart,
			run.WindowEnd,
			run.Created,
			run.Updated,
			run.Skipped,
			run.Errored,
			run.DuplicateDates,
			run.Status,
		)
		if run.Error != "" {
			line += "  error=" + run.Error
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
