package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/daypulse/daypulse/core"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the daypulse root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "daypulse",
		Short: "Sync daily fitness metrics into a document store",
		Long: `daypulse pulls daily sleep, step, and activity summaries from a
fitness tracker and reconciles them into document-store collections.

Each run scans a lookback window, indexes what the destination already
holds, and creates or repairs one record per day per metric.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewWorkerCommand(opts))
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

func loadConfig(ctx context.Context, opts *RootOptions) (core.Config, error) {
	provider := core.NewCfgxConfigProvider(
		core.FileRawConfigLoader{Path: opts.ConfigPath},
		core.EnvRawConfigLoader{},
	)
	cfg, err := provider.Load(ctx, core.DefaultConfig())
	if err != nil {
		return core.Config{}, fmt.Errorf("cli: load config: %w", err)
	}
	return cfg, nil
}
