package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/daypulse/daypulse/core"
)

// SyncService runs one reconciliation pass for a metric.
type SyncService interface {
	Run(ctx context.Context, req core.RunSyncRequest) (core.SyncOutcome, error)
}

type RunSyncCommand struct {
	service SyncService
}

func NewRunSyncCommand(service SyncService) *RunSyncCommand {
	return &RunSyncCommand{service: service}
}

func (c *RunSyncCommand) Execute(ctx context.Context, msg RunSyncMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: sync service is required")
	}
	out, err := c.service.Run(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
