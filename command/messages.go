package command

import (
	"fmt"
	"strings"

	"github.com/daypulse/daypulse/core"
)

const (
	TypeRunSync = "daypulse.command.sync.run"
)

type RunSyncMessage struct {
	Request core.RunSyncRequest
}

func (RunSyncMessage) Type() string { return TypeRunSync }

func (m RunSyncMessage) Validate() error {
	if strings.TrimSpace(string(m.Request.Metric)) == "" {
		return fmt.Errorf("command: metric is required")
	}
	if _, err := core.ParseMetricID(string(m.Request.Metric)); err != nil {
		return fmt.Errorf("command: unknown metric %q", m.Request.Metric)
	}
	if m.Request.LookbackDays < 0 {
		return fmt.Errorf("command: lookback days must be >= 0")
	}
	return nil
}
