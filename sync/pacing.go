package sync

import (
	"context"
	"time"

	"github.com/daypulse/daypulse/core"
)

// FixedPacer inserts a constant delay before each outbound call. The delay is
// deliberately not adaptive: both collaborators throttle on burst rate, and a
// fixed gap keeps run duration predictable.
type FixedPacer struct {
	Delay time.Duration
}

func NewFixedPacer(delay time.Duration) *FixedPacer {
	return &FixedPacer{Delay: delay}
}

func (p *FixedPacer) Pause(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if p == nil || p.Delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ core.Pacer = (*FixedPacer)(nil)
