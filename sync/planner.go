package sync

import (
	"time"

	"github.com/daypulse/daypulse/core"
)

// PlanWindow computes the inclusive reconciliation window ending today in the
// zone: lookbackDays days total, so a 30 day window starts 29 days back.
func PlanWindow(now time.Time, zone *time.Location, lookbackDays int) core.DateWindow {
	if zone == nil {
		zone = time.UTC
	}
	if lookbackDays < 1 {
		lookbackDays = 1
	}
	local := now.In(zone)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, zone)
	return core.DateWindow{
		Start: today.AddDate(0, 0, -(lookbackDays - 1)),
		End:   today,
		Zone:  zone,
	}
}
