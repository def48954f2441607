package sleep

import (
	"testing"
	"time"

	"github.com/daypulse/daypulse/core"
)

func seoulZone(t *testing.T) *time.Location {
	t.Helper()
	zone, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return zone
}

func sleepPayload(daily map[string]any, extra map[string]any) map[string]any {
	payload := map[string]any{"dailySleepDTO": daily}
	for key, value := range extra {
		payload[key] = value
	}
	return payload
}

func TestNormalize_BuildsDurationsAndTimes(t *testing.T) {
	zone := seoulZone(t)
	start := time.Date(2026, 3, 1, 23, 30, 0, 0, zone)
	end := start.Add(8 * time.Hour)

	adapter := New()
	rec, ok := adapter.Normalize(core.SourceRecord{
		Metric: core.MetricSleep,
		Date:   "2026-03-02",
		Payload: sleepPayload(map[string]any{
			"sleepStartTimestampGMT": float64(start.UnixMilli()),
			"sleepEndTimestampGMT":   float64(end.UnixMilli()),
			"deepSleepSeconds":       float64(3600),
			"lightSleepSeconds":      float64(3600),
			"remSleepSeconds":        float64(184),
			"awakeSleepSeconds":      float64(600),
		}, map[string]any{
			"restingHeartRate": float64(52),
		}),
	}, "2026-03-02", core.NormalizePolicy{SkipZeroSleep: true, Zone: zone})
	if !ok {
		t.Fatalf("expected record to normalize")
	}

	if rec.Date != "2026-03-02" {
		t.Fatalf("expected pinned target date, got %q", rec.Date)
	}
	if rec.Label != "23:30 → 07:30" {
		t.Fatalf("unexpected times label %q", rec.Label)
	}

	fields := adapter.BuildFields(rec)
	if got := fields[FieldTotalSleepH].Number; got != 2.1 {
		t.Fatalf("expected 7384s to read 2.1 hours, got %v", got)
	}
	if got := fields[FieldTotalSleepText].Text; got != "2h 3m" {
		t.Fatalf("expected 7384s to read 2h 3m, got %q", got)
	}
	if got := fields[FieldRestingHR].Number; got != 52 {
		t.Fatalf("expected resting hr 52, got %v", got)
	}
	if got := fields[FieldDate].Date; got != "2026-03-02" {
		t.Fatalf("expected date field pinned to target, got %q", got)
	}
	full := fields[FieldFullDateTime]
	if full.Date == "" || full.DateEnd == "" {
		t.Fatalf("expected full date/time range, got %+v", full)
	}
}

func TestNormalize_RejectsMissingBoundaries(t *testing.T) {
	zone := seoulZone(t)
	adapter := New()

	// No daily summary at all.
	if _, ok := adapter.Normalize(core.SourceRecord{Payload: map[string]any{}}, "2026-03-02", core.NormalizePolicy{Zone: zone}); ok {
		t.Fatalf("expected empty payload to reject")
	}

	// Missing end timestamp rejects even with skip-zero off.
	payload := sleepPayload(map[string]any{
		"sleepStartTimestampGMT": float64(1_700_000_000_000),
		"deepSleepSeconds":       float64(3600),
	}, nil)
	if _, ok := adapter.Normalize(core.SourceRecord{Payload: payload}, "2026-03-02", core.NormalizePolicy{SkipZeroSleep: false, Zone: zone}); ok {
		t.Fatalf("expected missing end timestamp to reject")
	}
}

func TestNormalize_SkipZeroPolicy(t *testing.T) {
	zone := seoulZone(t)
	payload := sleepPayload(map[string]any{
		"sleepStartTimestampGMT": float64(1_700_000_000_000),
		"sleepEndTimestampGMT":   float64(1_700_030_000_000),
	}, nil)

	adapter := New()
	if _, ok := adapter.Normalize(core.SourceRecord{Payload: payload}, "2026-03-02", core.NormalizePolicy{SkipZeroSleep: true, Zone: zone}); ok {
		t.Fatalf("expected all-zero night to reject under skip-zero policy")
	}
	if _, ok := adapter.Normalize(core.SourceRecord{Payload: payload}, "2026-03-02", core.NormalizePolicy{SkipZeroSleep: false, Zone: zone}); !ok {
		t.Fatalf("expected all-zero night to pass with skip-zero off")
	}
}

func TestNormalize_RestingHRFallsBackToDailySummary(t *testing.T) {
	zone := seoulZone(t)
	payload := sleepPayload(map[string]any{
		"sleepStartTimestampGMT": float64(1_700_000_000_000),
		"sleepEndTimestampGMT":   float64(1_700_030_000_000),
		"lightSleepSeconds":      float64(3600),
		"restingHeartRate":       float64(47),
	}, nil)

	adapter := New()
	rec, ok := adapter.Normalize(core.SourceRecord{Payload: payload}, "2026-03-02", core.NormalizePolicy{SkipZeroSleep: true, Zone: zone})
	if !ok {
		t.Fatalf("expected record to normalize")
	}
	if got := adapter.BuildFields(rec)[FieldRestingHR].Number; got != 47 {
		t.Fatalf("expected fallback resting hr 47, got %v", got)
	}
}

func TestValiditySignal(t *testing.T) {
	adapter := New()
	if !adapter.ValiditySignal(core.SinkRow{Fields: map[string]any{FieldRestingHR: float64(60)}}) {
		t.Fatalf("expected positive resting hr to read valid")
	}
	if adapter.ValiditySignal(core.SinkRow{Fields: map[string]any{FieldRestingHR: float64(0)}}) {
		t.Fatalf("expected zero resting hr to read invalid")
	}
	if adapter.ValiditySignal(core.SinkRow{Fields: map[string]any{}}) {
		t.Fatalf("expected absent resting hr to read invalid")
	}
}

func TestIcon(t *testing.T) {
	icon := New().Icon(core.NormalizedRecord{})
	if icon == nil || icon.Emoji != "😴" {
		t.Fatalf("expected sleep emoji icon, got %+v", icon)
	}
}
