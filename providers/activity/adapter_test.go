package activity

import (
	"testing"

	"github.com/daypulse/daypulse/core"
)

func TestFormatActivityType(t *testing.T) {
	cases := []struct {
		typeKey     string
		name        string
		wantType    string
		wantSubtype string
	}{
		{typeKey: "treadmill_running", wantType: "Running", wantSubtype: "Treadmill Running"},
		{typeKey: "barre", wantType: "Strength", wantSubtype: "Barre"},
		{typeKey: "rowing_v2", wantType: "Rowing", wantSubtype: "Rowing V2"},
		{typeKey: "yoga", wantType: "Yoga/Pilates", wantSubtype: "Yoga"},
		{typeKey: "pilates", wantType: "Yoga/Pilates", wantSubtype: "Pilates"},
		{typeKey: "running", wantType: "Running", wantSubtype: "Running"},
		{typeKey: "", wantType: "Unknown", wantSubtype: "Unknown"},
		{typeKey: "cycling", name: "Morning Meditation", wantType: "Meditation", wantSubtype: "Meditation"},
		{typeKey: "cardio", name: "Barre Class", wantType: "Strength", wantSubtype: "Barre"},
		{typeKey: "yoga", name: "Evening Stretch", wantType: "Stretching", wantSubtype: "Stretching"},
	}
	for _, tc := range cases {
		gotType, gotSubtype := FormatActivityType(tc.typeKey, tc.name)
		if gotType != tc.wantType || gotSubtype != tc.wantSubtype {
			t.Fatalf("FormatActivityType(%q, %q) = (%q, %q), want (%q, %q)",
				tc.typeKey, tc.name, gotType, gotSubtype, tc.wantType, tc.wantSubtype)
		}
	}
}

func TestFormatTrainingMessage(t *testing.T) {
	if got := FormatTrainingMessage("IMPROVING_AEROBIC_BASE"); got != "Impacting" {
		t.Fatalf("unexpected training message %q", got)
	}
	if got := FormatTrainingMessage("RECOVERY_RUN"); got != "Recovery" {
		t.Fatalf("unexpected training message %q", got)
	}
	if got := FormatTrainingMessage("SOMETHING_ELSE"); got != "SOMETHING_ELSE" {
		t.Fatalf("expected unmapped message to pass through, got %q", got)
	}
}

func TestFormatActivityName_RewritesEntertainment(t *testing.T) {
	if got := FormatActivityName("ENTERTAINMENT"); got != "Netflix" {
		t.Fatalf("expected Netflix, got %q", got)
	}
	if got := FormatActivityName("Lunch Run"); got != "Lunch Run" {
		t.Fatalf("expected name to pass through, got %q", got)
	}
}

func TestNormalize_BuildsActivityRecord(t *testing.T) {
	adapter := New()
	rec, ok := adapter.Normalize(core.SourceRecord{
		Metric: core.MetricActivity,
		Payload: map[string]any{
			"activityName": "Lunch Run",
			"activityType": map[string]any{"typeKey": "treadmill_running"},
			"distance":     float64(5230),
			"duration":     float64(1845),
			"calories":     float64(411.6),
			"averageSpeed": float64(2.835),
			"avgPower":     float64(240.25),
			"maxPower":     float64(410.91),
			"trainingEffectLabel":            "TEMPO",
			"aerobicTrainingEffect":          float64(3.14),
			"aerobicTrainingEffectMessage":   "IMPROVING_AEROBIC_BASE",
			"anaerobicTrainingEffect":        float64(0.52),
			"anaerobicTrainingEffectMessage": "NO_ANAEROBIC_BENEFIT",
			"pr":       true,
			"favorite": false,
		},
	}, "2026-03-02", core.NormalizePolicy{})
	if !ok {
		t.Fatalf("expected record to normalize")
	}

	fields := adapter.BuildFields(rec)
	if got := fields[FieldActivityType].Text; got != "Running" {
		t.Fatalf("expected Running type, got %q", got)
	}
	if got := fields[FieldSubactivityType].Text; got != "Treadmill Running" {
		t.Fatalf("expected Treadmill Running subtype, got %q", got)
	}
	if got := fields[FieldDistance].Number; got != 5.23 {
		t.Fatalf("expected 5.23km, got %v", got)
	}
	if got := fields[FieldDuration].Number; got != 30.75 {
		t.Fatalf("expected 30.75min, got %v", got)
	}
	if got := fields[FieldCalories].Number; got != 412 {
		t.Fatalf("expected calories rounded to 412, got %v", got)
	}
	if got := fields[FieldAvgPace].Text; got != "5:52 min/km" {
		t.Fatalf("unexpected pace %q", got)
	}
	if got := fields[FieldTrainingEffect].Text; got != "Tempo" {
		t.Fatalf("unexpected training effect %q", got)
	}
	if got := fields[FieldAerobicEffect].Text; got != "Impacting" {
		t.Fatalf("unexpected aerobic effect %q", got)
	}
	if got := fields[FieldAnaerobicEffect].Text; got != "No Benefit" {
		t.Fatalf("unexpected anaerobic effect %q", got)
	}
	if !fields[FieldPR].Checked {
		t.Fatalf("expected PR checkbox checked")
	}
	if fields[FieldFav].Checked {
		t.Fatalf("expected Fav checkbox unchecked")
	}
	if got := fields[FieldDate].Date; got != "2026-03-02" {
		t.Fatalf("expected pinned target date, got %q", got)
	}
}

func TestIcon_PrefersSubtype(t *testing.T) {
	adapter := New()
	icon := adapter.Icon(core.NormalizedRecord{Values: map[string]any{
		"type":    "Running",
		"subtype": "Treadmill Running",
	}})
	if icon == nil || icon.ExternalURL != activityIcons["Treadmill Running"] {
		t.Fatalf("expected treadmill icon, got %+v", icon)
	}

	icon = adapter.Icon(core.NormalizedRecord{Values: map[string]any{
		"type":    "Obscure Sport",
		"subtype": "Obscure Sport",
	}})
	if icon != nil {
		t.Fatalf("expected no icon for unmapped type, got %+v", icon)
	}
}

func TestValiditySignal_ExistenceBased(t *testing.T) {
	if !New().ValiditySignal(core.SinkRow{}) {
		t.Fatalf("expected any stored row to read valid")
	}
}
