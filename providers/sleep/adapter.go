package sleep

import (
	"fmt"

	"github.com/daypulse/daypulse/core"
	"github.com/daypulse/daypulse/providers/common"
)

// Destination property names for the sleep collection.
const (
	FieldTimes          = "Times"
	FieldDate           = "Date"
	FieldTotalSleepH    = "Total Sleep (h)"
	FieldLightSleepH    = "Light Sleep (h)"
	FieldDeepSleepH     = "Deep Sleep (h)"
	FieldREMSleepH      = "REM Sleep (h)"
	FieldAwakeTimeH     = "Awake Time (h)"
	FieldTotalSleepText = "Total Sleep"
	FieldLightSleepText = "Light Sleep"
	FieldDeepSleepText  = "Deep Sleep"
	FieldREMSleepText   = "REM Sleep"
	FieldAwakeTimeText  = "Awake Time"
	FieldRestingHR      = "Resting HR"
	FieldFullDateTime   = "Full Date/Time"
)

const recordEmoji = "😴"

// Adapter maps tracker sleep payloads onto the sleep collection schema.
type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) ID() core.MetricID {
	return core.MetricSleep
}

// Normalize rejects records missing the daily summary or either boundary
// timestamp regardless of policy, and all-zero nights when the skip-zero
// policy is on. The record date is always the caller's target date, never the
// calendar date embedded in the payload.
func (a *Adapter) Normalize(src core.SourceRecord, targetDate string, policy core.NormalizePolicy) (core.NormalizedRecord, bool) {
	daily := common.MapAt(src.Payload, "dailySleepDTO")
	if len(daily) == 0 {
		return core.NormalizedRecord{}, false
	}

	startTS := common.Int64At(daily, "sleepStartTimestampGMT")
	endTS := common.Int64At(daily, "sleepEndTimestampGMT")
	if startTS == 0 || endTS == 0 {
		return core.NormalizedRecord{}, false
	}

	deepSeconds := common.Int64At(daily, "deepSleepSeconds")
	lightSeconds := common.Int64At(daily, "lightSleepSeconds")
	remSeconds := common.Int64At(daily, "remSleepSeconds")
	awakeSeconds := common.Int64At(daily, "awakeSleepSeconds")
	totalSeconds := deepSeconds + lightSeconds + remSeconds
	if policy.SkipZeroSleep && totalSeconds == 0 {
		return core.NormalizedRecord{}, false
	}

	restingHR := common.NumberAt(src.Payload, "restingHeartRate")
	if restingHR == 0 {
		restingHR = common.NumberAt(daily, "restingHeartRate")
	}

	zone := policy.Zone
	label := fmt.Sprintf("%s → %s", common.ClockLabel(startTS, zone), common.ClockLabel(endTS, zone))

	return core.NormalizedRecord{
		Metric: core.MetricSleep,
		Date:   targetDate,
		Label:  label,
		Values: map[string]any{
			"times_title":    label,
			"total_seconds":  totalSeconds,
			"light_seconds":  lightSeconds,
			"deep_seconds":   deepSeconds,
			"rem_seconds":    remSeconds,
			"awake_seconds":  awakeSeconds,
			"resting_hr":     restingHR,
			"start_iso":      common.ISOLocal(startTS, zone),
			"end_iso":        common.ISOLocal(endTS, zone),
			"start_ts_milli": startTS,
			"end_ts_milli":   endTS,
		},
	}, true
}

func (a *Adapter) BuildFields(rec core.NormalizedRecord) core.FieldSet {
	totalSeconds := common.Int64At(rec.Values, "total_seconds")
	lightSeconds := common.Int64At(rec.Values, "light_seconds")
	deepSeconds := common.Int64At(rec.Values, "deep_seconds")
	remSeconds := common.Int64At(rec.Values, "rem_seconds")
	awakeSeconds := common.Int64At(rec.Values, "awake_seconds")

	fields := core.FieldSet{
		FieldTimes: core.TitleField(common.StringAt(rec.Values, "times_title")),
		FieldDate:  core.DateField(rec.Date),

		FieldTotalSleepH: core.NumberField(common.SecondsToHours(totalSeconds)),
		FieldLightSleepH: core.NumberField(common.SecondsToHours(lightSeconds)),
		FieldDeepSleepH:  core.NumberField(common.SecondsToHours(deepSeconds)),
		FieldREMSleepH:   core.NumberField(common.SecondsToHours(remSeconds)),
		FieldAwakeTimeH:  core.NumberField(common.SecondsToHours(awakeSeconds)),

		FieldTotalSleepText: core.RichTextField(common.FormatDuration(totalSeconds)),
		FieldLightSleepText: core.RichTextField(common.FormatDuration(lightSeconds)),
		FieldDeepSleepText:  core.RichTextField(common.FormatDuration(deepSeconds)),
		FieldREMSleepText:   core.RichTextField(common.FormatDuration(remSeconds)),
		FieldAwakeTimeText:  core.RichTextField(common.FormatDuration(awakeSeconds)),

		FieldRestingHR: core.NumberField(common.NumberAt(rec.Values, "resting_hr")),
	}

	startISO := common.StringAt(rec.Values, "start_iso")
	endISO := common.StringAt(rec.Values, "end_iso")
	if startISO != "" {
		if endISO != "" {
			fields[FieldFullDateTime] = core.DateRangeField(startISO, endISO)
		} else {
			fields[FieldFullDateTime] = core.DateField(startISO)
		}
	}

	return fields
}

// ValiditySignal treats a stored night as real when its resting heart rate is
// positive. A zero reads as a placeholder row that still needs repair.
func (a *Adapter) ValiditySignal(row core.SinkRow) bool {
	return common.NumberAt(row.Fields, FieldRestingHR) > 0
}

func (a *Adapter) Icon(core.NormalizedRecord) *core.RecordIcon {
	return &core.RecordIcon{Emoji: recordEmoji}
}

var _ core.MetricAdapter = (*Adapter)(nil)
