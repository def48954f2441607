package steps

import (
	"github.com/daypulse/daypulse/core"
	"github.com/daypulse/daypulse/providers/common"
)

// Destination property names for the steps collection.
const (
	FieldActivityType  = "Activity Type"
	FieldDate          = "Date"
	FieldTotalSteps    = "Total Steps"
	FieldStepGoal      = "Step Goal"
	FieldTotalDistance = "Total Distance (km)"
)

// ActivityTypeLabel is the fixed title every daily steps record carries.
const ActivityTypeLabel = "Walking"

// Adapter maps tracker daily-steps payloads onto the steps collection schema.
type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) ID() core.MetricID {
	return core.MetricSteps
}

func (a *Adapter) Normalize(src core.SourceRecord, targetDate string, policy core.NormalizePolicy) (core.NormalizedRecord, bool) {
	if len(src.Payload) == 0 {
		return core.NormalizedRecord{}, false
	}

	totalSteps := common.Int64At(src.Payload, "totalSteps")
	if policy.SkipZeroSteps && totalSteps == 0 {
		return core.NormalizedRecord{}, false
	}

	return core.NormalizedRecord{
		Metric: core.MetricSteps,
		Date:   targetDate,
		Label:  ActivityTypeLabel,
		Values: map[string]any{
			"total_steps":     totalSteps,
			"step_goal":       common.Int64At(src.Payload, "stepGoal"),
			"distance_meters": common.NumberAt(src.Payload, "totalDistance"),
		},
	}, true
}

func (a *Adapter) BuildFields(rec core.NormalizedRecord) core.FieldSet {
	return core.FieldSet{
		FieldActivityType:  core.TitleField(ActivityTypeLabel),
		FieldDate:          core.DateField(rec.Date),
		FieldTotalSteps:    core.NumberField(float64(common.Int64At(rec.Values, "total_steps"))),
		FieldStepGoal:      core.NumberField(float64(common.Int64At(rec.Values, "step_goal"))),
		FieldTotalDistance: core.NumberField(common.MetersToKilometers(common.NumberAt(rec.Values, "distance_meters"))),
	}
}

// ValiditySignal treats a stored day as real when it carries a positive step
// count; a zero-step row is a placeholder still waiting for device data.
func (a *Adapter) ValiditySignal(row core.SinkRow) bool {
	return common.NumberAt(row.Fields, FieldTotalSteps) > 0
}

func (a *Adapter) Icon(core.NormalizedRecord) *core.RecordIcon {
	return nil
}

var _ core.MetricAdapter = (*Adapter)(nil)
