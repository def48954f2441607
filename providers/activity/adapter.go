package activity

import (
	"github.com/daypulse/daypulse/core"
	"github.com/daypulse/daypulse/providers/common"
)

// Destination property names for the activities collection.
const (
	FieldDate            = "Date"
	FieldActivityType    = "Activity Type"
	FieldSubactivityType = "Subactivity Type"
	FieldActivityName    = "Activity Name"
	FieldDistance        = "Distance (km)"
	FieldDuration        = "Duration (min)"
	FieldCalories        = "Calories"
	FieldAvgPace         = "Avg Pace"
	FieldAvgPower        = "Avg Power"
	FieldMaxPower        = "Max Power"
	FieldTrainingEffect  = "Training Effect"
	FieldAerobic         = "Aerobic"
	FieldAerobicEffect   = "Aerobic Effect"
	FieldAnaerobic       = "Anaerobic"
	FieldAnaerobicEffect = "Anaerobic Effect"
	FieldPR              = "PR"
	FieldFav             = "Fav"
)

// Adapter maps tracker activity payloads onto the activities collection
// schema.
type Adapter struct{}

func New() *Adapter {
	return &Adapter{}
}

func (a *Adapter) ID() core.MetricID {
	return core.MetricActivity
}

// Normalize accepts any non-empty activity payload: a recorded session is
// meaningful even with zero distance, so the skip-zero policy does not apply.
func (a *Adapter) Normalize(src core.SourceRecord, targetDate string, _ core.NormalizePolicy) (core.NormalizedRecord, bool) {
	if len(src.Payload) == 0 {
		return core.NormalizedRecord{}, false
	}

	name := common.StringAt(src.Payload, "activityName")
	if name == "" {
		name = "Unnamed Activity"
	}
	name = FormatActivityName(name)

	typeKey := common.StringAt(common.MapAt(src.Payload, "activityType"), "typeKey")
	activityType, activitySubtype := FormatActivityType(typeKey, name)

	return core.NormalizedRecord{
		Metric: core.MetricActivity,
		Date:   targetDate,
		Label:  name,
		Values: map[string]any{
			"name":              name,
			"type":              activityType,
			"subtype":           activitySubtype,
			"distance_meters":   common.NumberAt(src.Payload, "distance"),
			"duration_seconds":  common.NumberAt(src.Payload, "duration"),
			"calories":          common.NumberAt(src.Payload, "calories"),
			"average_speed":     common.NumberAt(src.Payload, "averageSpeed"),
			"avg_power":         common.NumberAt(src.Payload, "avgPower"),
			"max_power":         common.NumberAt(src.Payload, "maxPower"),
			"training_effect":   FormatTrainingEffect(stringOr(src.Payload, "trainingEffectLabel", "Unknown")),
			"aerobic":           common.NumberAt(src.Payload, "aerobicTrainingEffect"),
			"aerobic_effect":    FormatTrainingMessage(stringOr(src.Payload, "aerobicTrainingEffectMessage", "Unknown")),
			"anaerobic":         common.NumberAt(src.Payload, "anaerobicTrainingEffect"),
			"anaerobic_effect":  FormatTrainingMessage(stringOr(src.Payload, "anaerobicTrainingEffectMessage", "Unknown")),
			"personal_record":   common.BoolAt(src.Payload, "pr"),
			"favorite":          common.BoolAt(src.Payload, "favorite"),
		},
	}, true
}

func stringOr(payload map[string]any, key, fallback string) string {
	if value := common.StringAt(payload, key); value != "" {
		return value
	}
	return fallback
}

func (a *Adapter) BuildFields(rec core.NormalizedRecord) core.FieldSet {
	return core.FieldSet{
		FieldDate:            core.DateField(rec.Date),
		FieldActivityType:    core.SelectField(common.StringAt(rec.Values, "type")),
		FieldSubactivityType: core.SelectField(common.StringAt(rec.Values, "subtype")),
		FieldActivityName:    core.TitleField(common.StringAt(rec.Values, "name")),
		FieldDistance:        core.NumberField(common.MetersToKilometers(common.NumberAt(rec.Values, "distance_meters"))),
		FieldDuration:        core.NumberField(common.Round(common.NumberAt(rec.Values, "duration_seconds")/60, 2)),
		FieldCalories:        core.NumberField(common.Round(common.NumberAt(rec.Values, "calories"), 0)),
		FieldAvgPace:         core.RichTextField(common.FormatPace(common.NumberAt(rec.Values, "average_speed"))),
		FieldAvgPower:        core.NumberField(common.Round(common.NumberAt(rec.Values, "avg_power"), 1)),
		FieldMaxPower:        core.NumberField(common.Round(common.NumberAt(rec.Values, "max_power"), 1)),
		FieldTrainingEffect:  core.SelectField(common.StringAt(rec.Values, "training_effect")),
		FieldAerobic:         core.NumberField(common.Round(common.NumberAt(rec.Values, "aerobic"), 1)),
		FieldAerobicEffect:   core.SelectField(common.StringAt(rec.Values, "aerobic_effect")),
		FieldAnaerobic:       core.NumberField(common.Round(common.NumberAt(rec.Values, "anaerobic"), 1)),
		FieldAnaerobicEffect: core.SelectField(common.StringAt(rec.Values, "anaerobic_effect")),
		FieldPR:              core.CheckboxField(common.BoolAt(rec.Values, "personal_record")),
		FieldFav:             core.CheckboxField(common.BoolAt(rec.Values, "favorite")),
	}
}

// ValiditySignal is existence-based for activities: any stored row for the
// date counts as synced.
func (a *Adapter) ValiditySignal(core.SinkRow) bool {
	return true
}

func (a *Adapter) Icon(rec core.NormalizedRecord) *core.RecordIcon {
	url := IconURL(common.StringAt(rec.Values, "type"), common.StringAt(rec.Values, "subtype"))
	if url == "" {
		return nil
	}
	return &core.RecordIcon{ExternalURL: url}
}

var _ core.MetricAdapter = (*Adapter)(nil)
