package core

type testMetricAdapter struct {
	id MetricID
}

func (a testMetricAdapter) ID() MetricID {
	return a.id
}

func (a testMetricAdapter) Normalize(src SourceRecord, targetDate string, _ NormalizePolicy) (NormalizedRecord, bool) {
	return NormalizedRecord{Metric: a.id, Date: targetDate, Values: src.Payload}, true
}

func (a testMetricAdapter) BuildFields(rec NormalizedRecord) FieldSet {
	return FieldSet{"Date": DateField(rec.Date)}
}

func (a testMetricAdapter) ValiditySignal(SinkRow) bool {
	return true
}

func (a testMetricAdapter) Icon(NormalizedRecord) *RecordIcon {
	return nil
}
