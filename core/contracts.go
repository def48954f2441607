package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// TrackerClient is the upstream wearable-tracker boundary: one day-scoped
// query per call, returning the raw record or absent. Transport failures
// surface as errors and are contained at the per-day boundary by the engine.
type TrackerClient interface {
	FetchDaily(ctx context.Context, metric MetricID, date string) (SourceRecord, bool, error)
}

// SinkQuery selects destination records whose date falls inside the
// inclusive range, one page at a time.
type SinkQuery struct {
	Collection string
	StartDate  string
	EndDate    string
	Cursor     string
	PageSize   int
}

type SinkPage struct {
	Rows       []SinkRow
	NextCursor string
	HasMore    bool
}

type CreateRecordInput struct {
	Collection string
	Fields     FieldSet
	Icon       *RecordIcon
}

// StoreClient is the destination document-store boundary.
type StoreClient interface {
	QueryByDateRange(ctx context.Context, q SinkQuery) (SinkPage, error)
	CreateRecord(ctx context.Context, in CreateRecordInput) (string, error)
	UpdateRecord(ctx context.Context, recordID string, fields FieldSet) error
}

// MetricAdapter parameterizes the engine per metric type: normalization of
// raw source payloads, destination field construction, and extraction of the
// stored-record validity signal.
type MetricAdapter interface {
	ID() MetricID

	// Normalize converts a raw source record into destination-ready values
	// for the target date. It returns false when the record is unusable:
	// missing its minimal required sub-structure, or all-zero under the
	// caller's skip-zero policy.
	Normalize(src SourceRecord, targetDate string, policy NormalizePolicy) (NormalizedRecord, bool)

	// BuildFields renders the destination field set for a normalized record.
	BuildFields(rec NormalizedRecord) FieldSet

	// ValiditySignal reports whether a stored row reflects a real sync.
	// Absent fields must read as zero/false, never fail.
	ValiditySignal(row SinkRow) bool

	// Icon returns the optional decorative marker for created records.
	Icon(rec NormalizedRecord) *RecordIcon
}

type AdapterRegistry interface {
	Register(adapter MetricAdapter) error
	Get(metric MetricID) (MetricAdapter, bool)
	List() []MetricAdapter
}

// Pacer inserts the fixed inter-call delay that keeps the engine under the
// collaborators' rate limits.
type Pacer interface {
	Pause(ctx context.Context) error
}

// RunLedger persists run outcomes for later inspection.
type RunLedger interface {
	Record(ctx context.Context, record RunRecord) (RunRecord, error)
	List(ctx context.Context, limit int) ([]RunRecord, error)
}

// JobExecutionMessage describes one queued sync run.
type JobExecutionMessage struct {
	JobID          string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
}
