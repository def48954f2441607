package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/daypulse/daypulse/core"
)

type runRecord struct {
	bun.BaseModel `bun:"table:sync_runs,alias:sr"`

	ID             string         `bun:"id,pk"`
	Metric         string         `bun:"metric,notnull"`
	WindowStart    string         `bun:"window_start,notnull"`
	WindowEnd      string         `bun:"window_end,notnull"`
	Created        int            `bun:"created,notnull"`
	Updated        int            `bun:"updated,notnull"`
	Skipped        int            `bun:"skipped,notnull"`
	Errored        int            `bun:"errored,notnull"`
	DuplicateDates int            `bun:"duplicate_dates,notnull"`
	Status         string         `bun:"status,notnull"`
	Error          string         `bun:"error"`
	Metadata       map[string]any `bun:"metadata,type:jsonb,notnull"`
	StartedAt      time.Time      `bun:"started_at,nullzero"`
	FinishedAt     time.Time      `bun:"finished_at,nullzero"`
	CreatedAt      time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func newRunRecord(run core.RunRecord) *runRecord {
	metadata := run.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &runRecord{
		ID:             run.ID,
		Metric:         run.Metric,
		WindowStart:    run.WindowStart,
		WindowEnd:      run.WindowEnd,
		Created:        run.Created,
		Updated:        run.Updated,
		Skipped:        run.Skipped,
		Errored:        run.Errored,
		DuplicateDates: run.DuplicateDates,
		Status:         string(run.Status),
		Error:          run.Error,
		Metadata:       metadata,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
		CreatedAt:      run.CreatedAt,
	}
}

func (r *runRecord) toDomain() core.RunRecord {
	if r == nil {
		return core.RunRecord{}
	}
	return core.RunRecord{
		ID:             r.ID,
		Metric:         r.Metric,
		WindowStart:    r.WindowStart,
		WindowEnd:      r.WindowEnd,
		Created:        r.Created,
		Updated:        r.Updated,
		Skipped:        r.Skipped,
		Errored:        r.Errored,
		DuplicateDates: r.DuplicateDates,
		Status:         core.RunStatus(r.Status),
		Error:          r.Error,
		Metadata:       r.Metadata,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
		CreatedAt:      r.CreatedAt,
	}
}
