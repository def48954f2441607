package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/daypulse/daypulse/core"
)

const defaultRunListLimit = 20

// RunLedgerStore persists reconciliation run outcomes.
type RunLedgerStore struct {
	db   *bun.DB
	repo repository.Repository[*runRecord]
}

func NewRunLedgerStore(db *bun.DB) (*RunLedgerStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*runRecord](db, runRecordHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid run ledger repository wiring: %w", err)
		}
	}
	return &RunLedgerStore{
		db:   db,
		repo: repo,
	}, nil
}

// Record inserts one run outcome. Blank ids are assigned, and a zero
// CreatedAt is stamped with the current time.
func (s *RunLedgerStore) Record(ctx context.Context, run core.RunRecord) (core.RunRecord, error) {
	if s == nil || s.db == nil {
		return core.RunRecord{}, fmt.Errorf("sqlstore: run ledger store is not configured")
	}
	run.Metric = strings.TrimSpace(run.Metric)
	if run.Metric == "" {
		return core.RunRecord{}, fmt.Errorf("sqlstore: run metric is required")
	}
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = core.RunStatusCompleted
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	record := newRunRecord(run)
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return core.RunRecord{}, err
	}
	return record.toDomain(), nil
}

// List returns the most recent runs, newest first.
func (s *RunLedgerStore) List(ctx context.Context, limit int) ([]core.RunRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: run ledger store is not configured")
	}
	if limit <= 0 {
		limit = defaultRunListLimit
	}

	var records []*runRecord
	err := s.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	runs := make([]core.RunRecord, 0, len(records))
	for _, record := range records {
		runs = append(runs, record.toDomain())
	}
	return runs, nil
}
