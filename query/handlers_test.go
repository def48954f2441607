package query

import (
	"context"
	"fmt"
	"testing"

	"github.com/daypulse/daypulse/core"
)

type stubRunReader struct {
	listFn func(ctx context.Context, limit int) ([]core.RunRecord, error)
}

func (s stubRunReader) List(ctx context.Context, limit int) ([]core.RunRecord, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, limit)
}

func TestListRunsQuery_DelegatesToReader(t *testing.T) {
	expected := []core.RunRecord{
		{ID: "run-2", Metric: "sleep"},
		{ID: "run-1", Metric: "sleep"},
	}
	reader := stubRunReader{
		listFn: func(_ context.Context, limit int) ([]core.RunRecord, error) {
			if limit != 5 {
				t.Fatalf("expected limit 5, got %d", limit)
			}
			return expected, nil
		},
	}

	q := NewListRunsQuery(reader)
	runs, err := q.Query(context.Background(), ListRunsMessage{Limit: 5})
	if err != nil {
		t.Fatalf("query runs: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "run-2" {
		t.Fatalf("unexpected runs %+v", runs)
	}
}

func TestListRunsQuery_PropagatesReaderError(t *testing.T) {
	reader := stubRunReader{
		listFn: func(context.Context, int) ([]core.RunRecord, error) {
			return nil, fmt.Errorf("sqlstore: run ledger store is not configured")
		},
	}
	if _, err := NewListRunsQuery(reader).Query(context.Background(), ListRunsMessage{}); err == nil {
		t.Fatalf("expected reader error to propagate")
	}
}

func TestListRunsQuery_RequiresReader(t *testing.T) {
	if _, err := NewListRunsQuery(nil).Query(context.Background(), ListRunsMessage{}); err == nil {
		t.Fatalf("expected missing reader to fail")
	}
}

func TestListRunsMessage_Validate(t *testing.T) {
	if err := (ListRunsMessage{Limit: 10}).Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	if err := (ListRunsMessage{Limit: -1}).Validate(); err == nil {
		t.Fatalf("expected negative limit to fail")
	}
}
