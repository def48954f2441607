package query

import (
	"context"
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/daypulse/daypulse/core"
)

// RunReader lists recorded reconciliation runs.
type RunReader interface {
	List(ctx context.Context, limit int) ([]core.RunRecord, error)
}

type ListRunsQuery struct {
	reader RunReader
}

func NewListRunsQuery(reader RunReader) *ListRunsQuery {
	return &ListRunsQuery{reader: reader}
}

func (q *ListRunsQuery) Query(ctx context.Context, msg ListRunsMessage) ([]core.RunRecord, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: run reader is required")
	}
	return q.reader.List(ctx, msg.Limit)
}

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.SyncErrorInternal)
}
