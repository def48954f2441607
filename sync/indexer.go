package sync

import (
	"context"
	"strings"

	"github.com/daypulse/daypulse/core"
)

// BuildSinkIndex pages through every destination record in the window and
// indexes it by date with the adapter's validity signal attached. The build
// is all-or-nothing: any page failure aborts the run, because a partial index
// would misclassify every date it is missing and trigger spurious creates.
func BuildSinkIndex(
	ctx context.Context,
	store core.StoreClient,
	adapter core.MetricAdapter,
	query core.SinkQuery,
) (*core.SinkIndex, error) {
	index := core.NewSinkIndex()
	cursor := ""
	for {
		query.Cursor = cursor
		page, err := store.QueryByDateRange(ctx, query)
		if err != nil {
			return nil, core.IndexError(err, "sync: destination index build failed")
		}
		for _, row := range page.Rows {
			date := strings.TrimSpace(row.Date)
			if date == "" {
				continue
			}
			index.Add(core.SinkEntry{
				RecordID: row.ID,
				Date:     date,
				Valid:    adapter.ValiditySignal(row),
			})
		}
		if !page.HasMore {
			return index, nil
		}
		cursor = page.NextCursor
	}
}
