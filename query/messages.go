package query

import (
	"fmt"
)

const (
	TypeListRuns = "daypulse.query.runs.list"
)

type ListRunsMessage struct {
	Limit int
}

func (ListRunsMessage) Type() string { return TypeListRuns }

func (m ListRunsMessage) Validate() error {
	if m.Limit < 0 {
		return fmt.Errorf("query: limit must be >= 0")
	}
	return nil
}
