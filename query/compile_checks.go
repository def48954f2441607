package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/daypulse/daypulse/core"
)

var (
	_ gocmd.Querier[ListRunsMessage, []core.RunRecord] = (*ListRunsQuery)(nil)
)
