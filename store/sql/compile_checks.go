package sqlstore

import (
	"github.com/daypulse/daypulse/core"
)

var _ core.RunLedger = (*RunLedgerStore)(nil)
