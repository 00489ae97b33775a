package advance

import "errors"

var ErrLedgerUnavailable = errors.New("advance ledger unavailable")
