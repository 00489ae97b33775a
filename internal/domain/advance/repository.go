package advance

import (
	"context"
	"time"
)

type LedgerRepository interface {
	// ListByEmployeeAndRange returns ledger entries dated within [start, end].
	ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time, companyID string) ([]Transaction, error)
}
