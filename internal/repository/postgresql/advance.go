package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timeclock-payroll/internal/domain/advance"
	"github.com/cmlabs-hris/timeclock-payroll/internal/pkg/database"
)

type advanceLedgerRepository struct {
	db *database.DB
}

// ListByEmployeeAndRange implements advance.LedgerRepository.
func (r *advanceLedgerRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, start, end time.Time, companyID string) ([]advance.Transaction, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, company_id, date, kind, amount, note, created_at
		FROM advance_transactions
		WHERE employee_id::text = $1 AND company_id = $2 AND date BETWEEN $3 AND $4
		ORDER BY date ASC, created_at ASC
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", advance.ErrLedgerUnavailable, err)
	}
	defer rows.Close()

	var txs []advance.Transaction
	for rows.Next() {
		var tx advance.Transaction
		if err := rows.Scan(
			&tx.ID, &tx.EmployeeID, &tx.CompanyID, &tx.Date, &tx.Kind, &tx.Amount, &tx.Note, &tx.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: failed to scan advance transaction: %w", advance.ErrLedgerUnavailable, err)
		}
		txs = append(txs, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", advance.ErrLedgerUnavailable, err)
	}

	return txs, nil
}

func NewAdvanceLedgerRepository(db *database.DB) advance.LedgerRepository {
	return &advanceLedgerRepository{db: db}
}
