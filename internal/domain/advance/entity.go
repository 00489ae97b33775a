package advance

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionKind string

const (
	KindDisbursement TransactionKind = "disbursement"
	KindRepayment    TransactionKind = "repayment"
)

// Transaction is one entry of the cash advance ledger.
type Transaction struct {
	ID         string
	EmployeeID string
	CompanyID  string
	Date       time.Time
	Kind       TransactionKind
	Amount     decimal.Decimal
	Note       *string
	CreatedAt  time.Time
}

// Outstanding nets disbursements against repayments, never below zero.
func Outstanding(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		switch tx.Kind {
		case KindRepayment:
			total = total.Sub(tx.Amount)
		default:
			total = total.Add(tx.Amount)
		}
	}
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}
