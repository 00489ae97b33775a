package advance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOutstanding(t *testing.T) {
	txs := []Transaction{
		{Kind: KindDisbursement, Amount: decimal.NewFromInt(1500)},
		{Kind: KindDisbursement, Amount: decimal.NewFromInt(1000)},
		{Kind: KindRepayment, Amount: decimal.NewFromInt(500)},
	}
	assert.True(t, decimal.NewFromInt(2000).Equal(Outstanding(txs)))

	assert.True(t, Outstanding(nil).IsZero())

	overpaid := []Transaction{
		{Kind: KindDisbursement, Amount: decimal.NewFromInt(100)},
		{Kind: KindRepayment, Amount: decimal.NewFromInt(300)},
	}
	assert.True(t, Outstanding(overpaid).IsZero())
}
