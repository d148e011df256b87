package engine

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

func tx(ttype models.TxType, amount int64) *models.Transaction {
	return &models.Transaction{TType: ttype, Amount: decimal.NewFromInt(amount)}
}

// 9 players at $50, two $50 rebuys, 65/30/5 payouts of the $550 pool.
func nineHandedTxs() []*models.Transaction {
	var txs []*models.Transaction
	for i := 0; i < 9; i++ {
		txs = append(txs, tx(models.TxBuyIn, 50))
	}
	txs = append(txs, tx(models.TxRebuy, 50), tx(models.TxRebuy, 50))
	txs = append(txs, tx(models.TxPayout, 357), tx(models.TxPayout, 165), tx(models.TxPayout, 28))
	return txs
}

func TestSettlementBalancedScenario(t *testing.T) {
	g := &models.Game{ID: 7, PrizePool: decimal.NewFromInt(550)}
	v := ComputeSettlement(g, nineHandedTxs())

	assert.True(t, v.MoneyIn.Equal(decimal.NewFromInt(550)))
	assert.True(t, v.Variance.IsZero())
	assert.True(t, v.NetPrizePool.Equal(decimal.NewFromInt(550)))
	assert.True(t, v.Payouts.Equal(decimal.NewFromInt(550)))
	assert.True(t, v.IsBalanced)
}

func TestSettlementVoidedBuyInBreaksBalance(t *testing.T) {
	g := &models.Game{ID: 7, PrizePool: decimal.NewFromInt(550)}
	txs := nineHandedTxs()
	txs[0].IsVoided = true

	v := ComputeSettlement(g, txs)
	assert.True(t, v.MoneyIn.Equal(decimal.NewFromInt(500)))
	assert.True(t, v.Variance.Equal(decimal.NewFromInt(-50)))
	assert.False(t, v.IsBalanced)
}

func TestSettlementExpensesReduceNetPool(t *testing.T) {
	g := &models.Game{ID: 7, PrizePool: decimal.NewFromInt(550)}
	txs := nineHandedTxs()[:11] // drop the payouts
	txs = append(txs, tx(models.TxExpense, 50))
	txs = append(txs, tx(models.TxPayout, 325), tx(models.TxPayout, 150), tx(models.TxPayout, 25))

	v := ComputeSettlement(g, txs)
	assert.True(t, v.Variance.IsZero())
	assert.True(t, v.NetPrizePool.Equal(decimal.NewFromInt(500)))
	assert.True(t, v.IsBalanced)
}

func TestSettlementPayoutMismatch(t *testing.T) {
	g := &models.Game{ID: 7, PrizePool: decimal.NewFromInt(550)}
	txs := nineHandedTxs()
	txs = append(txs, tx(models.TxPayout, 1))

	v := ComputeSettlement(g, txs)
	assert.True(t, v.Variance.IsZero())
	assert.False(t, v.IsBalanced, "payouts above net pool must unbalance")
}

func TestSettlementIgnoresNonGameMoneyTypes(t *testing.T) {
	g := &models.Game{ID: 7, PrizePool: decimal.NewFromInt(550)}
	txs := nineHandedTxs()
	txs = append(txs,
		tx(models.TxBountyCollected, 25),
		tx(models.TxDuesPayment, 100),
		tx(models.TxPlayerBalAdjust, 10),
	)
	v := ComputeSettlement(g, txs)
	assert.True(t, v.IsBalanced)
}

func TestTreasuryEffectDirections(t *testing.T) {
	credits := []models.TxType{models.TxBuyIn, models.TxRebuy, models.TxAddOn, models.TxDuesPayment, models.TxTreasuryAdjust}
	debits := []models.TxType{models.TxPayout, models.TxBountyCollected, models.TxExpense}

	for _, tt := range credits {
		assert.True(t, tx(tt, 10).TreasuryEffect().Equal(decimal.NewFromInt(10)), string(tt))
	}
	for _, tt := range debits {
		assert.True(t, tx(tt, 10).TreasuryEffect().Equal(decimal.NewFromInt(-10)), string(tt))
	}
	assert.True(t, tx(models.TxPlayerBalAdjust, 10).TreasuryEffect().IsZero())
}

// Backwards reconstruction must agree with a forwards replay from zero.
func TestLedgerPageReconstruction(t *testing.T) {
	history := []*models.Transaction{ // oldest first
		tx(models.TxDuesPayment, 100),
		tx(models.TxBuyIn, 50),
		tx(models.TxBuyIn, 50),
		tx(models.TxExpense, 30),
		tx(models.TxRebuy, 50),
		tx(models.TxPayout, 120),
		tx(models.TxTreasuryAdjust, 500),
		tx(models.TxBuyIn, 50),
	}
	for i, h := range history {
		h.ID = int64(i + 1)
	}

	// forwards replay: balance after each transaction
	running := decimal.Zero
	after := make([]decimal.Decimal, len(history))
	for i, h := range history {
		running = running.Add(h.TreasuryEffect())
		after[i] = running
	}
	current := running

	// page 2 of size 3, newest first: rows are history[4], [3], [2];
	// newer-than-page is history[7], [6], [5]
	newer := []*models.Transaction{history[7], history[6], history[5]}
	rows := []*models.Transaction{history[4], history[3], history[2]}

	page := BuildLedgerPage(1, 2, 3, current, newer, rows)
	require.Len(t, page.Rows, 3)
	assert.True(t, page.Rows[0].Balance.Equal(after[4]), "got %s want %s", page.Rows[0].Balance, after[4])
	assert.True(t, page.Rows[1].Balance.Equal(after[3]))
	assert.True(t, page.Rows[2].Balance.Equal(after[2]))
	assert.True(t, page.CurrentBalance.Equal(current))
}

func TestLedgerFirstPageTopRowIsCurrentBalance(t *testing.T) {
	history := []*models.Transaction{tx(models.TxBuyIn, 50), tx(models.TxPayout, 20)}
	current := decimal.NewFromInt(30)

	page := BuildLedgerPage(1, 1, 10, current, nil, []*models.Transaction{history[1], history[0]})
	assert.True(t, page.Rows[0].Balance.Equal(current))
	assert.True(t, page.Rows[1].Balance.Equal(decimal.NewFromInt(50)))
}

func TestComputePoints(t *testing.T) {
	cfg := models.DefaultClubSettings(1)
	first := 1
	tenth := 10

	s := &models.GameSession{FinishPosition: &first, BountiesWon: 3}
	assert.Equal(t, 10+3*5+50, ComputePoints(s, cfg))

	s = &models.GameSession{FinishPosition: &tenth}
	assert.Equal(t, 10, ComputePoints(s, cfg), "past the cutoff only base points remain")

	s = &models.GameSession{}
	assert.Equal(t, 10, ComputePoints(s, cfg))
}
