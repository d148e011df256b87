package engine

import (
	"github.com/shopspring/decimal"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// ComputeSettlement aggregates a game's non-voided transactions into the
// reconciliation view:
//
//	moneyIn      = buy-ins + rebuys + add-ons
//	variance     = moneyIn - prizePool
//	netPrizePool = prizePool - expenses
//	isBalanced   = variance == 0 && payouts == netPrizePool
func ComputeSettlement(g *models.Game, txs []*models.Transaction) *models.SettlementView {
	moneyIn := decimal.Zero
	expenses := decimal.Zero
	payouts := decimal.Zero
	for _, t := range txs {
		if t.IsVoided {
			continue
		}
		switch t.TType {
		case models.TxBuyIn, models.TxRebuy, models.TxAddOn:
			moneyIn = moneyIn.Add(t.Amount)
		case models.TxExpense:
			expenses = expenses.Add(t.Amount)
		case models.TxPayout:
			payouts = payouts.Add(t.Amount)
		}
	}
	variance := moneyIn.Sub(g.PrizePool)
	netPool := g.PrizePool.Sub(expenses)
	return &models.SettlementView{
		GameID:       g.ID,
		MoneyIn:      moneyIn,
		PrizePool:    g.PrizePool,
		Variance:     variance,
		Expenses:     expenses,
		NetPrizePool: netPool,
		Payouts:      payouts,
		IsBalanced:   variance.IsZero() && payouts.Equal(netPool),
	}
}

// BuildLedgerPage reconstructs per-row running balances for a page of the
// club ledger. Only the current treasury total is persisted, so the walk
// starts there and goes backwards through time: first undo every non-voided
// transaction newer than the page to land on the balance as of the page's
// top row, then walk the page (newest first), recording each row's balance
// before undoing its own effect to reach the next, older, row.
//
// newer and page must both be non-voided and ordered newest first.
func BuildLedgerPage(clubID int64, page, pageSize int, current decimal.Decimal, newer, rows []*models.Transaction) *models.LedgerPage {
	bal := current
	for _, t := range newer {
		bal = bal.Sub(t.TreasuryEffect())
	}
	out := &models.LedgerPage{
		ClubID:         clubID,
		Page:           page,
		PageSize:       pageSize,
		CurrentBalance: current,
		Rows:           make([]*models.LedgerRow, 0, len(rows)),
	}
	for _, t := range rows {
		out.Rows = append(out.Rows, &models.LedgerRow{Transaction: t, Balance: bal})
		bal = bal.Sub(t.TreasuryEffect())
	}
	return out
}

// ComputePoints scores one finished session: a base for showing up, a cut
// per bounty collected, and a position bonus that tapers to zero past the
// configured cutoff rank.
func ComputePoints(s *models.GameSession, cfg *models.ClubSettings) int {
	points := cfg.PointsBase + s.BountiesWon*cfg.PointsPerBounty
	if s.FinishPosition != nil {
		points += cfg.PositionBonus(*s.FinishPosition)
	}
	return points
}
