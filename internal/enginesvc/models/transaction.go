package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TxType string

const (
	TxBuyIn           TxType = "BUY_IN"
	TxRebuy           TxType = "REBUY"
	TxAddOn           TxType = "ADD_ON"
	TxPayout          TxType = "PAYOUT"
	TxBountyCollected TxType = "BOUNTY_COLLECTED"
	TxExpense         TxType = "EXPENSE"
	TxDuesPayment     TxType = "DUES_PAYMENT"
	TxTreasuryAdjust  TxType = "TREASURY_ADJUSTMENT"
	TxPlayerBalAdjust TxType = "PLAYER_BALANCE_ADJUSTMENT"
)

// TreasuryDirection is the signed multiplier a transaction type applies to
// the club treasury: +1 credit, -1 debit, 0 no treasury effect.
func (t TxType) TreasuryDirection() int {
	switch t {
	case TxBuyIn, TxRebuy, TxAddOn, TxDuesPayment, TxTreasuryAdjust:
		return 1
	case TxPayout, TxBountyCollected, TxExpense:
		return -1
	case TxPlayerBalAdjust:
		return 0
	default:
		return 0
	}
}

func (t TxType) Valid() bool {
	switch t {
	case TxBuyIn, TxRebuy, TxAddOn, TxPayout, TxBountyCollected, TxExpense,
		TxDuesPayment, TxTreasuryAdjust, TxPlayerBalAdjust:
		return true
	}
	return false
}

// Transaction is an immutable financial event. Amount is a non-negative
// magnitude; the sign comes from the type's treasury direction. The only
// mutation ever applied after insert is the void stamp.
type Transaction struct {
	ID          int64           `json:"id"`
	ClubID      int64           `json:"club_id"`
	GameID      *int64          `json:"game_id"`
	PersonID    *int64          `json:"person_id"`
	TType       TxType          `json:"ttype"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	TRef        string          `json:"tref"` // uuid, stable external reference
	IsVoided    bool            `json:"is_voided"`
	VoidedBy    *int64          `json:"voided_by"`
	VoidedAt    *time.Time      `json:"voided_at"`
	VoidReason  string          `json:"void_reason"`
	ActorID     int64           `json:"actor_id"`
	CreatedAt   time.Time       `json:"created_at"`
}

// TreasuryEffect is the signed amount this transaction applied to the club
// treasury when it was recorded. Voiding applies the exact negation once.
func (t *Transaction) TreasuryEffect() decimal.Decimal {
	switch t.TType.TreasuryDirection() {
	case 1:
		return t.Amount
	case -1:
		return t.Amount.Neg()
	}
	return decimal.Zero
}
