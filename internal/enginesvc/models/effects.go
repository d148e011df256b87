package models

import "github.com/shopspring/decimal"

// TransactionEffects is the set of counter updates a recording applies in
// the same atomic unit as the transaction insert. The treasury delta is not
// here: it always comes from the transaction's own TreasuryEffect.
type TransactionEffects struct {
	SessionID      *int64
	TotalPaidDelta decimal.Decimal
	PayoutDelta    decimal.Decimal
	RebuysDelta    int
	AddOnsDelta    int
	StackDelta     int64
	PrizePoolDelta decimal.Decimal
}
