package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TreasuryBalance is the club's cash on hand. CurrentBalance always equals
// the signed sum of the club's non-voided transactions' treasury effects.
type TreasuryBalance struct {
	ClubID         int64           `json:"club_id"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	MinimumReserve decimal.Decimal `json:"minimum_reserve"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
