package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type SessionStatus string

const (
	SessionActive     SessionStatus = "active"
	SessionEliminated SessionStatus = "eliminated"
	SessionWinner     SessionStatus = "winner"
)

// GameSession is one player's participation in a game. Exactly one row
// exists per (game, person); it is created at check-in.
type GameSession struct {
	ID              int64           `json:"id"`
	GameID          int64           `json:"game_id"`
	PersonID        int64           `json:"person_id"`
	Status          SessionStatus   `json:"status"`
	TableNumber     *int            `json:"table_number"`
	SeatNumber      *int            `json:"seat_number"`
	SeatedAt        *time.Time      `json:"seated_at"`
	StartingStack   int64           `json:"starting_stack"`
	CurrentStack    int64           `json:"current_stack"`
	Rebuys          int             `json:"rebuys"`
	AddOns          int             `json:"add_ons"`
	BountiesWon     int             `json:"bounties_won"`
	BountiesLost    int             `json:"bounties_lost"`
	Payout          decimal.Decimal `json:"payout"`
	TotalPaid       decimal.Decimal `json:"total_paid"`
	FinishPosition  *int            `json:"finish_position"`
	PointsEarned    int             `json:"points_earned"`
	PointsAwardedAt *time.Time      `json:"points_awarded_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Seated reports whether the session currently holds a table/seat pair.
func (s *GameSession) Seated() bool {
	return s.TableNumber != nil && s.SeatNumber != nil
}
