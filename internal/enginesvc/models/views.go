package models

import "github.com/shopspring/decimal"

// GameStateView is the clock snapshot sent to clients and over the live
// feed. TimeRemainingMs is derived at read time, never stored.
type GameStateView struct {
	GameID            int64      `json:"game_id"`
	Status            GameStatus `json:"status"`
	CurrentLevel      int        `json:"current_level"`
	SmallBlind        int64      `json:"small_blind"`
	BigBlind          int64      `json:"big_blind"`
	Ante              int64      `json:"ante"`
	IsBreak           bool       `json:"is_break"`
	TimeRemainingMs   int64      `json:"time_remaining_ms"`
	PlayersRemaining  int        `json:"players_remaining"`
	PlayersRegistered int        `json:"players_registered"`
	PrizePool         string     `json:"prize_pool"`
}

// SeatMove is one proposed (or applied) relocation of a player.
type SeatMove struct {
	SessionID int64 `json:"session_id"`
	PersonID  int64 `json:"person_id"`
	FromTable int   `json:"from_table"`
	FromSeat  int   `json:"from_seat"`
	ToTable   int   `json:"to_table"`
	ToSeat    int   `json:"to_seat"`
}

// TableLayoutView is the full seating picture of a game.
type TableLayoutView struct {
	GameID int64             `json:"game_id"`
	Tables []*TableOccupancy `json:"tables"`
	Moves  []SeatMove        `json:"moves,omitempty"` // pending proposals, if any
}

type TableOccupancy struct {
	TableNumber int             `json:"table_number"`
	MaxSeats    int             `json:"max_seats"`
	IsActive    bool            `json:"is_active"`
	Seats       []*SeatedPlayer `json:"seats"`
}

type SeatedPlayer struct {
	SeatNumber int   `json:"seat_number"`
	PersonID   int64 `json:"person_id"`
	SessionID  int64 `json:"session_id"`
}

// SettlementView is the single source of truth for whether a game's books
// reconcile.
type SettlementView struct {
	GameID       int64           `json:"game_id"`
	MoneyIn      decimal.Decimal `json:"money_in"`
	PrizePool    decimal.Decimal `json:"prize_pool"`
	Variance     decimal.Decimal `json:"variance"`
	Expenses     decimal.Decimal `json:"expenses"`
	NetPrizePool decimal.Decimal `json:"net_prize_pool"`
	Payouts      decimal.Decimal `json:"payouts"`
	IsBalanced   bool            `json:"is_balanced"`
}

// LedgerRow is one transaction plus the treasury balance as of that
// transaction's commit.
type LedgerRow struct {
	Transaction *Transaction    `json:"transaction"`
	Balance     decimal.Decimal `json:"balance"`
}

// LedgerPage is a page of the club ledger, newest first.
type LedgerPage struct {
	ClubID         int64           `json:"club_id"`
	Page           int             `json:"page"`
	PageSize       int             `json:"page_size"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	Rows           []*LedgerRow    `json:"rows"`
}
