package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type GameStatus string

const (
	GamePending   GameStatus = "pending"
	GameActive    GameStatus = "active"
	GamePaused    GameStatus = "paused"
	GameBreak     GameStatus = "break"
	GameCompleted GameStatus = "completed"
)

// Running returns true while the clock can still move (not pending, not completed).
func (s GameStatus) Running() bool {
	return s == GameActive || s == GamePaused || s == GameBreak
}

// LevelOverflowPolicy controls what AdvanceLevel does once the blind
// structure runs out of levels.
type LevelOverflowPolicy string

const (
	OverflowClamp    LevelOverflowPolicy = "clamp"    // stay on the last level
	OverflowComplete LevelOverflowPolicy = "complete" // end the game
	OverflowError    LevelOverflowPolicy = "error"    // reject the advance
)

type Game struct {
	ID                int64               `json:"id"`
	ClubID            int64               `json:"club_id"`
	EventID           int64               `json:"event_id"`
	Status            GameStatus          `json:"status"`
	CurrentLevel      int                 `json:"current_level"`
	LevelStartedAt    *time.Time          `json:"level_started_at"`
	PausedAt          *time.Time          `json:"paused_at"`
	TotalPausedMs     int64               `json:"total_paused_ms"`
	PlayersRegistered int                 `json:"players_registered"`
	PlayersRemaining  int                 `json:"players_remaining"`
	PrizePool         decimal.Decimal     `json:"prize_pool"`
	BuyInAmount       decimal.Decimal     `json:"buy_in_amount"`
	RebuyAmount       decimal.Decimal     `json:"rebuy_amount"`
	AddOnAmount       decimal.Decimal     `json:"add_on_amount"`
	BountyAmount      decimal.Decimal     `json:"bounty_amount"`
	MaxRebuys         int                 `json:"max_rebuys"`
	MaxAddOns         int                 `json:"max_add_ons"`
	OverflowPolicy    LevelOverflowPolicy `json:"overflow_policy"`
	FinancialLockedAt *time.Time          `json:"financial_locked_at"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// Locked reports whether the game's money entries are frozen.
func (g *Game) Locked() bool {
	return g.FinancialLockedAt != nil
}
