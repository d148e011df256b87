package models

import "time"

// DefaultMaxSeats is the fixed capacity of a tournament table.
const DefaultMaxSeats = 9

type GameTable struct {
	ID          int64     `json:"id"`
	GameID      int64     `json:"game_id"`
	TableNumber int       `json:"table_number"` // unique per game
	MaxSeats    int       `json:"max_seats"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
