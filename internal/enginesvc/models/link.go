package models

import "time"

// PlayerLink is a symmetric "played together" edge between two club members.
// PersonA is always the lower id so each pair has a single row.
type PlayerLink struct {
	ClubID        int64     `json:"club_id"`
	PersonA       int64     `json:"person_a"`
	PersonB       int64     `json:"person_b"`
	GamesTogether int       `json:"games_together"`
	LastGameID    int64     `json:"last_game_id"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// OrderPair normalizes a pair of person ids into (low, high).
func OrderPair(a, b int64) (int64, int64) {
	if a > b {
		return b, a
	}
	return a, b
}
