package models

import "time"

// ClubSettings is per-club engine configuration persisted as a keyed row.
// It replaces what used to live in process-wide maps: scoring constants and
// rebuy bonus chips survive restarts and are shared across instances.
type ClubSettings struct {
	ClubID          int64     `json:"club_id"`
	PointsBase      int       `json:"points_base"`
	PointsPerBounty int       `json:"points_per_bounty"`
	PositionBonuses []int     `json:"position_bonuses"` // index 0 = 1st place
	BonusChips      int64     `json:"bonus_chips"`      // extra chips per rebuy
	UpdatedAt       time.Time `json:"updated_at"`
}

// PositionBonus returns the bonus for a 1-based finish position, zero past
// the configured cutoff.
func (s *ClubSettings) PositionBonus(pos int) int {
	if pos < 1 || pos > len(s.PositionBonuses) {
		return 0
	}
	return s.PositionBonuses[pos-1]
}

// DefaultClubSettings seeds a club that has never saved its own scoring
// configuration.
func DefaultClubSettings(clubID int64) *ClubSettings {
	return &ClubSettings{
		ClubID:          clubID,
		PointsBase:      10,
		PointsPerBounty: 5,
		PositionBonuses: []int{50, 35, 25, 15, 10, 5, 5, 5, 5},
		BonusChips:      0,
	}
}
