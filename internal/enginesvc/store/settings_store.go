package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// ClubConfigStore persists per-club engine settings as keyed rows. Scoring
// constants and bonus chips used to be process-wide maps; keeping them here
// means restarts and multiple instances see the same configuration.
type ClubConfigStore struct {
	db *pgxpool.Pool
}

func NewClubConfigStore(db *pgxpool.Pool) *ClubConfigStore {
	return &ClubConfigStore{db: db}
}

func (s *ClubConfigStore) Load(ctx context.Context, clubID int64) (*models.ClubSettings, error) {
	query := `
		SELECT club_id, points_base, points_per_bounty, position_bonuses, bonus_chips, updated_at
		FROM club_settings
		WHERE club_id = $1
	`
	cfg := &models.ClubSettings{}
	var bonuses []byte
	err := s.db.QueryRow(ctx, query, clubID).Scan(
		&cfg.ClubID,
		&cfg.PointsBase,
		&cfg.PointsPerBounty,
		&bonuses,
		&cfg.BonusChips,
		&cfg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.DefaultClubSettings(clubID), nil
		}
		return nil, fmt.Errorf("failed to load club settings: %w", err)
	}
	if err := json.Unmarshal(bonuses, &cfg.PositionBonuses); err != nil {
		return nil, fmt.Errorf("failed to decode position bonuses: %w", err)
	}
	return cfg, nil
}

func (s *ClubConfigStore) Save(ctx context.Context, cfg *models.ClubSettings) error {
	bonuses, err := json.Marshal(cfg.PositionBonuses)
	if err != nil {
		return fmt.Errorf("failed to encode position bonuses: %w", err)
	}
	query := `
		INSERT INTO club_settings (club_id, points_base, points_per_bounty, position_bonuses, bonus_chips)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (club_id) DO UPDATE
		SET points_base = EXCLUDED.points_base,
			points_per_bounty = EXCLUDED.points_per_bounty,
			position_bonuses = EXCLUDED.position_bonuses,
			bonus_chips = EXCLUDED.bonus_chips,
			updated_at = now()
	`
	if _, err := s.db.Exec(ctx, query,
		cfg.ClubID, cfg.PointsBase, cfg.PointsPerBounty, bonuses, cfg.BonusChips); err != nil {
		return fmt.Errorf("failed to save club settings: %w", err)
	}
	return nil
}
