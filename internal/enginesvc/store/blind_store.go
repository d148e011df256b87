package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

type BlindStore struct {
	db *pgxpool.Pool
}

func NewBlindStore(db *pgxpool.Pool) *BlindStore {
	return &BlindStore{db: db}
}

func (s *BlindStore) StructureByGame(ctx context.Context, gameID int64) (models.BlindStructure, error) {
	query := `
		SELECT id, game_id, level_no, small_blind, big_blind, ante, duration_ms, is_break
		FROM blind_levels
		WHERE game_id = $1
		ORDER BY level_no
	`
	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load blind structure: %w", err)
	}
	defer rows.Close()

	var bs models.BlindStructure
	for rows.Next() {
		l := &models.BlindLevel{}
		err := rows.Scan(
			&l.ID,
			&l.GameID,
			&l.LevelNo,
			&l.SmallBlind,
			&l.BigBlind,
			&l.Ante,
			&l.DurationMs,
			&l.IsBreak,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan blind level: %w", err)
		}
		bs = append(bs, l)
	}
	return bs, rows.Err()
}
