package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

type PlayerLinkStore struct {
	db *pgxpool.Pool
}

func NewPlayerLinkStore(db *pgxpool.Pool) *PlayerLinkStore {
	return &PlayerLinkStore{db: db}
}

// UpsertPair records that two people played the same game. The last_game_id
// guard keeps a re-run for the same game from double-counting the edge.
func (s *PlayerLinkStore) UpsertPair(ctx context.Context, clubID, personA, personB, gameID int64) error {
	a, b := models.OrderPair(personA, personB)
	query := `
		INSERT INTO player_links (club_id, person_a, person_b, games_together, last_game_id)
		VALUES ($1, $2, $3, 1, $4)
		ON CONFLICT (club_id, person_a, person_b) DO UPDATE
		SET games_together = player_links.games_together + 1,
			last_game_id = EXCLUDED.last_game_id,
			updated_at = now()
		WHERE player_links.last_game_id <> EXCLUDED.last_game_id
	`
	if _, err := s.db.Exec(ctx, query, clubID, a, b, gameID); err != nil {
		return fmt.Errorf("failed to upsert player link (%d, %d): %w", a, b, err)
	}
	return nil
}
