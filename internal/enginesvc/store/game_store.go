package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

const gameColumns = `id, club_id, event_id, status, current_level, level_started_at,
	paused_at, total_paused_ms, players_registered, players_remaining, prize_pool,
	buy_in_amount, rebuy_amount, add_on_amount, bounty_amount, max_rebuys,
	max_add_ons, overflow_policy, financial_locked_at, created_at, updated_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	g := &models.Game{}
	err := row.Scan(
		&g.ID,
		&g.ClubID,
		&g.EventID,
		&g.Status,
		&g.CurrentLevel,
		&g.LevelStartedAt,
		&g.PausedAt,
		&g.TotalPausedMs,
		&g.PlayersRegistered,
		&g.PlayersRemaining,
		&g.PrizePool,
		&g.BuyInAmount,
		&g.RebuyAmount,
		&g.AddOnAmount,
		&g.BountyAmount,
		&g.MaxRebuys,
		&g.MaxAddOns,
		&g.OverflowPolicy,
		&g.FinancialLockedAt,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // game not found
		}
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}
	return g, nil
}

func (s *GameStore) GetGameByID(ctx context.Context, gameID int64) (*models.Game, error) {
	query := `
		SELECT ` + gameColumns + `
		FROM games
		WHERE id = $1
	`
	return scanGame(s.db.QueryRow(ctx, query, gameID))
}

// UpdateClock persists the whole clock field-set in one statement so no
// reader ever observes a torn combination (status updated, level stale).
func (s *GameStore) UpdateClock(ctx context.Context, g *models.Game) error {
	query := `
		UPDATE games
		SET status = $2,
			current_level = $3,
			level_started_at = $4,
			paused_at = $5,
			total_paused_ms = $6,
			players_registered = $7,
			players_remaining = $8,
			updated_at = now()
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query,
		g.ID, g.Status, g.CurrentLevel, g.LevelStartedAt, g.PausedAt,
		g.TotalPausedMs, g.PlayersRegistered, g.PlayersRemaining)
	if err != nil {
		return fmt.Errorf("failed to update game clock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("game %d not found for clock update", g.ID)
	}
	return nil
}

// LockFinancials stamps financial_locked_at once. A game already locked is
// left untouched and returned as-is, so re-locking is a no-op.
func (s *GameStore) LockFinancials(ctx context.Context, gameID int64) (*models.Game, error) {
	query := `
		UPDATE games
		SET financial_locked_at = now(), updated_at = now()
		WHERE id = $1 AND financial_locked_at IS NULL
	`
	if _, err := s.db.Exec(ctx, query, gameID); err != nil {
		return nil, fmt.Errorf("failed to lock game financials: %w", err)
	}
	return s.GetGameByID(ctx, gameID)
}
