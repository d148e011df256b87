package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

type SessionStore struct {
	db *pgxpool.Pool
}

func NewSessionStore(db *pgxpool.Pool) *SessionStore {
	return &SessionStore{db: db}
}

const sessionColumns = `id, game_id, person_id, status, table_number, seat_number,
	seated_at, starting_stack, current_stack, rebuys, add_ons, bounties_won,
	bounties_lost, payout, total_paid, finish_position, points_earned,
	points_awarded_at, created_at, updated_at`

func scanSession(row pgx.Row) (*models.GameSession, error) {
	gs := &models.GameSession{}
	err := row.Scan(
		&gs.ID,
		&gs.GameID,
		&gs.PersonID,
		&gs.Status,
		&gs.TableNumber,
		&gs.SeatNumber,
		&gs.SeatedAt,
		&gs.StartingStack,
		&gs.CurrentStack,
		&gs.Rebuys,
		&gs.AddOns,
		&gs.BountiesWon,
		&gs.BountiesLost,
		&gs.Payout,
		&gs.TotalPaid,
		&gs.FinishPosition,
		&gs.PointsEarned,
		&gs.PointsAwardedAt,
		&gs.CreatedAt,
		&gs.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return gs, nil
}

func (s *SessionStore) ListByGame(ctx context.Context, gameID int64) ([]*models.GameSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM game_sessions
		WHERE game_id = $1
		ORDER BY id
	`
	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list game sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.GameSession
	for rows.Next() {
		gs, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game session: %w", err)
		}
		sessions = append(sessions, gs)
	}
	return sessions, rows.Err()
}

func (s *SessionStore) GetByGameAndPerson(ctx context.Context, gameID, personID int64) (*models.GameSession, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM game_sessions
		WHERE game_id = $1 AND person_id = $2
	`
	gs, err := scanSession(s.db.QueryRow(ctx, query, gameID, personID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}
	return gs, nil
}

// UpdateSeat moves one session to a (table, seat) pair. The partial unique
// index on (game_id, table_number, seat_number) is the last line of defense
// against two sessions landing on the same seat.
func (s *SessionStore) UpdateSeat(ctx context.Context, sessionID int64, tableNo, seatNo int, seatedAt time.Time) error {
	query := `
		UPDATE game_sessions
		SET table_number = $2, seat_number = $3, seated_at = $4, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.db.Exec(ctx, query, sessionID, tableNo, seatNo, seatedAt)
	if err != nil {
		return fmt.Errorf("failed to update seat for session %d: %w", sessionID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %d not found for seat update", sessionID)
	}
	return nil
}

// SetFinish records the terminal status and finish position. Both are set
// once, monotonically: a session that already carries a finish position is
// never reopened.
func (s *SessionStore) SetFinish(ctx context.Context, gs *models.GameSession) error {
	query := `
		UPDATE game_sessions
		SET status = $2,
			finish_position = $3,
			bounties_won = $4,
			bounties_lost = $5,
			updated_at = now()
		WHERE id = $1 AND finish_position IS NULL
	`
	tag, err := s.db.Exec(ctx, query,
		gs.ID, gs.Status, gs.FinishPosition, gs.BountiesWon, gs.BountiesLost)
	if err != nil {
		return fmt.Errorf("failed to finish session %d: %w", gs.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %d already finished", gs.ID)
	}
	return nil
}

// UpdateBountyCounters persists the eliminator's side of a knockout.
func (s *SessionStore) UpdateBountyCounters(ctx context.Context, gs *models.GameSession) error {
	query := `
		UPDATE game_sessions
		SET bounties_won = $2, bounties_lost = $3, updated_at = now()
		WHERE id = $1
	`
	_, err := s.db.Exec(ctx, query, gs.ID, gs.BountiesWon, gs.BountiesLost)
	if err != nil {
		return fmt.Errorf("failed to update bounty counters for session %d: %w", gs.ID, err)
	}
	return nil
}

// SetPoints stamps the score exactly once per session; a row that already
// has points_awarded_at keeps its original score.
func (s *SessionStore) SetPoints(ctx context.Context, sessionID int64, points int) (bool, error) {
	query := `
		UPDATE game_sessions
		SET points_earned = $2, points_awarded_at = now(), updated_at = now()
		WHERE id = $1 AND points_awarded_at IS NULL
	`
	tag, err := s.db.Exec(ctx, query, sessionID, points)
	if err != nil {
		return false, fmt.Errorf("failed to set points for session %d: %w", sessionID, err)
	}
	return tag.RowsAffected() > 0, nil
}
