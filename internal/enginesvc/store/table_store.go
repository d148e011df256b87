package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

type TableStore struct {
	db *pgxpool.Pool
}

func NewTableStore(db *pgxpool.Pool) *TableStore {
	return &TableStore{db: db}
}

func (s *TableStore) ListByGame(ctx context.Context, gameID int64) ([]*models.GameTable, error) {
	query := `
		SELECT id, game_id, table_number, max_seats, is_active, created_at, updated_at
		FROM game_tables
		WHERE game_id = $1
		ORDER BY table_number
	`
	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list game tables: %w", err)
	}
	defer rows.Close()

	var tables []*models.GameTable
	for rows.Next() {
		t := &models.GameTable{}
		err := rows.Scan(
			&t.ID,
			&t.GameID,
			&t.TableNumber,
			&t.MaxSeats,
			&t.IsActive,
			&t.CreatedAt,
			&t.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game table: %w", err)
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// Create opens a table. The unique (game_id, table_number) constraint makes
// a duplicate open fail instead of silently forking the layout.
func (s *TableStore) Create(ctx context.Context, gameID int64, tableNo, maxSeats int) (*models.GameTable, error) {
	query := `
		INSERT INTO game_tables (game_id, table_number, max_seats, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING id, game_id, table_number, max_seats, is_active, created_at, updated_at
	`
	t := &models.GameTable{}
	err := s.db.QueryRow(ctx, query, gameID, tableNo, maxSeats).Scan(
		&t.ID,
		&t.GameID,
		&t.TableNumber,
		&t.MaxSeats,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create table %d for game %d: %w", tableNo, gameID, err)
	}
	return t, nil
}

// Deactivate retires tables consolidated away at the final table. Rows are
// kept, not deleted, so the seating history stays auditable.
func (s *TableStore) Deactivate(ctx context.Context, gameID int64, tableNumbers []int) error {
	if len(tableNumbers) == 0 {
		return nil
	}
	query := `
		UPDATE game_tables
		SET is_active = false, updated_at = now()
		WHERE game_id = $1 AND table_number = ANY($2)
	`
	if _, err := s.db.Exec(ctx, query, gameID, tableNumbers); err != nil {
		return fmt.Errorf("failed to deactivate tables for game %d: %w", gameID, err)
	}
	return nil
}
