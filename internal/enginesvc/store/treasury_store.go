package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

type TreasuryStore struct {
	db *pgxpool.Pool
}

func NewTreasuryStore(db *pgxpool.Pool) *TreasuryStore {
	return &TreasuryStore{db: db}
}

// GetByClub returns the club's balance row, or a zero balance for a club
// that has never moved money.
func (s *TreasuryStore) GetByClub(ctx context.Context, clubID int64) (*models.TreasuryBalance, error) {
	query := `
		SELECT club_id, current_balance, minimum_reserve, updated_at
		FROM treasury_balances
		WHERE club_id = $1
	`
	tb := &models.TreasuryBalance{}
	err := s.db.QueryRow(ctx, query, clubID).Scan(
		&tb.ClubID,
		&tb.CurrentBalance,
		&tb.MinimumReserve,
		&tb.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &models.TreasuryBalance{
				ClubID:         clubID,
				CurrentBalance: decimal.Zero,
				MinimumReserve: decimal.Zero,
			}, nil
		}
		return nil, fmt.Errorf("failed to get treasury balance: %w", err)
	}
	return tb, nil
}
