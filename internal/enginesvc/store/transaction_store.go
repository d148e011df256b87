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

type TransactionStore struct {
	db *pgxpool.Pool
}

func NewTransactionStore(db *pgxpool.Pool) *TransactionStore {
	return &TransactionStore{db: db}
}

const txColumns = `id, club_id, game_id, person_id, ttype, amount, description,
	tref, is_voided, voided_by, voided_at, void_reason, actor_id, created_at`

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	t := &models.Transaction{}
	err := row.Scan(
		&t.ID,
		&t.ClubID,
		&t.GameID,
		&t.PersonID,
		&t.TType,
		&t.Amount,
		&t.Description,
		&t.TRef,
		&t.IsVoided,
		&t.VoidedBy,
		&t.VoidedAt,
		&t.VoidReason,
		&t.ActorID,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Record inserts the transaction and applies every side effect - session
// counters, game prize pool, club treasury - inside one database
// transaction. Either all of it lands or none of it does; a ledger row
// without its treasury update is never observable. The treasury UPDATE
// serializes concurrent recordings on the club's balance row.
func (s *TransactionStore) Record(ctx context.Context, t *models.Transaction, eff *models.TransactionEffects) (*models.Transaction, error) {
	dbtx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin recording: %w", err)
	}
	defer dbtx.Rollback(ctx)

	insert := `
		INSERT INTO transactions (club_id, game_id, person_id, ttype, amount,
			description, tref, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + txColumns
	created, err := scanTransaction(dbtx.QueryRow(ctx, insert,
		t.ClubID, t.GameID, t.PersonID, t.TType, t.Amount,
		t.Description, t.TRef, t.ActorID))
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	if eff != nil && eff.SessionID != nil {
		update := `
			UPDATE game_sessions
			SET total_paid = total_paid + $2,
				payout = payout + $3,
				rebuys = rebuys + $4,
				add_ons = add_ons + $5,
				current_stack = current_stack + $6,
				updated_at = now()
			WHERE id = $1
		`
		tag, err := dbtx.Exec(ctx, update, *eff.SessionID,
			eff.TotalPaidDelta, eff.PayoutDelta, eff.RebuysDelta,
			eff.AddOnsDelta, eff.StackDelta)
		if err != nil {
			return nil, fmt.Errorf("failed to apply session counters: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("session %d not found while recording", *eff.SessionID)
		}
	}

	if eff != nil && !eff.PrizePoolDelta.IsZero() && t.GameID != nil {
		update := `
			UPDATE games
			SET prize_pool = prize_pool + $2, updated_at = now()
			WHERE id = $1
		`
		if _, err := dbtx.Exec(ctx, update, *t.GameID, eff.PrizePoolDelta); err != nil {
			return nil, fmt.Errorf("failed to apply prize pool delta: %w", err)
		}
	}

	if effect := created.TreasuryEffect(); !effect.IsZero() {
		if err := applyTreasuryDelta(ctx, dbtx, t.ClubID, effect); err != nil {
			return nil, err
		}
	}

	if err := dbtx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit recording: %w", err)
	}
	return created, nil
}

// applyTreasuryDelta upserts the club balance row, adding the signed delta.
// The row-level lock taken by the UPDATE is what makes concurrent
// read-increment-write sequences safe.
func applyTreasuryDelta(ctx context.Context, dbtx pgx.Tx, clubID int64, delta decimal.Decimal) error {
	query := `
		INSERT INTO treasury_balances (club_id, current_balance, minimum_reserve)
		VALUES ($1, $2, 0)
		ON CONFLICT (club_id) DO UPDATE
		SET current_balance = treasury_balances.current_balance + EXCLUDED.current_balance,
			updated_at = now()
	`
	if _, err := dbtx.Exec(ctx, query, clubID, delta); err != nil {
		return fmt.Errorf("failed to apply treasury delta: %w", err)
	}
	return nil
}

func (s *TransactionStore) GetByID(ctx context.Context, txID int64) (*models.Transaction, error) {
	query := `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE id = $1
	`
	t, err := scanTransaction(s.db.QueryRow(ctx, query, txID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

// Void flips the void flag and reverses the original treasury effect
// exactly once, in one database transaction. The WHERE is_voided = false
// guard means a racing second void updates zero rows and reverses nothing.
func (s *TransactionStore) Void(ctx context.Context, txID, voidedBy int64, reason string) (*models.Transaction, bool, error) {
	dbtx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin void: %w", err)
	}
	defer dbtx.Rollback(ctx)

	update := `
		UPDATE transactions
		SET is_voided = true, voided_by = $2, voided_at = now(), void_reason = $3
		WHERE id = $1 AND is_voided = false
		RETURNING ` + txColumns
	voided, err := scanTransaction(dbtx.QueryRow(ctx, update, txID, voidedBy, reason))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil // absent or already voided; caller decides which
		}
		return nil, false, fmt.Errorf("failed to void transaction: %w", err)
	}

	if effect := voided.TreasuryEffect(); !effect.IsZero() {
		if err := applyTreasuryDelta(ctx, dbtx, voided.ClubID, effect.Neg()); err != nil {
			return nil, false, err
		}
	}

	if err := dbtx.Commit(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to commit void: %w", err)
	}
	return voided, true, nil
}

func (s *TransactionStore) ListByGame(ctx context.Context, gameID int64) ([]*models.Transaction, error) {
	query := `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE game_id = $1
		ORDER BY id
	`
	return s.list(ctx, query, gameID)
}

// ListRecentForClub returns the newest n non-voided club transactions,
// newest first, for the running-balance ledger view.
func (s *TransactionStore) ListRecentForClub(ctx context.Context, clubID int64, n int) ([]*models.Transaction, error) {
	query := `
		SELECT ` + txColumns + `
		FROM transactions
		WHERE club_id = $1 AND is_voided = false
		ORDER BY id DESC
		LIMIT $2
	`
	return s.list(ctx, query, clubID, n)
}

func (s *TransactionStore) list(ctx context.Context, query string, args ...interface{}) ([]*models.Transaction, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*models.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}
