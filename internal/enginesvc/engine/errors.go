package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// NotFoundError reports an absent game, session, table or transaction.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// InvalidTransitionError is a clock state machine violation. The operation
// failed closed: nothing was mutated.
type InvalidTransitionError struct {
	From      models.GameStatus
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s game in %s status", e.Attempted, e.From)
}

// ValidationError is a rejected input: negative amount, unknown type,
// exceeded rebuy cap, locked game, and the like.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func Validationf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// UnbalancedSettlementError is returned when a financial lock is attempted
// while the game's books do not reconcile. It carries the totals so the
// operator can see where the money went.
type UnbalancedSettlementError struct {
	GameID   int64
	Variance decimal.Decimal
	MoneyIn  decimal.Decimal
	Payouts  decimal.Decimal
	NetPool  decimal.Decimal
}

func (e *UnbalancedSettlementError) Error() string {
	return fmt.Sprintf(
		"cannot lock game %d: unbalanced settlement (variance %s, money in %s, payouts %s, net pool %s)",
		e.GameID, e.Variance.StringFixed(2), e.MoneyIn.StringFixed(2),
		e.Payouts.StringFixed(2), e.NetPool.StringFixed(2))
}

// AlreadyVoidedError is returned when a void is attempted twice.
type AlreadyVoidedError struct {
	TransactionID int64
}

func (e *AlreadyVoidedError) Error() string {
	return fmt.Sprintf("transaction %d is already voided", e.TransactionID)
}
