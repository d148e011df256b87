package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/engine"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// LedgerPageSize is how many rows one treasury ledger page carries.
const LedgerPageSize = 20

// LedgerService records every money-moving event, keeps the club treasury
// consistent, supports exact void reversal and gates the terminal financial
// lock. Each recording is one atomic unit in the store: the ledger row, the
// session counters, the prize pool and the treasury either all move or none
// do.
type LedgerService struct {
	games    GameStore
	sessions SessionStore
	txs      TransactionStore
	treasury TreasuryStore
	config   ClubConfigStore
	members  Membership
	audit    AuditSink
	locks    *gameLocks
}

func NewLedgerService(games GameStore, sessions SessionStore, txs TransactionStore,
	treasury TreasuryStore, config ClubConfigStore, members Membership, audit AuditSink) *LedgerService {
	return &LedgerService{
		games:    games,
		sessions: sessions,
		txs:      txs,
		treasury: treasury,
		config:   config,
		members:  members,
		audit:    audit,
		locks:    newGameLocks(),
	}
}

func (s *LedgerService) loadGame(ctx context.Context, gameID int64) (*models.Game, error) {
	g, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, &engine.NotFoundError{Entity: "game", ID: gameID}
	}
	return g, nil
}

func (s *LedgerService) loadSession(ctx context.Context, gameID, personID int64) (*models.GameSession, error) {
	gs, err := s.sessions.GetByGameAndPerson(ctx, gameID, personID)
	if err != nil {
		return nil, err
	}
	if gs == nil {
		return nil, engine.Validationf("person %d has no session in game %d", personID, gameID)
	}
	return gs, nil
}

func (s *LedgerService) requireMoneyPerm(ctx context.Context, clubID, actorID int64) error {
	perms, err := s.members.ResolvePermissions(ctx, clubID, actorID)
	if err != nil {
		return err
	}
	if !perms.RecordMoney {
		return engine.Validationf("person %d may not record money for club %d", actorID, clubID)
	}
	return nil
}

func validateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() || amount.IsZero() {
		return engine.Validationf("amount must be positive, got %s", amount.StringFixed(2))
	}
	return nil
}

func gameStatusAllows(ttype models.TxType, g *models.Game) error {
	ok := false
	switch ttype {
	case models.TxBuyIn:
		ok = g.Status == models.GamePending || g.Status.Running()
	case models.TxRebuy, models.TxAddOn, models.TxBountyCollected:
		ok = g.Status.Running()
	case models.TxPayout:
		ok = g.Status.Running() || g.Status == models.GameCompleted
	case models.TxExpense:
		ok = true
	}
	if !ok {
		return engine.Validationf("cannot record %s for game in %s status", ttype, g.Status)
	}
	return nil
}

// record is the shared path for game-scoped money: validates the lock and
// status gates, hands the atomic write to the store and audits the treasury
// before/after.
func (s *LedgerService) record(ctx context.Context, g *models.Game, actorID int64,
	t *models.Transaction, eff *models.TransactionEffects) (*models.Transaction, error) {

	if g != nil {
		if g.Locked() {
			return nil, engine.Validationf("game %d financials are locked", g.ID)
		}
		if err := gameStatusAllows(t.TType, g); err != nil {
			return nil, err
		}
	}
	if err := validateAmount(t.Amount); err != nil {
		return nil, err
	}
	if err := s.requireMoneyPerm(ctx, t.ClubID, actorID); err != nil {
		return nil, err
	}

	before, err := s.treasury.GetByClub(ctx, t.ClubID)
	if err != nil {
		return nil, err
	}
	t.TRef = uuid.NewString()
	t.ActorID = actorID
	created, err := s.txs.Record(ctx, t, eff)
	if err != nil {
		return nil, err
	}
	after, err := s.treasury.GetByClub(ctx, t.ClubID)
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, t.ClubID, actorID, "ledger."+string(t.TType), "transaction", before, after); err != nil {
		log.Warnf("audit record failed for %s %s: %v", t.TType, created.TRef, err)
	}
	log.Infof("club %d: recorded %s %s (tref %s)", t.ClubID, t.TType, t.Amount.StringFixed(2), created.TRef)
	return created, nil
}

func (s *LedgerService) RecordBuyIn(ctx context.Context, gameID, personID, actorID int64) (*models.Transaction, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	gs, err := s.loadSession(ctx, gameID, personID)
	if err != nil {
		return nil, err
	}
	t := &models.Transaction{
		ClubID:      g.ClubID,
		GameID:      &gameID,
		PersonID:    &personID,
		TType:       models.TxBuyIn,
		Amount:      g.BuyInAmount,
		Description: fmt.Sprintf("Buy-in for game %d", gameID),
	}
	eff := &models.TransactionEffects{
		SessionID:      &gs.ID,
		TotalPaidDelta: g.BuyInAmount,
		PrizePoolDelta: g.BuyInAmount,
		StackDelta:     gs.StartingStack - gs.CurrentStack, // top up to the starting stack
	}
	return s.record(ctx, g, actorID, t, eff)
}

func (s *LedgerService) RecordRebuy(ctx context.Context, gameID, personID, actorID int64) (*models.Transaction, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	gs, err := s.loadSession(ctx, gameID, personID)
	if err != nil {
		return nil, err
	}
	if g.MaxRebuys > 0 && gs.Rebuys >= g.MaxRebuys {
		return nil, engine.Validationf("person %d reached the rebuy limit (%d) for game %d", personID, g.MaxRebuys, gameID)
	}
	cfg, err := s.config.Load(ctx, g.ClubID)
	if err != nil {
		return nil, err
	}
	t := &models.Transaction{
		ClubID:      g.ClubID,
		GameID:      &gameID,
		PersonID:    &personID,
		TType:       models.TxRebuy,
		Amount:      g.RebuyAmount,
		Description: fmt.Sprintf("Rebuy for game %d", gameID),
	}
	eff := &models.TransactionEffects{
		SessionID:      &gs.ID,
		TotalPaidDelta: g.RebuyAmount,
		RebuysDelta:    1,
		PrizePoolDelta: g.RebuyAmount,
		StackDelta:     gs.StartingStack + cfg.BonusChips,
	}
	return s.record(ctx, g, actorID, t, eff)
}

func (s *LedgerService) RecordAddOn(ctx context.Context, gameID, personID, actorID int64) (*models.Transaction, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	gs, err := s.loadSession(ctx, gameID, personID)
	if err != nil {
		return nil, err
	}
	if g.MaxAddOns > 0 && gs.AddOns >= g.MaxAddOns {
		return nil, engine.Validationf("person %d reached the add-on limit (%d) for game %d", personID, g.MaxAddOns, gameID)
	}
	t := &models.Transaction{
		ClubID:      g.ClubID,
		GameID:      &gameID,
		PersonID:    &personID,
		TType:       models.TxAddOn,
		Amount:      g.AddOnAmount,
		Description: fmt.Sprintf("Add-on for game %d", gameID),
	}
	eff := &models.TransactionEffects{
		SessionID:      &gs.ID,
		TotalPaidDelta: g.AddOnAmount,
		AddOnsDelta:    1,
		PrizePoolDelta: g.AddOnAmount,
		StackDelta:     gs.StartingStack,
	}
	return s.record(ctx, g, actorID, t, eff)
}

func (s *LedgerService) RecordPayout(ctx context.Context, gameID, personID int64, amount decimal.Decimal, actorID int64) (*models.Transaction, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	gs, err := s.loadSession(ctx, gameID, personID)
	if err != nil {
		return nil, err
	}
	t := &models.Transaction{
		ClubID:      g.ClubID,
		GameID:      &gameID,
		PersonID:    &personID,
		TType:       models.TxPayout,
		Amount:      amount,
		Description: fmt.Sprintf("Payout for game %d", gameID),
	}
	eff := &models.TransactionEffects{
		SessionID:   &gs.ID,
		PayoutDelta: amount,
	}
	return s.record(ctx, g, actorID, t, eff)
}

// RecordBounty pays the configured bounty to a collector. The bounty
// counters themselves move at elimination time; this is only the money.
func (s *LedgerService) RecordBounty(ctx context.Context, gameID, collectorID, actorID int64) (*models.Transaction, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	gs, err := s.loadSession(ctx, gameID, collectorID)
	if err != nil {
		return nil, err
	}
	t := &models.Transaction{
		ClubID:      g.ClubID,
		GameID:      &gameID,
		PersonID:    &collectorID,
		TType:       models.TxBountyCollected,
		Amount:      g.BountyAmount,
		Description: fmt.Sprintf("Bounty collected in game %d", gameID),
	}
	eff := &models.TransactionEffects{
		SessionID:   &gs.ID,
		PayoutDelta: g.BountyAmount,
	}
	return s.record(ctx, g, actorID, t, eff)
}

func (s *LedgerService) RecordExpense(ctx context.Context, gameID int64, amount decimal.Decimal, description string, actorID int64) (*models.Transaction, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	t := &models.Transaction{
		ClubID:      g.ClubID,
		GameID:      &gameID,
		TType:       models.TxExpense,
		Amount:      amount,
		Description: description,
	}
	return s.record(ctx, g, actorID, t, nil)
}

// Club-scoped money below: dues, treasury adjustments and per-player balance
// adjustments are not tied to a live game.

func (s *LedgerService) RecordDuesPayment(ctx context.Context, clubID, personID int64, amount decimal.Decimal, actorID int64) (*models.Transaction, error) {
	t := &models.Transaction{
		ClubID:      clubID,
		PersonID:    &personID,
		TType:       models.TxDuesPayment,
		Amount:      amount,
		Description: "Membership dues",
	}
	return s.record(ctx, nil, actorID, t, nil)
}

func (s *LedgerService) RecordTreasuryAdjustment(ctx context.Context, clubID int64, amount decimal.Decimal, description string, actorID int64) (*models.Transaction, error) {
	t := &models.Transaction{
		ClubID:      clubID,
		TType:       models.TxTreasuryAdjust,
		Amount:      amount,
		Description: description,
	}
	return s.record(ctx, nil, actorID, t, nil)
}

// RecordPlayerBalanceAdjustment moves a per-player balance without touching
// the treasury at all; its treasury direction is zero.
func (s *LedgerService) RecordPlayerBalanceAdjustment(ctx context.Context, clubID, personID int64, amount decimal.Decimal, description string, actorID int64) (*models.Transaction, error) {
	t := &models.Transaction{
		ClubID:      clubID,
		PersonID:    &personID,
		TType:       models.TxPlayerBalAdjust,
		Amount:      amount,
		Description: description,
	}
	return s.record(ctx, nil, actorID, t, nil)
}

// VoidTransaction reverses the original treasury effect exactly once. The
// session counters deliberately stay as recorded: they tell the story of
// what happened at the table, while the treasury tells where the money is
// now.
func (s *LedgerService) VoidTransaction(ctx context.Context, txID int64, reason string, actorID int64) (*models.Transaction, error) {
	t, err := s.txs.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, &engine.NotFoundError{Entity: "transaction", ID: txID}
	}
	if t.IsVoided {
		return nil, &engine.AlreadyVoidedError{TransactionID: txID}
	}
	if t.GameID != nil {
		g, err := s.loadGame(ctx, *t.GameID)
		if err != nil {
			return nil, err
		}
		if g.Locked() {
			return nil, engine.Validationf("game %d financials are locked", g.ID)
		}
	}
	if err := s.requireMoneyPerm(ctx, t.ClubID, actorID); err != nil {
		return nil, err
	}

	voided, applied, err := s.txs.Void(ctx, txID, actorID, reason)
	if err != nil {
		return nil, err
	}
	if !applied {
		// lost the race against another void
		return nil, &engine.AlreadyVoidedError{TransactionID: txID}
	}
	if err := s.audit.Record(ctx, t.ClubID, actorID, "ledger.void", "transaction", t, voided); err != nil {
		log.Warnf("audit record failed for void of transaction %d: %v", txID, err)
	}
	return voided, nil
}

// GetSettlement recomputes the reconciliation view from scratch; nothing is
// cached.
func (s *LedgerService) GetSettlement(ctx context.Context, gameID int64) (*models.SettlementView, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	txs, err := s.txs.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return engine.ComputeSettlement(g, txs), nil
}

// LockFinancials freezes a balanced game's books. Re-locking an already
// locked game is a no-op returning the locked state.
func (s *LedgerService) LockFinancials(ctx context.Context, gameID, actorID int64) (*models.Game, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g.Locked() {
		return g, nil
	}
	perms, err := s.members.ResolvePermissions(ctx, g.ClubID, actorID)
	if err != nil {
		return nil, err
	}
	if !perms.LockBooks {
		return nil, engine.Validationf("person %d may not lock financials for club %d", actorID, g.ClubID)
	}

	txs, err := s.txs.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	v := engine.ComputeSettlement(g, txs)
	if !v.IsBalanced {
		return nil, &engine.UnbalancedSettlementError{
			GameID:   gameID,
			Variance: v.Variance,
			MoneyIn:  v.MoneyIn,
			Payouts:  v.Payouts,
			NetPool:  v.NetPrizePool,
		}
	}
	locked, err := s.games.LockFinancials(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, g.ClubID, actorID, "ledger.lock", "game", g, locked); err != nil {
		log.Warnf("audit record failed for lock of game %d: %v", gameID, err)
	}
	log.Infof("game %d: financials locked", gameID)
	return locked, nil
}

// GetTreasuryLedger reconstructs per-row running balances for one page.
// Only the current total is stored, so the store hands back the newest
// page*size rows and the engine walks them backwards from the live balance.
func (s *LedgerService) GetTreasuryLedger(ctx context.Context, clubID int64, page int) (*models.LedgerPage, error) {
	if page < 1 {
		return nil, engine.Validationf("page must be >= 1, got %d", page)
	}
	tb, err := s.treasury.GetByClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	recent, err := s.txs.ListRecentForClub(ctx, clubID, page*LedgerPageSize)
	if err != nil {
		return nil, err
	}
	offset := (page - 1) * LedgerPageSize
	if offset > len(recent) {
		offset = len(recent)
	}
	newer, rows := recent[:offset], recent[offset:]
	return engine.BuildLedgerPage(clubID, page, LedgerPageSize, tb.CurrentBalance, newer, rows), nil
}
