package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// memStore is an in-memory stand-in for every store interface, close enough
// to the SQL behavior to exercise the services end to end.
type memStore struct {
	games    map[int64]*models.Game
	sessions []*models.GameSession
	tables   []*models.GameTable
	txs      []*models.Transaction
	blinds   map[int64]models.BlindStructure
	treasury map[int64]decimal.Decimal
	settings map[int64]*models.ClubSettings
	links    map[string]*models.PlayerLink
	nextTxID int64
	now      func() time.Time

	setFinishErr error // when set, SetFinish refuses the write
}

func newMemStore() *memStore {
	return &memStore{
		games:    make(map[int64]*models.Game),
		blinds:   make(map[int64]models.BlindStructure),
		treasury: make(map[int64]decimal.Decimal),
		settings: make(map[int64]*models.ClubSettings),
		links:    make(map[string]*models.PlayerLink),
		now:      time.Now,
	}
}

func (m *memStore) GetGameByID(_ context.Context, gameID int64) (*models.Game, error) {
	g, ok := m.games[gameID]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *memStore) UpdateClock(_ context.Context, g *models.Game) error {
	stored, ok := m.games[g.ID]
	if !ok {
		return fmt.Errorf("game %d not found for clock update", g.ID)
	}
	cp := *g
	cp.PrizePool = stored.PrizePool
	cp.FinancialLockedAt = stored.FinancialLockedAt
	m.games[g.ID] = &cp
	return nil
}

func (m *memStore) LockFinancials(_ context.Context, gameID int64) (*models.Game, error) {
	g, ok := m.games[gameID]
	if !ok {
		return nil, nil
	}
	if g.FinancialLockedAt == nil {
		now := m.now()
		g.FinancialLockedAt = &now
	}
	cp := *g
	return &cp, nil
}

// Reads hand out copies, like rows scanned from the database; only the
// explicit write methods change stored state.
func (m *memStore) ListByGame(_ context.Context, gameID int64) ([]*models.GameSession, error) {
	var out []*models.GameSession
	for _, s := range m.sessions {
		if s.GameID == gameID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memStore) GetByGameAndPerson(_ context.Context, gameID, personID int64) (*models.GameSession, error) {
	for _, s := range m.sessions {
		if s.GameID == gameID && s.PersonID == personID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateSeat(_ context.Context, sessionID int64, tableNo, seatNo int, seatedAt time.Time) error {
	for _, s := range m.sessions {
		if s.ID == sessionID {
			t, seat, at := tableNo, seatNo, seatedAt
			s.TableNumber, s.SeatNumber, s.SeatedAt = &t, &seat, &at
			return nil
		}
	}
	return fmt.Errorf("session %d not found for seat update", sessionID)
}

func (m *memStore) SetFinish(_ context.Context, gs *models.GameSession) error {
	if m.setFinishErr != nil {
		return m.setFinishErr
	}
	for _, s := range m.sessions {
		if s.ID == gs.ID {
			if s.FinishPosition != nil {
				return nil
			}
			s.Status = gs.Status
			s.FinishPosition = gs.FinishPosition
			return nil
		}
	}
	return fmt.Errorf("session %d not found for finish update", gs.ID)
}

func (m *memStore) UpdateBountyCounters(_ context.Context, gs *models.GameSession) error {
	for _, s := range m.sessions {
		if s.ID == gs.ID {
			s.BountiesWon = gs.BountiesWon
			s.BountiesLost = gs.BountiesLost
			return nil
		}
	}
	return fmt.Errorf("session %d not found for bounty update", gs.ID)
}

func (m *memStore) SetPoints(_ context.Context, sessionID int64, points int) (bool, error) {
	for _, s := range m.sessions {
		if s.ID == sessionID {
			if s.PointsAwardedAt != nil {
				return false, nil
			}
			now := m.now()
			s.PointsEarned = points
			s.PointsAwardedAt = &now
			return true, nil
		}
	}
	return false, fmt.Errorf("session %d not found", sessionID)
}

func (m *memStore) ListTablesByGame(_ context.Context, gameID int64) ([]*models.GameTable, error) {
	var out []*models.GameTable
	for _, t := range m.tables {
		if t.GameID == gameID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) Create(_ context.Context, gameID int64, tableNo, maxSeats int) (*models.GameTable, error) {
	t := &models.GameTable{
		ID:          int64(len(m.tables) + 1),
		GameID:      gameID,
		TableNumber: tableNo,
		MaxSeats:    maxSeats,
		IsActive:    true,
	}
	m.tables = append(m.tables, t)
	return t, nil
}

func (m *memStore) Deactivate(_ context.Context, gameID int64, tableNumbers []int) error {
	for _, t := range m.tables {
		for _, no := range tableNumbers {
			if t.GameID == gameID && t.TableNumber == no {
				t.IsActive = false
			}
		}
	}
	return nil
}

func (m *memStore) Record(_ context.Context, t *models.Transaction, eff *models.TransactionEffects) (*models.Transaction, error) {
	m.nextTxID++
	cp := *t
	cp.ID = m.nextTxID
	cp.CreatedAt = m.now()
	m.txs = append(m.txs, &cp)

	if eff != nil && eff.SessionID != nil {
		for _, s := range m.sessions {
			if s.ID == *eff.SessionID {
				s.TotalPaid = s.TotalPaid.Add(eff.TotalPaidDelta)
				s.Payout = s.Payout.Add(eff.PayoutDelta)
				s.Rebuys += eff.RebuysDelta
				s.AddOns += eff.AddOnsDelta
				s.CurrentStack += eff.StackDelta
			}
		}
	}
	if eff != nil && t.GameID != nil {
		if g, ok := m.games[*t.GameID]; ok {
			g.PrizePool = g.PrizePool.Add(eff.PrizePoolDelta)
		}
	}
	m.treasury[t.ClubID] = m.treasury[t.ClubID].Add(cp.TreasuryEffect())
	return &cp, nil
}

func (m *memStore) GetByID(_ context.Context, txID int64) (*models.Transaction, error) {
	for _, t := range m.txs {
		if t.ID == txID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) Void(_ context.Context, txID, voidedBy int64, reason string) (*models.Transaction, bool, error) {
	for _, t := range m.txs {
		if t.ID != txID {
			continue
		}
		if t.IsVoided {
			return nil, false, nil
		}
		now := m.now()
		t.IsVoided = true
		t.VoidedBy = &voidedBy
		t.VoidedAt = &now
		t.VoidReason = reason
		m.treasury[t.ClubID] = m.treasury[t.ClubID].Sub(t.TreasuryEffect())
		cp := *t
		return &cp, true, nil
	}
	return nil, false, nil
}

func (m *memStore) ListTxByGame(_ context.Context, gameID int64) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, t := range m.txs {
		if t.GameID != nil && *t.GameID == gameID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) ListRecentForClub(_ context.Context, clubID int64, n int) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for i := len(m.txs) - 1; i >= 0 && len(out) < n; i-- {
		t := m.txs[i]
		if t.ClubID == clubID && !t.IsVoided {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) GetByClub(_ context.Context, clubID int64) (*models.TreasuryBalance, error) {
	return &models.TreasuryBalance{ClubID: clubID, CurrentBalance: m.treasury[clubID]}, nil
}

func (m *memStore) Load(_ context.Context, clubID int64) (*models.ClubSettings, error) {
	if cfg, ok := m.settings[clubID]; ok {
		return cfg, nil
	}
	return models.DefaultClubSettings(clubID), nil
}

func (m *memStore) Save(_ context.Context, cfg *models.ClubSettings) error {
	m.settings[cfg.ClubID] = cfg
	return nil
}

func (m *memStore) UpsertPair(_ context.Context, clubID, personA, personB, gameID int64) error {
	a, b := models.OrderPair(personA, personB)
	key := fmt.Sprintf("%d/%d/%d", clubID, a, b)
	link, ok := m.links[key]
	if !ok {
		m.links[key] = &models.PlayerLink{ClubID: clubID, PersonA: a, PersonB: b, GamesTogether: 1, LastGameID: gameID}
		return nil
	}
	if link.LastGameID == gameID {
		return nil
	}
	link.GamesTogether++
	link.LastGameID = gameID
	return nil
}

func (m *memStore) StructureByGame(_ context.Context, gameID int64) (models.BlindStructure, error) {
	return m.blinds[gameID], nil
}

// memStore carries three differently-typed ListByGame queries, so thin
// adapters present the table and transaction views under the interface
// method names.

type memTables struct{ *memStore }

func (m memTables) ListByGame(ctx context.Context, gameID int64) ([]*models.GameTable, error) {
	return m.ListTablesByGame(ctx, gameID)
}

type memTxs struct{ *memStore }

func (m memTxs) ListByGame(ctx context.Context, gameID int64) ([]*models.Transaction, error) {
	return m.ListTxByGame(ctx, gameID)
}

// collaborator fakes

type allowAll struct{}

func (allowAll) ResolvePermissions(context.Context, int64, int64) (*Permissions, error) {
	return &Permissions{ManageClock: true, ManageSeating: true, RecordMoney: true, LockBooks: true}, nil
}

type denyAll struct{}

func (denyAll) ResolvePermissions(context.Context, int64, int64) (*Permissions, error) {
	return &Permissions{}, nil
}

type fakeNotifier struct {
	notes []string
}

func (n *fakeNotifier) Notify(_ context.Context, personID int64, title, body string) error {
	n.notes = append(n.notes, fmt.Sprintf("%d: %s %s", personID, title, body))
	return nil
}

type fakeNetwork struct {
	pairs [][2]int64
}

func (n *fakeNetwork) PlayedTogether(_ context.Context, _ int64, a, b, _ int64) error {
	n.pairs = append(n.pairs, [2]int64{a, b})
	return nil
}

type fakeAudit struct {
	actions []string
}

func (a *fakeAudit) Record(_ context.Context, _, _ int64, action, _ string, _, _ interface{}) error {
	a.actions = append(a.actions, action)
	return nil
}
