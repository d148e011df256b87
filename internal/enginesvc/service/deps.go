package service

import (
	"context"
	"time"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// Store interfaces consumed by the services. The pgx stores in the store
// package satisfy them; tests plug in in-memory fakes.

type GameStore interface {
	GetGameByID(ctx context.Context, gameID int64) (*models.Game, error)
	UpdateClock(ctx context.Context, g *models.Game) error
	LockFinancials(ctx context.Context, gameID int64) (*models.Game, error)
}

type SessionStore interface {
	ListByGame(ctx context.Context, gameID int64) ([]*models.GameSession, error)
	GetByGameAndPerson(ctx context.Context, gameID, personID int64) (*models.GameSession, error)
	UpdateSeat(ctx context.Context, sessionID int64, tableNo, seatNo int, seatedAt time.Time) error
	SetFinish(ctx context.Context, gs *models.GameSession) error
	UpdateBountyCounters(ctx context.Context, gs *models.GameSession) error
	SetPoints(ctx context.Context, sessionID int64, points int) (bool, error)
}

type TableStore interface {
	ListByGame(ctx context.Context, gameID int64) ([]*models.GameTable, error)
	Create(ctx context.Context, gameID int64, tableNo, maxSeats int) (*models.GameTable, error)
	Deactivate(ctx context.Context, gameID int64, tableNumbers []int) error
}

type TransactionStore interface {
	Record(ctx context.Context, t *models.Transaction, eff *models.TransactionEffects) (*models.Transaction, error)
	GetByID(ctx context.Context, txID int64) (*models.Transaction, error)
	Void(ctx context.Context, txID, voidedBy int64, reason string) (*models.Transaction, bool, error)
	ListByGame(ctx context.Context, gameID int64) ([]*models.Transaction, error)
	ListRecentForClub(ctx context.Context, clubID int64, n int) ([]*models.Transaction, error)
}

type TreasuryStore interface {
	GetByClub(ctx context.Context, clubID int64) (*models.TreasuryBalance, error)
}

type ClubConfigStore interface {
	Load(ctx context.Context, clubID int64) (*models.ClubSettings, error)
	Save(ctx context.Context, cfg *models.ClubSettings) error
}

type PlayerLinkStore interface {
	UpsertPair(ctx context.Context, clubID, personA, personB, gameID int64) error
}

type BlindStore interface {
	StructureByGame(ctx context.Context, gameID int64) (models.BlindStructure, error)
}

// External collaborators. Their internals live outside this service.

// Permissions is the typed capability set one membership lookup resolves to.
// Operations consume it uniformly instead of re-checking role strings.
type Permissions struct {
	ManageClock   bool
	ManageSeating bool
	RecordMoney   bool
	LockBooks     bool
}

type Membership interface {
	ResolvePermissions(ctx context.Context, clubID, personID int64) (*Permissions, error)
}

type Notifier interface {
	Notify(ctx context.Context, personID int64, title, body string) error
}

// PlayerNetwork receives pairwise "played together" facts as they happen.
type PlayerNetwork interface {
	PlayedTogether(ctx context.Context, clubID, personA, personB, gameID int64) error
}

// ClockFeed receives a fresh clock view after every lifecycle transition,
// for fan-out to dealer displays.
type ClockFeed interface {
	PublishClockState(v *models.GameStateView)
}

// AuditSink records before/after state for every mutating operation.
type AuditSink interface {
	Record(ctx context.Context, clubID, actorID int64, action, entity string, before, after interface{}) error
}
