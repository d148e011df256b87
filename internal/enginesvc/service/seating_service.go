package service

import (
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/engine"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// SeatingService owns table and seat placement for a game. Seat allocation
// is serialized under the game lock so two simultaneous check-ins can never
// pick the same seat; the database's unique seat index backs that up.
type SeatingService struct {
	clock    *engine.GameClock
	games    GameStore
	sessions SessionStore
	tables   TableStore
	members  Membership
	notifier Notifier
	audit    AuditSink
	locks    *gameLocks
}

func NewSeatingService(clock *engine.GameClock, games GameStore, sessions SessionStore,
	tables TableStore, members Membership, notifier Notifier, audit AuditSink) *SeatingService {
	return &SeatingService{
		clock:    clock,
		games:    games,
		sessions: sessions,
		tables:   tables,
		members:  members,
		notifier: notifier,
		audit:    audit,
		locks:    newGameLocks(),
	}
}

func (s *SeatingService) loadGame(ctx context.Context, gameID int64) (*models.Game, error) {
	g, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, &engine.NotFoundError{Entity: "game", ID: gameID}
	}
	return g, nil
}

func (s *SeatingService) requireSeatingPerm(ctx context.Context, clubID, actorID int64) error {
	perms, err := s.members.ResolvePermissions(ctx, clubID, actorID)
	if err != nil {
		return err
	}
	if !perms.ManageSeating {
		return engine.Validationf("person %d may not manage seating for club %d", actorID, clubID)
	}
	return nil
}

// AssignSeat places one checked-in player. Allowed while the game is still
// pending (check-in happens before the first hand) and while it runs.
func (s *SeatingService) AssignSeat(ctx context.Context, gameID, personID, actorID int64) (*models.TableLayoutView, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.requireSeatingPerm(ctx, g.ClubID, actorID); err != nil {
		return nil, err
	}
	if g.Status == models.GameCompleted {
		return nil, &engine.InvalidTransitionError{From: g.Status, Attempted: "assign seat in"}
	}

	session, err := s.sessions.GetByGameAndPerson(ctx, gameID, personID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, engine.Validationf("person %d has no session in game %d", personID, gameID)
	}
	if session.Status != models.SessionActive {
		return nil, engine.Validationf("person %d is no longer active in game %d", personID, gameID)
	}

	tables, err := s.tables.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	all, err := s.sessions.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	p := engine.AssignSeat(tables, all)
	if p.CreateTable {
		if _, err := s.tables.Create(ctx, gameID, p.TableNumber, p.MaxSeats); err != nil {
			return nil, err
		}
	}
	if err := s.sessions.UpdateSeat(ctx, session.ID, p.TableNumber, p.SeatNumber, s.clock.Now()); err != nil {
		return nil, err
	}
	log.Infof("game %d: seated person %d at table %d seat %d", gameID, personID, p.TableNumber, p.SeatNumber)
	return s.Layout(ctx, gameID)
}

// BalanceTables computes move proposals without applying them. Moving a
// player mid-hand is disruptive, so the floor reviews and approves
// explicitly.
func (s *SeatingService) BalanceTables(ctx context.Context, gameID int64) (*models.TableLayoutView, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !g.Status.Running() {
		return nil, &engine.InvalidTransitionError{From: g.Status, Attempted: "balance tables in"}
	}
	tables, err := s.tables.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	view := buildLayout(gameID, tables, sessions)
	view.Moves = engine.ProposeBalance(tables, sessions)
	return view, nil
}

// ApproveMoves applies reviewed proposals and tells each moved player.
func (s *SeatingService) ApproveMoves(ctx context.Context, gameID int64, moves []models.SeatMove, actorID int64) (*models.TableLayoutView, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.requireSeatingPerm(ctx, g.ClubID, actorID); err != nil {
		return nil, err
	}
	if !g.Status.Running() {
		return nil, &engine.InvalidTransitionError{From: g.Status, Attempted: "move seats in"}
	}

	for _, m := range moves {
		if err := s.sessions.UpdateSeat(ctx, m.SessionID, m.ToTable, m.ToSeat, s.clock.Now()); err != nil {
			return nil, err
		}
		s.notifySeatChange(ctx, m)
	}
	if err := s.audit.Record(ctx, g.ClubID, actorID, "seating.approve_moves", "game", nil, moves); err != nil {
		log.Warnf("audit record failed for seat moves on game %d: %v", gameID, err)
	}
	return s.Layout(ctx, gameID)
}

// FormFinalTable consolidates the field onto table 1 once it fits, with a
// full reshuffle and no seat affinity. Only players whose table or seat
// actually changed get a notification.
func (s *SeatingService) FormFinalTable(ctx context.Context, gameID, actorID int64) (*models.TableLayoutView, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.requireSeatingPerm(ctx, g.ClubID, actorID); err != nil {
		return nil, err
	}
	if !g.Status.Running() {
		return nil, &engine.InvalidTransitionError{From: g.Status, Attempted: "form final table in"}
	}

	tables, err := s.tables.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	plan, err := engine.PlanFinalTable(tables, sessions)
	if err != nil {
		return nil, err
	}
	if err := s.tables.Deactivate(ctx, gameID, plan.DeactivateTables); err != nil {
		return nil, err
	}
	for _, m := range plan.Moves {
		if err := s.sessions.UpdateSeat(ctx, m.SessionID, m.ToTable, m.ToSeat, s.clock.Now()); err != nil {
			return nil, err
		}
		if m.FromTable != m.ToTable || m.FromSeat != m.ToSeat {
			s.notifySeatChange(ctx, m)
		}
	}
	if err := s.audit.Record(ctx, g.ClubID, actorID, "seating.final_table", "game", nil, plan.Moves); err != nil {
		log.Warnf("audit record failed for final table on game %d: %v", gameID, err)
	}
	log.Infof("game %d: final table formed with %d players", gameID, len(plan.Moves))
	return s.Layout(ctx, gameID)
}

func (s *SeatingService) notifySeatChange(ctx context.Context, m models.SeatMove) {
	body := fmt.Sprintf("You have been moved to table %d, seat %d.", m.ToTable, m.ToSeat)
	if err := s.notifier.Notify(ctx, m.PersonID, "Seat change", body); err != nil {
		log.Warnf("seat change notification failed for person %d: %v", m.PersonID, err)
	}
}

// Layout is the read side: the current seating picture.
func (s *SeatingService) Layout(ctx context.Context, gameID int64) (*models.TableLayoutView, error) {
	tables, err := s.tables.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return buildLayout(gameID, tables, sessions), nil
}

func buildLayout(gameID int64, tables []*models.GameTable, sessions []*models.GameSession) *models.TableLayoutView {
	view := &models.TableLayoutView{GameID: gameID}
	for _, t := range tables {
		occ := &models.TableOccupancy{
			TableNumber: t.TableNumber,
			MaxSeats:    t.MaxSeats,
			IsActive:    t.IsActive,
		}
		for _, gs := range sessions {
			if gs.Status != models.SessionActive || !gs.Seated() || *gs.TableNumber != t.TableNumber {
				continue
			}
			occ.Seats = append(occ.Seats, &models.SeatedPlayer{
				SeatNumber: *gs.SeatNumber,
				PersonID:   gs.PersonID,
				SessionID:  gs.ID,
			})
		}
		sort.Slice(occ.Seats, func(i, j int) bool {
			return occ.Seats[i].SeatNumber < occ.Seats[j].SeatNumber
		})
		view.Tables = append(view.Tables, occ)
	}
	return view
}
