package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/engine"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// ClockService drives a game's lifecycle and blind timing. Every mutation
// takes the game's lock, runs the state machine on an in-memory copy, and
// persists the whole clock field-set in one write.
type ClockService struct {
	clock    *engine.GameClock
	games    GameStore
	sessions SessionStore
	blinds   BlindStore
	members  Membership
	notifier Notifier
	network  PlayerNetwork
	audit    AuditSink
	feed     ClockFeed
	locks    *gameLocks
}

// SetClockFeed attaches the live display fan-out. Optional; tests run
// without one.
func (s *ClockService) SetClockFeed(f ClockFeed) {
	s.feed = f
}

func NewClockService(clock *engine.GameClock, games GameStore, sessions SessionStore,
	blinds BlindStore, members Membership, notifier Notifier, network PlayerNetwork,
	audit AuditSink) *ClockService {
	return &ClockService{
		clock:    clock,
		games:    games,
		sessions: sessions,
		blinds:   blinds,
		members:  members,
		notifier: notifier,
		network:  network,
		audit:    audit,
		locks:    newGameLocks(),
	}
}

func (s *ClockService) loadGame(ctx context.Context, gameID int64) (*models.Game, error) {
	g, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, &engine.NotFoundError{Entity: "game", ID: gameID}
	}
	return g, nil
}

func (s *ClockService) requireClockPerm(ctx context.Context, clubID, actorID int64) error {
	perms, err := s.members.ResolvePermissions(ctx, clubID, actorID)
	if err != nil {
		return err
	}
	if !perms.ManageClock {
		return engine.Validationf("person %d may not operate the clock for club %d", actorID, clubID)
	}
	return nil
}

// transition runs one clock mutation under the game lock, with an audit
// entry capturing the before/after clock state.
func (s *ClockService) transition(ctx context.Context, gameID, actorID int64, action string,
	fn func(g *models.Game, sessions []*models.GameSession, bs models.BlindStructure) error) (*models.GameStateView, error) {

	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.requireClockPerm(ctx, g.ClubID, actorID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	bs, err := s.blinds.StructureByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	before := *g
	if err := fn(g, sessions, bs); err != nil {
		return nil, err
	}
	if err := s.games.UpdateClock(ctx, g); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, g.ClubID, actorID, action, "game", &before, g); err != nil {
		log.Warnf("audit record failed for %s on game %d: %v", action, gameID, err)
	}

	view := s.clock.StateView(g, bs)
	if s.feed != nil {
		s.feed.PublishClockState(view)
	}
	return view, nil
}

func (s *ClockService) Start(ctx context.Context, gameID, actorID int64) (*models.GameStateView, error) {
	return s.transition(ctx, gameID, actorID, "game.start",
		func(g *models.Game, sessions []*models.GameSession, _ models.BlindStructure) error {
			return s.clock.Start(g, sessions)
		})
}

func (s *ClockService) Pause(ctx context.Context, gameID, actorID int64) (*models.GameStateView, error) {
	return s.transition(ctx, gameID, actorID, "game.pause",
		func(g *models.Game, _ []*models.GameSession, _ models.BlindStructure) error {
			return s.clock.Pause(g)
		})
}

func (s *ClockService) Resume(ctx context.Context, gameID, actorID int64) (*models.GameStateView, error) {
	return s.transition(ctx, gameID, actorID, "game.resume",
		func(g *models.Game, _ []*models.GameSession, _ models.BlindStructure) error {
			return s.clock.Resume(g)
		})
}

func (s *ClockService) AdvanceLevel(ctx context.Context, gameID, actorID int64) (*models.GameStateView, error) {
	return s.transition(ctx, gameID, actorID, "game.advance_level",
		func(g *models.Game, _ []*models.GameSession, bs models.BlindStructure) error {
			return s.clock.AdvanceLevel(g, bs)
		})
}

// Eliminate busts a player, persists their terminal session state and tells
// the player network who they were still in with. The session writes land
// before the game's clock state does, all under the game lock: a failed
// session write leaves the game untouched, and the stored game never shows
// fewer players than the sessions do.
func (s *ClockService) Eliminate(ctx context.Context, gameID, personID int64, eliminatedBy *int64, actorID int64) (*models.GameStateView, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.requireClockPerm(ctx, g.ClubID, actorID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	bs, err := s.blinds.StructureByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	before := *g
	eliminated, stillIn, err := s.clock.Eliminate(g, sessions, personID, eliminatedBy)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.SetFinish(ctx, eliminated); err != nil {
		return nil, err
	}
	if eliminatedBy != nil {
		for _, gs := range sessions {
			if gs.PersonID == *eliminatedBy {
				if err := s.sessions.UpdateBountyCounters(ctx, gs); err != nil {
					return nil, err
				}
				break
			}
		}
	}
	if err := s.games.UpdateClock(ctx, g); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, g.ClubID, actorID, "game.eliminate", "game", &before, g); err != nil {
		log.Warnf("audit record failed for game.eliminate on game %d: %v", gameID, err)
	}

	for _, other := range stillIn {
		if err := s.network.PlayedTogether(ctx, g.ClubID, personID, other, gameID); err != nil {
			log.Warnf("player network update failed for (%d, %d): %v", personID, other, err)
		}
	}

	view := s.clock.StateView(g, bs)
	if s.feed != nil {
		s.feed.PublishClockState(view)
	}
	return view, nil
}

// End completes the game. A sole survivor becomes the winner; financial
// locking is the ledger's separate, balance-gated step. Like Eliminate, the
// winner's session is persisted before the game row, under the game lock.
func (s *ClockService) End(ctx context.Context, gameID, actorID int64) (*models.GameStateView, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := s.requireClockPerm(ctx, g.ClubID, actorID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	bs, err := s.blinds.StructureByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	before := *g
	winner, err := s.clock.End(g, sessions)
	if err != nil {
		return nil, err
	}
	if winner != nil {
		if err := s.sessions.SetFinish(ctx, winner); err != nil {
			return nil, err
		}
	}
	if err := s.games.UpdateClock(ctx, g); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, g.ClubID, actorID, "game.end", "game", &before, g); err != nil {
		log.Warnf("audit record failed for game.end on game %d: %v", gameID, err)
	}

	if winner != nil {
		if err := s.notifier.Notify(ctx, winner.PersonID, "Winner!", "You won the tournament."); err != nil {
			log.Warnf("winner notification failed for person %d: %v", winner.PersonID, err)
		}
	}

	view := s.clock.StateView(g, bs)
	if s.feed != nil {
		s.feed.PublishClockState(view)
	}
	return view, nil
}

// State is the read side: a derived, self-consistent clock snapshot.
func (s *ClockService) State(ctx context.Context, gameID int64) (*models.GameStateView, error) {
	g, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	bs, err := s.blinds.StructureByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return s.clock.StateView(g, bs), nil
}
