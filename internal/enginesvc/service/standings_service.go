package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/engine"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// StandingsService scores a finished game: per-player points from finish
// position and bounty count, and the symmetric played-together edges. It
// refuses to run before the financial lock and re-running a scored game
// changes nothing.
type StandingsService struct {
	games    GameStore
	sessions SessionStore
	links    PlayerLinkStore
	config   ClubConfigStore
	notifier Notifier
	locks    *gameLocks
}

func NewStandingsService(games GameStore, sessions SessionStore, links PlayerLinkStore,
	config ClubConfigStore, notifier Notifier) *StandingsService {
	return &StandingsService{
		games:    games,
		sessions: sessions,
		links:    links,
		config:   config,
		notifier: notifier,
		locks:    newGameLocks(),
	}
}

// ScoreGame awards points once per session. SetPoints only stamps rows that
// have never been scored, so a re-run neither double-applies points nor
// re-notifies, and player-network edges are recorded only on the run that
// newly stamps at least one session.
func (s *StandingsService) ScoreGame(ctx context.Context, gameID int64) ([]*models.GameSession, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.games.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, &engine.NotFoundError{Entity: "game", ID: gameID}
	}
	if !g.Locked() {
		return nil, engine.Validationf("game %d financials are not locked; scoring refused", gameID)
	}

	cfg, err := s.config.Load(ctx, g.ClubID)
	if err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	newlyScored := false
	for _, gs := range sessions {
		points := engine.ComputePoints(gs, cfg)
		applied, err := s.sessions.SetPoints(ctx, gs.ID, points)
		if err != nil {
			return nil, err
		}
		if !applied {
			continue // already scored in an earlier run
		}
		newlyScored = true
		gs.PointsEarned = points
		body := fmt.Sprintf("You earned %d points.", points)
		if err := s.notifier.Notify(ctx, gs.PersonID, "Game scored", body); err != nil {
			log.Warnf("points notification failed for person %d: %v", gs.PersonID, err)
		}
	}

	// Only a first scoring grows the network. The last_game_id guard in the
	// upsert cannot tell a re-score from a new game once another game moved
	// the marker, so a run that stamped nothing records no edges either.
	if newlyScored {
		for i := 0; i < len(sessions); i++ {
			for j := i + 1; j < len(sessions); j++ {
				err := s.links.UpsertPair(ctx, g.ClubID, sessions[i].PersonID, sessions[j].PersonID, gameID)
				if err != nil {
					return nil, err
				}
			}
		}
	}
	log.Infof("game %d: standings scored for %d sessions", gameID, len(sessions))
	return sessions, nil
}
