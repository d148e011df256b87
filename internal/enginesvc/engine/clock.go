package engine

import (
	"time"

	"github.com/coder/quartz"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

// GameClock is the tournament clock state machine. It mutates in-memory
// aggregates only; persistence is the caller's job, and every operation
// either fully applies or fails closed with a typed error.
//
// Level timing is recomputed from stored timestamps on every read, so there
// is no background ticker and no drift across restarts.
type GameClock struct {
	clock quartz.Clock
}

func NewGameClock(clock quartz.Clock) *GameClock {
	return &GameClock{clock: clock}
}

// Start moves a pending game to active on level 1 and snapshots the player
// counts from the current sessions.
func (c *GameClock) Start(g *models.Game, sessions []*models.GameSession) error {
	if g.Status != models.GamePending {
		return &InvalidTransitionError{From: g.Status, Attempted: "start"}
	}
	now := c.clock.Now()
	g.Status = models.GameActive
	g.CurrentLevel = 1
	g.LevelStartedAt = &now
	g.PausedAt = nil
	g.TotalPausedMs = 0
	g.PlayersRegistered = len(sessions)
	g.PlayersRemaining = countActive(sessions)
	return nil
}

// Pause freezes the clock. Pause duration is accrued at resume, not here,
// so a paused game stores only the instant it stopped.
func (c *GameClock) Pause(g *models.Game) error {
	if g.Status != models.GameActive && g.Status != models.GameBreak {
		return &InvalidTransitionError{From: g.Status, Attempted: "pause"}
	}
	now := c.clock.Now()
	g.Status = models.GamePaused
	g.PausedAt = &now
	return nil
}

// Resume accrues the elapsed pause into TotalPausedMs and reactivates.
func (c *GameClock) Resume(g *models.Game) error {
	if g.Status != models.GamePaused {
		return &InvalidTransitionError{From: g.Status, Attempted: "resume"}
	}
	now := c.clock.Now()
	if g.PausedAt != nil {
		g.TotalPausedMs += now.Sub(*g.PausedAt).Milliseconds()
	}
	g.PausedAt = nil
	g.Status = models.GameActive
	return nil
}

// AdvanceLevel moves to the next blind level. Pause tracking is per-level,
// so TotalPausedMs resets and PausedAt clears regardless of prior state.
// What happens past the last defined level is the game's overflow policy.
func (c *GameClock) AdvanceLevel(g *models.Game, structure models.BlindStructure) error {
	if !g.Status.Running() {
		return &InvalidTransitionError{From: g.Status, Attempted: "advance level"}
	}
	next := structure.Level(g.CurrentLevel + 1)
	if next == nil {
		switch g.OverflowPolicy {
		case models.OverflowComplete:
			now := c.clock.Now()
			g.Status = models.GameCompleted
			g.PausedAt = nil
			g.TotalPausedMs = 0
			g.LevelStartedAt = &now
			return nil
		case models.OverflowError:
			return Validationf("game %d has no level %d in its blind structure", g.ID, g.CurrentLevel+1)
		default: // clamp: stay on the current (last) level, timer restarts
			next = structure.Level(g.CurrentLevel)
			if next == nil {
				return Validationf("game %d has an empty blind structure", g.ID)
			}
			now := c.clock.Now()
			g.LevelStartedAt = &now
			g.TotalPausedMs = 0
			g.PausedAt = nil
			g.Status = statusForLevel(next)
			return nil
		}
	}
	now := c.clock.Now()
	g.CurrentLevel = next.LevelNo
	g.LevelStartedAt = &now
	g.TotalPausedMs = 0
	g.PausedAt = nil
	g.Status = statusForLevel(next)
	return nil
}

func statusForLevel(l *models.BlindLevel) models.GameStatus {
	if l.IsBreak {
		return models.GameBreak
	}
	return models.GameActive
}

// TimeRemaining derives the milliseconds left on the current level.
// elapsed = (pausedAt if paused, else now) - levelStartedAt - totalPaused.
func (c *GameClock) TimeRemaining(g *models.Game, structure models.BlindStructure) int64 {
	if g.LevelStartedAt == nil {
		return 0
	}
	level := structure.Level(g.CurrentLevel)
	if level == nil {
		return 0
	}
	ref := c.clock.Now()
	if g.Status == models.GamePaused && g.PausedAt != nil {
		ref = *g.PausedAt
	}
	elapsed := ref.Sub(*g.LevelStartedAt).Milliseconds() - g.TotalPausedMs
	remaining := level.DurationMs - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Eliminate busts a player. Finish position is the count of still-active
// sessions including this one, so positions count down as players bust:
// first out of nine gets 9, the last one standing before the winner gets 2.
// Returns the eliminated session and the person ids of everyone still in,
// for the played-together bookkeeping.
func (c *GameClock) Eliminate(g *models.Game, sessions []*models.GameSession, personID int64, eliminatedBy *int64) (*models.GameSession, []int64, error) {
	if !g.Status.Running() {
		return nil, nil, &InvalidTransitionError{From: g.Status, Attempted: "eliminate player in"}
	}
	var target *models.GameSession
	for _, s := range sessions {
		if s.PersonID == personID && s.Status == models.SessionActive {
			target = s
			break
		}
	}
	if target == nil {
		return nil, nil, Validationf("person %d has no active session in game %d", personID, g.ID)
	}

	position := countActive(sessions)
	if position <= 1 {
		// position 1 belongs to the winner; the sole survivor exits
		// through End, not through a bust
		return nil, nil, Validationf("cannot eliminate the last active player in game %d; end the game instead", g.ID)
	}
	target.Status = models.SessionEliminated
	target.FinishPosition = &position
	g.PlayersRemaining--

	var remaining []int64
	for _, s := range sessions {
		if s.Status == models.SessionActive {
			remaining = append(remaining, s.PersonID)
		}
	}
	if eliminatedBy != nil {
		for _, s := range sessions {
			if s.PersonID == *eliminatedBy && s.Status == models.SessionActive {
				s.BountiesWon++
				target.BountiesLost++
				break
			}
		}
	}
	return target, remaining, nil
}

// End completes the game. If exactly one active session remains it becomes
// the winner with position 1; eliminate never assigns position 1.
func (c *GameClock) End(g *models.Game, sessions []*models.GameSession) (*models.GameSession, error) {
	if !g.Status.Running() {
		return nil, &InvalidTransitionError{From: g.Status, Attempted: "end"}
	}
	var winner *models.GameSession
	if countActive(sessions) == 1 {
		for _, s := range sessions {
			if s.Status == models.SessionActive {
				winner = s
				break
			}
		}
		first := 1
		winner.Status = models.SessionWinner
		winner.FinishPosition = &first
	}
	now := c.clock.Now()
	g.Status = models.GameCompleted
	g.PausedAt = nil
	g.LevelStartedAt = &now
	return winner, nil
}

// StateView assembles the derived clock snapshot.
func (c *GameClock) StateView(g *models.Game, structure models.BlindStructure) *models.GameStateView {
	v := &models.GameStateView{
		GameID:            g.ID,
		Status:            g.Status,
		CurrentLevel:      g.CurrentLevel,
		TimeRemainingMs:   c.TimeRemaining(g, structure),
		PlayersRemaining:  g.PlayersRemaining,
		PlayersRegistered: g.PlayersRegistered,
		PrizePool:         g.PrizePool.StringFixed(2),
	}
	if level := structure.Level(g.CurrentLevel); level != nil {
		v.SmallBlind = level.SmallBlind
		v.BigBlind = level.BigBlind
		v.Ante = level.Ante
		v.IsBreak = level.IsBreak
	}
	return v
}

func countActive(sessions []*models.GameSession) int {
	n := 0
	for _, s := range sessions {
		if s.Status == models.SessionActive {
			n++
		}
	}
	return n
}

// Now exposes the injected clock for callers that stamp timestamps.
func (c *GameClock) Now() time.Time {
	return c.clock.Now()
}
