package engine

import (
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

func testStructure(durations ...time.Duration) models.BlindStructure {
	var bs models.BlindStructure
	for i, d := range durations {
		bs = append(bs, &models.BlindLevel{
			LevelNo:    i + 1,
			SmallBlind: int64(25 * (i + 1)),
			BigBlind:   int64(50 * (i + 1)),
			DurationMs: d.Milliseconds(),
		})
	}
	return bs
}

func testGame() *models.Game {
	return &models.Game{
		ID:             7,
		ClubID:         1,
		Status:         models.GamePending,
		PrizePool:      decimal.Zero,
		OverflowPolicy: models.OverflowClamp,
	}
}

func testSessions(n int) []*models.GameSession {
	var out []*models.GameSession
	for i := 0; i < n; i++ {
		out = append(out, &models.GameSession{
			ID:       int64(i + 1),
			GameID:   7,
			PersonID: int64(100 + i),
			Status:   models.SessionActive,
		})
	}
	return out
}

func TestStartRequiresPending(t *testing.T) {
	mock := quartz.NewMock(t)
	gc := NewGameClock(mock)
	g := testGame()
	sessions := testSessions(9)

	require.NoError(t, gc.Start(g, sessions))
	assert.Equal(t, models.GameActive, g.Status)
	assert.Equal(t, 1, g.CurrentLevel)
	assert.Equal(t, 9, g.PlayersRegistered)
	assert.Equal(t, 9, g.PlayersRemaining)
	require.NotNil(t, g.LevelStartedAt)

	err := gc.Start(g, sessions)
	var tr *InvalidTransitionError
	require.ErrorAs(t, err, &tr)
	assert.Equal(t, models.GameActive, tr.From)
}

func TestPauseIsTimeNeutral(t *testing.T) {
	mock := quartz.NewMock(t)
	gc := NewGameClock(mock)
	g := testGame()
	bs := testStructure(20*time.Minute, 20*time.Minute)

	require.NoError(t, gc.Start(g, testSessions(6)))
	mock.Advance(5 * time.Minute)

	before := gc.TimeRemaining(g, bs)
	assert.Equal(t, (15 * time.Minute).Milliseconds(), before)

	require.NoError(t, gc.Pause(g))
	mock.Advance(42 * time.Minute)
	assert.Equal(t, before, gc.TimeRemaining(g, bs), "paused clock must not tick")

	require.NoError(t, gc.Resume(g))
	assert.Equal(t, (42 * time.Minute).Milliseconds(), g.TotalPausedMs)
	assert.Nil(t, g.PausedAt)
	assert.Equal(t, before, gc.TimeRemaining(g, bs), "resume must restore the pre-pause remaining")
}

func TestRepeatedPausesAccumulate(t *testing.T) {
	mock := quartz.NewMock(t)
	gc := NewGameClock(mock)
	g := testGame()

	require.NoError(t, gc.Start(g, testSessions(3)))
	for i := 1; i <= 3; i++ {
		require.NoError(t, gc.Pause(g))
		mock.Advance(time.Duration(i) * time.Minute)
		require.NoError(t, gc.Resume(g))
	}
	assert.Equal(t, (6 * time.Minute).Milliseconds(), g.TotalPausedMs)
}

func TestResumeRequiresPaused(t *testing.T) {
	mock := quartz.NewMock(t)
	gc := NewGameClock(mock)
	g := testGame()
	require.NoError(t, gc.Start(g, testSessions(2)))

	err := gc.Resume(g)
	var tr *InvalidTransitionError
	require.ErrorAs(t, err, &tr)
	assert.Equal(t, "cannot resume game in active status", err.Error())
}

func TestAdvanceLevelResetsPauseTracking(t *testing.T) {
	mock := quartz.NewMock(t)
	gc := NewGameClock(mock)
	g := testGame()
	bs := testStructure(10*time.Minute, 15*time.Minute)

	require.NoError(t, gc.Start(g, testSessions(4)))
	require.NoError(t, gc.Pause(g))
	mock.Advance(3 * time.Minute)
	require.NoError(t, gc.Resume(g))
	require.NotZero(t, g.TotalPausedMs)

	require.NoError(t, gc.AdvanceLevel(g, bs))
	assert.Equal(t, 2, g.CurrentLevel)
	assert.Zero(t, g.TotalPausedMs)
	assert.Nil(t, g.PausedAt)
	assert.Equal(t, (15 * time.Minute).Milliseconds(), gc.TimeRemaining(g, bs))
}

func TestAdvanceIntoBreak(t *testing.T) {
	mock := quartz.NewMock(t)
	gc := NewGameClock(mock)
	g := testGame()
	bs := testStructure(10*time.Minute, 10*time.Minute)
	bs[1].IsBreak = true

	require.NoError(t, gc.Start(g, testSessions(4)))
	require.NoError(t, gc.AdvanceLevel(g, bs))
	assert.Equal(t, models.GameBreak, g.Status)

	// a break can be paused like any running state
	require.NoError(t, gc.Pause(g))
	assert.Equal(t, models.GamePaused, g.Status)
}

func TestAdvanceOverflowPolicies(t *testing.T) {
	bs := testStructure(10 * time.Minute)

	t.Run("clamp", func(t *testing.T) {
		mock := quartz.NewMock(t)
		gc := NewGameClock(mock)
		g := testGame()
		require.NoError(t, gc.Start(g, testSessions(2)))
		mock.Advance(4 * time.Minute)

		require.NoError(t, gc.AdvanceLevel(g, bs))
		assert.Equal(t, 1, g.CurrentLevel)
		assert.Equal(t, (10 * time.Minute).Milliseconds(), gc.TimeRemaining(g, bs))
	})

	t.Run("complete", func(t *testing.T) {
		mock := quartz.NewMock(t)
		gc := NewGameClock(mock)
		g := testGame()
		g.OverflowPolicy = models.OverflowComplete
		require.NoError(t, gc.Start(g, testSessions(2)))

		require.NoError(t, gc.AdvanceLevel(g, bs))
		assert.Equal(t, models.GameCompleted, g.Status)
	})

	t.Run("error", func(t *testing.T) {
		mock := quartz.NewMock(t)
		gc := NewGameClock(mock)
		g := testGame()
		g.OverflowPolicy = models.OverflowError
		require.NoError(t, gc.Start(g, testSessions(2)))

		err := gc.AdvanceLevel(g, bs)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, 1, g.CurrentLevel)
	})
}

func TestEliminationAssignsDescendingPositions(t *testing.T) {
	mock := quartz.NewMock(t)
	gc := NewGameClock(mock)
	g := testGame()
	sessions := testSessions(4)
	require.NoError(t, gc.Start(g, sessions))

	order := []int64{101, 103, 100}
	want := []int{4, 3, 2}
	for i, pid := range order {
		s, remaining, err := gc.Eliminate(g, sessions, pid, nil)
		require.NoError(t, err)
		require.NotNil(t, s.FinishPosition)
		assert.Equal(t, want[i], *s.FinishPosition)
		assert.Len(t, remaining, 3-i)
	}
	assert.Equal(t, 1, g.PlayersRemaining)

	// the survivor only gets position 1 through End
	winner, err := gc.End(g, sessions)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, int64(102), winner.PersonID)
	assert.Equal(t, models.SessionWinner, winner.Status)
	assert.Equal(t, 1, *winner.FinishPosition)
	assert.Equal(t, models.GameCompleted, g.Status)
}

func TestEliminateTracksBounties(t *testing.T) {
	mock := quartz.NewMock(t)
	gc := NewGameClock(mock)
	g := testGame()
	sessions := testSessions(3)
	require.NoError(t, gc.Start(g, sessions))

	hunter := int64(100)
	target, _, err := gc.Eliminate(g, sessions, 101, &hunter)
	require.NoError(t, err)
	assert.Equal(t, 1, target.BountiesLost)
	assert.Equal(t, 1, sessions[0].BountiesWon)
}

func TestEliminateUnknownPlayer(t *testing.T) {
	mock := quartz.NewMock(t)
	gc := NewGameClock(mock)
	g := testGame()
	sessions := testSessions(2)
	require.NoError(t, gc.Start(g, sessions))

	_, _, err := gc.Eliminate(g, sessions, 999, nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	// eliminating the same player twice is also rejected
	_, _, err = gc.Eliminate(g, sessions, 100, nil)
	require.NoError(t, err)
	_, _, err = gc.Eliminate(g, sessions, 100, nil)
	require.ErrorAs(t, err, &ve)
}

func TestStateView(t *testing.T) {
	mock := quartz.NewMock(t)
	gc := NewGameClock(mock)
	g := testGame()
	g.PrizePool = decimal.NewFromInt(550)
	bs := testStructure(10 * time.Minute)
	require.NoError(t, gc.Start(g, testSessions(9)))
	mock.Advance(90 * time.Second)

	v := gc.StateView(g, bs)
	assert.Equal(t, int64(25), v.SmallBlind)
	assert.Equal(t, int64(50), v.BigBlind)
	assert.Equal(t, (510 * time.Second).Milliseconds(), v.TimeRemainingMs)
	assert.Equal(t, "550.00", v.PrizePool)
}

func TestEliminateRefusesLastActivePlayer(t *testing.T) {
	mock := quartz.NewMock(t)
	gc := NewGameClock(mock)
	g := testGame()
	sessions := testSessions(2)
	require.NoError(t, gc.Start(g, sessions))

	_, _, err := gc.Eliminate(g, sessions, 100, nil)
	require.NoError(t, err)

	// busting the sole survivor would hand out position 1
	_, _, err = gc.Eliminate(g, sessions, 101, nil)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, models.SessionActive, sessions[1].Status)
	assert.Nil(t, sessions[1].FinishPosition)
	assert.Equal(t, 1, g.PlayersRemaining)

	winner, err := gc.End(g, sessions)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, int64(101), winner.PersonID)
	assert.Equal(t, 1, *winner.FinishPosition)
}
