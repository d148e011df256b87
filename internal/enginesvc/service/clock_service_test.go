package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/engine"
	"github.com/ronheaslet/pkrnight-sub001/internal/enginesvc/models"
)

func TestClockServiceStartAndState(t *testing.T) {
	e := newEnv(t)
	e.seedGame(6, models.GamePending)
	ctx := context.Background()

	view, err := e.clock.Start(ctx, gameID, actorID)
	require.NoError(t, err)
	assert.Equal(t, models.GameActive, view.Status)
	assert.Equal(t, 1, view.CurrentLevel)
	assert.Equal(t, 6, view.PlayersRegistered)
	assert.Equal(t, int64(25), view.SmallBlind)
	assert.Contains(t, e.audit.actions, "game.start")

	e.mock.Advance(5 * time.Minute)
	state, err := e.clock.State(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, (15 * time.Minute).Milliseconds(), state.TimeRemainingMs)
}

func TestClockServiceUnknownGame(t *testing.T) {
	e := newEnv(t)
	_, err := e.clock.Start(context.Background(), 999, actorID)
	var nf *engine.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "game", nf.Entity)
}

func TestClockServicePersistsWholeClockState(t *testing.T) {
	e := newEnv(t)
	e.seedGame(4, models.GamePending)
	ctx := context.Background()

	_, err := e.clock.Start(ctx, gameID, actorID)
	require.NoError(t, err)
	_, err = e.clock.Pause(ctx, gameID, actorID)
	require.NoError(t, err)
	e.mock.Advance(2 * time.Minute)
	_, err = e.clock.Resume(ctx, gameID, actorID)
	require.NoError(t, err)

	stored := e.store.games[gameID]
	assert.Equal(t, models.GameActive, stored.Status)
	assert.Nil(t, stored.PausedAt, "status and pause marker must agree after persist")
	assert.Equal(t, (2 * time.Minute).Milliseconds(), stored.TotalPausedMs)

	_, err = e.clock.AdvanceLevel(ctx, gameID, actorID)
	require.NoError(t, err)
	stored = e.store.games[gameID]
	assert.Equal(t, 2, stored.CurrentLevel)
	assert.Zero(t, stored.TotalPausedMs)
}

func TestClockServiceInvalidTransitionSurfaces(t *testing.T) {
	e := newEnv(t)
	e.seedGame(4, models.GamePending)

	_, err := e.clock.Pause(context.Background(), gameID, actorID)
	var tr *engine.InvalidTransitionError
	require.ErrorAs(t, err, &tr)
	assert.Equal(t, models.GamePending, tr.From)
	// failed closed: nothing persisted
	assert.Equal(t, models.GamePending, e.store.games[gameID].Status)
}

func TestEliminateFeedsPlayerNetwork(t *testing.T) {
	e := newEnv(t)
	e.seedGame(4, models.GamePending)
	ctx := context.Background()

	_, err := e.clock.Start(ctx, gameID, actorID)
	require.NoError(t, err)

	hunter := int64(100)
	view, err := e.clock.Eliminate(ctx, gameID, 102, &hunter, actorID)
	require.NoError(t, err)
	assert.Equal(t, 3, view.PlayersRemaining)

	// one edge per still-active opponent
	assert.ElementsMatch(t, [][2]int64{{102, 100}, {102, 101}, {102, 103}}, e.network.pairs)
}

func TestEndNotifiesWinner(t *testing.T) {
	e := newEnv(t)
	e.seedGame(3, models.GamePending)
	ctx := context.Background()

	_, err := e.clock.Start(ctx, gameID, actorID)
	require.NoError(t, err)
	for _, pid := range []int64{101, 102} {
		_, err := e.clock.Eliminate(ctx, gameID, pid, nil, actorID)
		require.NoError(t, err)
	}

	view, err := e.clock.End(ctx, gameID, actorID)
	require.NoError(t, err)
	assert.Equal(t, models.GameCompleted, view.Status)
	require.NotEmpty(t, e.notifier.notes)
	assert.Contains(t, e.notifier.notes[len(e.notifier.notes)-1], "Winner")
}

func TestEliminateFailedSessionWriteLeavesGameUntouched(t *testing.T) {
	e := newEnv(t)
	e.seedGame(3, models.GamePending)
	ctx := context.Background()

	_, err := e.clock.Start(ctx, gameID, actorID)
	require.NoError(t, err)
	before, err := e.store.GetGameByID(ctx, gameID)
	require.NoError(t, err)

	// the session write is persisted before the game row; when it fails
	// the stored game must not show one fewer player
	e.store.setFinishErr = errors.New("session write refused")
	_, err = e.clock.Eliminate(ctx, gameID, 100, nil, actorID)
	require.Error(t, err)

	after, err := e.store.GetGameByID(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, before.PlayersRemaining, after.PlayersRemaining)
	assert.Equal(t, before.Status, after.Status)

	// and the engine stays operable once the store recovers
	e.store.setFinishErr = nil
	_, err = e.clock.Eliminate(ctx, gameID, 100, nil, actorID)
	require.NoError(t, err)
	final, err := e.store.GetGameByID(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, before.PlayersRemaining-1, final.PlayersRemaining)
}
