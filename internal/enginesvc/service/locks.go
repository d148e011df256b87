package service

import "sync"

// gameLocks serializes operator actions per game. Clock transitions, seat
// allocation and ledger caps are all read-validate-write sequences; the
// dealer, the floor and the accountant may fire them from different devices
// at once. Locks are held only for the span of one operation.
type gameLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newGameLocks() *gameLocks {
	return &gameLocks{locks: make(map[int64]*sync.Mutex)}
}

// lock acquires the mutex for a game and returns the release func.
func (g *gameLocks) lock(gameID int64) func() {
	g.mu.Lock()
	m, ok := g.locks[gameID]
	if !ok {
		m = &sync.Mutex{}
		g.locks[gameID] = m
	}
	g.mu.Unlock()

	m.Lock()
	return m.Unlock
}
