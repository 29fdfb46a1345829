package store

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
)

type weekEntry struct {
	games     []games.Game
	fetchedAt time.Time
}

// MemoryStore keeps the latest games of each week in memory. Games are public
// reference data; picks are never cached here.
type MemoryStore struct {
	clock clockwork.Clock

	mu    sync.RWMutex
	weeks map[int64]weekEntry
}

// NewMemoryStore constructs an empty MemoryStore. A nil clock uses the real one.
func NewMemoryStore(clock clockwork.Clock) *MemoryStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryStore{
		clock: clock,
		weeks: make(map[int64]weekEntry),
	}
}

// SetWeekGames replaces the cached games of a week.
func (s *MemoryStore) SetWeekGames(weekID int64, list []games.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.weeks[weekID] = weekEntry{
		games:     append([]games.Game(nil), list...),
		fetchedAt: s.clock.Now(),
	}
}

// WeekGames returns a copy of a week's games and when they were fetched.
func (s *MemoryStore) WeekGames(weekID int64) ([]games.Game, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.weeks[weekID]
	if !ok {
		return nil, time.Time{}, false
	}
	return append([]games.Game(nil), entry.games...), entry.fetchedAt, true
}

// GetGame finds a cached game in any week.
func (s *MemoryStore) GetGame(id int64) (games.Game, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.weeks {
		for _, g := range entry.games {
			if g.ID == id {
				return g, true
			}
		}
	}
	return games.Game{}, false
}

// Weeks lists cached week IDs in ascending order.
func (s *MemoryStore) Weeks() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.weeks))
	for id := range s.weeks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Invalidate drops a week so the next read goes to the backend.
func (s *MemoryStore) Invalidate(weekID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.weeks, weekID)
}
