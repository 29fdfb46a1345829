package store

import (
	"context"
	"time"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/views"
)

// CachedReader serves week games from a MemoryStore while they are younger
// than ttl and passes every other read straight through.
type CachedReader struct {
	views.Reader
	cache *MemoryStore
	ttl   time.Duration
}

// NewCachedReader wraps upstream. A ttl <= 0 disables caching.
func NewCachedReader(upstream views.Reader, cache *MemoryStore, ttl time.Duration) *CachedReader {
	return &CachedReader{Reader: upstream, cache: cache, ttl: ttl}
}

// WeekGames returns cached games when fresh, otherwise fetches and caches them.
func (r *CachedReader) WeekGames(ctx context.Context, weekID int64) ([]games.Game, error) {
	if r.ttl > 0 && r.cache != nil {
		if list, at, ok := r.cache.WeekGames(weekID); ok && r.cache.clock.Since(at) < r.ttl {
			return list, nil
		}
	}
	list, err := r.Reader.WeekGames(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.SetWeekGames(weekID, list)
	}
	return list, nil
}
