package testutil

import (
	"context"
	"sync"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/leaderboard"
	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
	"github.com/preston-bernstein/pickem-client/internal/domain/users"
	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
)

// StubBackend serves canned reads and answers pick writes in memory.
// A non-nil Err field fails every call of that kind.
type StubBackend struct {
	mu sync.Mutex

	WeekList    []weeks.Week
	Games       map[int64][]games.Game
	Mine        []picks.Pick
	Others      map[int64][]picks.Pick
	Users       []users.User
	Leaders     []leaderboard.Entry
	PickOwnerID int64

	ReadErr  error
	WriteErr error

	Writes int
	nextID int64
}

func (b *StubBackend) Weeks(context.Context) ([]weeks.Week, error) {
	return b.WeekList, b.ReadErr
}

func (b *StubBackend) WeekGames(_ context.Context, weekID int64) ([]games.Game, error) {
	if b.ReadErr != nil {
		return nil, b.ReadErr
	}
	return b.Games[weekID], nil
}

func (b *StubBackend) MyPicks(context.Context, string) ([]picks.Pick, error) {
	if b.ReadErr != nil {
		return nil, b.ReadErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]picks.Pick(nil), b.Mine...), nil
}

func (b *StubBackend) UserPicks(_ context.Context, _ string, userID int64) ([]picks.Pick, error) {
	if b.ReadErr != nil {
		return nil, b.ReadErr
	}
	return b.Others[userID], nil
}

func (b *StubBackend) WeekUsers(context.Context, string, int64) ([]users.User, error) {
	return b.Users, b.ReadErr
}

func (b *StubBackend) Leaderboard(context.Context, int64) ([]leaderboard.Entry, error) {
	return b.Leaders, b.ReadErr
}

// UpsertPick stores the pick and returns it with a server-assigned ID.
func (b *StubBackend) UpsertPick(_ context.Context, _ string, req picks.UpsertRequest) (picks.Pick, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Writes++
	if b.WriteErr != nil {
		return picks.Pick{}, b.WriteErr
	}
	b.nextID++
	saved := picks.Pick{ID: 1000 + b.nextID, UserID: b.PickOwnerID, GameID: req.GameID, SelectedTeamID: req.SelectedTeamID}
	for i, p := range b.Mine {
		if p.GameID == req.GameID {
			b.Mine[i] = saved
			return saved, nil
		}
	}
	b.Mine = append(b.Mine, saved)
	return saved, nil
}

// DeletePick removes the pick for gameID.
func (b *StubBackend) DeletePick(_ context.Context, _ string, gameID int64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Writes++
	if b.WriteErr != nil {
		return b.WriteErr
	}
	kept := b.Mine[:0]
	for _, p := range b.Mine {
		if p.GameID != gameID {
			kept = append(kept, p)
		}
	}
	b.Mine = kept
	return nil
}
