package views

import (
	"context"
	"sync"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/leaderboard"
	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
	"github.com/preston-bernstein/pickem-client/internal/domain/teams"
	"github.com/preston-bernstein/pickem-client/internal/domain/users"
	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
)

var (
	packers = teams.Team{ID: 1, Name: "Packers", Abbreviation: "GB", LogoPath: "/gb.png"}
	bears   = teams.Team{ID: 2, Name: "Bears", Abbreviation: "CHI", LogoPath: "/chi.png"}
	lions   = teams.Team{ID: 3, Name: "Lions", Abbreviation: "DET", LogoPath: "/det.png"}
	vikings = teams.Team{ID: 4, Name: "Vikings", Abbreviation: "MIN", LogoPath: "/min.png"}

	alice = users.User{ID: 7, Name: "Alice Smith", Email: "alice@example.com"}
	bob   = users.User{ID: 8, Name: "Bob Jones", Email: "bob@example.com"}
)

func weekGames() []games.Game {
	ou := 44.5
	kick := "2024-09-08T17:00:00Z"
	return []games.Game{
		{ID: 100, WeekID: 2, HomeTeam: packers, AwayTeam: bears, Spread: -3.5, OverUnder: &ou, Status: games.StatusScheduled, GameTime: &kick},
		{ID: 101, WeekID: 2, HomeTeam: lions, AwayTeam: vikings, Spread: 2, Status: games.StatusScheduled},
	}
}

// fakeReader serves canned data; a non-nil error field fails that call.
type fakeReader struct {
	mu sync.Mutex

	weeks       []weeks.Week
	games       map[int64][]games.Game
	myPicks     []picks.Pick
	userPicks   map[int64][]picks.Pick
	weekUsers   []users.User
	leaderboard []leaderboard.Entry

	weeksErr, gamesErr, myPicksErr, userPicksErr, weekUsersErr, leaderboardErr error

	// blockMyPicks parks MyPicks until its context ends.
	blockMyPicks bool

	tokens        []string
	leaderboardIn []int64
	gamesCalls    int
}

func newFakeReader() *fakeReader {
	return &fakeReader{
		weeks: []weeks.Week{
			{ID: 2, Season: 2024, WeekNumber: 2},
			{ID: 1, Season: 2024, WeekNumber: 1},
		},
		games:     map[int64][]games.Game{2: weekGames(), 1: {}},
		userPicks: map[int64][]picks.Pick{},
	}
}

func (f *fakeReader) Weeks(context.Context) ([]weeks.Week, error) {
	return f.weeks, f.weeksErr
}

func (f *fakeReader) WeekGames(_ context.Context, weekID int64) ([]games.Game, error) {
	f.mu.Lock()
	f.gamesCalls++
	f.mu.Unlock()
	if f.gamesErr != nil {
		return nil, f.gamesErr
	}
	return f.games[weekID], nil
}

func (f *fakeReader) MyPicks(ctx context.Context, token string) ([]picks.Pick, error) {
	f.record(token)
	if f.blockMyPicks {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.myPicks, f.myPicksErr
}

func (f *fakeReader) UserPicks(_ context.Context, token string, userID int64) ([]picks.Pick, error) {
	f.record(token)
	return f.userPicks[userID], f.userPicksErr
}

func (f *fakeReader) WeekUsers(_ context.Context, token string, _ int64) ([]users.User, error) {
	f.record(token)
	return f.weekUsers, f.weekUsersErr
}

func (f *fakeReader) Leaderboard(_ context.Context, weekID int64) ([]leaderboard.Entry, error) {
	f.mu.Lock()
	f.leaderboardIn = append(f.leaderboardIn, weekID)
	f.mu.Unlock()
	return f.leaderboard, f.leaderboardErr
}

func (f *fakeReader) record(token string) {
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	f.mu.Unlock()
}

type fakeIdentity struct {
	token string
	user  *users.User
}

func signedIn(u users.User) *fakeIdentity {
	return &fakeIdentity{token: "tok", user: &u}
}

func (f *fakeIdentity) Token() string { return f.token }

func (f *fakeIdentity) User() (users.User, bool) {
	if f.user == nil {
		return users.User{}, false
	}
	return *f.user, true
}

// fakeRemote answers writes immediately with err, or echoes the upsert.
type fakeRemote struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (f *fakeRemote) UpsertPick(_ context.Context, _ string, req picks.UpsertRequest) (picks.Pick, error) {
	f.mu.Lock()
	f.calls = append(f.calls, "POST")
	f.mu.Unlock()
	if f.err != nil {
		return picks.Pick{}, f.err
	}
	return picks.Pick{ID: 900 + req.GameID, UserID: alice.ID, GameID: req.GameID, SelectedTeamID: req.SelectedTeamID}, nil
}

func (f *fakeRemote) DeletePick(context.Context, string, int64) error {
	f.mu.Lock()
	f.calls = append(f.calls, "DELETE")
	f.mu.Unlock()
	return f.err
}
