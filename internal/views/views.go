// Package views turns backend data into the models a screen renders:
// the pick dashboard, the head-to-head comparison, the opponent list and
// the leaderboard.
package views

import (
	"context"
	"errors"
	"sync"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/leaderboard"
	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
	"github.com/preston-bernstein/pickem-client/internal/domain/users"
	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
	"github.com/preston-bernstein/pickem-client/internal/session"
)

// Status is the load lifecycle of a view.
type Status string

const (
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

// ErrWeekNotFound means a requested week is not in the backend's list.
var ErrWeekNotFound = errors.New("week not found")

// Reader is the read side of the backend. Both *api.Client and
// *api.RetryingReader satisfy it.
type Reader interface {
	Weeks(ctx context.Context) ([]weeks.Week, error)
	WeekGames(ctx context.Context, weekID int64) ([]games.Game, error)
	MyPicks(ctx context.Context, token string) ([]picks.Pick, error)
	UserPicks(ctx context.Context, token string, userID int64) ([]picks.Pick, error)
	WeekUsers(ctx context.Context, token string, weekID int64) ([]users.User, error)
	Leaderboard(ctx context.Context, weekID int64) ([]leaderboard.Entry, error)
}

// Identity is the signed-in user as views see it; *session.Store satisfies it.
type Identity interface {
	Token() string
	User() (users.User, bool)
}

// credentials returns the live token and user, or ErrNotAuthenticated.
func credentials(id Identity) (string, users.User, error) {
	if id == nil {
		return "", users.User{}, session.ErrNotAuthenticated
	}
	token := id.Token()
	user, ok := id.User()
	if token == "" || !ok {
		return "", users.User{}, session.ErrNotAuthenticated
	}
	return token, user, nil
}

// selectWeek loads the week list and picks weekID, or the first (newest)
// week when weekID is 0. found is false only when the list is empty.
func selectWeek(ctx context.Context, r Reader, weekID int64) (list []weeks.Week, week weeks.Week, found bool, err error) {
	list, err = r.Weeks(ctx)
	if err != nil {
		return nil, weeks.Week{}, false, err
	}
	if weekID == 0 {
		if len(list) == 0 {
			return list, weeks.Week{}, false, nil
		}
		return list, list[0], true, nil
	}
	week, ok := weeks.Find(list, weekID)
	if !ok {
		return list, weeks.Week{}, false, ErrWeekNotFound
	}
	return list, week, true, nil
}

// tracker holds the load status shared by every view.
type tracker struct {
	mu     sync.RWMutex
	status Status
	err    error
}

// Status reports the load state and, in StatusError, the cause.
func (t *tracker) Status() (Status, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status, t.err
}

func (t *tracker) begin() {
	t.mu.Lock()
	t.status, t.err = StatusLoading, nil
	t.mu.Unlock()
}

func (t *tracker) fail(err error) error {
	t.mu.Lock()
	t.status, t.err = StatusError, err
	t.mu.Unlock()
	return err
}
