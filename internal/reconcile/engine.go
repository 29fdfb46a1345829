package reconcile

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/preston-bernstein/pickem-client/internal/api"
	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
	"github.com/preston-bernstein/pickem-client/internal/logging"
	"github.com/preston-bernstein/pickem-client/internal/metrics"
	"github.com/preston-bernstein/pickem-client/internal/session"
)

const defaultTimeout = 30 * time.Second

// Remote is the write side of the backend.
type Remote interface {
	UpsertPick(ctx context.Context, token string, req picks.UpsertRequest) (picks.Pick, error)
	DeletePick(ctx context.Context, token string, gameID int64) error
}

// TokenSource yields the live bearer token; *session.Store satisfies it.
type TokenSource interface {
	Token() string
}

// Scope bounds an engine to one user and one week.
type Scope struct {
	UserID int64
	WeekID int64
}

// Options configure an Engine.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Recorder
	// Timeout bounds each backend call. Callers cannot cancel a dispatched toggle.
	Timeout time.Duration
	// OnFailure runs after a failed toggle has been rolled back.
	OnFailure func(*Failure)
	// OnChange runs after every change to the visible picks.
	OnChange func()
}

// Engine owns the current user's picks for one week. Toggles apply locally
// before returning and reconcile with the backend in the background.
type Engine struct {
	scope  Scope
	remote Remote
	tokens TokenSource
	opts   Options

	mu      sync.Mutex
	games   []games.Game
	byID    map[int64]games.Game
	picks   []picks.Pick
	pending map[int64][]*op
	// visible maps a game to the unconfirmed toggle whose result is on
	// screen. Absent means the record reflects confirmed data.
	visible map[int64]*op
	active  int
	idle    chan struct{}
}

// New builds an engine from the week's games and the user's picks. Picks for
// other weeks are dropped, and only the first pick per game is kept.
func New(scope Scope, gameList []games.Game, initial []picks.Pick, remote Remote, tokens TokenSource, opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	e := &Engine{
		scope:   scope,
		remote:  remote,
		tokens:  tokens,
		opts:    opts,
		pending: make(map[int64][]*op),
		visible: make(map[int64]*op),
		idle:    closedChan(),
	}
	e.setGamesLocked(gameList)

	inScope := make(map[int64]struct{}, len(gameList))
	for _, g := range gameList {
		inScope[g.ID] = struct{}{}
	}
	e.picks = picks.ForGames(initial, inScope)
	return e
}

// Scope returns the (user, week) the engine serves.
func (e *Engine) Scope() Scope {
	return e.scope
}

// Toggle applies a pick change locally and dispatches it. Selecting the team
// already picked removes the pick. Precondition errors are returned before
// anything changes; backend failures arrive through the Pending handle and
// OnFailure after the change has been rolled back.
func (e *Engine) Toggle(ctx context.Context, gameID, teamID int64) (*Pending, error) {
	token := ""
	if e.tokens != nil {
		token = e.tokens.Token()
	}
	if token == "" {
		return nil, session.ErrNotAuthenticated
	}

	e.mu.Lock()
	game, ok := e.byID[gameID]
	if !ok {
		e.mu.Unlock()
		return nil, ErrUnknownGame
	}
	if !game.HasTeam(teamID) {
		e.mu.Unlock()
		return nil, ErrTeamNotInGame
	}

	o := &op{
		id:           uuid.NewString(),
		gameID:       gameID,
		teamID:       teamID,
		beforeSource: e.visible[gameID],
		done:         make(chan struct{}),
	}
	idx := e.indexLocked(gameID)
	switch {
	case idx < 0:
		o.intent = IntentCreate
		o.beforeIndex = len(e.picks)
		e.picks = append(e.picks, picks.Pick{UserID: e.scope.UserID, GameID: gameID, SelectedTeamID: teamID})
	case e.picks[idx].SelectedTeamID != teamID:
		o.intent = IntentUpdate
		prev := e.picks[idx]
		o.before, o.beforeIndex = &prev, idx
		e.picks[idx].SelectedTeamID = teamID
	default:
		o.intent = IntentDelete
		prev := e.picks[idx]
		o.before, o.beforeIndex = &prev, idx
		e.picks = append(e.picks[:idx], e.picks[idx+1:]...)
	}

	e.visible[gameID] = o
	e.pending[gameID] = append(e.pending[gameID], o)
	if e.active == 0 {
		e.idle = make(chan struct{})
	}
	e.active++
	e.mu.Unlock()

	e.opts.Metrics.RecordToggle(string(o.intent))
	logging.Debug(logging.FromContext(ctx, e.opts.Logger), "pick toggled",
		logging.FieldRequestID, o.id,
		logging.FieldIntent, string(o.intent),
		logging.FieldGameID, gameID,
		logging.FieldTeamID, teamID,
	)
	e.changed()

	dispatchCtx := api.WithRequestID(context.WithoutCancel(ctx), o.id)
	go e.dispatch(dispatchCtx, o, token)

	return &Pending{op: o}, nil
}

// TogglePick toggles and waits for reconciliation. The returned error is a
// precondition error, a *Failure, or ctx's error if ctx ends first.
func (e *Engine) TogglePick(ctx context.Context, gameID, teamID int64) error {
	p, err := e.Toggle(ctx, gameID, teamID)
	if err != nil {
		return err
	}
	return p.Wait(ctx)
}

func (e *Engine) dispatch(ctx context.Context, o *op, token string) {
	ctx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
	defer cancel()

	var (
		confirmed picks.Pick
		err       error
	)
	if o.intent == IntentDelete {
		err = e.remote.DeletePick(ctx, token, o.gameID)
	} else {
		confirmed, err = e.remote.UpsertPick(ctx, token, picks.UpsertRequest{GameID: o.gameID, SelectedTeamID: o.teamID})
	}
	e.complete(ctx, o, confirmed, err)
}

func (e *Engine) complete(ctx context.Context, o *op, confirmed picks.Pick, err error) {
	e.mu.Lock()
	changed := false
	if err != nil {
		o.failure = &Failure{ID: o.id, Intent: o.intent, GameID: o.gameID, TeamID: o.teamID, Err: err}
		for _, p := range e.pending[o.gameID] {
			if p.beforeSource == o {
				p.before, p.beforeIndex, p.beforeSource = o.before, o.beforeIndex, o.beforeSource
			}
		}
		if e.visible[o.gameID] == o {
			e.restoreLocked(o.gameID, o.before, o.beforeIndex)
			e.setVisibleLocked(o.gameID, o.beforeSource)
			changed = true
		}
	} else {
		var record *picks.Pick
		if o.intent != IntentDelete {
			record = e.confirmedRecord(o, confirmed)
		}
		for _, p := range e.pending[o.gameID] {
			if p.beforeSource == o {
				p.before, p.beforeSource = clonePick(record), nil
			}
		}
		if e.visible[o.gameID] == o {
			if record != nil {
				if idx := e.indexLocked(o.gameID); idx >= 0 && e.picks[idx] != *record {
					e.picks[idx] = *record
					changed = true
				}
			}
			e.setVisibleLocked(o.gameID, nil)
		}
	}
	e.removePendingLocked(o)
	e.active--
	if e.active == 0 {
		close(e.idle)
	}
	close(o.done)
	e.mu.Unlock()

	e.opts.Metrics.RecordReconciliation(string(o.intent), err == nil)
	logger := logging.FromContext(ctx, e.opts.Logger)
	if err != nil {
		logging.Warn(logger, "pick change rolled back",
			logging.FieldRequestID, o.id,
			logging.FieldIntent, string(o.intent),
			logging.FieldGameID, o.gameID,
			"rejected", o.failure.Rejected(),
			"error", err,
		)
	} else {
		logging.Debug(logger, "pick change confirmed",
			logging.FieldRequestID, o.id,
			logging.FieldGameID, o.gameID,
		)
	}

	if changed {
		e.changed()
	}
	if err != nil && e.opts.OnFailure != nil {
		e.opts.OnFailure(o.failure)
	}
}

// confirmedRecord prefers the backend's record, falling back to the intended
// pick when the response did not describe this game.
func (e *Engine) confirmedRecord(o *op, resp picks.Pick) *picks.Pick {
	if resp.GameID == o.gameID && resp.SelectedTeamID == o.teamID {
		return &resp
	}
	return &picks.Pick{UserID: e.scope.UserID, GameID: o.gameID, SelectedTeamID: o.teamID}
}

// callers hold e.mu
func (e *Engine) restoreLocked(gameID int64, before *picks.Pick, beforeIndex int) {
	idx := e.indexLocked(gameID)
	switch {
	case before == nil && idx >= 0:
		e.picks = append(e.picks[:idx], e.picks[idx+1:]...)
	case before == nil:
	case idx >= 0:
		e.picks[idx] = *before
	default:
		if beforeIndex > len(e.picks) {
			beforeIndex = len(e.picks)
		}
		e.picks = append(e.picks, picks.Pick{})
		copy(e.picks[beforeIndex+1:], e.picks[beforeIndex:])
		e.picks[beforeIndex] = *before
	}
}

func (e *Engine) setVisibleLocked(gameID int64, src *op) {
	if src == nil {
		delete(e.visible, gameID)
		return
	}
	e.visible[gameID] = src
}

func (e *Engine) removePendingLocked(o *op) {
	list := e.pending[o.gameID]
	for i, p := range list {
		if p == o {
			list = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(list) == 0 {
		delete(e.pending, o.gameID)
		return
	}
	e.pending[o.gameID] = list
}

func (e *Engine) indexLocked(gameID int64) int {
	for i, p := range e.picks {
		if p.GameID == gameID {
			return i
		}
	}
	return -1
}

// Picks returns a copy of the visible picks in order.
func (e *Engine) Picks() []picks.Pick {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]picks.Pick(nil), e.picks...)
}

// PickFor returns the visible pick for a game.
func (e *Engine) PickFor(gameID int64) (picks.Pick, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if idx := e.indexLocked(gameID); idx >= 0 {
		return e.picks[idx], true
	}
	return picks.Pick{}, false
}

// Games returns the week's games in backend order.
func (e *Engine) Games() []games.Game {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]games.Game(nil), e.games...)
}

// Snapshot returns the games and visible picks read under one lock.
func (e *Engine) Snapshot() ([]games.Game, []picks.Pick) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]games.Game(nil), e.games...), append([]picks.Pick(nil), e.picks...)
}

// SetGames replaces reference data such as scores and status. Picks are untouched.
func (e *Engine) SetGames(gameList []games.Game) {
	e.mu.Lock()
	e.setGamesLocked(gameList)
	e.mu.Unlock()
	e.changed()
}

func (e *Engine) setGamesLocked(gameList []games.Game) {
	e.games = append([]games.Game(nil), gameList...)
	e.byID = games.Index(gameList)
}

// Outstanding counts toggles still waiting on the backend.
func (e *Engine) Outstanding() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Wait blocks until no toggle is outstanding or ctx ends.
func (e *Engine) Wait(ctx context.Context) error {
	e.mu.Lock()
	idle := e.idle
	e.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) changed() {
	if e.opts.OnChange != nil {
		e.opts.OnChange()
	}
}

func clonePick(p *picks.Pick) *picks.Pick {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
