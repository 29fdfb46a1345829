package views

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
	"github.com/preston-bernstein/pickem-client/internal/logging"
	"github.com/preston-bernstein/pickem-client/internal/metrics"
	"github.com/preston-bernstein/pickem-client/internal/reconcile"
	"github.com/preston-bernstein/pickem-client/internal/session"
)

// DashboardOptions configure a Dashboard.
type DashboardOptions struct {
	Logger   *slog.Logger
	Metrics  *metrics.Recorder
	Location *time.Location
	// ToggleTimeout bounds each pick request; zero uses the engine default.
	ToggleTimeout time.Duration
	OnFailure     func(*reconcile.Failure)
	OnChange      func()
}

// Dashboard is the pick screen for one week.
type Dashboard struct {
	tracker
	reader   Reader
	remote   reconcile.Remote
	identity Identity
	opts     DashboardOptions

	weeks  []weeks.Week
	week   weeks.Week
	engine *reconcile.Engine
	// owner is the user the engine was loaded for.
	owner int64
}

// NewDashboard builds an unloaded dashboard.
func NewDashboard(reader Reader, remote reconcile.Remote, identity Identity, opts DashboardOptions) *Dashboard {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	d := &Dashboard{reader: reader, remote: remote, identity: identity, opts: opts}
	d.status = StatusLoading
	return d
}

// Load selects weekID (0 for the newest week) and loads its games and the
// user's picks concurrently. Either failing fails the whole load and leaves
// the previously loaded week in place.
func (d *Dashboard) Load(ctx context.Context, weekID int64) error {
	token, user, err := credentials(d.identity)
	if err != nil {
		d.Reset()
		return d.fail(err)
	}
	d.begin()
	logger := logging.FromContext(ctx, d.opts.Logger)

	list, week, found, err := selectWeek(ctx, d.reader, weekID)
	if err != nil {
		logging.Warn(logger, "dashboard weeks load failed", logging.FieldWeekID, weekID, "error", err)
		return d.fail(err)
	}
	if !found {
		d.mu.Lock()
		d.weeks, d.week, d.engine = list, weeks.Week{}, nil
		d.status = StatusLoaded
		d.mu.Unlock()
		return nil
	}

	var (
		gameList []games.Game
		mine     []picks.Pick
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		gameList, err = d.reader.WeekGames(gctx, week.ID)
		return err
	})
	g.Go(func() error {
		var err error
		mine, err = d.reader.MyPicks(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		logging.Warn(logger, "dashboard load failed", logging.FieldWeekID, week.ID, "error", err)
		return d.fail(err)
	}

	engine := reconcile.New(reconcile.Scope{UserID: user.ID, WeekID: week.ID}, gameList, mine, d.remote, d.identity, reconcile.Options{
		Logger:    d.opts.Logger,
		Metrics:   d.opts.Metrics,
		Timeout:   d.opts.ToggleTimeout,
		OnFailure: d.opts.OnFailure,
		OnChange:  d.opts.OnChange,
	})

	d.mu.Lock()
	d.weeks, d.week, d.engine, d.owner = list, week, engine, user.ID
	d.status = StatusLoaded
	d.mu.Unlock()

	logging.Debug(logger, "dashboard loaded",
		logging.FieldWeekID, week.ID,
		logging.FieldCount, len(gameList),
	)
	return nil
}

// RefreshGames re-reads the active week's games for new scores and status
// without touching picks.
func (d *Dashboard) RefreshGames(ctx context.Context) error {
	engine, week := d.current()
	if engine == nil {
		return nil
	}
	list, err := d.reader.WeekGames(ctx, week.ID)
	if err != nil {
		return err
	}
	engine.SetGames(list)
	return nil
}

// SetWeekGames applies games fetched elsewhere when they belong to the active week.
func (d *Dashboard) SetWeekGames(weekID int64, list []games.Game) {
	engine, week := d.current()
	if engine == nil || week.ID != weekID {
		return
	}
	engine.SetGames(list)
}

// ActiveWeek reports the loaded week's ID.
func (d *Dashboard) ActiveWeek() (int64, bool) {
	engine, week := d.current()
	return week.ID, engine != nil
}

// Toggle starts a pick change and returns without waiting for the backend.
func (d *Dashboard) Toggle(ctx context.Context, gameID, teamID int64) (*reconcile.Pending, error) {
	if _, _, err := credentials(d.identity); err != nil {
		return nil, err
	}
	engine, _ := d.current()
	if engine == nil {
		return nil, reconcile.ErrUnknownGame
	}
	return engine.Toggle(ctx, gameID, teamID)
}

// TogglePick changes a pick and waits for the backend. A failed change has
// already been rolled back when the error is returned.
func (d *Dashboard) TogglePick(ctx context.Context, gameID, teamID int64) error {
	p, err := d.Toggle(ctx, gameID, teamID)
	if err != nil {
		return err
	}
	return p.Wait(ctx)
}

// Cards renders the active week.
func (d *Dashboard) Cards() []GameCard {
	engine, _ := d.current()
	if engine == nil {
		return []GameCard{}
	}
	gameList, current := engine.Snapshot()
	return BuildCards(gameList, current, d.opts.Location)
}

// Week returns the active week.
func (d *Dashboard) Week() (weeks.Week, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.week, d.engine != nil
}

// Weeks returns the week list from the last load.
func (d *Dashboard) Weeks() []weeks.Week {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]weeks.Week(nil), d.weeks...)
}

// Engine exposes the active week's reconciliation engine, nil before a load.
func (d *Dashboard) Engine() *reconcile.Engine {
	engine, _ := d.current()
	return engine
}

// Reset drops the loaded week so the next Load starts clean. Call it when the
// signed-in user changes. Toggles already in flight still settle on the old engine.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	d.weeks, d.week, d.engine, d.owner = nil, weeks.Week{}, nil, 0
	d.status, d.err = StatusLoading, nil
	d.mu.Unlock()
}

// SessionChanged drops the loaded week when sess no longer belongs to the
// user it was loaded for. Register it with the session store's OnChange.
func (d *Dashboard) SessionChanged(sess session.Session) {
	d.mu.RLock()
	loaded, owner := d.engine != nil, d.owner
	d.mu.RUnlock()
	if !loaded {
		return
	}
	if sess.State == session.Unauthenticated || sess.User == nil || sess.User.ID != owner {
		d.Reset()
	}
}

// LoadedFor reports whether a week is loaded for the identity's current user.
func (d *Dashboard) LoadedFor(id Identity) bool {
	_, user, err := credentials(id)
	if err != nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.engine != nil && d.owner == user.ID
}

func (d *Dashboard) current() (*reconcile.Engine, weeks.Week) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.engine, d.week
}
