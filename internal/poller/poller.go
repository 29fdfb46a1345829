package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/logging"
	"github.com/preston-bernstein/pickem-client/internal/metrics"
)

const defaultInterval = time.Minute

// Source fetches a week's games from the backend.
type Source interface {
	WeekGames(ctx context.Context, weekID int64) ([]games.Game, error)
}

// Sink receives refreshed games.
type Sink interface {
	SetWeekGames(weekID int64, list []games.Game)
}

// ActiveWeek reports which week to refresh. ok is false when nothing is loaded.
type ActiveWeek func() (weekID int64, ok bool)

// Poller refreshes the active week's games on an interval so scores and
// status stay current while the user is looking at them.
type Poller struct {
	source   Source
	active   ActiveWeek
	sinks    []Sink
	logger   *slog.Logger
	metrics  *metrics.Recorder
	interval time.Duration
	clock    clockwork.Clock

	ticker   clockwork.Ticker
	done     chan struct{}
	stopOnce sync.Once
	startMu  sync.Mutex
	started  bool

	statusMu sync.RWMutex
	status   Status
}

// Status describes the recent health of the poller loop.
type Status struct {
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
	LastAttempt         time.Time `json:"last_attempt"`
	LastSuccess         time.Time `json:"last_success"`
	WeekID              int64     `json:"week_id,omitempty"`
}

// IsReady reports whether the poller has had a recent success and is not failing repeatedly.
func (s Status) IsReady() bool {
	if s.LastSuccess.IsZero() {
		return false
	}
	return s.ConsecutiveFailures < 3
}

// New constructs a Poller with sane defaults.
func New(source Source, active ActiveWeek, logger *slog.Logger, recorder *metrics.Recorder, interval time.Duration, sinks ...Sink) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		source:   source,
		active:   active,
		sinks:    sinks,
		logger:   logger,
		metrics:  recorder,
		interval: interval,
		clock:    clockwork.NewRealClock(),
		done:     make(chan struct{}),
	}
}

// Start begins polling until the context is cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) {
	p.startMu.Lock()
	if p.started {
		p.startMu.Unlock()
		return
	}
	p.started = true
	p.ticker = p.clock.NewTicker(p.interval)
	p.startMu.Unlock()

	go func() {
		logging.Info(p.logger, "poller started", logging.FieldDurationMS, p.interval.Milliseconds())
		p.fetchOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.done:
				p.stopTicker()
				logging.Info(p.logger, "poller stopped")
				return
			case <-p.ticker.Chan():
				p.fetchOnce(ctx)
			}
		}
	}()
}

// Stop halts the polling loop.
func (p *Poller) Stop(ctx context.Context) error {
	_ = ctx
	p.stopOnce.Do(func() {
		close(p.done)
		p.stopTicker()
	})
	return nil
}

// Refresh runs one cycle immediately.
func (p *Poller) Refresh(ctx context.Context) {
	p.fetchOnce(ctx)
}

func (p *Poller) fetchOnce(ctx context.Context) {
	if p.active == nil {
		return
	}
	weekID, ok := p.active()
	if !ok {
		logging.Debug(p.logger, "poller idle, no active week")
		return
	}

	start := p.clock.Now()
	p.recordAttempt(start, weekID)
	list, err := p.source.WeekGames(ctx, weekID)
	elapsed := p.clock.Since(start)
	p.metrics.RecordPollerCycle(elapsed, err)
	if err != nil {
		logging.Error(p.logger, "poller fetch failed", err,
			logging.FieldWeekID, weekID,
			logging.FieldDurationMS, elapsed.Milliseconds(),
		)
		p.recordFailure(err, start)
		return
	}

	for _, sink := range p.sinks {
		sink.SetWeekGames(weekID, list)
	}
	p.recordSuccess(start)
	logging.Debug(p.logger, "poller refreshed games",
		logging.FieldWeekID, weekID,
		logging.FieldCount, len(list),
		logging.FieldDurationMS, elapsed.Milliseconds(),
	)
}

func (p *Poller) stopTicker() {
	p.startMu.Lock()
	defer p.startMu.Unlock()
	if p.ticker != nil {
		p.ticker.Stop()
	}
}

func (p *Poller) recordAttempt(at time.Time, weekID int64) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
	p.status.WeekID = weekID
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error, at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	if err != nil {
		p.status.LastError = err.Error()
	}
	p.status.LastAttempt = at
}

// Status returns a snapshot of the poller's recent health.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()
	return p.status
}
