package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
)

type stubSource struct {
	games  []games.Game
	err    error
	calls  atomic.Int32
	notify chan int64
}

func (s *stubSource) WeekGames(_ context.Context, weekID int64) ([]games.Game, error) {
	s.calls.Add(1)
	if s.notify != nil {
		defer func() { s.notify <- weekID }()
	}
	return s.games, s.err
}

type stubSink struct {
	mu  sync.Mutex
	got map[int64][]games.Game
}

func (s *stubSink) SetWeekGames(weekID int64, list []games.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.got == nil {
		s.got = map[int64][]games.Game{}
	}
	s.got[weekID] = list
}

func (s *stubSink) weeks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.got)
}

func activeWeek(id int64) ActiveWeek {
	return func() (int64, bool) { return id, true }
}

func waitFetch(t *testing.T, ch chan int64) int64 {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fetch")
		return 0
	}
}

func TestPollerFetchesOnStartAndEveryTick(t *testing.T) {
	source := &stubSource{games: []games.Game{{ID: 1, WeekID: 4}}, notify: make(chan int64, 4)}
	sink := &stubSink{}
	clock := clockwork.NewFakeClock()

	p := New(source, activeWeek(4), nil, nil, time.Minute, sink)
	p.clock = clock

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	if id := waitFetch(t, source.notify); id != 4 {
		t.Fatalf("expected week 4 refreshed, got %d", id)
	}
	clock.Advance(time.Minute)
	waitFetch(t, source.notify)

	_ = p.Stop(context.Background())

	if source.calls.Load() != 2 {
		t.Fatalf("expected 2 fetches, got %d", source.calls.Load())
	}
	if sink.weeks() != 1 {
		t.Fatalf("expected sink to receive week 4")
	}
	if status := p.Status(); status.WeekID != 4 || status.LastAttempt.IsZero() {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestPollerRecordsFailures(t *testing.T) {
	source := &stubSource{err: errors.New("backend down")}
	sink := &stubSink{}
	p := New(source, activeWeek(1), nil, nil, time.Hour, sink)

	for i := 0; i < 3; i++ {
		p.Refresh(context.Background())
	}

	status := p.Status()
	if status.ConsecutiveFailures != 3 || status.LastError != "backend down" {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.IsReady() {
		t.Fatalf("expected not ready after repeated failures")
	}
	if sink.weeks() != 0 {
		t.Fatalf("expected nothing pushed on failure")
	}

	source.err = nil
	p.Refresh(context.Background())
	if status := p.Status(); status.ConsecutiveFailures != 0 || status.LastError != "" || !status.IsReady() {
		t.Fatalf("expected recovery, got %+v", status)
	}
}

func TestPollerIdleWithoutActiveWeek(t *testing.T) {
	source := &stubSource{}
	p := New(source, func() (int64, bool) { return 0, false }, nil, nil, time.Hour)

	p.Refresh(context.Background())

	if source.calls.Load() != 0 {
		t.Fatalf("expected no fetch without an active week")
	}
	if !p.Status().LastAttempt.IsZero() {
		t.Fatalf("expected no attempt recorded")
	}

	nilActive := New(source, nil, nil, nil, time.Hour)
	nilActive.Refresh(context.Background())
	if source.calls.Load() != 0 {
		t.Fatalf("expected no fetch with nil active func")
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	source := &stubSource{notify: make(chan int64, 4)}
	clock := clockwork.NewFakeClock()
	p := New(source, activeWeek(1), nil, nil, time.Minute)
	p.clock = clock

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	waitFetch(t, source.notify)

	cancel()
	_ = p.Stop(context.Background())

	callsAfterStop := source.calls.Load()
	clock.Advance(time.Minute)
	time.Sleep(20 * time.Millisecond)
	if source.calls.Load() != callsAfterStop {
		t.Fatalf("expected no additional fetches after stop; before=%d after=%d", callsAfterStop, source.calls.Load())
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := New(&stubSource{}, activeWeek(1), nil, nil, time.Hour)

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("first stop returned error: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("second stop returned error: %v", err)
	}
}

func TestPollerStartReturnsWhenAlreadyStarted(t *testing.T) {
	p := New(&stubSource{}, activeWeek(1), nil, nil, time.Hour)
	p.started = true
	p.Start(context.Background())
	if p.ticker != nil {
		t.Fatalf("expected ticker not to be created when already started")
	}
}

func TestPollerDefaultsInterval(t *testing.T) {
	p := New(&stubSource{}, activeWeek(1), nil, nil, 0)
	if p.interval != defaultInterval {
		t.Fatalf("expected default interval %s, got %s", defaultInterval, p.interval)
	}
}
