package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/preston-bernstein/pickem-client/internal/api"
	"github.com/preston-bernstein/pickem-client/internal/config"
	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
	"github.com/preston-bernstein/pickem-client/internal/poller"
	"github.com/preston-bernstein/pickem-client/internal/session"
	"github.com/preston-bernstein/pickem-client/internal/testutil"
)

func newStubBackend() *testutil.StubBackend {
	home := testutil.SampleTeam(1, "Packers")
	away := testutil.SampleTeam(2, "Bears")
	return &testutil.StubBackend{
		WeekList:    []weeks.Week{testutil.SampleWeek(2, 2)},
		Games:       map[int64][]games.Game{2: {testutil.SampleGame(100, 2, home, away)}},
		PickOwnerID: 7,
	}
}

func TestServerServesDashboardAndPollerRefreshesIt(t *testing.T) {
	backend := newStubBackend()
	sessions := testutil.SignedIn(testutil.SampleUser(7, "Alice"))
	cfg := config.Config{Server: config.ServerConfig{PollInterval: time.Hour}}
	srv := newServerWithBackend(cfg, nil, nil, backend, backend, sessions)

	router := srv.Handler()
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	live := backend.Games[2][0]
	home, away := 14, 10
	live.HomeScore, live.AwayScore, live.Status = &home, &away, games.StatusInProgress
	backend.Games[2] = []games.Game{live}

	srv.poller.(*poller.Poller).Refresh(context.Background())

	cards := srv.dashboard.Cards()
	if len(cards) != 1 || cards[0].Score != "10 - 14" || cards[0].Status != games.StatusInProgress {
		t.Fatalf("expected refreshed score on dashboard, got %+v", cards)
	}
	if cached, _, ok := srv.cache.WeekGames(2); !ok || cached[0].Status != games.StatusInProgress {
		t.Fatalf("expected cache refreshed by poller")
	}
	if status := srv.poller.Status(); !status.IsReady() || status.WeekID != 2 {
		t.Fatalf("expected ready poller on week 2, got %+v", status)
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

// gatedAuth holds /auth/me until release closes, then rejects the token.
type gatedAuth struct {
	called  chan struct{}
	release chan struct{}
}

func (a *gatedAuth) Login(context.Context, string) (api.AuthResponse, error) {
	return api.AuthResponse{}, errors.New("not used")
}

func (a *gatedAuth) Me(context.Context, string) (api.AuthResponse, error) {
	close(a.called)
	<-a.release
	return api.AuthResponse{}, &api.RequestError{Method: http.MethodGet, Endpoint: "/auth/me", Status: http.StatusUnauthorized, Message: "token expired"}
}

func TestServerDropsDashboardWhenBootstrapLogsOut(t *testing.T) {
	backend := newStubBackend()
	persist := session.NewMemoryStore()
	user := testutil.SampleUser(7, "Alice")
	if err := persist.Save(session.Credentials{Token: "cached", User: &user}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	auth := &gatedAuth{called: make(chan struct{}), release: make(chan struct{})}
	store := session.New(auth, persist, session.Options{})
	srv := newServerWithBackend(config.Config{}, nil, nil, backend, backend, store)

	done := make(chan struct{})
	go func() {
		store.Bootstrap(context.Background())
		close(done)
	}()
	<-auth.called

	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)

	close(auth.release)
	<-done
	if st := store.State(); st != session.Unauthenticated {
		t.Fatalf("expected bootstrap to log out, got %s", st)
	}
	if srv.dashboard.Engine() != nil {
		t.Fatalf("expected dashboard dropped after bootstrap logout")
	}

	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestServerPollerIdleUntilDashboardLoads(t *testing.T) {
	backend := newStubBackend()
	srv := newServerWithBackend(config.Config{}, nil, nil, backend, backend, testutil.SignedIn(testutil.SampleUser(7, "Alice")))

	srv.poller.(*poller.Poller).Refresh(context.Background())

	if !srv.poller.Status().LastAttempt.IsZero() {
		t.Fatalf("expected no poll before a week is loaded")
	}
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ready", nil))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestNewConstructsServer(t *testing.T) {
	cfg := config.Config{
		API:     config.APIConfig{BaseURL: "http://127.0.0.1:1"},
		Session: config.SessionConfig{Path: t.TempDir() + "/session.json"},
		Server:  config.ServerConfig{Port: "0"},
		Metrics: config.MetricsConfig{Enabled: false},
	}
	srv := New(cfg, nil)
	if srv == nil || srv.Handler() == nil {
		t.Fatalf("expected server with handler")
	}
	if srv.metrics == nil || srv.sessions == nil || srv.dashboard == nil {
		t.Fatalf("expected wired components, got %+v", srv)
	}
}

func TestGracefulShutdownCallsStopAndShutdown(t *testing.T) {
	p := &testutil.StubPoller{}
	httpSrv := &testutil.StubHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, nil, httpSrv, p)
	srv.gracefulShutdown()

	if p.StopCalls != 1 {
		t.Fatalf("expected poller Stop to be called once, got %d", p.StopCalls)
	}
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", httpSrv.ShutdownCalls)
	}
}

func TestGracefulShutdownTimesOutLongRunningShutdown(t *testing.T) {
	p := &testutil.StubPoller{}
	blocking := &testutil.StubHTTPServer{Block: make(chan struct{})}

	original := shutdownTimeout
	shutdownTimeout = 5 * time.Millisecond
	defer func() { shutdownTimeout = original }()

	srv := newServerWithDeps(config.Config{}, nil, nil, blocking, p)

	start := time.Now()
	srv.gracefulShutdown()
	elapsed := time.Since(start)

	if blocking.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", blocking.ShutdownCalls)
	}
	if p.StopCalls != 1 {
		t.Fatalf("expected poller Stop to be called once, got %d", p.StopCalls)
	}
	if elapsed > 200*time.Millisecond {
		t.Fatalf("shutdown took too long: %s", elapsed)
	}
}

func TestGracefulShutdownContinuesWhenPollerStopErrors(t *testing.T) {
	p := &testutil.StubPoller{Err: errors.New("stop failure")}
	httpSrv := &testutil.StubHTTPServer{}

	srv := newServerWithDeps(config.Config{}, nil, nil, httpSrv, p)
	srv.gracefulShutdown()

	if p.StopCalls != 1 {
		t.Fatalf("expected poller Stop to be called once, got %d", p.StopCalls)
	}
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown to be called once, got %d", httpSrv.ShutdownCalls)
	}
}

func TestServerStartHandlesListenErrorAndStops(t *testing.T) {
	srv := newServerWithDeps(config.Config{}, nil, nil, &testutil.StubHTTPServer{ListenErr: errors.New("listen failure")}, &testutil.StubPoller{})

	var wg sync.WaitGroup
	wg.Add(1)
	stopCalled := make(chan struct{})
	stop := func() {
		close(stopCalled)
		wg.Done()
	}

	srv.startServer(stop)

	select {
	case <-stopCalled:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("expected stop to be called on listen failure")
	}

	wg.Wait()
}

func TestRunCancelsAndStopsComponents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	plr := &testutil.StubPoller{}
	httpSrv := &testutil.StubHTTPServer{ListenErr: http.ErrServerClosed}
	sessions := testutil.SignedIn(testutil.SampleUser(7, "Alice"))

	srv := newServerWithDeps(config.Config{}, nil, sessions, httpSrv, plr)

	done := make(chan struct{})
	go func() {
		srv.Run(ctx, cancel)
		close(done)
	}()

	// Let Start be invoked.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("run did not return after cancel")
	}

	if plr.StartCalls != 1 {
		t.Fatalf("expected poller Start called once, got %d", plr.StartCalls)
	}
	if plr.StopCalls != 1 {
		t.Fatalf("expected poller Stop called once, got %d", plr.StopCalls)
	}
	if httpSrv.ShutdownCalls != 1 {
		t.Fatalf("expected server Shutdown called once, got %d", httpSrv.ShutdownCalls)
	}
}

func TestWithCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	if got := withCORS(nil, next); got == nil {
		t.Fatalf("expected handler without origins")
	}

	h := withCORS([]string{"http://localhost:5173"}, next)
	req := httptest.NewRequest(http.MethodGet, "/weeks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/weeks", nil)
	req.Header.Set("Origin", "http://evil.test")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected other origins refused, got %q", got)
	}
}
