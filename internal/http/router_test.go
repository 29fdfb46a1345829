package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/users"
	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
	"github.com/preston-bernstein/pickem-client/internal/http/handlers"
	"github.com/preston-bernstein/pickem-client/internal/testutil"
	"github.com/preston-bernstein/pickem-client/internal/views"
)

func newTestRouter() http.Handler {
	home := testutil.SampleTeam(1, "Packers")
	away := testutil.SampleTeam(2, "Bears")
	me := testutil.SampleUser(7, "Alice")
	backend := &testutil.StubBackend{
		WeekList:    []weeks.Week{testutil.SampleWeek(2, 2)},
		Games:       map[int64][]games.Game{2: {testutil.SampleGame(100, 2, home, away)}},
		Users:       []users.User{me, testutil.SampleUser(8, "Bob")},
		PickOwnerID: me.ID,
	}
	sessions := testutil.SignedIn(me)
	dash := views.NewDashboard(backend, backend, sessions, views.DashboardOptions{Location: time.UTC})
	return NewRouter(handlers.NewHandler(sessions, backend, dash, nil, nil))
}

func TestRouterRoutesKnownPaths(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/ready", "", http.StatusOK},
		{http.MethodGet, "/session", "", http.StatusOK},
		{http.MethodGet, "/weeks", "", http.StatusOK},
		{http.MethodGet, "/dashboard", "", http.StatusOK},
		{http.MethodPost, "/dashboard/picks", `{"game_id":100,"team_id":1}`, http.StatusOK},
		{http.MethodGet, "/opponents", "", http.StatusOK},
		{http.MethodGet, "/compare/8", "", http.StatusOK},
		{http.MethodGet, "/compare/abc", "", http.StatusBadRequest},
		{http.MethodGet, "/leaderboard", "", http.StatusOK},
		{http.MethodPost, "/session/logout", "", http.StatusOK},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("%s %s expected status %d, got %d: %s", tc.method, tc.path, tc.want, rr.Code, rr.Body.String())
		}
	}
}

func TestRouterRejectsWrongMethod(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/session/login", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 for GET on login, got %d", rr.Code)
	}
}

func TestRouterUnknownRouteReturns404(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", rr.Code)
	}
}
