package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/preston-bernstein/pickem-client/internal/api"
	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
	"github.com/preston-bernstein/pickem-client/internal/reconcile"
	"github.com/preston-bernstein/pickem-client/internal/session"
)

func TestBuildCardsFormatsLinesAndPicks(t *testing.T) {
	gameList := weekGames()
	current := []picks.Pick{{ID: 1, GameID: 100, SelectedTeamID: packers.ID}}

	cards := BuildCards(gameList, current, time.UTC)

	want := []GameCard{
		{
			GameID:    100,
			Kickoff:   "Sun 5:00 PM",
			Status:    games.StatusScheduled,
			Away:      TeamButton{TeamID: bears.ID, Name: "Bears", Logo: "/chi.png", Spread: "+3.5"},
			Home:      TeamButton{TeamID: packers.ID, Name: "Packers", Logo: "/gb.png", Spread: "-3.5", Picked: true},
			OverUnder: "O/U 44.5",
		},
		{
			GameID: 101,
			Status: games.StatusScheduled,
			Away:   TeamButton{TeamID: vikings.ID, Name: "Vikings", Logo: "/min.png", Spread: "-2"},
			Home:   TeamButton{TeamID: lions.ID, Name: "Lions", Logo: "/det.png", Spread: "+2"},
		},
	}
	if diff := cmp.Diff(want, cards); diff != "" {
		t.Fatalf("unexpected cards (-want +got):\n%s", diff)
	}
	if !cards[0].Picked() || cards[1].Picked() {
		t.Fatalf("unexpected picked flags")
	}
}

func TestBuildCardsScoreAndZeroLines(t *testing.T) {
	home, away := 24, 17
	zero := 0.0
	g := games.Game{ID: 5, HomeTeam: packers, AwayTeam: bears, OverUnder: &zero, HomeScore: &home, AwayScore: &away, Status: games.StatusFinal}

	card := BuildCards([]games.Game{g}, nil, nil)[0]
	if card.Score != "17 - 24" {
		t.Fatalf("expected away-home score, got %q", card.Score)
	}
	if card.OverUnder != "" {
		t.Fatalf("expected no O/U for zero total, got %q", card.OverUnder)
	}
	if card.Away.Spread != "0" || card.Home.Spread != "0" {
		t.Fatalf("expected pick'em lines, got %q/%q", card.Away.Spread, card.Home.Spread)
	}
}

func TestFormatSpread(t *testing.T) {
	cases := map[float64]string{3.5: "+3.5", -7: "-7", 0: "0", 10: "+10", -0.5: "-0.5"}
	for in, want := range cases {
		if got := FormatSpread(in); got != want {
			t.Fatalf("FormatSpread(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestDashboardLoadSelectsNewestWeek(t *testing.T) {
	reader := newFakeReader()
	reader.myPicks = []picks.Pick{
		{ID: 1, UserID: alice.ID, GameID: 100, SelectedTeamID: bears.ID},
		{ID: 2, UserID: alice.ID, GameID: 55, SelectedTeamID: 9},
	}
	d := NewDashboard(reader, &fakeRemote{}, signedIn(alice), DashboardOptions{Location: time.UTC})

	if status, _ := d.Status(); status != StatusLoading {
		t.Fatalf("expected loading before Load, got %s", status)
	}
	if err := d.Load(context.Background(), 0); err != nil {
		t.Fatalf("load: %v", err)
	}
	if status, err := d.Status(); status != StatusLoaded || err != nil {
		t.Fatalf("expected loaded, got %s %v", status, err)
	}
	week, ok := d.Week()
	if !ok || week.ID != 2 {
		t.Fatalf("expected newest week, got %+v", week)
	}
	if len(d.Weeks()) != 2 {
		t.Fatalf("expected week list kept")
	}
	cards := d.Cards()
	if len(cards) != 2 || !cards[0].Away.Picked {
		t.Fatalf("unexpected cards %+v", cards)
	}
	if got := d.Engine().Picks(); len(got) != 1 {
		t.Fatalf("expected picks outside the week dropped, got %+v", got)
	}
}

func TestDashboardLoadRequestedWeek(t *testing.T) {
	reader := newFakeReader()
	d := NewDashboard(reader, &fakeRemote{}, signedIn(alice), DashboardOptions{})

	if err := d.Load(context.Background(), 1); err != nil {
		t.Fatalf("load: %v", err)
	}
	if week, _ := d.Week(); week.ID != 1 {
		t.Fatalf("expected week 1, got %+v", week)
	}
	if err := d.Load(context.Background(), 42); !errors.Is(err, ErrWeekNotFound) {
		t.Fatalf("expected ErrWeekNotFound, got %v", err)
	}
	if status, _ := d.Status(); status != StatusError {
		t.Fatalf("expected error status, got %s", status)
	}
}

func TestDashboardLoadNoWeeks(t *testing.T) {
	reader := newFakeReader()
	reader.weeks = nil
	d := NewDashboard(reader, &fakeRemote{}, signedIn(alice), DashboardOptions{})

	if err := d.Load(context.Background(), 0); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := d.Week(); ok {
		t.Fatalf("expected no active week")
	}
	if cards := d.Cards(); len(cards) != 0 {
		t.Fatalf("expected no cards, got %+v", cards)
	}
	if _, err := d.Toggle(context.Background(), 100, packers.ID); !errors.Is(err, reconcile.ErrUnknownGame) {
		t.Fatalf("expected ErrUnknownGame without a week, got %v", err)
	}
}

func TestDashboardLoadFailsFast(t *testing.T) {
	reader := newFakeReader()
	reader.gamesErr = &api.RequestError{Status: 500, Message: "boom"}
	reader.blockMyPicks = true
	d := NewDashboard(reader, &fakeRemote{}, signedIn(alice), DashboardOptions{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := d.Load(ctx, 0)
	if api.Message(err) != "boom" {
		t.Fatalf("expected games error, got %v", err)
	}
	if ctx.Err() != nil {
		t.Fatalf("expected sibling cancelled instead of waiting for the deadline")
	}
	if status, got := d.Status(); status != StatusError || got == nil {
		t.Fatalf("expected error status, got %s %v", status, got)
	}
	if _, ok := d.Week(); ok {
		t.Fatalf("expected no partial week")
	}
}

func TestDashboardRequiresSession(t *testing.T) {
	d := NewDashboard(newFakeReader(), &fakeRemote{}, &fakeIdentity{}, DashboardOptions{})
	if err := d.Load(context.Background(), 0); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := d.Toggle(context.Background(), 100, packers.ID); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated on toggle, got %v", err)
	}
}

func TestDashboardTogglePickRoundTrip(t *testing.T) {
	reader := newFakeReader()
	remote := &fakeRemote{}
	d := NewDashboard(reader, remote, signedIn(alice), DashboardOptions{})
	if err := d.Load(context.Background(), 0); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := d.TogglePick(context.Background(), 100, packers.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !d.Cards()[0].Home.Picked {
		t.Fatalf("expected home picked")
	}
	got, _ := d.Engine().PickFor(100)
	if got.ID != 1000 {
		t.Fatalf("expected confirmed record from backend, got %+v", got)
	}

	if err := d.TogglePick(context.Background(), 100, packers.ID); err != nil {
		t.Fatalf("untoggle: %v", err)
	}
	if d.Cards()[0].Picked() {
		t.Fatalf("expected pick removed")
	}
	if diff := cmp.Diff([]string{"POST", "DELETE"}, remote.calls); diff != "" {
		t.Fatalf("unexpected calls (-want +got):\n%s", diff)
	}
}

func TestDashboardTogglePickRollsBackOnRejection(t *testing.T) {
	reader := newFakeReader()
	remote := &fakeRemote{err: &api.RequestError{Status: 400, Message: "Game has already started"}}
	var surfaced *reconcile.Failure
	d := NewDashboard(reader, remote, signedIn(alice), DashboardOptions{
		OnFailure: func(f *reconcile.Failure) { surfaced = f },
	})
	if err := d.Load(context.Background(), 0); err != nil {
		t.Fatalf("load: %v", err)
	}
	before := d.Cards()

	err := d.TogglePick(context.Background(), 101, vikings.ID)
	f, ok := reconcile.AsFailure(err)
	if !ok || f.Message() != "Game has already started" {
		t.Fatalf("expected rejection surfaced, got %v", err)
	}
	if surfaced == nil || surfaced.GameID != 101 {
		t.Fatalf("expected OnFailure hook called, got %+v", surfaced)
	}
	if diff := cmp.Diff(before, d.Cards()); diff != "" {
		t.Fatalf("expected cards restored (-want +got):\n%s", diff)
	}
}

func TestDashboardRefreshGamesKeepsPicks(t *testing.T) {
	reader := newFakeReader()
	reader.myPicks = []picks.Pick{{ID: 1, GameID: 100, SelectedTeamID: packers.ID}}
	d := NewDashboard(reader, &fakeRemote{}, signedIn(alice), DashboardOptions{})
	if err := d.Load(context.Background(), 0); err != nil {
		t.Fatalf("load: %v", err)
	}

	refreshed := weekGames()
	home, away := 7, 3
	refreshed[0].HomeScore, refreshed[0].AwayScore = &home, &away
	refreshed[0].Status = games.StatusInProgress
	reader.games[2] = refreshed

	if err := d.RefreshGames(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	card := d.Cards()[0]
	if card.Status != games.StatusInProgress || card.Score != "3 - 7" || !card.Home.Picked {
		t.Fatalf("unexpected card after refresh %+v", card)
	}
}

func TestDashboardRefreshBeforeLoadIsNoop(t *testing.T) {
	reader := newFakeReader()
	d := NewDashboard(reader, &fakeRemote{}, signedIn(alice), DashboardOptions{})
	if err := d.RefreshGames(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if reader.gamesCalls != 0 {
		t.Fatalf("expected no backend call")
	}
}

func TestDashboardResetDropsLoadedWeek(t *testing.T) {
	reader := newFakeReader()
	d := NewDashboard(reader, &fakeRemote{}, signedIn(alice), DashboardOptions{})
	if err := d.Load(context.Background(), 0); err != nil {
		t.Fatalf("load: %v", err)
	}

	d.Reset()

	if _, ok := d.ActiveWeek(); ok {
		t.Fatalf("expected no active week after reset")
	}
	if status, _ := d.Status(); status != StatusLoading {
		t.Fatalf("expected loading after reset, got %s", status)
	}
	if len(d.Cards()) != 0 || d.Engine() != nil {
		t.Fatalf("expected empty dashboard after reset")
	}
}

func TestDashboardSessionChangedDropsOtherUsersWeek(t *testing.T) {
	id := signedIn(alice)
	d := NewDashboard(newFakeReader(), &fakeRemote{}, id, DashboardOptions{})
	if err := d.Load(context.Background(), 0); err != nil {
		t.Fatalf("load: %v", err)
	}

	d.SessionChanged(session.Session{State: session.Restoring, User: &alice})
	if !d.LoadedFor(id) {
		t.Fatalf("expected same user to keep the loaded week")
	}

	d.SessionChanged(session.Session{State: session.Unauthenticated})
	if _, ok := d.ActiveWeek(); ok || len(d.Cards()) != 0 {
		t.Fatalf("expected logout to drop the loaded week")
	}

	if err := d.Load(context.Background(), 0); err != nil {
		t.Fatalf("reload: %v", err)
	}
	d.SessionChanged(session.Session{State: session.Authenticated, User: &bob})
	if d.Engine() != nil {
		t.Fatalf("expected a different user to drop the loaded week")
	}
}

func TestDashboardLoadedForTracksIdentity(t *testing.T) {
	id := signedIn(alice)
	d := NewDashboard(newFakeReader(), &fakeRemote{}, id, DashboardOptions{})
	if d.LoadedFor(id) {
		t.Fatalf("expected nothing loaded yet")
	}
	if err := d.Load(context.Background(), 0); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !d.LoadedFor(id) {
		t.Fatalf("expected week loaded for alice")
	}

	id.token, id.user = "", nil
	if d.LoadedFor(id) {
		t.Fatalf("expected signed-out identity to own nothing")
	}
	if err := d.Load(context.Background(), 0); !errors.Is(err, session.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if len(d.Cards()) != 0 {
		t.Fatalf("expected cards dropped once the session is gone")
	}
}
