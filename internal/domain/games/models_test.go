package games

import (
	"encoding/json"
	"testing"
	"time"
)

func TestGameDecodesBackendShape(t *testing.T) {
	raw := `{
		"id": 12,
		"week_id": 3,
		"home_team": {"id": 1, "name": "Packers", "abbreviation": "GB", "logo_path": "/gb.png"},
		"away_team": {"id": 2, "name": "Bears", "abbreviation": "CHI", "logo_path": "/chi.png"},
		"spread": -3.5,
		"over_under": 44.5,
		"home_score": null,
		"status": "scheduled",
		"game_time": "2024-09-08T17:00:00"
	}`

	var g Game
	if err := json.Unmarshal([]byte(raw), &g); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.ID != 12 || g.WeekID != 3 || g.HomeTeam.Abbreviation != "GB" || g.AwayTeam.ID != 2 {
		t.Fatalf("unexpected game %+v", g)
	}
	if g.OverUnder == nil || *g.OverUnder != 44.5 {
		t.Fatalf("expected over/under 44.5")
	}
	if g.HomeScore != nil || g.Scored() {
		t.Fatalf("expected no score")
	}
	kick, ok := g.Kickoff()
	if !ok || !kick.Equal(time.Date(2024, 9, 8, 17, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected kickoff %s (ok=%v)", kick, ok)
	}
}

func TestHasTeam(t *testing.T) {
	g := Game{}
	g.HomeTeam.ID = 1
	g.AwayTeam.ID = 2
	if !g.HasTeam(1) || !g.HasTeam(2) || g.HasTeam(3) {
		t.Fatalf("unexpected HasTeam results")
	}
}

func TestKickoffMissingOrGarbage(t *testing.T) {
	if _, ok := (Game{}).Kickoff(); ok {
		t.Fatalf("expected no kickoff when time missing")
	}
	bad := "soon"
	if _, ok := (Game{GameTime: &bad}).Kickoff(); ok {
		t.Fatalf("expected no kickoff for unparseable time")
	}
}

func TestIndex(t *testing.T) {
	idx := Index([]Game{{ID: 1}, {ID: 2}})
	if len(idx) != 2 || idx[2].ID != 2 {
		t.Fatalf("unexpected index %+v", idx)
	}
}
