package views

import (
	"fmt"
	"strconv"
	"time"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
	"github.com/preston-bernstein/pickem-client/internal/domain/teams"
	"github.com/preston-bernstein/pickem-client/internal/timeutil"
)

// TeamButton is one selectable side of a game card.
type TeamButton struct {
	TeamID int64  `json:"team_id"`
	Name   string `json:"name"`
	Logo   string `json:"logo,omitempty"`
	Spread string `json:"spread"`
	Picked bool   `json:"picked"`
}

// GameCard is everything needed to draw one game and its pick buttons.
type GameCard struct {
	GameID    int64        `json:"game_id"`
	Kickoff   string       `json:"kickoff,omitempty"`
	Status    games.Status `json:"status"`
	Away      TeamButton   `json:"away"`
	Home      TeamButton   `json:"home"`
	OverUnder string       `json:"over_under,omitempty"`
	Score     string       `json:"score,omitempty"`
}

// Picked reports whether either side is selected.
func (c GameCard) Picked() bool {
	return c.Away.Picked || c.Home.Picked
}

// BuildCards lays out one card per game in backend order. Spreads are quoted
// from each side: the away line is the negated home spread.
func BuildCards(gameList []games.Game, current []picks.Pick, loc *time.Location) []GameCard {
	if loc == nil {
		loc = time.Local
	}
	byGame := picks.ByGame(current)
	cards := make([]GameCard, 0, len(gameList))
	for _, g := range gameList {
		pick, hasPick := byGame[g.ID]
		card := GameCard{
			GameID: g.ID,
			Status: g.Status,
			Away:   button(g.AwayTeam, -g.Spread, hasPick && pick.SelectedTeamID == g.AwayTeam.ID),
			Home:   button(g.HomeTeam, g.Spread, hasPick && pick.SelectedTeamID == g.HomeTeam.ID),
		}
		if kick, ok := g.Kickoff(); ok {
			card.Kickoff = kick.In(loc).Format(timeutil.KickoffLayout)
		}
		if g.OverUnder != nil && *g.OverUnder != 0 {
			card.OverUnder = "O/U " + formatNumber(*g.OverUnder)
		}
		if g.Scored() {
			card.Score = fmt.Sprintf("%d - %d", *g.AwayScore, *g.HomeScore)
		}
		cards = append(cards, card)
	}
	return cards
}

func button(t teams.Display, spread float64, picked bool) TeamButton {
	return TeamButton{
		TeamID: t.TeamID(),
		Name:   t.DisplayName(),
		Logo:   t.LogoRef(),
		Spread: FormatSpread(spread),
		Picked: picked,
	}
}

// FormatSpread renders a line with an explicit "+" for underdogs: "+3.5", "-7", "0".
func FormatSpread(v float64) string {
	if v > 0 {
		return "+" + formatNumber(v)
	}
	return formatNumber(v)
}

func formatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
