package games

import (
	"time"

	"github.com/preston-bernstein/pickem-client/internal/domain/teams"
	"github.com/preston-bernstein/pickem-client/internal/timeutil"
)

// Status mirrors the backend's game lifecycle values.
type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusFinal      Status = "final"
)

// Game is one matchup within a week. Spread is quoted from the home side:
// negative means the home team is favored.
type Game struct {
	ID        int64      `json:"id"`
	WeekID    int64      `json:"week_id"`
	HomeTeam  teams.Team `json:"home_team"`
	AwayTeam  teams.Team `json:"away_team"`
	Spread    float64    `json:"spread"`
	OverUnder *float64   `json:"over_under,omitempty"`
	HomeScore *int       `json:"home_score,omitempty"`
	AwayScore *int       `json:"away_score,omitempty"`
	Status    Status     `json:"status"`
	GameTime  *string    `json:"game_time,omitempty"`
}

// HasTeam reports whether teamID plays in this game.
func (g Game) HasTeam(teamID int64) bool {
	return g.HomeTeam.ID == teamID || g.AwayTeam.ID == teamID
}

// Kickoff parses the scheduled start. ok is false when the time is missing or unreadable.
func (g Game) Kickoff() (time.Time, bool) {
	if g.GameTime == nil || *g.GameTime == "" {
		return time.Time{}, false
	}
	t, err := timeutil.ParseTimestamp(*g.GameTime)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Scored reports whether both scores are present.
func (g Game) Scored() bool {
	return g.HomeScore != nil && g.AwayScore != nil
}

// Index maps game IDs to games.
func Index(list []Game) map[int64]Game {
	out := make(map[int64]Game, len(list))
	for _, g := range list {
		out[g.ID] = g
	}
	return out
}
