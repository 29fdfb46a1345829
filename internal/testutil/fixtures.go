package testutil

import (
	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
	"github.com/preston-bernstein/pickem-client/internal/domain/teams"
	"github.com/preston-bernstein/pickem-client/internal/domain/users"
	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
)

// SampleTeam returns a team fixture whose abbreviation is derived from name.
func SampleTeam(id int64, name string) teams.Team {
	abbr := name
	if len(abbr) > 3 {
		abbr = abbr[:3]
	}
	return teams.Team{ID: id, Name: name, Abbreviation: abbr, LogoPath: "/logos/" + abbr + ".png"}
}

// SampleWeek returns a 2024 regular season week.
func SampleWeek(id int64, number int) weeks.Week {
	return weeks.Week{ID: id, Season: 2024, WeekNumber: number}
}

// SampleGame returns a scheduled game between home and away.
func SampleGame(id, weekID int64, home, away teams.Team) games.Game {
	return games.Game{
		ID:       id,
		WeekID:   weekID,
		HomeTeam: home,
		AwayTeam: away,
		Spread:   -3,
		Status:   games.StatusScheduled,
	}
}

// SampleUser returns a user fixture.
func SampleUser(id int64, name string) users.User {
	return users.User{ID: id, Name: name, Email: "user@example.com"}
}

// SamplePick returns a confirmed pick.
func SamplePick(id, userID, gameID, teamID int64) picks.Pick {
	return picks.Pick{ID: id, UserID: userID, GameID: gameID, SelectedTeamID: teamID}
}
