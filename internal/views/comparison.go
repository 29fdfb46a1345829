package views

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
	"github.com/preston-bernstein/pickem-client/internal/domain/teams"
	"github.com/preston-bernstein/pickem-client/internal/domain/users"
	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
	"github.com/preston-bernstein/pickem-client/internal/logging"
)

// NoPick is shown in place of a team when a user has not picked a game.
const NoPick = "No pick"

// PickCell is one user's side of a comparison row.
type PickCell struct {
	Picked       bool   `json:"picked"`
	TeamID       int64  `json:"team_id,omitempty"`
	Team         string `json:"team,omitempty"`
	Abbreviation string `json:"abbreviation,omitempty"`
	Logo         string `json:"logo,omitempty"`
	Label        string `json:"label"`
}

// ComparisonRow pairs both users' picks for one game.
type ComparisonRow struct {
	GameID  int64    `json:"game_id"`
	Matchup string   `json:"matchup"`
	Mine    PickCell `json:"mine"`
	Theirs  PickCell `json:"theirs"`
}

// Comparison shows the signed-in user's picks next to an opponent's.
type Comparison struct {
	tracker
	reader   Reader
	identity Identity
	logger   *slog.Logger

	week         weeks.Week
	opponentID   int64
	opponentName string
	rows         []ComparisonRow
}

// NewComparison builds an unloaded comparison.
func NewComparison(reader Reader, identity Identity, logger *slog.Logger) *Comparison {
	c := &Comparison{reader: reader, identity: identity, logger: logger}
	c.status = StatusLoading
	return c
}

// Load compares against opponentID in weekID (0 for the newest week). Games
// and both pick lists load concurrently and all must succeed; rows are never
// built from partial data. The opponent's name is looked up from the week's
// users when that call succeeds.
func (c *Comparison) Load(ctx context.Context, weekID, opponentID int64) error {
	token, _, err := credentials(c.identity)
	if err != nil {
		return c.fail(err)
	}
	c.begin()
	logger := logging.FromContext(ctx, c.logger)

	_, week, found, err := selectWeek(ctx, c.reader, weekID)
	if err != nil {
		return c.fail(err)
	}
	if !found {
		c.mu.Lock()
		c.week, c.opponentID, c.opponentName, c.rows = weeks.Week{}, opponentID, placeholderName(opponentID), []ComparisonRow{}
		c.status = StatusLoaded
		c.mu.Unlock()
		return nil
	}

	var (
		gameList []games.Game
		mine     []picks.Pick
		theirs   []picks.Pick
		roster   []users.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		gameList, err = c.reader.WeekGames(gctx, week.ID)
		return err
	})
	g.Go(func() error {
		var err error
		mine, err = c.reader.MyPicks(gctx, token)
		return err
	})
	g.Go(func() error {
		var err error
		theirs, err = c.reader.UserPicks(gctx, token, opponentID)
		return err
	})
	g.Go(func() error {
		var err error
		if roster, err = c.reader.WeekUsers(gctx, token, week.ID); err != nil {
			logging.Debug(logger, "opponent name lookup failed", logging.FieldUserID, opponentID, "error", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		logging.Warn(logger, "comparison load failed",
			logging.FieldWeekID, week.ID,
			logging.FieldUserID, opponentID,
			"error", err,
		)
		return c.fail(err)
	}

	name := placeholderName(opponentID)
	for _, u := range roster {
		if u.ID == opponentID {
			name = u.FirstName()
			break
		}
	}

	rows := CompareRows(gameList, mine, theirs)
	c.mu.Lock()
	c.week, c.opponentID, c.opponentName, c.rows = week, opponentID, name, rows
	c.status = StatusLoaded
	c.mu.Unlock()
	return nil
}

// CompareRows builds one row per game. Picks for games outside the list are ignored.
func CompareRows(gameList []games.Game, mine, theirs []picks.Pick) []ComparisonRow {
	inScope := make(map[int64]struct{}, len(gameList))
	for _, g := range gameList {
		inScope[g.ID] = struct{}{}
	}
	myPicks := picks.ByGame(picks.ForGames(mine, inScope))
	theirPicks := picks.ByGame(picks.ForGames(theirs, inScope))

	rows := make([]ComparisonRow, 0, len(gameList))
	for _, g := range gameList {
		rows = append(rows, ComparisonRow{
			GameID:  g.ID,
			Matchup: fmt.Sprintf("%s @ %s", g.AwayTeam.Name, g.HomeTeam.Name),
			Mine:    cellFor(g, myPicks),
			Theirs:  cellFor(g, theirPicks),
		})
	}
	return rows
}

func cellFor(g games.Game, byGame map[int64]picks.Pick) PickCell {
	p, ok := byGame[g.ID]
	if !ok {
		return PickCell{Label: NoPick}
	}
	var team teams.Team
	switch p.SelectedTeamID {
	case g.HomeTeam.ID:
		team = g.HomeTeam
	case g.AwayTeam.ID:
		team = g.AwayTeam
	default:
		return PickCell{Label: NoPick}
	}
	return PickCell{
		Picked:       true,
		TeamID:       team.ID,
		Team:         team.DisplayName(),
		Abbreviation: team.Abbreviation,
		Logo:         team.LogoRef(),
		Label:        "Picked",
	}
}

func placeholderName(userID int64) string {
	return users.User{ID: userID}.FirstName()
}

// Rows returns the last loaded rows.
func (c *Comparison) Rows() []ComparisonRow {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]ComparisonRow(nil), c.rows...)
}

// Opponent returns the compared user's ID and display name.
func (c *Comparison) Opponent() (int64, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opponentID, c.opponentName
}

// Week returns the compared week.
func (c *Comparison) Week() weeks.Week {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.week
}
