package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/preston-bernstein/pickem-client/internal/domain/games"
	"github.com/preston-bernstein/pickem-client/internal/domain/leaderboard"
	"github.com/preston-bernstein/pickem-client/internal/domain/picks"
	"github.com/preston-bernstein/pickem-client/internal/domain/users"
	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
)

// AuthResponse is returned by both /auth/login and /auth/me. The token may
// differ from the one presented.
type AuthResponse struct {
	AccessToken string     `json:"access_token"`
	TokenType   string     `json:"token_type,omitempty"`
	User        users.User `json:"user"`
}

type loginRequest struct {
	Credential string `json:"credential"`
}

// Login exchanges an identity provider credential for a backend token.
func (c *Client) Login(ctx context.Context, credential string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "/auth/login",
		body:     loginRequest{Credential: credential},
		out:      &out,
	})
	return out, err
}

// Me validates token and returns the current user with a possibly rotated token.
func (c *Client) Me(ctx context.Context, token string) (AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/auth/me", token: token, out: &out})
	return out, err
}

// Weeks lists weeks, newest first.
func (c *Client) Weeks(ctx context.Context) ([]weeks.Week, error) {
	var out []weeks.Week
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/weeks", out: &out})
	return out, err
}

// WeekGames lists the games of one week.
func (c *Client) WeekGames(ctx context.Context, weekID int64) ([]games.Game, error) {
	var out []games.Game
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("/weeks/%d/games", weekID),
		label:    "GET /weeks/{id}/games",
		out:      &out,
	})
	return out, err
}

// MyPicks lists every pick of the token's user, across all weeks.
func (c *Client) MyPicks(ctx context.Context, token string) ([]picks.Pick, error) {
	var out []picks.Pick
	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/picks/me", token: token, out: &out})
	return out, err
}

// UserPicks lists every pick of another user.
func (c *Client) UserPicks(ctx context.Context, token string, userID int64) ([]picks.Pick, error) {
	var out []picks.Pick
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("/picks/user/%d", userID),
		label:    "GET /picks/user/{id}",
		token:    token,
		out:      &out,
	})
	return out, err
}

// WeekUsers lists users who made picks in a week.
func (c *Client) WeekUsers(ctx context.Context, token string, weekID int64) ([]users.User, error) {
	var out []users.User
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: fmt.Sprintf("/picks/week/%d/users", weekID),
		label:    "GET /picks/week/{id}/users",
		token:    token,
		out:      &out,
	})
	return out, err
}

// UpsertPick creates or replaces the caller's pick for a game.
func (c *Client) UpsertPick(ctx context.Context, token string, req picks.UpsertRequest) (picks.Pick, error) {
	var out picks.Pick
	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/picks/", body: req, token: token, out: &out})
	return out, err
}

// DeletePick removes the caller's pick for a game.
func (c *Client) DeletePick(ctx context.Context, token string, gameID int64) error {
	return c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: fmt.Sprintf("/picks/%d", gameID),
		label:    "DELETE /picks/{id}",
		token:    token,
	})
}

// Leaderboard returns the ranking. weekID > 0 restricts it to one week.
func (c *Client) Leaderboard(ctx context.Context, weekID int64) ([]leaderboard.Entry, error) {
	endpoint := "/leaderboard"
	if weekID > 0 {
		endpoint += "?" + url.Values{"week_id": {strconv.FormatInt(weekID, 10)}}.Encode()
	}
	var out []leaderboard.Entry
	err := c.do(ctx, call{method: http.MethodGet, endpoint: endpoint, label: "GET /leaderboard", out: &out})
	return out, err
}
