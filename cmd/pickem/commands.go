package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/preston-bernstein/pickem-client/internal/api"
	"github.com/preston-bernstein/pickem-client/internal/config"
	"github.com/preston-bernstein/pickem-client/internal/logging"
	"github.com/preston-bernstein/pickem-client/internal/reconcile"
	"github.com/preston-bernstein/pickem-client/internal/render"
	"github.com/preston-bernstein/pickem-client/internal/server"
	"github.com/preston-bernstein/pickem-client/internal/session"
	"github.com/preston-bernstein/pickem-client/internal/timeutil"
	"github.com/preston-bernstein/pickem-client/internal/views"
)

// app holds what every command shares. It is built once per invocation.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	out      *render.Printer
	client   *api.Client
	reader   *api.RetryingReader
	sessions *session.Store
}

func newApp(cfg config.Config, logger *slog.Logger, stdout io.Writer) *app {
	client := api.NewClient(api.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Logger:  logger,
	})
	return &app{
		cfg:    cfg,
		logger: logger,
		out:    render.New(stdout),
		client: client,
		reader: api.NewRetryingReader(client, logger, nil, cfg.API.RetryAttempts, cfg.API.RetryBackoff),
		sessions: session.New(client, session.NewFileStore(cfg.Session.Path), session.Options{
			PreserveOnNetworkError: cfg.Session.PreserveOnNetworkError,
			Logger:                 logger,
		}),
	}
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, stop context.CancelFunc, args []string, stdout, stderr io.Writer) int {
	var a *app
	root := &cobra.Command{
		Use:           "pickem",
		Short:         "Weekly pick'em from the terminal",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.NewLogger(logging.Config{
				Level:   cfg.Log.Level,
				Format:  cfg.Log.Format,
				Service: "pickem-client",
				Version: appVersion,
				Output:  stderr,
			})
			a = newApp(cfg, logger, stdout)
			return nil
		},
	}
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	deps := func() *app { return a }
	root.AddCommand(
		loginCmd(deps),
		logoutCmd(deps),
		whoamiCmd(deps),
		weeksCmd(deps),
		gamesCmd(deps),
		pickCmd(deps),
		opponentsCmd(deps),
		compareCmd(deps),
		leaderboardCmd(deps),
		serveCmd(deps, stop),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		_ = render.New(stderr).Failure(failureMessage(err))
		return 1
	}
	return 0
}

const unreachableMessage = "Could not reach the pick'em server. Check your connection and try again."

// failureMessage shows backend rejections verbatim and every transport
// failure, including a pick that never reached the backend, as unreachable.
func failureMessage(err error) string {
	f, isFailure := reconcile.AsFailure(err)
	if isFailure && f.Rejected() {
		return f.Message()
	}
	if api.IsTransport(err) {
		return unreachableMessage
	}
	if isFailure {
		return f.Message()
	}
	return api.Message(err)
}

func weekFlag(cmd *cobra.Command, target *int64) {
	cmd.Flags().Int64VarP(target, "week", "w", 0, "week ID (default: newest week)")
}

func loginCmd(deps func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "login CREDENTIAL",
		Short: "Sign in with an identity provider credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps()
			sess, err := a.sessions.LoginWithCredential(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.out.Session(sess)
		},
	}
}

func logoutCmd(deps func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := deps()
			if err := a.sessions.Logout(); err != nil {
				return err
			}
			return a.out.Session(a.sessions.Current())
		},
	}
}

func whoamiCmd(deps func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Revalidate the saved session and show who is signed in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := deps()
			return a.out.Session(a.sessions.Bootstrap(cmd.Context()))
		},
	}
}

func weeksCmd(deps func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "weeks",
		Short: "List weeks, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := deps()
			list, err := a.reader.Weeks(cmd.Context())
			if err != nil {
				return err
			}
			var newest int64
			if len(list) > 0 {
				newest = list[0].ID
			}
			return a.out.Weeks(list, newest)
		},
	}
}

// dashboard bootstraps the session and loads weekID.
func (a *app) dashboard(ctx context.Context, weekID int64) (*views.Dashboard, error) {
	a.sessions.Bootstrap(ctx)
	d := views.NewDashboard(a.reader, a.client, a.sessions, views.DashboardOptions{
		Logger:   a.logger,
		Location: timeutil.ResolveLocation(a.cfg.Timezone),
	})
	if err := d.Load(ctx, weekID); err != nil {
		return nil, err
	}
	return d, nil
}

func (a *app) printDashboard(d *views.Dashboard) error {
	week, ok := d.Week()
	if !ok {
		return a.out.Weeks(nil, 0)
	}
	return a.out.Cards(week, d.Cards())
}

func gamesCmd(deps func() *app) *cobra.Command {
	var weekID int64
	cmd := &cobra.Command{
		Use:   "games",
		Short: "Show a week's games and your picks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := deps()
			d, err := a.dashboard(cmd.Context(), weekID)
			if err != nil {
				return err
			}
			return a.printDashboard(d)
		},
	}
	weekFlag(cmd, &weekID)
	return cmd
}

func pickCmd(deps func() *app) *cobra.Command {
	var weekID int64
	cmd := &cobra.Command{
		Use:   "pick GAME_ID TEAM_ID",
		Short: "Toggle your pick for a game; picking the same team again clears it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID, err := parseID("game", args[0])
			if err != nil {
				return err
			}
			teamID, err := parseID("team", args[1])
			if err != nil {
				return err
			}
			a := deps()
			d, err := a.dashboard(cmd.Context(), weekID)
			if err != nil {
				return err
			}
			if err := d.TogglePick(cmd.Context(), gameID, teamID); err != nil {
				return err
			}
			return a.printDashboard(d)
		},
	}
	weekFlag(cmd, &weekID)
	return cmd
}

func opponentsCmd(deps func() *app) *cobra.Command {
	var weekID int64
	cmd := &cobra.Command{
		Use:   "opponents",
		Short: "List users with picks in a week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := deps()
			a.sessions.Bootstrap(cmd.Context())
			view := views.NewOpponents(a.reader, a.sessions, a.logger)
			if err := view.Load(cmd.Context(), weekID); err != nil {
				return err
			}
			def, _ := view.Default()
			return a.out.Opponents(view.List(), def.UserID)
		},
	}
	weekFlag(cmd, &weekID)
	return cmd
}

func compareCmd(deps func() *app) *cobra.Command {
	var weekID int64
	cmd := &cobra.Command{
		Use:   "compare [USER_ID]",
		Short: "Compare your picks with another user's; defaults to the first other user",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps()
			ctx := cmd.Context()
			a.sessions.Bootstrap(ctx)

			var opponentID int64
			if len(args) == 1 {
				id, err := parseID("user", args[0])
				if err != nil {
					return err
				}
				opponentID = id
			} else {
				list := views.NewOpponents(a.reader, a.sessions, a.logger)
				if err := list.Load(ctx, weekID); err != nil {
					return err
				}
				def, ok := list.Default()
				if !ok {
					return a.out.Opponents(nil, 0)
				}
				opponentID = def.UserID
			}

			view := views.NewComparison(a.reader, a.sessions, a.logger)
			if err := view.Load(ctx, weekID, opponentID); err != nil {
				return err
			}
			_, name := view.Opponent()
			return a.out.Comparison(view.Week(), name, view.Rows())
		},
	}
	weekFlag(cmd, &weekID)
	return cmd
}

func leaderboardCmd(deps func() *app) *cobra.Command {
	var weekID int64
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the season ranking, or one week's with --week",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := deps()
			view := views.NewLeaderboard(a.reader, a.logger)
			if err := view.Load(cmd.Context(), weekID); err != nil {
				return err
			}
			return a.out.Leaderboard(view.Rows())
		},
	}
	weekFlag(cmd, &weekID)
	return cmd
}

func serveCmd(deps func() *app, stop context.CancelFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local companion HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := deps()
			server.New(a.cfg, a.logger).Run(cmd.Context(), stop)
			return nil
		},
	}
}

func parseID(kind, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}
