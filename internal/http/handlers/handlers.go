package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
	"github.com/preston-bernstein/pickem-client/internal/poller"
	"github.com/preston-bernstein/pickem-client/internal/session"
	"github.com/preston-bernstein/pickem-client/internal/views"
)

// Sessions is the slice of the session store the handlers drive.
type Sessions interface {
	views.Identity
	Current() session.Session
	LoginWithCredential(ctx context.Context, credential string) (session.Session, error)
	Logout() error
}

// Handler wires HTTP routes to the views.
type Handler struct {
	sessions  Sessions
	reader    views.Reader
	dashboard *views.Dashboard
	logger    *slog.Logger
	statusFn  func() poller.Status
}

// NewHandler constructs a Handler with defaults.
func NewHandler(sessions Sessions, reader views.Reader, dashboard *views.Dashboard, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		sessions:  sessions,
		reader:    reader,
		dashboard: dashboard,
		logger:    logger,
		statusFn:  statusFn,
	}
}

type weekJSON struct {
	weeks.Week
	Label string `json:"label"`
}

func newWeekJSON(w weeks.Week) *weekJSON {
	if w.ID == 0 {
		return nil
	}
	return &weekJSON{Week: w, Label: w.Label()}
}

type healthResponse struct {
	Status  string         `json:"status"`
	Session string         `json:"session"`
	Poller  *poller.Status `json:"poller,omitempty"`
}

// Health reports liveness with the session state and poller health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	resp := healthResponse{Status: "ok", Session: h.sessions.Current().State.String()}
	if h.statusFn != nil {
		st := h.statusFn()
		resp.Poller = &st
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

// Ready reports whether the poller is keeping the active week fresh. An idle
// poller, with no week loaded yet, counts as ready.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.LastAttempt.IsZero() || status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// Session returns the current session without its token.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sessions.Current(), h.logger)
}

type loginRequest struct {
	Credential string `json:"credential"`
}

// Login exchanges an identity provider credential for a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Credential) == "" {
		writeError(w, r, http.StatusBadRequest, "credential required", h.logger)
		return
	}
	sess, err := h.sessions.LoginWithCredential(r.Context(), req.Credential)
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	h.dashboard.Reset()
	writeJSON(w, http.StatusOK, sess, h.logger)
}

// Logout clears the session. Repeated calls succeed.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	h.dashboard.Reset()
	writeJSON(w, http.StatusOK, h.sessions.Current(), h.logger)
}

// Weeks lists weeks, newest first.
func (h *Handler) Weeks(w http.ResponseWriter, r *http.Request) {
	list, err := h.reader.Weeks(r.Context())
	if err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	out := make([]*weekJSON, 0, len(list))
	for _, wk := range list {
		out = append(out, newWeekJSON(wk))
	}
	writeJSON(w, http.StatusOK, out, h.logger)
}

type dashboardResponse struct {
	Week        *weekJSON        `json:"week,omitempty"`
	Status      views.Status     `json:"status"`
	Cards       []views.GameCard `json:"cards"`
	Outstanding int              `json:"outstanding"`
}

// Dashboard returns the active week's cards. ?week= switches weeks.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	weekID, ok := weekParam(w, r, h.logger)
	if !ok {
		return
	}
	if err := h.ensureDashboard(r.Context(), weekID); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.dashboardState(), h.logger)
}

type toggleRequest struct {
	GameID int64 `json:"game_id"`
	TeamID int64 `json:"team_id"`
}

// TogglePick changes a pick on the active week and waits for the backend.
// A failed change is rolled back before the error is returned.
func (h *Handler) TogglePick(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.GameID <= 0 || req.TeamID <= 0 {
		writeError(w, r, http.StatusBadRequest, "game_id and team_id required", h.logger)
		return
	}
	if err := h.ensureDashboard(r.Context(), 0); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	if err := h.dashboard.TogglePick(r.Context(), req.GameID, req.TeamID); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, h.dashboardState(), h.logger)
}

// ensureDashboard loads weekID, or the newest week when nothing is loaded yet.
// A week loaded for another user, or before a logout, is reloaded.
func (h *Handler) ensureDashboard(ctx context.Context, weekID int64) error {
	active, _ := h.dashboard.ActiveWeek()
	if h.dashboard.LoadedFor(h.sessions) && (weekID == 0 || weekID == active) {
		return nil
	}
	return h.dashboard.Load(ctx, weekID)
}

func (h *Handler) dashboardState() dashboardResponse {
	week, _ := h.dashboard.Week()
	status, _ := h.dashboard.Status()
	resp := dashboardResponse{Week: newWeekJSON(week), Status: status, Cards: h.dashboard.Cards()}
	if engine := h.dashboard.Engine(); engine != nil {
		resp.Outstanding = engine.Outstanding()
	}
	return resp
}

type opponentsResponse struct {
	Week      *weekJSON        `json:"week,omitempty"`
	Opponents []views.Opponent `json:"opponents"`
	Default   *views.Opponent  `json:"default,omitempty"`
}

// Opponents lists users with picks in a week.
func (h *Handler) Opponents(w http.ResponseWriter, r *http.Request) {
	weekID, ok := weekParam(w, r, h.logger)
	if !ok {
		return
	}
	view := views.NewOpponents(h.reader, h.sessions, h.logger)
	if err := view.Load(r.Context(), weekID); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	resp := opponentsResponse{Week: newWeekJSON(view.Week()), Opponents: view.List()}
	if def, ok := view.Default(); ok {
		resp.Default = &def
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

type opponentJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type compareResponse struct {
	Week     *weekJSON             `json:"week,omitempty"`
	Opponent opponentJSON          `json:"opponent"`
	Rows     []views.ComparisonRow `json:"rows"`
}

// Compare shows the signed-in user's picks next to another user's.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.PathValue("userId"), 10, 64)
	if err != nil || userID <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid user id", h.logger)
		return
	}
	weekID, ok := weekParam(w, r, h.logger)
	if !ok {
		return
	}
	view := views.NewComparison(h.reader, h.sessions, h.logger)
	if err := view.Load(r.Context(), weekID, userID); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	id, name := view.Opponent()
	writeJSON(w, http.StatusOK, compareResponse{
		Week:     newWeekJSON(view.Week()),
		Opponent: opponentJSON{ID: id, Name: name},
		Rows:     view.Rows(),
	}, h.logger)
}

type leaderboardResponse struct {
	WeekID  int64                  `json:"week_id,omitempty"`
	Rows    []views.LeaderboardRow `json:"rows"`
	Message string                 `json:"message,omitempty"`
}

// Leaderboard returns the ranking, for one week when ?week= is set.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	weekID, ok := weekParam(w, r, h.logger)
	if !ok {
		return
	}
	view := views.NewLeaderboard(h.reader, h.logger)
	if err := view.Load(r.Context(), weekID); err != nil {
		writeFailure(w, r, err, h.logger)
		return
	}
	resp := leaderboardResponse{WeekID: weekID, Rows: view.Rows()}
	if view.Empty() {
		resp.Message = views.EmptyLeaderboard
	}
	writeJSON(w, http.StatusOK, resp, h.logger)
}

// weekParam parses ?week=, 0 when absent. It writes a 400 and returns false on garbage.
func weekParam(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("week"))
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid week", logger)
		return 0, false
	}
	return id, true
}
