package views

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/pickem-client/internal/domain/leaderboard"
	"github.com/preston-bernstein/pickem-client/internal/logging"
)

// EmptyLeaderboard is shown when no games have been graded yet.
const EmptyLeaderboard = "No rankings yet. Wait for games to finish!"

// LeaderboardRow is one rendered ranking line.
type LeaderboardRow struct {
	Rank           string `json:"rank"`
	UserID         int64  `json:"user_id"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profile_picture,omitempty"`
	Record         string `json:"record"`
	WinRate        string `json:"win_rate"`
}

// Leaderboard shows the backend's ranking. Ranks are never recomputed here.
type Leaderboard struct {
	tracker
	reader Reader
	logger *slog.Logger

	weekID  int64
	entries []leaderboard.Entry
}

// NewLeaderboard builds an unloaded leaderboard.
func NewLeaderboard(reader Reader, logger *slog.Logger) *Leaderboard {
	l := &Leaderboard{reader: reader, logger: logger}
	l.status = StatusLoading
	return l
}

// Load fetches the season ranking, or one week's when weekID > 0.
func (l *Leaderboard) Load(ctx context.Context, weekID int64) error {
	l.begin()
	entries, err := l.reader.Leaderboard(ctx, weekID)
	if err != nil {
		logging.Warn(logging.FromContext(ctx, l.logger), "leaderboard load failed", logging.FieldWeekID, weekID, "error", err)
		return l.fail(err)
	}
	l.mu.Lock()
	l.weekID, l.entries = weekID, entries
	l.status = StatusLoaded
	l.mu.Unlock()
	return nil
}

// Rows renders the entries in backend order.
func (l *Leaderboard) Rows() []LeaderboardRow {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return LeaderboardRows(l.entries)
}

// Empty reports a loaded board with no entries.
func (l *Leaderboard) Empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status == StatusLoaded && len(l.entries) == 0
}

// WeekID is the scope of the last load, 0 for the whole season.
func (l *Leaderboard) WeekID() int64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.weekID
}

// LeaderboardRows formats entries for display.
func LeaderboardRows(entries []leaderboard.Entry) []LeaderboardRow {
	rows := make([]LeaderboardRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, LeaderboardRow{
			Rank:           fmt.Sprintf("#%d", e.Rank),
			UserID:         e.UserID,
			Name:           e.UserName,
			ProfilePicture: e.ProfilePicture,
			Record:         e.Record(),
			WinRate:        e.WinRateLabel(),
		})
	}
	return rows
}
