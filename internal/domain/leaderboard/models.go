package leaderboard

import "fmt"

// Entry is one ranked row computed by the backend.
type Entry struct {
	Rank           int     `json:"rank"`
	UserID         int64   `json:"user_id"`
	UserName       string  `json:"user_name"`
	ProfilePicture string  `json:"profile_picture,omitempty"`
	CorrectPicks   int     `json:"correct_picks"`
	TotalPicks     int     `json:"total_picks"`
	WinRate        float64 `json:"win_rate"`
}

// Record renders "correct/total".
func (e Entry) Record() string {
	return fmt.Sprintf("%d/%d", e.CorrectPicks, e.TotalPicks)
}

// WinRateLabel renders the win rate with one decimal, e.g. "62.5%".
func (e Entry) WinRateLabel() string {
	return fmt.Sprintf("%.1f%%", e.WinRate)
}
