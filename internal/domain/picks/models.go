package picks

// Pick records which team a user backs in one game. Provisional picks that
// the backend has not confirmed yet carry a zero ID.
type Pick struct {
	ID             int64 `json:"id"`
	UserID         int64 `json:"user_id"`
	GameID         int64 `json:"game_id"`
	SelectedTeamID int64 `json:"selected_team_id"`
}

// Provisional reports whether the pick exists only locally.
func (p Pick) Provisional() bool { return p.ID == 0 }

// UpsertRequest is the body of POST /picks/. The backend creates or updates.
type UpsertRequest struct {
	GameID         int64 `json:"game_id"`
	SelectedTeamID int64 `json:"selected_team_id"`
}

// ForGames keeps the first pick per game among the given game IDs, preserving order.
func ForGames(all []Pick, gameIDs map[int64]struct{}) []Pick {
	out := make([]Pick, 0, len(all))
	seen := make(map[int64]struct{}, len(all))
	for _, p := range all {
		if _, ok := gameIDs[p.GameID]; !ok {
			continue
		}
		if _, dup := seen[p.GameID]; dup {
			continue
		}
		seen[p.GameID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// ByGame indexes picks by game ID.
func ByGame(list []Pick) map[int64]Pick {
	out := make(map[int64]Pick, len(list))
	for _, p := range list {
		out[p.GameID] = p
	}
	return out
}
