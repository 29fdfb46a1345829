package reconcile

import (
	"errors"
	"fmt"

	"github.com/preston-bernstein/pickem-client/internal/api"
)

var (
	// ErrUnknownGame means the game is not part of the engine's week.
	ErrUnknownGame = errors.New("game is not in this week")
	// ErrTeamNotInGame means the team plays in neither side of the game.
	ErrTeamNotInGame = errors.New("team does not play in this game")
)

// Failure reports a toggle the backend did not confirm. By the time it is
// delivered the local change has already been rolled back.
type Failure struct {
	ID     string
	Intent Intent
	GameID int64
	TeamID int64
	Err    error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s pick for game %d: %s", f.Intent, f.GameID, f.Message())
}

func (f *Failure) Unwrap() error { return f.Err }

// Rejected reports whether the backend refused the change, as opposed to
// never answering.
func (f *Failure) Rejected() bool {
	return api.IsRejection(f.Err)
}

// Message is the text to show the user. Rejections carry the backend's reason verbatim.
func (f *Failure) Message() string {
	return api.Message(f.Err)
}

// AsFailure unwraps err into a Failure.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}
