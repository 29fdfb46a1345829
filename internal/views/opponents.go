package views

import (
	"context"
	"log/slog"

	"github.com/preston-bernstein/pickem-client/internal/domain/users"
	"github.com/preston-bernstein/pickem-client/internal/domain/weeks"
	"github.com/preston-bernstein/pickem-client/internal/logging"
)

// Opponent is one entry of the opponent picker.
type Opponent struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Self   bool   `json:"self"`
}

// Label renders the picker text, marking the signed-in user.
func (o Opponent) Label() string {
	if o.Self {
		return o.Name + " (You)"
	}
	return o.Name
}

// Opponents lists users who picked in a week.
type Opponents struct {
	tracker
	reader   Reader
	identity Identity
	logger   *slog.Logger

	week      weeks.Week
	opponents []Opponent
}

// NewOpponents builds an unloaded opponent list.
func NewOpponents(reader Reader, identity Identity, logger *slog.Logger) *Opponents {
	o := &Opponents{reader: reader, identity: identity, logger: logger}
	o.status = StatusLoading
	return o
}

// Load fetches the users with picks in weekID (0 for the newest week).
func (o *Opponents) Load(ctx context.Context, weekID int64) error {
	token, me, err := credentials(o.identity)
	if err != nil {
		return o.fail(err)
	}
	o.begin()

	_, week, found, err := selectWeek(ctx, o.reader, weekID)
	if err != nil {
		return o.fail(err)
	}
	var roster []users.User
	if found {
		roster, err = o.reader.WeekUsers(ctx, token, week.ID)
		if err != nil {
			logging.Warn(logging.FromContext(ctx, o.logger), "opponent list load failed", logging.FieldWeekID, week.ID, "error", err)
			return o.fail(err)
		}
	}

	list := make([]Opponent, 0, len(roster))
	for _, u := range roster {
		list = append(list, Opponent{UserID: u.ID, Name: u.FirstName(), Self: u.ID == me.ID})
	}

	o.mu.Lock()
	o.week, o.opponents = week, list
	o.status = StatusLoaded
	o.mu.Unlock()
	return nil
}

// List returns the loaded opponents in backend order.
func (o *Opponents) List() []Opponent {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]Opponent(nil), o.opponents...)
}

// Default is the first user who is not the signed-in user, else the first user.
func (o *Opponents) Default() (Opponent, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return DefaultOpponent(o.opponents)
}

// DefaultOpponent picks the first entry that is not the signed-in user.
func DefaultOpponent(list []Opponent) (Opponent, bool) {
	for _, op := range list {
		if !op.Self {
			return op, true
		}
	}
	if len(list) > 0 {
		return list[0], true
	}
	return Opponent{}, false
}

// Week returns the week the list was loaded for.
func (o *Opponents) Week() weeks.Week {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.week
}
