package session

import (
	"errors"

	"github.com/preston-bernstein/pickem-client/internal/domain/users"
)

// State is where the session sits in its lifecycle.
type State int

const (
	Unauthenticated State = iota
	// Restoring means a cached credential is being revalidated. The cached
	// user is visible but not yet confirmed.
	Restoring
	Authenticated
)

func (s State) String() string {
	switch s {
	case Restoring:
		return "restoring"
	case Authenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// MarshalText lets State render as its name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ErrNotAuthenticated is returned by operations that need a credential when none is held.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session is a point-in-time copy of the store.
type Session struct {
	State State       `json:"state"`
	Token string      `json:"-"`
	User  *users.User `json:"user,omitempty"`
}

// HasCredential reports whether requests can be authorized.
func (s Session) HasCredential() bool {
	return s.State != Unauthenticated && s.Token != ""
}
