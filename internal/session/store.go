package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/pickem-client/internal/api"
	"github.com/preston-bernstein/pickem-client/internal/domain/users"
	"github.com/preston-bernstein/pickem-client/internal/logging"
	"github.com/preston-bernstein/pickem-client/internal/metrics"
)

// Authenticator is the slice of the backend the session needs.
type Authenticator interface {
	Login(ctx context.Context, credential string) (api.AuthResponse, error)
	Me(ctx context.Context, token string) (api.AuthResponse, error)
}

// Options tune bootstrap behavior.
type Options struct {
	// PreserveOnNetworkError keeps a cached session in Restoring when /auth/me
	// could not be reached. Off by default: any failure logs out.
	PreserveOnNetworkError bool
	Logger                 *slog.Logger
	Metrics                *metrics.Recorder
}

// Store owns the current identity and token. Construct one per process and
// pass it to whatever needs credentials.
type Store struct {
	auth      Authenticator
	persister Persister
	opts      Options
	now       func() time.Time

	mu    sync.RWMutex
	state State
	token string
	user  *users.User
	// gen bumps on every login/logout so a slow bootstrap cannot overwrite them.
	gen uint64

	// persistMu orders writes to the persister. A save only lands while its
	// generation is still current.
	persistMu sync.Mutex

	ready     chan struct{}
	readyOnce sync.Once

	subsMu sync.Mutex
	subs   []func(Session)
}

// New constructs an unauthenticated Store.
func New(auth Authenticator, persister Persister, opts Options) *Store {
	if persister == nil {
		persister = NewMemoryStore()
	}
	return &Store{
		auth:      auth,
		persister: persister,
		opts:      opts,
		now:       time.Now,
		ready:     make(chan struct{}),
	}
}

// Bootstrap restores a cached session. With a cached token the store moves to
// Restoring, exposes the cached user, and revalidates against the backend:
// success authenticates with the (possibly rotated) token, failure logs out.
// Failures are logged, never returned.
func (s *Store) Bootstrap(ctx context.Context) Session {
	defer s.markReady()
	logger := logging.FromContext(ctx, s.opts.Logger)

	creds, ok, err := s.persister.Load()
	if err != nil {
		logging.Warn(logger, "cached session unreadable, clearing", "error", err)
		s.clearIfUnchanged(s.generation(), metrics.BootstrapCleared)
		return s.Current()
	}
	if !ok || creds.Token == "" {
		if ok {
			// a user without a token is unusable
			_ = s.persister.Clear()
		}
		s.opts.Metrics.RecordBootstrap(metrics.BootstrapSkipped)
		return s.Current()
	}

	if expiredLocally(creds.Token, s.now()) {
		logging.Info(logger, "cached token expired, clearing session")
		s.clearIfUnchanged(s.generation(), metrics.BootstrapCleared)
		return s.Current()
	}

	s.mu.Lock()
	gen := s.gen
	s.state = Restoring
	s.token = creds.Token
	s.user = cloneUser(creds.User)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	resp, err := s.auth.Me(ctx, creds.Token)
	if err != nil {
		if s.opts.PreserveOnNetworkError && api.IsTransport(err) && !errors.Is(err, context.Canceled) {
			logging.Warn(logger, "session revalidation unreachable, keeping cached session", "error", err)
			s.opts.Metrics.RecordBootstrap(metrics.BootstrapPreserved)
			return s.Current()
		}
		logging.Warn(logger, "session revalidation failed, logging out", "error", err)
		s.clearIfUnchanged(gen, metrics.BootstrapCleared)
		return s.Current()
	}

	token := resp.AccessToken
	if token == "" {
		token = creds.Token
	}
	user := resp.User

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return s.Current()
	}
	s.state = Authenticated
	s.token = token
	s.user = &user
	snap = s.snapshotLocked()
	s.mu.Unlock()

	if err := s.saveIfCurrent(gen, Credentials{Token: token, User: &user}); err != nil {
		logging.Warn(logger, "failed to persist restored session", "error", err)
	}
	if s.generation() != gen {
		return s.Current()
	}
	s.opts.Metrics.RecordBootstrap(metrics.BootstrapRestored)
	logging.Info(logger, "session restored", logging.FieldUserID, user.ID)
	s.notify(snap)
	return snap
}

// Login records a token and user obtained elsewhere.
func (s *Store) Login(token string, user users.User) error {
	if token == "" {
		return errors.New("session: empty token")
	}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = Authenticated
	s.token = token
	s.user = &user
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.markReady()
	s.notify(snap)
	return s.saveIfCurrent(gen, Credentials{Token: token, User: &user})
}

// LoginWithCredential exchanges an identity provider credential and logs in.
// On failure the session is left as it was.
func (s *Store) LoginWithCredential(ctx context.Context, credential string) (Session, error) {
	resp, err := s.auth.Login(ctx, credential)
	if err != nil {
		return s.Current(), err
	}
	if err := s.Login(resp.AccessToken, resp.User); err != nil {
		return s.Current(), err
	}
	return s.Current(), nil
}

// Logout clears identity and persisted credentials. Calling it again is harmless.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.gen++
	changed := s.state != Unauthenticated
	s.state = Unauthenticated
	s.token = ""
	s.user = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.markReady()
	if changed {
		s.notify(snap)
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	return s.persister.Clear()
}

// Current returns a copy of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// State returns the lifecycle state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Token returns the live bearer token, empty when logged out. Read it at
// request time rather than holding on to it.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == Unauthenticated {
		return ""
	}
	return s.token
}

// User returns the current user, if any.
func (s *Store) User() (users.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return users.User{}, false
	}
	return *s.user, true
}

// Ready closes once bootstrap, login or logout has settled the session.
func (s *Store) Ready() <-chan struct{} {
	return s.ready
}

// WaitReady blocks until Ready closes or ctx ends.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnChange registers fn to run after every state transition.
func (s *Store) OnChange(fn func(Session)) {
	if fn == nil {
		return
	}
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	s.subs = append(s.subs, fn)
}

func (s *Store) generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

func (s *Store) clearIfUnchanged(gen uint64, outcome string) {
	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		return
	}
	changed := s.state != Unauthenticated
	s.state = Unauthenticated
	s.token = ""
	s.user = nil
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persistMu.Lock()
	err := s.persister.Clear()
	s.persistMu.Unlock()
	if err != nil {
		logging.Warn(s.opts.Logger, "failed to clear persisted session", "error", err)
	}
	s.opts.Metrics.RecordBootstrap(outcome)
	if changed {
		s.notify(snap)
	}
}

// saveIfCurrent writes creds unless a later login or logout has superseded
// generation gen. A logout waiting on persistMu clears after this save.
func (s *Store) saveIfCurrent(gen uint64, creds Credentials) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.generation() != gen {
		return nil
	}
	return s.persister.Save(creds)
}

func (s *Store) snapshotLocked() Session {
	return Session{State: s.state, Token: s.token, User: cloneUser(s.user)}
}

func (s *Store) notify(snap Session) {
	s.subsMu.Lock()
	subs := append([]func(Session){}, s.subs...)
	s.subsMu.Unlock()
	for _, fn := range subs {
		fn(snap)
	}
}

func (s *Store) markReady() {
	s.readyOnce.Do(func() { close(s.ready) })
}

func cloneUser(u *users.User) *users.User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
