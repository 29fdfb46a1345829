package testutil

import (
	"context"
	"sync"

	"github.com/preston-bernstein/pickem-client/internal/domain/users"
	"github.com/preston-bernstein/pickem-client/internal/session"
)

// StubSessions is an in-memory session holder. LoginWithCredential signs in
// LoginUser unless LoginErr is set.
type StubSessions struct {
	mu   sync.Mutex
	sess session.Session
	subs []func(session.Session)

	LoginUser   users.User
	LoginErr    error
	LogoutErr   error
	LogoutCalls int
}

// SignedIn returns a StubSessions already authenticated as u.
func SignedIn(u users.User) *StubSessions {
	s := &StubSessions{}
	s.sess = session.Session{State: session.Authenticated, Token: "test-token", User: &u}
	return s
}

func (s *StubSessions) Current() session.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sess
}

func (s *StubSessions) Token() string {
	return s.Current().Token
}

func (s *StubSessions) User() (users.User, bool) {
	sess := s.Current()
	if sess.User == nil {
		return users.User{}, false
	}
	return *sess.User, true
}

func (s *StubSessions) LoginWithCredential(_ context.Context, credential string) (session.Session, error) {
	if s.LoginErr != nil {
		return session.Session{}, s.LoginErr
	}
	u := s.LoginUser
	sess := session.Session{State: session.Authenticated, Token: "token-for-" + credential, User: &u}
	s.Set(sess)
	return sess, nil
}

func (s *StubSessions) Logout() error {
	s.mu.Lock()
	s.LogoutCalls++
	err := s.LogoutErr
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.Set(session.Session{State: session.Unauthenticated})
	return nil
}

// Set replaces the session and notifies OnChange subscribers.
func (s *StubSessions) Set(sess session.Session) {
	s.mu.Lock()
	s.sess = sess
	subs := append([]func(session.Session){}, s.subs...)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(sess)
	}
}

func (s *StubSessions) OnChange(fn func(session.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Bootstrap reports the current session without any revalidation.
func (s *StubSessions) Bootstrap(context.Context) session.Session {
	return s.Current()
}
