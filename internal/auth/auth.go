// Package auth provides the session/identity collaborator: it issues the
// owner identity every gateway call is scoped to. The rest of the system
// only sees the Provider interface.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnconfirmed        = errors.New("account not confirmed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNoSession          = errors.New("no active session")
)

// Error wraps an authentication failure with the operation it came from.
type Error struct {
	Op  string // "sign_in", "sign_up", "sign_out", "session"
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("auth %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Session is an authenticated identity. UserID is the stable value used
// as the owner on every expense record.
type Session struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// Provider is the authentication collaborator contract.
type Provider interface {
	// Session returns the current session, or nil when signed out.
	Session(ctx context.Context) (*Session, error)

	// OnSessionChange registers fn to run on every sign-in and sign-out.
	// fn receives the new session, nil on sign-out.
	OnSessionChange(fn func(*Session))

	// SignIn verifies the credentials and returns the session it opened.
	// The return value is the only safe way to hand the session back to
	// the caller; the tracked current session is shared state and may be
	// replaced by a concurrent sign-in at any time.
	SignIn(ctx context.Context, email, password string) (*Session, error)

	// SignUp registers a new account. redirectTarget is the URL the
	// confirmation email points back to; delivery itself is external.
	SignUp(ctx context.Context, email, password, redirectTarget string) error

	SignOut(ctx context.Context) error
}

// tracker holds the current session and its change subscribers. Both
// providers embed it.
type tracker struct {
	mu      sync.Mutex
	current *Session
	subs    []func(*Session)
}

func (t *tracker) Session(_ context.Context) (*Session, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil, nil
	}
	s := *t.current
	return &s, nil
}

func (t *tracker) OnSessionChange(fn func(*Session)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.subs = append(t.subs, fn)
}

func (t *tracker) set(s *Session) {
	t.mu.Lock()
	t.current = s
	subs := make([]func(*Session), len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}
