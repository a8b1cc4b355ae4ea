package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type memoryUser struct {
	id        string
	email     string
	hash      []byte
	confirmed bool
}

// Memory is an in-process Provider for tests and the demo backend.
// Accounts are confirmed immediately unless RequireConfirmation is set.
type Memory struct {
	tracker
	tokens Tokens

	// RequireConfirmation makes sign-in of fresh accounts fail with
	// ErrUnconfirmed until Confirm is called, mirroring the email flow.
	RequireConfirmation bool

	usersMu sync.Mutex
	users   map[string]memoryUser // keyed by lowercase email
}

func NewMemory(tokens Tokens) *Memory {
	return &Memory{tokens: tokens, users: make(map[string]memoryUser)}
}

func (m *Memory) SignUp(_ context.Context, email, password, redirectTarget string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return &Error{Op: "sign_up", Err: ErrInvalidCredentials}
	}

	m.usersMu.Lock()
	defer m.usersMu.Unlock()
	if _, exists := m.users[email]; exists {
		return &Error{Op: "sign_up", Err: ErrEmailTaken}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return &Error{Op: "sign_up", Err: err}
	}
	m.users[email] = memoryUser{
		id:        uuid.NewString(),
		email:     email,
		hash:      hash,
		confirmed: !m.RequireConfirmation,
	}
	_ = redirectTarget // no email delivery in the in-process provider
	return nil
}

// Confirm marks an account confirmed, standing in for the email link.
func (m *Memory) Confirm(email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	m.usersMu.Lock()
	defer m.usersMu.Unlock()
	if u, ok := m.users[email]; ok {
		u.confirmed = true
		m.users[email] = u
	}
}

func (m *Memory) SignIn(_ context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	m.usersMu.Lock()
	u, ok := m.users[email]
	m.usersMu.Unlock()
	if !ok {
		return nil, &Error{Op: "sign_in", Err: ErrInvalidCredentials}
	}
	if err := bcrypt.CompareHashAndPassword(u.hash, []byte(password)); err != nil {
		return nil, &Error{Op: "sign_in", Err: ErrInvalidCredentials}
	}
	if !u.confirmed {
		return nil, &Error{Op: "sign_in", Err: ErrUnconfirmed}
	}

	now := time.Now()
	token, expires, err := m.tokens.Issue(u.id, u.email, now)
	if err != nil {
		return nil, &Error{Op: "sign_in", Err: err}
	}
	session := &Session{UserID: u.id, Email: u.email, Token: token, ExpiresAt: expires}
	m.set(session)
	return session, nil
}

func (m *Memory) SignOut(_ context.Context) error {
	m.set(nil)
	return nil
}

var _ Provider = (*Memory)(nil)
