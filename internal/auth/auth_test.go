package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func timeNow() time.Time { return time.Now() }

func newMemoryProvider() *Memory {
	return NewMemory(NewTokens("test-secret"))
}

func TestSignUpThenSignIn(t *testing.T) {
	m := newMemoryProvider()
	ctx := context.Background()

	if err := m.SignUp(ctx, "Alice@Example.com", "pw123456", "https://app.example.com"); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	sess, err := m.SignIn(ctx, "alice@example.com", "pw123456")
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if sess == nil || sess.UserID == "" || sess.Email != "alice@example.com" || sess.Token == "" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	tracked, err := m.Session(ctx)
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	if tracked == nil || tracked.UserID != sess.UserID {
		t.Fatalf("tracked session out of step: %+v", tracked)
	}

	userID, email, err := m.tokens.Parse(sess.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if userID != sess.UserID || email != sess.Email {
		t.Fatalf("token identity mismatch: %q %q", userID, email)
	}
}

func TestSignInWrongPassword(t *testing.T) {
	m := newMemoryProvider()
	ctx := context.Background()

	if err := m.SignUp(ctx, "a@b.c", "correct", ""); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	_, err := m.SignIn(ctx, "a@b.c", "wrong")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	var aerr *Error
	if !errors.As(err, &aerr) || aerr.Op != "sign_in" {
		t.Fatalf("expected auth Error, got %v", err)
	}

	if sess, _ := m.Session(ctx); sess != nil {
		t.Fatal("failed sign-in must not establish a session")
	}
}

func TestSignInUnknownAccount(t *testing.T) {
	m := newMemoryProvider()
	_, err := m.SignIn(context.Background(), "nobody@b.c", "pw")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUnconfirmedAccount(t *testing.T) {
	m := newMemoryProvider()
	m.RequireConfirmation = true
	ctx := context.Background()

	if err := m.SignUp(ctx, "a@b.c", "pw", ""); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := m.SignIn(ctx, "a@b.c", "pw"); !errors.Is(err, ErrUnconfirmed) {
		t.Fatalf("expected ErrUnconfirmed, got %v", err)
	}

	m.Confirm("a@b.c")
	if _, err := m.SignIn(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("sign in after confirm: %v", err)
	}
}

func TestDuplicateSignUp(t *testing.T) {
	m := newMemoryProvider()
	ctx := context.Background()
	if err := m.SignUp(ctx, "a@b.c", "pw", ""); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if err := m.SignUp(ctx, "a@b.c", "pw", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestSessionChangeCallbacks(t *testing.T) {
	m := newMemoryProvider()
	ctx := context.Background()

	var events []*Session
	m.OnSessionChange(func(s *Session) { events = append(events, s) })

	if err := m.SignUp(ctx, "a@b.c", "pw", ""); err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := m.SignIn(ctx, "a@b.c", "pw"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if err := m.SignOut(ctx); err != nil {
		t.Fatalf("sign out: %v", err)
	}

	if len(events) != 2 {
		t.Fatalf("expected sign-in and sign-out events, got %d", len(events))
	}
	if events[0] == nil || events[1] != nil {
		t.Fatalf("unexpected event payloads: %+v", events)
	}

	if sess, _ := m.Session(ctx); sess != nil {
		t.Fatal("session must be nil after sign-out")
	}
}

func TestInterleavedSignInsKeepOwnSessions(t *testing.T) {
	m := newMemoryProvider()
	ctx := context.Background()

	for _, email := range []string{"alice@x.com", "bob@x.com"} {
		if err := m.SignUp(ctx, email, "pw", ""); err != nil {
			t.Fatalf("sign up %s: %v", email, err)
		}
	}

	aliceSess, err := m.SignIn(ctx, "alice@x.com", "pw")
	if err != nil {
		t.Fatalf("alice sign in: %v", err)
	}
	// A second sign-in replaces the tracked session; the value returned
	// to alice must still be hers.
	bobSess, err := m.SignIn(ctx, "bob@x.com", "pw")
	if err != nil {
		t.Fatalf("bob sign in: %v", err)
	}

	if aliceSess.Email != "alice@x.com" || bobSess.Email != "bob@x.com" {
		t.Fatalf("session identities swapped: %q / %q", aliceSess.Email, bobSess.Email)
	}
	userID, email, err := m.tokens.Parse(aliceSess.Token)
	if err != nil {
		t.Fatalf("parse alice's token: %v", err)
	}
	if userID != aliceSess.UserID || email != "alice@x.com" {
		t.Fatalf("alice's token carries %q %q", userID, email)
	}
}

func TestTokenParseRejectsWrongSecret(t *testing.T) {
	issuer := NewTokens("secret-a")
	token, _, err := issuer.Issue("user-1", "a@b.c", timeNow())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other := NewTokens("secret-b")
	if _, _, err := other.Parse(token); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}
