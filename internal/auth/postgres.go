package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"expensedash/internal/log"
)

// Postgres is the production Provider, keeping accounts in a users table.
// Confirmation emails are delivered by an external service; this provider
// records the redirect target so that service can pick it up.
type Postgres struct {
	tracker
	pool   *pgxpool.Pool
	tokens Tokens
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, tokens Tokens, logger *log.Logger) *Postgres {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Postgres{
		pool:   pool,
		tokens: tokens,
		logger: logger.WithComponent(log.ComponentAuth),
	}
}

func (p *Postgres) SignUp(ctx context.Context, email, password, redirectTarget string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return &Error{Op: "sign_up", Err: ErrInvalidCredentials}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return &Error{Op: "sign_up", Err: err}
	}

	_, err = p.pool.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, confirmed, confirm_redirect)
		 VALUES ($1, $2, $3, FALSE, $4)`,
		uuid.NewString(), email, string(hash), redirectTarget)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return &Error{Op: "sign_up", Err: ErrEmailTaken}
		}
		return &Error{Op: "sign_up", Err: err}
	}

	p.logger.InfoContext(ctx, "Account registered, confirmation pending",
		log.FieldEmail, email)
	return nil
}

func (p *Postgres) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var (
		id        string
		hash      string
		confirmed bool
	)
	err := p.pool.QueryRow(ctx,
		"SELECT id, password_hash, confirmed FROM users WHERE email = $1", email).
		Scan(&id, &hash, &confirmed)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &Error{Op: "sign_in", Err: ErrInvalidCredentials}
	}
	if err != nil {
		return nil, &Error{Op: "sign_in", Err: err}
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, &Error{Op: "sign_in", Err: ErrInvalidCredentials}
	}
	if !confirmed {
		return nil, &Error{Op: "sign_in", Err: ErrUnconfirmed}
	}

	now := time.Now()
	token, expires, err := p.tokens.Issue(id, email, now)
	if err != nil {
		return nil, &Error{Op: "sign_in", Err: err}
	}
	session := &Session{UserID: id, Email: email, Token: token, ExpiresAt: expires}
	p.set(session)

	p.logger.InfoContext(ctx, "Signed in", log.FieldEmail, email)
	return session, nil
}

func (p *Postgres) SignOut(ctx context.Context) error {
	p.set(nil)
	p.logger.InfoContext(ctx, "Signed out")
	return nil
}

var _ Provider = (*Postgres)(nil)
