// Package sqlite is a file-backed gateway adapter. It keeps the remote
// store on local disk, which suits single-host deployments and
// integration tests that want real SQL semantics.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"expensedash/internal/core"
	"expensedash/internal/gateway"
)

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

const expenseColumns = "id, owner, title, amount_cents, category, date, notes, receipt_url"

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var e core.Expense
	var date string
	err := row.Scan(&e.ID, &e.Owner, &e.Title, &e.Amount.Cents, &e.Category, &date, &e.Notes, &e.ReceiptURL)
	if err != nil {
		return core.Expense{}, err
	}
	e.Date, err = time.Parse(time.RFC3339, date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	return e, nil
}

func (s *Store) FetchExpenses(ctx context.Context, owner string, filter core.Filter) ([]core.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE owner = ? AND date >= ? AND date <= ?"
	args := []any{
		owner,
		filter.Window.From().Format(time.RFC3339),
		filter.Window.To().Format(time.RFC3339),
	}
	if filter.Restricted() {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	query += " ORDER BY date DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &gateway.QueryError{Owner: owner, Err: err}
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, &gateway.QueryError{Owner: owner, Err: err}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &gateway.QueryError{Owner: owner, Err: err}
	}
	return out, nil
}

func (s *Store) CreateExpense(ctx context.Context, owner string, draft core.Draft) (core.Expense, error) {
	if owner == "" {
		return core.Expense{}, &gateway.WriteError{Op: "create", Err: core.ErrEmptyOwner}
	}

	e := draft.Materialize(owner, s.now())
	e.ID = uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO expenses (id, owner, title, amount_cents, category, date, notes, receipt_url) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.Owner, e.Title, e.Amount.Cents, e.Category, e.Date.UTC().Format(time.RFC3339), e.Notes, e.ReceiptURL)
	if err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "create", Err: err}
	}
	e.Date = e.Date.UTC()
	return e, nil
}

func (s *Store) UpdateExpense(ctx context.Context, owner, id string, patch core.Patch) (core.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: err}
	}
	defer tx.Rollback()

	// Scoping by owner makes another identity's record indistinguishable
	// from a missing one.
	row := tx.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ? AND owner = ?", id, owner)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: gateway.ErrNotFound}
	}
	if err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: err}
	}

	e = patch.Apply(e)
	_, err = tx.ExecContext(ctx,
		"UPDATE expenses SET title = ?, amount_cents = ?, category = ?, date = ?, notes = ?, receipt_url = ? WHERE id = ? AND owner = ?",
		e.Title, e.Amount.Cents, e.Category, e.Date.UTC().Format(time.RFC3339), e.Notes, e.ReceiptURL, id, owner)
	if err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: err}
	}
	if err := tx.Commit(); err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: err}
	}
	e.Date = e.Date.UTC()
	return e, nil
}

func (s *Store) DeleteExpense(ctx context.Context, owner, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ? AND owner = ?", id, owner)
	if err != nil {
		return &gateway.WriteError{Op: "delete", ID: id, Err: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &gateway.WriteError{Op: "delete", ID: id, Err: err}
	}
	if n == 0 {
		return &gateway.WriteError{Op: "delete", ID: id, Err: gateway.ErrNotFound}
	}
	return nil
}

var _ gateway.Gateway = (*Store)(nil)
