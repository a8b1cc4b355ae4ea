// Package postgres is the production gateway adapter, backed by a pgx
// connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"expensedash/internal/core"
	"expensedash/internal/gateway"
)

type Store struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool, e.g. one shared with the auth store.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const expenseColumns = "id, owner, title, amount_cents, category, date, notes, receipt_url"

func scanExpense(row pgx.Row) (core.Expense, error) {
	var e core.Expense
	err := row.Scan(&e.ID, &e.Owner, &e.Title, &e.Amount.Cents, &e.Category, &e.Date, &e.Notes, &e.ReceiptURL)
	return e, err
}

func (s *Store) FetchExpenses(ctx context.Context, owner string, filter core.Filter) ([]core.Expense, error) {
	query := "SELECT " + expenseColumns + ` FROM expenses
		WHERE owner = $1 AND date >= $2 AND date <= $3`
	args := []any{owner, filter.Window.From(), filter.Window.To()}
	if filter.Restricted() {
		query += " AND category = $4"
		args = append(args, filter.Category)
	}
	query += " ORDER BY date DESC"

	rows, err := s.pool.Query(ctx, query, args...)
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

	e := draft.Materialize(owner, nowUTC())
	e.ID = uuid.NewString()

	row := s.pool.QueryRow(ctx,
		`INSERT INTO expenses (id, owner, title, amount_cents, category, date, notes, receipt_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+expenseColumns,
		e.ID, e.Owner, e.Title, e.Amount.Cents, e.Category, e.Date, e.Notes, e.ReceiptURL)
	created, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "create", Err: err}
	}
	return created, nil
}

func (s *Store) UpdateExpense(ctx context.Context, owner, id string, patch core.Patch) (core.Expense, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: err}
	}
	defer tx.Rollback(ctx)

	// Scoping by owner makes another identity's record indistinguishable
	// from a missing one.
	row := tx.QueryRow(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = $1 AND owner = $2 FOR UPDATE", id, owner)
	e, err := scanExpense(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: gateway.ErrNotFound}
	}
	if err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: err}
	}

	e = patch.Apply(e)
	row = tx.QueryRow(ctx,
		`UPDATE expenses SET title = $3, amount_cents = $4, category = $5, date = $6, notes = $7, receipt_url = $8
		 WHERE id = $1 AND owner = $2
		 RETURNING `+expenseColumns,
		id, owner, e.Title, e.Amount.Cents, e.Category, e.Date, e.Notes, e.ReceiptURL)
	updated, err := scanExpense(row)
	if err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: err}
	}
	return updated, nil
}

func (s *Store) DeleteExpense(ctx context.Context, owner, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM expenses WHERE id = $1 AND owner = $2", id, owner)
	if err != nil {
		return &gateway.WriteError{Op: "delete", ID: id, Err: err}
	}
	if tag.RowsAffected() == 0 {
		return &gateway.WriteError{Op: "delete", ID: id, Err: gateway.ErrNotFound}
	}
	return nil
}

func nowUTC() time.Time { return time.Now().UTC() }

var _ gateway.Gateway = (*Store)(nil)
