// Package gateway defines the port to the remote expense store. Adapters
// live in the subpackages; everything above this layer talks to the
// Gateway interface only.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"expensedash/internal/core"
)

// Gateway is the only road to the remote store. Every call is scoped to
// an owner identity; a gateway must never read or write records belonging
// to another identity. Calls are single-attempt: no retries, no backoff,
// every failure is reported to the caller immediately.
type Gateway interface {
	// FetchExpenses returns the owner's records whose date falls inside
	// the filter window (inclusive), restricted to the filter category
	// unless unrestricted, ordered by date descending.
	FetchExpenses(ctx context.Context, owner string, filter core.Filter) ([]core.Expense, error)

	// CreateExpense inserts a new record for owner, applying field
	// defaults, and returns it with the store-assigned ID.
	CreateExpense(ctx context.Context, owner string, draft core.Draft) (core.Expense, error)

	// UpdateExpense applies a partial patch to the owner's record and
	// returns it as confirmed by the store. A record belonging to another
	// owner is indistinguishable from a missing one: both fail with a
	// *WriteError wrapping ErrNotFound.
	UpdateExpense(ctx context.Context, owner, id string, patch core.Patch) (core.Expense, error)

	// DeleteExpense removes the owner's record. Deleting an unknown id,
	// or another owner's, fails with a *WriteError wrapping ErrNotFound;
	// it is not idempotent.
	DeleteExpense(ctx context.Context, owner, id string) error
}

// ErrNotFound reports that the targeted record does not exist.
var ErrNotFound = errors.New("expense not found")

// QueryError wraps a failed fetch. The caller decides what to do with the
// previously held collection; this layer never clears anything.
type QueryError struct {
	Owner string
	Err   error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query expenses for %s: %v", e.Owner, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// WriteError wraps a rejected create, update or delete.
type WriteError struct {
	Op  string // "create", "update", "delete"
	ID  string // empty for create
	Err error
}

func (e *WriteError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s expense: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s expense %s: %v", e.Op, e.ID, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
