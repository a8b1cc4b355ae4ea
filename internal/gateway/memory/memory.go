// Package memory is an in-process gateway adapter used by tests and the
// demo backend. It mirrors the remote-store contract exactly: owner
// scoping, inclusive window filtering, date-descending order, and
// non-idempotent deletes.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"expensedash/internal/core"
	"expensedash/internal/gateway"
)

type Store struct {
	mu    sync.Mutex
	items map[string]core.Expense

	// FailNext, when set, makes the next operation fail with the given
	// error. Test hook for probing failure paths.
	FailNext error

	now func() time.Time
}

func New() *Store {
	return &Store{
		items: make(map[string]core.Expense),
		now:   time.Now,
	}
}

// NewAt pins the clock used for date defaults. Tests only.
func NewAt(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

// Seed inserts records directly, bypassing defaults. Records without an
// ID get one assigned.
func (s *Store) Seed(expenses ...core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range expenses {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		s.items[e.ID] = e
	}
}

func (s *Store) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func (s *Store) FetchExpenses(_ context.Context, owner string, filter core.Filter) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return nil, &gateway.QueryError{Owner: owner, Err: err}
	}

	var out []core.Expense
	for _, e := range s.items {
		if e.Owner != owner {
			continue
		}
		if !filter.Matches(e) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) CreateExpense(_ context.Context, owner string, draft core.Draft) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "create", Err: err}
	}
	if owner == "" {
		return core.Expense{}, &gateway.WriteError{Op: "create", Err: core.ErrEmptyOwner}
	}

	e := draft.Materialize(owner, s.now())
	e.ID = uuid.NewString()
	s.items[e.ID] = e
	return e, nil
}

func (s *Store) UpdateExpense(_ context.Context, owner, id string, patch core.Patch) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: err}
	}
	// Another owner's record looks exactly like a missing one.
	e, ok := s.items[id]
	if !ok || e.Owner != owner {
		return core.Expense{}, &gateway.WriteError{Op: "update", ID: id, Err: gateway.ErrNotFound}
	}
	e = patch.Apply(e)
	s.items[id] = e
	return e, nil
}

func (s *Store) DeleteExpense(_ context.Context, owner, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.takeFailure(); err != nil {
		return &gateway.WriteError{Op: "delete", ID: id, Err: err}
	}
	if e, ok := s.items[id]; !ok || e.Owner != owner {
		return &gateway.WriteError{Op: "delete", ID: id, Err: gateway.ErrNotFound}
	}
	delete(s.items, id)
	return nil
}

// Len reports the number of stored records across all owners.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

var _ gateway.Gateway = (*Store)(nil)
