// Package viewstore owns the in-memory view of one owner's expenses
// under the active filter. All mutation of the collection routes through
// its four operations; no other component writes to it.
package viewstore

import (
	"context"
	"sync"
	"time"

	"expensedash/internal/core"
	"expensedash/internal/gateway"
	"expensedash/internal/log"
)

// Phase is the store's coarse activity state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseFetching Phase = "fetching"
	PhaseMutating Phase = "mutating"
)

// Store keeps the authoritative client-side collection for a single owner.
// Semantics are confirm-then-reflect: the collection changes only after
// the gateway acknowledges a write, and never changes on failure.
//
// Overlapping asynchronous operations are not serialized against each
// other. If a Load and a mutation are in flight together, whichever
// completes last wins; a fetch snapshot computed before a delete was
// issued can resurrect the deleted record until the next Load. That
// last-write-wins hazard is retained deliberately to keep observable
// behavior; callers wanting stronger ordering must sequence their calls.
type Store struct {
	gw     gateway.Gateway
	owner  string
	logger *log.Logger

	mu       sync.Mutex
	filter   core.Filter
	expenses []core.Expense
	summary  core.Summary
	phase    Phase
	subs     []func()
}

// New builds a store for one authenticated owner. The identity is fixed
// at construction so callers never re-supply it per operation.
func New(gw gateway.Gateway, owner string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Store{
		gw:     gw,
		owner:  owner,
		logger: logger.WithComponent(log.ComponentViewStore),
		filter: core.DefaultFilter(time.Now()),
		phase:  PhaseIdle,
	}
}

// Owner returns the identity the store is scoped to.
func (s *Store) Owner() string { return s.owner }

// Filter returns the active filter.
func (s *Store) Filter() core.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Phase returns the current activity phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Expenses returns a copy of the current collection in view order.
func (s *Store) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out
}

// Summary returns the aggregates for the current collection.
func (s *Store) Summary() core.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Subscribe registers fn to run after every collection change. Callbacks
// run synchronously on the mutating goroutine, outside the store lock.
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// SetFilter replaces the filter wholesale and refetches. A fetch failure
// leaves both the previous collection and the new filter in place; the
// view degrades to last-known-good data and the error is returned for
// logging rather than destructive handling.
func (s *Store) SetFilter(ctx context.Context, filter core.Filter) error {
	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()
	return s.Load(ctx)
}

// Load fetches the collection for the active filter and replaces the
// in-memory view with the result. Entries outside the new filter are
// dropped, not merged. On failure the collection is untouched.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	filter := s.filter
	s.phase = PhaseFetching
	s.mu.Unlock()

	fetched, err := s.gw.FetchExpenses(ctx, s.owner, filter)

	s.mu.Lock()
	s.phase = PhaseIdle
	if err != nil {
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "Fetch failed, keeping previous collection",
			log.FieldError, err,
			log.FieldOwner, s.owner,
			log.FieldWindowFrom, filter.Window.From(),
			log.FieldWindowTo, filter.Window.To(),
			log.FieldCategory, filter.Category)
		return err
	}
	s.expenses = fetched
	s.recompute()
	s.mu.Unlock()
	s.notify()

	s.logger.InfoContext(ctx, "Collection reloaded",
		log.FieldOwner, s.owner,
		log.FieldCount, len(fetched))
	return nil
}

// Create inserts a record through the gateway and, once confirmed,
// prepends the returned record to the collection. With date-descending
// order the prepend is only correct when the new record is the most
// recent; older dates sit out of order until the next Load.
func (s *Store) Create(ctx context.Context, draft core.Draft) (core.Expense, error) {
	s.setPhase(PhaseMutating)
	created, err := s.gw.CreateExpense(ctx, s.owner, draft)
	s.setPhase(PhaseIdle)
	if err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	s.expenses = append([]core.Expense{created}, s.expenses...)
	s.recompute()
	s.mu.Unlock()
	s.notify()

	s.logger.InfoContext(ctx, "Expense created",
		log.FieldOwner, s.owner,
		log.FieldExpenseID, created.ID,
		log.FieldAmountCents, created.Amount.Cents,
		log.FieldCategory, created.Category)
	return created, nil
}

// Update sends a patch through the gateway and, once confirmed, replaces
// the matching record in place, preserving its position. The patch is
// never merged into the local record before confirmation.
func (s *Store) Update(ctx context.Context, id string, patch core.Patch) (core.Expense, error) {
	s.setPhase(PhaseMutating)
	updated, err := s.gw.UpdateExpense(ctx, s.owner, id, patch)
	s.setPhase(PhaseIdle)
	if err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	for i := range s.expenses {
		if s.expenses[i].ID == id {
			s.expenses[i] = updated
			break
		}
	}
	s.recompute()
	s.mu.Unlock()
	s.notify()

	s.logger.InfoContext(ctx, "Expense updated",
		log.FieldOwner, s.owner,
		log.FieldExpenseID, id)
	return updated, nil
}

// Delete removes a record through the gateway and, once confirmed, drops
// it from the collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.setPhase(PhaseMutating)
	err := s.gw.DeleteExpense(ctx, s.owner, id)
	s.setPhase(PhaseIdle)
	if err != nil {
		return err
	}

	s.mu.Lock()
	kept := s.expenses[:0]
	for _, e := range s.expenses {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.expenses = kept
	s.recompute()
	s.mu.Unlock()
	s.notify()

	s.logger.InfoContext(ctx, "Expense deleted",
		log.FieldOwner, s.owner,
		log.FieldExpenseID, id)
	return nil
}

func (s *Store) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

// recompute refreshes the aggregates. Callers hold s.mu.
func (s *Store) recompute() {
	s.summary = core.Summarize(s.expenses)
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subs))
	copy(subs, s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
