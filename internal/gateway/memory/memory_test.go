package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"expensedash/internal/core"
	"expensedash/internal/gateway"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func janWindow() core.Filter {
	return core.Filter{
		Category: core.CategoryAll,
		Window:   core.NewDateWindow(day("2024-01-01"), day("2024-01-31")),
	}
}

func TestFetchScopesToOwnerAndWindow(t *testing.T) {
	s := New()
	s.Seed(
		core.Expense{Owner: "alice", Category: "Food", Date: day("2024-01-10"), Amount: core.Money{Cents: 100}},
		core.Expense{Owner: "alice", Category: "Food", Date: day("2024-02-10"), Amount: core.Money{Cents: 200}},
		core.Expense{Owner: "bob", Category: "Food", Date: day("2024-01-10"), Amount: core.Money{Cents: 300}},
	)

	got, err := s.FetchExpenses(context.Background(), "alice", janWindow())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Owner != "alice" || got[0].Amount.Cents != 100 {
		t.Fatalf("wrong record: %+v", got[0])
	}
}

func TestFetchWindowBoundsInclusive(t *testing.T) {
	s := New()
	s.Seed(
		core.Expense{Owner: "alice", Date: day("2024-01-01")},
		core.Expense{Owner: "alice", Date: day("2024-01-31").Add(23 * time.Hour)},
		core.Expense{Owner: "alice", Date: day("2024-02-01")},
	)
	got, err := s.FetchExpenses(context.Background(), "alice", janWindow())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both boundary records, got %d", len(got))
	}
}

func TestFetchOrdersDateDescending(t *testing.T) {
	s := New()
	s.Seed(
		core.Expense{Owner: "alice", Date: day("2024-01-05")},
		core.Expense{Owner: "alice", Date: day("2024-01-20")},
		core.Expense{Owner: "alice", Date: day("2024-01-10")},
	)
	got, err := s.FetchExpenses(context.Background(), "alice", janWindow())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Date.After(got[i-1].Date) {
			t.Fatalf("not descending at %d: %v after %v", i, got[i].Date, got[i-1].Date)
		}
	}
}

func TestFetchCategoryRestriction(t *testing.T) {
	s := New()
	s.Seed(
		core.Expense{Owner: "alice", Category: "Food", Date: day("2024-01-10")},
		core.Expense{Owner: "alice", Category: "Travel", Date: day("2024-01-11")},
	)
	f := janWindow().WithCategory("Food")
	got, err := s.FetchExpenses(context.Background(), "alice", f)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].Category != "Food" {
		t.Fatalf("expected only Food, got %+v", got)
	}
}

func TestCreateAppliesDefaultsAndAssignsID(t *testing.T) {
	now := day("2024-01-15").Add(10 * time.Hour)
	s := NewAt(func() time.Time { return now })

	e, err := s.CreateExpense(context.Background(), "alice", core.Draft{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if e.ID == "" {
		t.Fatal("expected store-assigned id")
	}
	if e.Title != core.DefaultTitle || e.Category != core.CategoryOther || !e.Date.Equal(now) {
		t.Fatalf("defaults not applied: %+v", e)
	}

	// Round trip: create then load with a matching filter.
	got, err := s.FetchExpenses(context.Background(), "alice", janWindow())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].ID != e.ID {
		t.Fatalf("round trip failed: %+v", got)
	}
}

func TestCreateRejectsEmptyOwner(t *testing.T) {
	s := New()
	_, err := s.CreateExpense(context.Background(), "", core.Draft{})
	var werr *gateway.WriteError
	if !errors.As(err, &werr) {
		t.Fatalf("expected WriteError, got %v", err)
	}
}

func TestUpdatePatchesOnlySuppliedFields(t *testing.T) {
	s := New()
	orig := core.Expense{ID: "e1", Owner: "alice", Title: "Lunch", Category: "Food",
		Amount: core.Money{Cents: 5000}, Date: day("2024-01-10"), Notes: "team"}
	s.Seed(orig)

	amount := core.Money{Cents: 7500}
	got, err := s.UpdateExpense(context.Background(), "alice", "e1", core.Patch{Amount: &amount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Amount.Cents != 7500 {
		t.Fatalf("amount not updated: %+v", got)
	}
	if got.Title != "Lunch" || got.Category != "Food" || got.Notes != "team" {
		t.Fatalf("untouched fields changed: %+v", got)
	}
}

func TestUpdateUnknownIDFailsNotFound(t *testing.T) {
	s := New()
	_, err := s.UpdateExpense(context.Background(), "alice", "nope", core.Patch{})
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var werr *gateway.WriteError
	if !errors.As(err, &werr) || werr.Op != "update" {
		t.Fatalf("expected update WriteError, got %v", err)
	}
}

func TestMutationsScopedToOwner(t *testing.T) {
	s := New()
	s.Seed(core.Expense{ID: "e1", Owner: "alice", Title: "Lunch", Date: day("2024-01-10")})

	title := "hijacked"
	_, err := s.UpdateExpense(context.Background(), "mallory", "e1", core.Patch{Title: &title})
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("cross-owner update: expected ErrNotFound, got %v", err)
	}

	err = s.DeleteExpense(context.Background(), "mallory", "e1")
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("cross-owner delete: expected ErrNotFound, got %v", err)
	}
	if s.Len() != 1 {
		t.Fatal("record must survive another owner's delete")
	}

	got, err := s.UpdateExpense(context.Background(), "alice", "e1", core.Patch{})
	if err != nil {
		t.Fatalf("owner's own update: %v", err)
	}
	if got.Title != "Lunch" {
		t.Fatalf("record changed by rejected update: %+v", got)
	}
}

func TestDeleteTwiceSecondFails(t *testing.T) {
	s := New()
	s.Seed(core.Expense{ID: "e1", Owner: "alice", Date: day("2024-01-10")})

	if err := s.DeleteExpense(context.Background(), "alice", "e1"); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if s.Len() != 0 {
		t.Fatal("record still present after delete")
	}
	err := s.DeleteExpense(context.Background(), "alice", "e1")
	if !errors.Is(err, gateway.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestFailNextSurfacesQueryError(t *testing.T) {
	s := New()
	cause := errors.New("boom")
	s.FailNext = cause
	_, err := s.FetchExpenses(context.Background(), "alice", janWindow())
	var qerr *gateway.QueryError
	if !errors.As(err, &qerr) || !errors.Is(err, cause) {
		t.Fatalf("expected QueryError wrapping cause, got %v", err)
	}
}
