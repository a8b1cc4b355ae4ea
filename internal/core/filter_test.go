package core

import (
	"testing"
	"time"
)

func TestNewDateWindowSwapsReversedBounds(t *testing.T) {
	start := day("2024-02-10")
	end := day("2024-02-01")
	w := NewDateWindow(start, end)
	if !w.Start.Equal(end) || !w.End.Equal(start) {
		t.Fatalf("expected swapped bounds, got %v..%v", w.Start, w.End)
	}
}

func TestDateWindowContainsInclusive(t *testing.T) {
	w := NewDateWindow(day("2024-01-10"), day("2024-01-20"))
	cases := []struct {
		t  time.Time
		in bool
	}{
		{day("2024-01-10"), true},
		{day("2024-01-20"), true},
		{day("2024-01-20").Add(23*time.Hour + 59*time.Minute), true}, // same day
		{day("2024-01-15"), true},
		{day("2024-01-09").Add(23 * time.Hour), false},
		{day("2024-01-21"), false},
	}
	for i, c := range cases {
		if got := w.Contains(c.t); got != c.in {
			t.Fatalf("case %d: Contains(%v)=%v, want %v", i, c.t, got, c.in)
		}
	}
}

func TestDefaultFilter(t *testing.T) {
	now := day("2024-06-15").Add(12 * time.Hour)
	f := DefaultFilter(now)
	if f.Category != CategoryAll {
		t.Fatalf("expected unrestricted category, got %q", f.Category)
	}
	if !f.Window.Start.Equal(now.AddDate(0, 0, -DefaultWindowDays)) || !f.Window.End.Equal(now) {
		t.Fatalf("unexpected default window %v..%v", f.Window.Start, f.Window.End)
	}
	if f.Restricted() {
		t.Fatal("default filter must not be restricted")
	}
}

func TestFilterMatches(t *testing.T) {
	f := Filter{Category: "Food", Window: NewDateWindow(day("2024-01-01"), day("2024-01-31"))}
	in := Expense{Category: "Food", Date: day("2024-01-15")}
	if !f.Matches(in) {
		t.Fatal("expected match")
	}
	if f.Matches(Expense{Category: "Travel", Date: day("2024-01-15")}) {
		t.Fatal("category mismatch should not match")
	}
	if f.Matches(Expense{Category: "Food", Date: day("2024-02-01")}) {
		t.Fatal("date outside window should not match")
	}

	all := f.WithCategory(CategoryAll)
	if !all.Matches(Expense{Category: "Travel", Date: day("2024-01-15")}) {
		t.Fatal("unrestricted filter should match any category")
	}
}

func TestFilterWithCategoryEmptyMeansAll(t *testing.T) {
	f := DefaultFilter(day("2024-06-15")).WithCategory("")
	if f.Category != CategoryAll {
		t.Fatalf("expected %q, got %q", CategoryAll, f.Category)
	}
}

func TestFilterWithWindowReplacesWholesale(t *testing.T) {
	f := DefaultFilter(day("2024-06-15"))
	g := f.WithWindow(day("2024-01-01"), day("2024-01-02"))
	if g.Window.Start.Equal(f.Window.Start) {
		t.Fatal("window was not replaced")
	}
	if f.Category != g.Category {
		t.Fatal("category must carry over")
	}
}
