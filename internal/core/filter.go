package core

import "time"

// DefaultWindowDays is the trailing window the view starts with.
const DefaultWindowDays = 30

// DateWindow is an inclusive calendar range. Membership is decided on
// whole days: the window covers from the start of Start's day to the end
// of End's day, in UTC.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// NewDateWindow builds a window, swapping the bounds when they arrive
// reversed instead of failing.
func NewDateWindow(start, end time.Time) DateWindow {
	if start.After(end) {
		start, end = end, start
	}
	return DateWindow{Start: start, End: end}
}

// From returns the first instant inside the window.
func (w DateWindow) From() time.Time {
	return startOfDay(w.Start)
}

// To returns the last instant inside the window.
func (w DateWindow) To() time.Time {
	return endOfDay(w.End)
}

// Contains reports whether t falls inside the window, inclusive.
func (w DateWindow) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.From()) && !t.After(w.To())
}

// Filter is the active view predicate: a category restriction plus a date
// window. It is a pure value; replacing it is the caller's signal to
// refetch.
type Filter struct {
	Category string
	Window   DateWindow
}

// DefaultFilter returns the initial filter: unrestricted category over the
// trailing 30 days ending at now.
func DefaultFilter(now time.Time) Filter {
	return Filter{
		Category: CategoryAll,
		Window:   NewDateWindow(now.AddDate(0, 0, -DefaultWindowDays), now),
	}
}

// WithCategory returns a copy with the category restriction replaced.
func (f Filter) WithCategory(category string) Filter {
	if category == "" {
		category = CategoryAll
	}
	f.Category = category
	return f
}

// WithWindow returns a copy with the date window replaced.
func (f Filter) WithWindow(start, end time.Time) Filter {
	f.Window = NewDateWindow(start, end)
	return f
}

// Restricted reports whether the filter limits by category.
func (f Filter) Restricted() bool {
	return f.Category != "" && f.Category != CategoryAll
}

// Matches reports whether e satisfies the filter predicate.
func (f Filter) Matches(e Expense) bool {
	if f.Restricted() && e.Category != f.Category {
		return false
	}
	return f.Window.Contains(e.Date)
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func endOfDay(t time.Time) time.Time {
	return startOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}
