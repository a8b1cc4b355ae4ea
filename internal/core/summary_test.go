package core

import (
	"math"
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := time.Parse(DayFormat, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Total.Cents != 0 || s.Count != 0 || s.Average != 0 {
		t.Fatalf("expected zero summary, got %+v", s)
	}
	if s.TopCategory != "" || len(s.ByCategory) != 0 || len(s.ByDate) != 0 {
		t.Fatalf("expected empty groupings, got %+v", s)
	}
}

func TestSummarizeScenario(t *testing.T) {
	expenses := []Expense{
		{Amount: Money{Cents: 5000}, Category: "Food", Date: day("2024-01-01")},
		{Amount: Money{Cents: 3000}, Category: "Food", Date: day("2024-01-02")},
		{Amount: Money{Cents: 2000}, Category: "Transport", Date: day("2024-01-02")},
	}
	s := Summarize(expenses)

	if s.Total.Cents != 10000 {
		t.Fatalf("total: expected 10000 cents, got %d", s.Total.Cents)
	}
	if s.Count != 3 {
		t.Fatalf("count: expected 3, got %d", s.Count)
	}
	if math.Abs(s.Average-33.33) > 0.01 {
		t.Fatalf("average: expected ~33.33, got %v", s.Average)
	}

	if len(s.ByCategory) != 2 {
		t.Fatalf("byCategory: expected 2 entries, got %v", s.ByCategory)
	}
	if s.ByCategory[0].Name != "Food" || s.ByCategory[0].Amount.Cents != 8000 {
		t.Fatalf("byCategory[0]: got %+v", s.ByCategory[0])
	}
	if s.ByCategory[1].Name != "Transport" || s.ByCategory[1].Amount.Cents != 2000 {
		t.Fatalf("byCategory[1]: got %+v", s.ByCategory[1])
	}
	if s.TopCategory != "Food" || s.TopCategoryTotal.Cents != 8000 {
		t.Fatalf("topCategory: got %q (%d)", s.TopCategory, s.TopCategoryTotal.Cents)
	}

	if len(s.ByDate) != 2 {
		t.Fatalf("byDate: expected 2 entries, got %v", s.ByDate)
	}
	if s.ByDate[0].Day != "2024-01-01" || s.ByDate[0].Amount.Cents != 5000 {
		t.Fatalf("byDate[0]: got %+v", s.ByDate[0])
	}
	if s.ByDate[1].Day != "2024-01-02" || s.ByDate[1].Amount.Cents != 5000 {
		t.Fatalf("byDate[1]: got %+v", s.ByDate[1])
	}
}

func TestSummarizeCategorySumsMatchTotal(t *testing.T) {
	expenses := []Expense{
		{Amount: Money{Cents: 199}, Category: "Food", Date: day("2024-03-01")},
		{Amount: Money{Cents: -250}, Category: "Refunds", Date: day("2024-03-02")},
		{Amount: Money{Cents: 0}, Category: "", Date: day("2024-03-03")},
		{Amount: Money{Cents: 731}, Category: "Food", Date: day("2024-03-03")},
	}
	s := Summarize(expenses)

	var sum int64
	for _, c := range s.ByCategory {
		sum += c.Amount.Cents
	}
	if sum != s.Total.Cents {
		t.Fatalf("sum(byCategory)=%d, total=%d", sum, s.Total.Cents)
	}
	var daySum int64
	for _, d := range s.ByDate {
		daySum += d.Amount.Cents
	}
	if daySum != s.Total.Cents {
		t.Fatalf("sum(byDate)=%d, total=%d", daySum, s.Total.Cents)
	}
}

func TestSummarizeEmptyCategoryGroupsAsOther(t *testing.T) {
	s := Summarize([]Expense{{Amount: Money{Cents: 100}, Date: day("2024-01-05")}})
	if len(s.ByCategory) != 1 || s.ByCategory[0].Name != CategoryOther {
		t.Fatalf("expected Other bucket, got %v", s.ByCategory)
	}
}

func TestSummarizeTopCategoryTieBreak(t *testing.T) {
	// Equal sums: the category seen first in collection order wins.
	s := Summarize([]Expense{
		{Amount: Money{Cents: 500}, Category: "Travel", Date: day("2024-01-01")},
		{Amount: Money{Cents: 500}, Category: "Food", Date: day("2024-01-02")},
	})
	if s.TopCategory != "Travel" {
		t.Fatalf("expected Travel, got %q", s.TopCategory)
	}
}

func TestSummarizeUnknownCategoryPreserved(t *testing.T) {
	s := Summarize([]Expense{
		{Amount: Money{Cents: 100}, Category: "Meals-2019", Date: day("2024-01-01")},
	})
	if s.ByCategory[0].Name != "Meals-2019" {
		t.Fatalf("unknown category not preserved: %v", s.ByCategory)
	}
}
