package core

import "sort"

// DayFormat is the normalization applied to record dates when bucketing
// the daily trend series.
const DayFormat = "2006-01-02"

// CategoryAmount is an amount aggregated under one category label.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// DayAmount is an amount aggregated under one UTC calendar day.
type DayAmount struct {
	Day    string
	Amount Money
}

// Summary is the full set of aggregates derived from the current view. It
// is a pure projection: recomputed from scratch on every collection
// change, never cached across changes.
type Summary struct {
	Total   Money
	Count   int
	Average float64

	// ByCategory sums per literal stored category, in the order each
	// category was first seen in the collection.
	ByCategory []CategoryAmount

	// TopCategory is the label with the greatest summed amount. On a tie
	// the category encountered first wins; that ordering is a property of
	// this implementation, not a guarantee.
	TopCategory      string
	TopCategoryTotal Money

	// ByDate is the daily trend series, ascending by day.
	ByDate []DayAmount
}

// Summarize computes the aggregates for a collection. It never mutates
// its input. An empty collection yields zero totals and a zero average.
func Summarize(expenses []Expense) Summary {
	s := Summary{Count: len(expenses)}

	byCategory := make(map[string]int64)
	var catOrder []string
	byDay := make(map[string]int64)

	for _, e := range expenses {
		s.Total = s.Total.Add(e.Amount)

		cat := e.Category
		if cat == "" {
			cat = CategoryOther
		}
		if _, seen := byCategory[cat]; !seen {
			catOrder = append(catOrder, cat)
		}
		byCategory[cat] += e.Amount.Cents

		day := e.Date.UTC().Format(DayFormat)
		byDay[day] += e.Amount.Cents
	}

	s.ByCategory = make([]CategoryAmount, 0, len(catOrder))
	for _, cat := range catOrder {
		total := Money{Cents: byCategory[cat]}
		s.ByCategory = append(s.ByCategory, CategoryAmount{Name: cat, Amount: total})
		if s.TopCategory == "" || total.Cents > s.TopCategoryTotal.Cents {
			s.TopCategory = cat
			s.TopCategoryTotal = total
		}
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)
	s.ByDate = make([]DayAmount, 0, len(days))
	for _, day := range days {
		s.ByDate = append(s.ByDate, DayAmount{Day: day, Amount: Money{Cents: byDay[day]}})
	}

	if s.Count > 0 {
		s.Average = s.Total.Float() / float64(s.Count)
	}
	return s
}
