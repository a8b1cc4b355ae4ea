package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"expensedash/internal/core"
	"expensedash/internal/gateway"
)

const dayFormat = "2006-01-02"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// parseDate accepts a calendar day or a full RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dayFormat, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}

// filterFromQuery overlays category/from/to query parameters on base.
// Absent parameters keep the base filter's values; a lone bound reuses
// the other end of the base window.
func filterFromQuery(r *http.Request, base core.Filter) (core.Filter, error) {
	q := r.URL.Query()
	f := base

	if q.Has("category") {
		f = f.WithCategory(q.Get("category"))
	}

	from, to := f.Window.Start, f.Window.End
	if s := q.Get("from"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return core.Filter{}, err
		}
		from = t
	}
	if s := q.Get("to"); s != "" {
		t, err := parseDate(s)
		if err != nil {
			return core.Filter{}, err
		}
		to = t
	}
	return f.WithWindow(from, to), nil
}

type expenseJSON struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	Date       string  `json:"date"`
	Notes      string  `json:"notes,omitempty"`
	ReceiptURL string  `json:"receipt_url,omitempty"`
}

func toExpenseJSON(e core.Expense) expenseJSON {
	return expenseJSON{
		ID:         e.ID,
		Title:      e.Title,
		Amount:     e.Amount.Float(),
		Category:   e.Category,
		Date:       e.Date.UTC().Format(time.RFC3339),
		Notes:      e.Notes,
		ReceiptURL: e.ReceiptURL,
	}
}

func toExpenseListJSON(es []core.Expense) []expenseJSON {
	out := make([]expenseJSON, 0, len(es))
	for _, e := range es {
		out = append(out, toExpenseJSON(e))
	}
	return out
}

type summaryJSON struct {
	Total            float64           `json:"total"`
	Count            int               `json:"count"`
	Average          float64           `json:"average"`
	ByCategory       []categoryAmount  `json:"by_category"`
	TopCategory      string            `json:"top_category,omitempty"`
	TopCategoryTotal float64           `json:"top_category_total"`
	ByDate           []dayAmount       `json:"by_date"`
}

type categoryAmount struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type dayAmount struct {
	Day   string  `json:"day"`
	Total float64 `json:"total"`
}

func toSummaryJSON(s core.Summary) summaryJSON {
	out := summaryJSON{
		Total:            s.Total.Float(),
		Count:            s.Count,
		Average:          s.Average,
		ByCategory:       make([]categoryAmount, 0, len(s.ByCategory)),
		TopCategory:      s.TopCategory,
		TopCategoryTotal: s.TopCategoryTotal.Float(),
		ByDate:           make([]dayAmount, 0, len(s.ByDate)),
	}
	for _, c := range s.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryAmount{Category: c.Name, Total: c.Amount.Float()})
	}
	for _, d := range s.ByDate {
		out.ByDate = append(out.ByDate, dayAmount{Day: d.Day, Total: d.Amount.Float()})
	}
	return out
}

// moneyFromFloat converts a JSON amount to cents, rounding half away
// from zero on the sub-cent remainder.
func moneyFromFloat(f float64) core.Money {
	cents := f * 100
	if cents >= 0 {
		return core.Money{Cents: int64(cents + 0.5)}
	}
	return core.Money{Cents: int64(cents - 0.5)}
}

// writeMutationError maps gateway failures to HTTP statuses.
func writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, gateway.ErrNotFound):
		writeError(w, http.StatusNotFound, "expense not found")
	default:
		writeError(w, http.StatusBadGateway, "expense store rejected the operation")
	}
}
