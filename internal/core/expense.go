package core

import (
	"strings"
	"time"
)

const (
	// CategoryAll is the filter sentinel meaning "no category restriction".
	// It is never stored on a record.
	CategoryAll = "All"

	// CategoryOther is the fallback bucket for records created without a
	// category.
	CategoryOther = "Other"

	// DefaultTitle fills in when a record is created without one.
	DefaultTitle = "Untitled"
)

// Categories is the closed set offered for classification. Stored records
// may still carry values outside it; those are preserved verbatim.
var Categories = []string{
	"Food",
	"Transport",
	"Housing",
	"Utilities",
	"Shopping",
	"Health",
	"Entertainment",
	"Travel",
	"Education",
	CategoryOther,
}

// KnownCategory reports whether c belongs to the closed set.
func KnownCategory(c string) bool {
	for _, k := range Categories {
		if k == c {
			return true
		}
	}
	return false
}

// Expense is a single expense record. Amounts may be negative (refunds)
// or zero; no layer rejects them.
type Expense struct {
	ID         string
	Owner      string
	Title      string
	Amount     Money
	Category   string
	Date       time.Time
	Notes      string
	ReceiptURL string
}

// Draft carries the caller-supplied fields of a record about to be
// created. Zero-valued fields take defaults in Materialize.
type Draft struct {
	Title      string
	Amount     Money
	Category   string
	Date       time.Time
	Notes      string
	ReceiptURL string
}

// Materialize turns the draft into a full record owned by owner, filling
// defaults: title "Untitled", category "Other", date now. The record has
// no ID yet; the gateway assigns one.
func (d Draft) Materialize(owner string, now time.Time) Expense {
	e := Expense{
		Owner:      owner,
		Title:      strings.TrimSpace(d.Title),
		Amount:     d.Amount,
		Category:   strings.TrimSpace(d.Category),
		Date:       d.Date,
		Notes:      d.Notes,
		ReceiptURL: d.ReceiptURL,
	}
	if e.Title == "" {
		e.Title = DefaultTitle
	}
	if e.Category == "" {
		e.Category = CategoryOther
	}
	if e.Date.IsZero() {
		e.Date = now
	}
	return e
}

// Patch is a partial update. Nil fields are left untouched; ID and Owner
// are never patchable.
type Patch struct {
	Title      *string
	Amount     *Money
	Category   *string
	Date       *time.Time
	Notes      *string
	ReceiptURL *string
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return p.Title == nil && p.Amount == nil && p.Category == nil &&
		p.Date == nil && p.Notes == nil && p.ReceiptURL == nil
}

// Apply returns a copy of e with the patched fields replaced.
func (p Patch) Apply(e Expense) Expense {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.Date != nil {
		e.Date = *p.Date
	}
	if p.Notes != nil {
		e.Notes = *p.Notes
	}
	if p.ReceiptURL != nil {
		e.ReceiptURL = *p.ReceiptURL
	}
	return e
}
