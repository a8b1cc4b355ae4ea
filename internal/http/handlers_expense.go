package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"expensedash/internal/core"
	"expensedash/internal/events"
	"expensedash/internal/log"
	"expensedash/internal/receipts"
)

type expenseListResponse struct {
	Expenses []expenseJSON `json:"expenses"`
	Category string        `json:"category"`
	From     string        `json:"from"`
	To       string        `json:"to"`

	// Stale marks a response served from the last good collection after
	// a failed fetch.
	Stale bool `json:"stale,omitempty"`
}

// handleListExpenses applies any filter parameters, reloads the view and
// returns the collection. A failed fetch keeps the previous collection
// and is reported as stale rather than as an error.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	store := s.storeFor(ownerFrom(r.Context()))

	filter, err := filterFromQuery(r, store.Filter())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	stale := false
	if err := store.SetFilter(r.Context(), filter); err != nil {
		stale = true
	}

	applied := store.Filter()
	writeJSON(w, http.StatusOK, expenseListResponse{
		Expenses: toExpenseListJSON(store.Expenses()),
		Category: applied.Category,
		From:     applied.Window.Start.UTC().Format(dayFormat),
		To:       applied.Window.End.UTC().Format(dayFormat),
		Stale:    stale,
	})
}

type expenseCreateRequest struct {
	Title    string   `json:"title"`
	Amount   *float64 `json:"amount"`
	Category string   `json:"category"`
	Date     string   `json:"date"`
	Notes    string   `json:"notes"`
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	store := s.storeFor(owner)

	var req expenseCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	draft := core.Draft{
		Title:    req.Title,
		Category: req.Category,
		Notes:    req.Notes,
	}
	if req.Amount != nil {
		draft.Amount = moneyFromFloat(*req.Amount)
	}
	if req.Date != "" {
		date, err := parseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		draft.Date = date
	}

	created, err := store.Create(r.Context(), draft)
	if err != nil {
		writeMutationError(w, err)
		return
	}

	s.publish(r.Context(), events.ActionCreated, created.ID, owner)
	s.logger.InfoContext(r.Context(), "Expense created",
		log.FieldOwner, owner,
		log.FieldExpenseID, created.ID,
		log.FieldAmountCents, created.Amount.Cents,
		log.FieldCategory, created.Category)
	writeJSON(w, http.StatusCreated, toExpenseJSON(created))
}

type expenseUpdateRequest struct {
	Title      *string  `json:"title"`
	Amount     *float64 `json:"amount"`
	Category   *string  `json:"category"`
	Date       *string  `json:"date"`
	Notes      *string  `json:"notes"`
	ReceiptURL *string  `json:"receipt_url"`
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	store := s.storeFor(owner)
	id := chi.URLParam(r, "id")

	var req expenseUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch := core.Patch{
		Title:      req.Title,
		Category:   req.Category,
		Notes:      req.Notes,
		ReceiptURL: req.ReceiptURL,
	}
	if req.Amount != nil {
		amount := moneyFromFloat(*req.Amount)
		patch.Amount = &amount
	}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		patch.Date = &date
	}
	if patch.IsZero() {
		writeError(w, http.StatusBadRequest, "empty patch")
		return
	}

	updated, err := store.Update(r.Context(), id, patch)
	if err != nil {
		writeMutationError(w, err)
		return
	}

	s.publish(r.Context(), events.ActionUpdated, id, owner)
	writeJSON(w, http.StatusOK, toExpenseJSON(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())
	store := s.storeFor(owner)
	id := chi.URLParam(r, "id")

	if err := store.Delete(r.Context(), id); err != nil {
		writeMutationError(w, err)
		return
	}

	s.publish(r.Context(), events.ActionDeleted, id, owner)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	store := s.storeFor(ownerFrom(r.Context()))
	writeJSON(w, http.StatusOK, toSummaryJSON(store.Summary()))
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": core.Categories})
}

// handleUploadReceipt stores a multipart receipt file and returns its
// public URL. Attaching the URL to an expense is a separate PATCH.
func (s *Server) handleUploadReceipt(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	url, err := s.uploader.Upload(r.Context(), owner, header.Filename, file)
	if err != nil {
		if errors.Is(err, receipts.ErrNoFile) {
			writeError(w, http.StatusBadRequest, "no file provided")
			return
		}
		s.logger.ErrorContext(r.Context(), "Receipt upload failed",
			log.FieldError, err, log.FieldOwner, owner)
		writeError(w, http.StatusBadGateway, "receipt storage rejected the upload")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}
