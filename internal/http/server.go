// Package http serves the JSON API over the core: auth, the filtered
// expense view, aggregates and receipt uploads. It holds one view store
// per authenticated owner so a logical session keeps a live collection
// between requests.
package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"expensedash/internal/auth"
	"expensedash/internal/cache"
	"expensedash/internal/config"
	"expensedash/internal/events"
	"expensedash/internal/gateway"
	"expensedash/internal/log"
	"expensedash/internal/receipts"
	"expensedash/internal/viewstore"
)

// EventPublisher is the optional outbound hook fired after confirmed
// writes. A nil publisher disables it.
type EventPublisher interface {
	Publish(ctx context.Context, event *events.ExpenseEvent) error
}

type Server struct {
	authProvider auth.Provider
	tokens       auth.Tokens
	gw           gateway.Gateway
	uploader     *receipts.Coordinator
	publisher    EventPublisher
	siteBaseURL  string
	logger       *log.Logger

	// stores keeps the per-owner view stores; idle sessions age out.
	stores *cache.LRU[*viewstore.Store]

	router chi.Router
}

func NewServer(
	cfg *config.Config,
	authProvider auth.Provider,
	tokens auth.Tokens,
	gw gateway.Gateway,
	uploader *receipts.Coordinator,
	publisher EventPublisher,
	logger *log.Logger,
) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &Server{
		authProvider: authProvider,
		tokens:       tokens,
		gw:           gw,
		uploader:     uploader,
		publisher:    publisher,
		siteBaseURL:  cfg.SiteBaseURL,
		logger:       logger.WithComponent(log.ComponentHTTP),
		stores:       cache.NewLRU[*viewstore.Store](cfg.SessionCacheSize, cfg.SessionCacheTTL),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Post("/auth/logout", s.handleLogout)

			r.Get("/expenses", s.handleListExpenses)
			r.Post("/expenses", s.handleCreateExpense)
			r.Patch("/expenses/{id}", s.handleUpdateExpense)
			r.Delete("/expenses/{id}", s.handleDeleteExpense)

			r.Get("/summary", s.handleSummary)
			r.Get("/categories", s.handleCategories)

			r.Post("/receipts", s.handleUploadReceipt)
		})
	})

	s.router = r
}

// Handler returns the root handler for an http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Stores exposes the session registry for the cache janitor.
func (s *Server) Stores() *cache.LRU[*viewstore.Store] {
	return s.stores
}

// storeFor returns the view store bound to owner, building one on first
// use. The store keeps the default trailing-30-day filter until the
// owner applies another one.
func (s *Server) storeFor(owner string) *viewstore.Store {
	return s.stores.GetOrSet(owner, func() *viewstore.Store {
		return viewstore.New(s.gw, owner, s.logger)
	})
}

func (s *Server) publish(ctx context.Context, action, expenseID, owner string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.NewExpenseEvent(action, expenseID, owner)); err != nil {
		// The write already succeeded; a lost event never fails it.
		s.logger.ErrorContext(ctx, "Failed to publish expense event",
			log.FieldError, err,
			log.FieldOperation, action,
			log.FieldExpenseID, expenseID)
	}
}
