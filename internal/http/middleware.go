package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"expensedash/internal/log"
)

type contextKey string

const (
	ownerKey contextKey = "owner"
	emailKey contextKey = "email"
)

// ownerFrom returns the authenticated owner placed by requireAuth.
func ownerFrom(ctx context.Context) string {
	owner, _ := ctx.Value(ownerKey).(string)
	return owner
}

func emailFrom(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

// requireAuth rejects requests without a valid bearer token and scopes
// the rest of the chain to the token's owner.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, email, err := s.tokens.Parse(token)
		if err != nil {
			s.logger.DebugContext(r.Context(), "Rejected bearer token", log.FieldError, err)
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), ownerKey, userID)
		ctx = context.WithValue(ctx, emailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.InfoContext(r.Context(), "Handled request",
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rec.status,
			log.FieldDuration, time.Since(start).Milliseconds())
	})
}
