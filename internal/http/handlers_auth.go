package http

import (
	"errors"
	"net/http"
	"time"

	"expensedash/internal/auth"
	"expensedash/internal/log"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	redirect := s.siteBaseURL + "/auth/confirm"
	if err := s.authProvider.SignUp(r.Context(), req.Email, req.Password, redirect); err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusConflict, "email already registered")
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusBadRequest, "email and password are required")
		default:
			s.logger.ErrorContext(r.Context(), "Sign-up failed",
				log.FieldError, err, log.FieldEmail, req.Email)
			writeError(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	s.logger.InfoContext(r.Context(), "Account registered", log.FieldEmail, req.Email)
	writeJSON(w, http.StatusCreated, map[string]string{
		"message": "account created, check your email to confirm",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// The returned session is this request's own; reading the provider's
	// tracked session back would race with concurrent logins.
	session, err := s.authProvider.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnconfirmed):
			writeError(w, http.StatusForbidden, "account not confirmed")
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		default:
			s.logger.ErrorContext(r.Context(), "Sign-in failed",
				log.FieldError, err, log.FieldEmail, req.Email)
			writeError(w, http.StatusInternalServerError, "sign-in failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Token:     session.Token,
		UserID:    session.UserID,
		Email:     session.Email,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	owner := ownerFrom(r.Context())

	if err := s.authProvider.SignOut(r.Context()); err != nil {
		s.logger.ErrorContext(r.Context(), "Sign-out failed",
			log.FieldError, err, log.FieldOwner, owner)
		writeError(w, http.StatusInternalServerError, "sign-out failed")
		return
	}

	// Drop the owner's view store; the next sign-in starts from the
	// default trailing window.
	s.stores.Delete(owner)
	writeJSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}
