// Package authmodule exposes the authentication service over HTTP as a
// mountable chi router. Every route runs behind the authentication stage,
// so handlers can rely on an identity being present.
package authmodule

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/toolsite/server/pkg/clientip"
	"github.com/toolsite/server/svc/auth"
)

// Router mounts the session and credential endpoints:
//
//	GET  /session   current identity
//	POST /register  create an account and log it in
//	POST /login     exchange credentials for a session
//	POST /logout    destroy the current session
func Router(svc *auth.Service) chi.Router {
	h := &handlers{svc: svc}

	r := chi.NewRouter()
	r.Use(svc.Authenticate)
	r.Get("/session", h.session)
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	return r
}

type handlers struct {
	svc *auth.Service
}

// SessionResponse describes the caller's current identity.
type SessionResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Anonymous bool      `json:"anonymous"`
	ExpiresIn int64     `json:"expires_in_seconds"`
	IssuedAt  time.Time `json:"issued_at"`
}

// CredentialsRequest is the login payload. Login accepts a username or an
// email address.
type CredentialsRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// RegisterRequest is the account creation payload.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) session(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())
	writeJSON(w, http.StatusOK, sessionResponse(id))
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prev := auth.MustIdentityFromContext(r.Context())

	user, session, err := h.svc.Register(r.Context(),
		req.Username, req.Email, req.Password, clientip.FromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	// The request's previous (typically anonymous) session is superseded.
	_ = h.svc.Logout(r.Context(), prev.Session.ID)

	w.Header().Set(auth.SessionTokenHeader, session.ID.String())
	writeJSON(w, http.StatusCreated, sessionResponse(auth.Identity{User: user, Session: session}))
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	prev := auth.MustIdentityFromContext(r.Context())

	user, session, err := h.svc.Login(r.Context(), req.Login, req.Password, clientip.FromRequest(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	_ = h.svc.Logout(r.Context(), prev.Session.ID)

	w.Header().Set(auth.SessionTokenHeader, session.ID.String())
	writeJSON(w, http.StatusOK, sessionResponse(auth.Identity{User: user, Session: session}))
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	id := auth.MustIdentityFromContext(r.Context())
	if err := h.svc.Logout(r.Context(), id.Session.ID); err != nil {
		auth.WriteError(w, r, http.StatusInternalServerError, "could not destroy the session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func sessionResponse(id auth.Identity) SessionResponse {
	return SessionResponse{
		UserID:    id.User.ID.String(),
		Username:  id.User.Username,
		Anonymous: id.User.IsAnonymous(),
		ExpiresIn: int64(id.Session.Expiration / time.Second),
		IssuedAt:  id.Session.CreatedAt,
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		auth.WriteError(w, r, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

// writeServiceError maps service errors onto HTTP statuses. Anything not
// recognized is an internal failure.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		auth.WriteError(w, r, http.StatusForbidden, "invalid login or password")
	case errors.Is(err, auth.ErrUsernameTaken):
		auth.WriteError(w, r, http.StatusConflict, "username is already taken")
	case errors.Is(err, auth.ErrEmailTaken):
		auth.WriteError(w, r, http.StatusConflict, "email is already registered")
	case errors.Is(err, auth.ErrInvalidUsername):
		auth.WriteError(w, r, http.StatusUnprocessableEntity, "username must be non-empty without whitespace")
	case errors.Is(err, auth.ErrWeakPassword):
		auth.WriteError(w, r, http.StatusUnprocessableEntity, "password does not meet the minimum length")
	default:
		auth.WriteError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
