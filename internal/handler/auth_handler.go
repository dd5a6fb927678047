package handler

import (
	"net/http"
	"time"

	"proposal-client/internal/config"
	"proposal-client/internal/domain"
)

// AuthHandler handles login, logout and password reset
type AuthHandler struct {
	container *config.Container
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(container *config.Container) *AuthHandler {
	return &AuthHandler{
		container: container,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	EstablishedAt *time.Time `json:"established_at,omitempty"`
	Redirect      string     `json:"redirect,omitempty"`
}

// Login authenticates the user and establishes the local session
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sess, err := h.container.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeAppError(w, err)
		return
	}

	resp := sessionResponse{
		Authenticated: true,
		Username:      sess.Identity.Username,
		EstablishedAt: &sess.EstablishedAt,
		Redirect:      string(domain.ViewDashboard),
	}
	if nav, ok := h.container.Navigator.Last(); ok {
		resp.Redirect = string(nav.To)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Logout clears the session; calling it without one is fine
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.container.AuthService.Logout()
	writeJSON(w, http.StatusOK, sessionResponse{Redirect: string(domain.ViewLogin)})
}

// ResetPassword requests reset instructions for an e-mail address
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := h.container.AuthService.ResetPassword(r.Context(), req.Email); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "If the address is registered, reset instructions are on their way",
		"redirect": string(domain.ViewLogin),
	})
}

// Session reports whether a user is logged in
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.container.Sessions.Current()
	if !ok {
		writeJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: true,
		Username:      sess.Identity.Username,
		EstablishedAt: &sess.EstablishedAt,
	})
}
