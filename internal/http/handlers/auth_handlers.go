package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"chargedash/internal/clients"
	"chargedash/internal/session"
)

// ViewReset discards cached view state when the session ends.
type ViewReset interface {
	Reset()
}

// AuthHandlers exposes the operator session over HTTP.
type AuthHandlers struct {
	sessions *session.Store
	views    ViewReset
	logger   *zap.Logger
}

// NewAuthHandlers returns handler struct.
func NewAuthHandlers(sessions *session.Store, views ViewReset, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{sessions: sessions, views: views, logger: logger}
}

type sessionResponse struct {
	User      interface{} `json:"user"`
	ExpiresAt *time.Time  `json:"expires_at,omitempty"`
}

func (h *AuthHandlers) sessionPayload() sessionResponse {
	resp := sessionResponse{User: h.sessions.User()}
	if exp := h.sessions.ExpiresAt(); !exp.IsZero() {
		resp.ExpiresAt = &exp
	}
	return resp
}

// Login handles POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	if err := h.sessions.Login(r.Context(), req.Username, req.Password); err != nil {
		if errors.Is(err, clients.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "charging backend unavailable")
		return
	}

	writeJSON(w, http.StatusOK, h.sessionPayload())
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(r.Context())
	h.views.Reset()
	writeJSON(w, http.StatusNoContent, nil)
}

// Me handles GET /api/auth/me by refreshing the profile behind the token. A
// failed refresh has already logged the session out.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.FetchUser(r.Context()); err != nil {
		if errors.Is(err, clients.ErrUnauthorized) || errors.Is(err, session.ErrNotAuthenticated) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"error":    "session expired",
				"redirect": "/login",
			})
			return
		}
		h.logger.Error("profile refresh failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "charging backend unavailable")
		return
	}

	writeJSON(w, http.StatusOK, h.sessionPayload())
}
