package passkey

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/eventcal/eventcal/internal/rest"
	log "github.com/sirupsen/logrus"
)

const SessionCookie = "eventcal_session"

type AttemptDTO struct {
	Passkey string `json:"passkey"`
}

type AttemptResultDTO struct {
	State   State      `json:"state"`
	Input   int        `json:"input"`
	ReadyAt *time.Time `json:"readyAt,omitempty"`
}

type SessionDTO struct {
	Enabled       bool `json:"enabled"`
	Authenticated bool `json:"authenticated"`
}

type Handler struct {
	service Service
	enabled bool
}

func NewHandler(service Service, enabled bool) *Handler {
	return &Handler{service: service, enabled: enabled}
}

// Attempt godoc
// @Summary Type passkey digits
// @Description The session cookie is set once the passkey is accepted.
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body AttemptDTO true "Digits"
// @Success 200 {object} AttemptResultDTO
// @Failure 400 {object} rest.ErrorResponse
// @Failure 401 {object} rest.ErrorResponse
// @Failure 429 {object} rest.ErrorResponse
// @Router /api/auth/passkey [post]
func (h *Handler) Attempt(w http.ResponseWriter, r *http.Request) {
	var dto AttemptDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	attempt, err := h.service.Attempt(r.Context(), clientKey(r), dto.Passkey)
	switch {
	case errors.Is(err, ErrMalformedPasskey):
		rest.WriteError(w, http.StatusBadRequest, "Invalid passkey format", err.Error())
		return
	case errors.Is(err, ErrInvalidPasskey):
		rest.WriteError(w, http.StatusUnauthorized, "Invalid passkey", "")
		return
	case errors.Is(err, ErrCoolingDown):
		rest.WriteError(w, http.StatusTooManyRequests, "Try again in a moment", err.Error())
		return
	case err != nil:
		log.Errorf("passkey attempt failed: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := AttemptResultDTO{State: attempt.State, Input: attempt.Input}
	if attempt.Token != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    attempt.Token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		result.ReadyAt = &attempt.ReadyAt
	}
	rest.WriteJSON(w, http.StatusOK, result)
}

// GetSession godoc
// @Summary Tell whether the request carries an authenticated session
// @Tags Auth
// @Produce json
// @Success 200 {object} SessionDTO
// @Router /api/auth/session [get]
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		rest.WriteJSON(w, http.StatusOK, SessionDTO{Enabled: false, Authenticated: true})
		return
	}
	authenticated, err := h.isAuthenticated(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	rest.WriteJSON(w, http.StatusOK, SessionDTO{Enabled: true, Authenticated: authenticated})
}

// Logout godoc
// @Summary End the session
// @Tags Auth
// @Success 204
// @Router /api/auth/session [delete]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

// Middleware rejects API requests without an authenticated session. Auth endpoints
// and non-API paths pass through.
func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.enabled || !strings.HasPrefix(r.URL.Path, "/api/") || strings.HasPrefix(r.URL.Path, "/api/auth/") {
			next.ServeHTTP(w, r)
			return
		}
		authenticated, err := h.isAuthenticated(r)
		if err != nil {
			log.Errorf("failed to check session: %v", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !authenticated {
			log.Tracef("rejecting unauthenticated request to %s", r.URL.Path)
			rest.WriteError(w, http.StatusUnauthorized, "Passkey required", "")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) isAuthenticated(r *http.Request) (bool, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		return false, nil
	}
	return h.service.IsAuthenticated(r.Context(), cookie.Value)
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
