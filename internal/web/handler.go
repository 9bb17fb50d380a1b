// Package web serves the storefront's session, cart and admin proxy endpoints.
package web

import (
	"context"
	"net/http"

	"boba-kart/internal/cart"
	"boba-kart/internal/handler"
	"boba-kart/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Authenticator logs a customer in against the API.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
}

// LinePricer builds and reprices cart lines from the catalogue.
type LinePricer interface {
	Line(ctx context.Context, req cart.AddRequest) (cart.LineItem, error)
	Reprice(ctx context.Context, item cart.LineItem) (decimal.Decimal, error)
}

// Handler handles the web tier's account and cart requests.
type Handler struct {
	accounts     Authenticator
	pricer       LinePricer
	sessions     *cart.SessionStore
	cookieSecure bool
	logger       zerolog.Logger
}

// NewHandler creates a web handler.
func NewHandler(accounts Authenticator, pricer LinePricer, sessions *cart.SessionStore, cookieSecure bool, logger zerolog.Logger) *Handler {
	return &Handler{
		accounts:     accounts,
		pricer:       pricer,
		sessions:     sessions,
		cookieSecure: cookieSecure,
		logger:       logger.With().Str("handler", "web").Logger(),
	}
}

// Login handles POST /account/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := handler.DecodeJSON(w, r, &req); err != nil {
		handler.WriteError(w, r, err, h.logger)
		return
	}

	resp, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handler.WriteError(w, r, err, h.logger)
		return
	}

	// Sign-in always issues a new session id.
	profile := resp.User
	oldID, _ := h.currentSession(r)
	id := h.sessions.Rotate(oldID, func(s *cart.Session) {
		s.Profile = &profile
	})
	h.setCookie(w, id)

	h.logger.Info().Str("user_id", profile.ID).Msg("customer signed in")
	handler.WriteJSON(w, http.StatusOK, profile)
}

// Logout handles POST /account/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.currentSession(r); ok {
		h.sessions.Delete(id)
	}
	h.clearCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /account/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.profile(r)
	if !ok {
		handler.WriteError(w, r, model.ErrUnauthenticated, h.logger)
		return
	}
	handler.WriteJSON(w, http.StatusOK, profile)
}

// profile returns the signed-in profile of the caller's session.
func (h *Handler) profile(r *http.Request) (model.Profile, bool) {
	id, ok := h.currentSession(r)
	if !ok {
		return model.Profile{}, false
	}

	var profile *model.Profile
	h.sessions.Update(id, func(s *cart.Session) {
		if s.Profile != nil {
			p := *s.Profile
			profile = &p
		}
	})
	if profile == nil {
		return model.Profile{}, false
	}
	return *profile, true
}

// RequireElevated admits sessions signed in with the Owner or Admin role.
func (h *Handler) RequireElevated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		profile, ok := h.profile(r)
		if !ok {
			handler.WriteError(w, r, model.ErrUnauthenticated, h.logger)
			return
		}
		if !profile.HasAnyRole(model.ElevatedRoles...) {
			handler.WriteError(w, r, model.ErrForbidden, h.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}
