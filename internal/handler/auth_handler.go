package handler

import (
	"net/http"

	"boba-kart/internal/auth"
	"boba-kart/internal/model"
	"boba-kart/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles registration, login and profile requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	profile, err := h.service.Register(r.Context(), &req)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusCreated, profile)
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, resp)
}

// Me handles GET /auth/me.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		WriteError(w, r, model.ErrUnauthenticated, h.logger)
		return
	}

	profile, err := h.service.Me(r.Context(), claims.Subject)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, profile)
}
