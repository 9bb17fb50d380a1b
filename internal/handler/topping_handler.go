package handler

import (
	"context"
	"net/http"

	"boba-kart/internal/model"
	"boba-kart/internal/service"

	"github.com/rs/zerolog"
)

// ToppingHandler handles topping-related HTTP requests.
type ToppingHandler struct {
	service service.ToppingService
	logger  zerolog.Logger
}

// NewToppingHandler creates a new topping handler.
func NewToppingHandler(service service.ToppingService, logger zerolog.Logger) *ToppingHandler {
	return &ToppingHandler{
		service: service,
		logger:  logger.With().Str("handler", "topping").Logger(),
	}
}

func (h *ToppingHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCatalogFilter(r)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	toppings, err := h.service.List(r.Context(), filter)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, toppings)
}

func (h *ToppingHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	topping, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, topping)
}

func (h *ToppingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ToppingRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	topping, err := h.service.Create(r.Context(), &req)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/toppings/"+topping.ID)
	WriteJSON(w, http.StatusCreated, topping)
}

func (h *ToppingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ToppingRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.Update(r.Context(), r.PathValue("id"), &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ToppingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.service.Delete)
}

func (h *ToppingHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.service.Restore)
}

// Purge handles DELETE /toppings/{id}/purge.
func (h *ToppingHandler) Purge(w http.ResponseWriter, r *http.Request) {
	h.noContent(w, r, h.service.Purge)
}

func (h *ToppingHandler) noContent(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) error) {
	if err := op(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
