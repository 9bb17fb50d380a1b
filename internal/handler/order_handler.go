package handler

import (
	"net/http"

	"boba-kart/internal/auth"
	"boba-kart/internal/model"
	"boba-kart/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// List handles GET /orders?email=&status=&from=&to=.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseOrderFilter(r)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	orders, err := h.service.List(r.Context(), filter)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, orders)
}

// GetByID handles GET /orders/{id}.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, order)
}

// Create handles POST /orders. Any total in the body is ignored.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.OrderRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
		req.RequestedBy = claims.Email
	}

	order, err := h.service.Create(r.Context(), &req)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	h.logger.Info().
		Str("order_id", order.ID).
		Msg("order created")

	w.Header().Set("Location", "/orders/"+order.ID)
	WriteJSON(w, http.StatusCreated, order)
}

// Update handles PUT /orders/{id}.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.OrderUpdateRequest
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

// UpdateStatus handles PATCH /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !model.IsValidID(id) {
		WriteError(w, r, model.ErrInvalidID, h.logger)
		return
	}

	var req model.StatusUpdateRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.UpdateStatus(r.Context(), id, req.Status); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /orders/{id}.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
