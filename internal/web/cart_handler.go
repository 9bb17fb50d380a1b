package web

import (
	"net/http"
	"strings"

	"boba-kart/internal/cart"
	"boba-kart/internal/handler"
	"boba-kart/internal/model"
)

// UpdateItemRequest is the payload for PATCH /cart/items.
type UpdateItemRequest struct {
	Key      string `json:"key"`
	Quantity int    `json:"quantity"`
}

// CountResponse is the body of GET /cart/count.
type CountResponse struct {
	Count int `json:"count"`
}

// Cart handles GET /cart.
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	var summary cart.Summary
	h.withSession(w, r, func(s *cart.Session) {
		summary = s.Cart.Summarise()
	})
	handler.WriteJSON(w, http.StatusOK, summary)
}

// Count handles GET /cart/count.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	var count int
	h.withSession(w, r, func(s *cart.Session) {
		count = s.Cart.Count()
	})
	handler.WriteJSON(w, http.StatusOK, CountResponse{Count: count})
}

// AddItem handles POST /cart/items. The unit price comes from the catalogue.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req cart.AddRequest
	if err := handler.DecodeJSON(w, r, &req); err != nil {
		handler.WriteError(w, r, err, h.logger)
		return
	}

	item, err := h.pricer.Line(r.Context(), req)
	if err != nil {
		handler.WriteError(w, r, err, h.logger)
		return
	}

	var summary cart.Summary
	h.withSession(w, r, func(s *cart.Session) {
		s.Cart.Add(item)
		summary = s.Cart.Summarise()
	})
	handler.WriteJSON(w, http.StatusOK, summary)
}

// UpdateItem handles PATCH /cart/items and reprices the line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemRequest
	if err := handler.DecodeJSON(w, r, &req); err != nil {
		handler.WriteError(w, r, err, h.logger)
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		handler.WriteError(w, r, model.NewValidationError("cart item is invalid", map[string]string{
			"key": "key is required",
		}), h.logger)
		return
	}

	var (
		line  cart.LineItem
		found bool
	)
	h.withSession(w, r, func(s *cart.Session) {
		line, found = s.Cart.Find(req.Key)
	})
	if !found {
		handler.WriteError(w, r, model.ErrCartItemNotFound, h.logger)
		return
	}

	price, err := h.pricer.Reprice(r.Context(), line)
	if err != nil {
		handler.WriteError(w, r, err, h.logger)
		return
	}

	var summary cart.Summary
	h.withSession(w, r, func(s *cart.Session) {
		found = s.Cart.UpdateQuantity(req.Key, req.Quantity, price)
		summary = s.Cart.Summarise()
	})
	if !found {
		handler.WriteError(w, r, model.ErrCartItemNotFound, h.logger)
		return
	}
	handler.WriteJSON(w, http.StatusOK, summary)
}

// RemoveItem handles DELETE /cart/items?key=.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		handler.WriteError(w, r, model.NewValidationError("cart item is invalid", map[string]string{
			"key": "key is required",
		}), h.logger)
		return
	}

	var (
		summary cart.Summary
		removed bool
	)
	h.withSession(w, r, func(s *cart.Session) {
		removed = s.Cart.Remove(key)
		summary = s.Cart.Summarise()
	})
	if !removed {
		handler.WriteError(w, r, model.ErrCartItemNotFound, h.logger)
		return
	}
	handler.WriteJSON(w, http.StatusOK, summary)
}

// Clear handles DELETE /cart.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *cart.Session) {
		s.Cart.Clear()
	})
	w.WriteHeader(http.StatusNoContent)
}
