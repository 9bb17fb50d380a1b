package handler

import (
	"net/http"

	"boba-kart/internal/model"
	"boba-kart/internal/service"

	"github.com/rs/zerolog"
)

// ProductHandler handles drink-related HTTP requests.
type ProductHandler struct {
	service service.ProductService
	logger  zerolog.Logger
}

// NewProductHandler creates a new product handler.
func NewProductHandler(service service.ProductService, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseCatalogFilter(r)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	products, err := h.service.List(r.Context(), filter)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, products)
}

// GetByID handles GET /products/{id}.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product)
}

// Create handles POST /products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ProductRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	product, err := h.service.Create(r.Context(), &req)
	if err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	w.Header().Set("Location", "/products/"+product.ID)
	WriteJSON(w, http.StatusCreated, product)
}

// Update handles PUT /products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ProductRequest
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

// Delete handles DELETE /products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore handles POST /products/{id}/restore.
func (h *ProductHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Restore(r.Context(), r.PathValue("id")); err != nil {
		WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
