package handler

import (
	"net/http"

	"github.com/rs/zerolog"
)

// ImageLister exposes the preset image references.
type ImageLister interface {
	Refs() []string
}

// ImageHandler serves the preset image catalogue.
type ImageHandler struct {
	images ImageLister
	logger zerolog.Logger
}

// NewImageHandler creates a new image handler.
func NewImageHandler(images ImageLister, logger zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		images: images,
		logger: logger.With().Str("handler", "image").Logger(),
	}
}

// ImageListResponse is the body of GET /images.
type ImageListResponse struct {
	Images []string `json:"images"`
}

// List handles GET /images.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, ImageListResponse{Images: h.images.Refs()})
}
