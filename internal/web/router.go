package web

import (
	"net/http"

	"boba-kart/internal/config"
	"boba-kart/internal/handler"
	"boba-kart/internal/middleware"

	"github.com/rs/zerolog"
)

// NewRouter wires the web tier's routes. adminProxy serves /admin/api/ for
// elevated sessions.
func NewRouter(h *Handler, health *handler.HealthHandler, adminProxy http.Handler, cors config.CORSConfig, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", health.Check)

	// Account
	mux.HandleFunc("POST /account/login", h.Login)
	mux.HandleFunc("POST /account/logout", h.Logout)
	mux.HandleFunc("GET /account/me", h.Me)

	// Cart
	mux.HandleFunc("GET /cart", h.Cart)
	mux.HandleFunc("GET /cart/count", h.Count)
	mux.HandleFunc("POST /cart/items", h.AddItem)
	mux.HandleFunc("PATCH /cart/items", h.UpdateItem)
	mux.HandleFunc("DELETE /cart/items", h.RemoveItem)
	mux.HandleFunc("DELETE /cart", h.Clear)

	// Admin panel
	mux.Handle("/admin/api/{path...}", h.RequireElevated(adminProxy))

	return middleware.Chain(mux,
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.CORS(cors),
	)
}
