package router

import (
	"net/http"

	"boba-kart/internal/config"
	"boba-kart/internal/handler"
	"boba-kart/internal/middleware"
	"boba-kart/internal/model"

	"github.com/rs/zerolog"
)

// Handlers groups the API's HTTP handlers.
type Handlers struct {
	Health  *handler.HealthHandler
	Product *handler.ProductHandler
	Topping *handler.ToppingHandler
	Order   *handler.OrderHandler
	Auth    *handler.AuthHandler
	Image   *handler.ImageHandler
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, tokens middleware.TokenParser, cors config.CORSConfig, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	elevated := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireRole(model.ElevatedRoles...)(fn)
	}

	// Health check endpoint (no authentication required)
	mux.HandleFunc("GET /health", h.Health.Check)

	// Drinks
	mux.HandleFunc("GET /products", h.Product.List)
	mux.HandleFunc("GET /products/{id}", h.Product.GetByID)
	mux.Handle("POST /products", elevated(h.Product.Create))
	mux.Handle("PUT /products/{id}", elevated(h.Product.Update))
	mux.Handle("DELETE /products/{id}", elevated(h.Product.Delete))
	mux.Handle("POST /products/{id}/restore", elevated(h.Product.Restore))

	// Toppings
	mux.HandleFunc("GET /toppings", h.Topping.List)
	mux.HandleFunc("GET /toppings/{id}", h.Topping.GetByID)
	mux.Handle("POST /toppings", elevated(h.Topping.Create))
	mux.Handle("PUT /toppings/{id}", elevated(h.Topping.Update))
	mux.Handle("DELETE /toppings/{id}", elevated(h.Topping.Delete))
	mux.Handle("POST /toppings/{id}/restore", elevated(h.Topping.Restore))
	mux.Handle("DELETE /toppings/{id}/purge", elevated(h.Topping.Purge))

	// Orders
	mux.HandleFunc("GET /orders", h.Order.List)
	mux.HandleFunc("GET /orders/{id}", h.Order.GetByID)
	mux.HandleFunc("POST /orders", h.Order.Create)
	mux.Handle("PUT /orders/{id}", elevated(h.Order.Update))
	mux.HandleFunc("PATCH /orders/{id}/status", h.Order.UpdateStatus)
	mux.Handle("DELETE /orders/{id}", elevated(h.Order.Delete))

	// Accounts
	mux.HandleFunc("POST /auth/register", h.Auth.Register)
	mux.HandleFunc("POST /auth/login", h.Auth.Login)
	mux.Handle("GET /auth/me", middleware.RequireAuth(http.HandlerFunc(h.Auth.Me)))

	// Preset images
	mux.HandleFunc("GET /images", h.Image.List)

	// Apply middleware in order: Recovery -> RequestID -> Logging -> CORS -> Authenticate
	return middleware.Chain(mux,
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logging(logger),
		middleware.CORS(cors),
		middleware.Authenticate(tokens, logger),
	)
}
