package middleware

import (
	"net/http"

	"boba-kart/internal/config"

	"github.com/rs/cors"
)

// CORS applies the configured cross-origin policy and answers preflight requests.
func CORS(cfg config.CORSConfig) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader, "Location"},
		AllowCredentials: true,
		MaxAge:           600,
	})
	return c.Handler
}
