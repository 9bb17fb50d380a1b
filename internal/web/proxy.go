package web

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"boba-kart/internal/handler"
	"boba-kart/internal/middleware"
	"boba-kart/internal/model"

	"github.com/rs/zerolog"
)

// ErrCodeUpstream is returned when the API cannot be reached.
const ErrCodeUpstream = "UPSTREAM_UNAVAILABLE"

// NewAdminProxy forwards /admin/api/{path...} to the API root, replacing the
// browser's cookies with the service account's bearer token from transport.
func NewAdminProxy(apiBaseURL string, transport http.RoundTripper, logger zerolog.Logger) (http.Handler, error) {
	target, err := url.Parse(apiBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	logger = logger.With().Str("component", "admin-proxy").Logger()

	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.Out.URL.Path = strings.TrimRight(target.Path, "/") + "/" + pr.In.PathValue("path")
			pr.Out.URL.RawPath = ""
			pr.Out.Header.Del("Cookie")
			pr.Out.Header.Del("Authorization")
			if id := middleware.RequestIDFromContext(pr.In.Context()); id != "" {
				pr.Out.Header.Set(middleware.RequestIDHeader, id)
			}
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.Error().
				Err(err).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("admin proxy request failed")
			handler.WriteJSON(w, http.StatusBadGateway, model.ErrorResponse{
				Error:         "The API is unavailable",
				Code:          ErrCodeUpstream,
				CorrelationID: middleware.RequestIDFromContext(r.Context()),
			})
		},
	}, nil
}
