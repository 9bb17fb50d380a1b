package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boba-kart/internal/apiclient"
	"boba-kart/internal/cart"
	"boba-kart/internal/config"
	"boba-kart/internal/handler"
	"boba-kart/internal/tokencache"
	"boba-kart/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.LoadWeb()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger, "web")
	logger.Info().Str("api", cfg.Web.APIBaseURL).Msg("starting boba-kart web server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// API access: public client plus service-account token provider
	api := apiclient.New(cfg.Web.APIBaseURL, nil, cfg.Web.RequestTimeout, logger)
	tokens := apiclient.NewProvider(api, tokencache.NewMemory(),
		apiclient.Credentials{Email: cfg.Web.ServiceEmail, Password: cfg.Web.ServicePassword},
		cfg.Web.RefreshMargin, cfg.Web.MinCacheDuration, logger)

	adminProxy, err := web.NewAdminProxy(cfg.Web.APIBaseURL, tokens.Transport(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize admin proxy: %w", err)
	}

	// Sessions and carts
	sessions := cart.NewSessionStore(cfg.Web.SessionTTL)
	go sweepSessions(ctx, sessions, cfg.Web.SessionTTL)

	h := web.NewHandler(api, cart.NewAggregator(api, logger), sessions, cfg.Web.CookieSecure, logger)
	mux := web.NewRouter(h, handler.NewHealthHandler(nil, logger), adminProxy, cfg.CORS, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}

// sweepSessions drops expired sessions once per ttl until ctx ends.
func sweepSessions(ctx context.Context, sessions *cart.SessionStore, ttl time.Duration) {
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions.Sweep()
		}
	}
}
