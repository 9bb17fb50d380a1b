package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"boba-kart/internal/auth"
	"boba-kart/internal/config"
	"boba-kart/internal/database"
	"boba-kart/internal/handler"
	"boba-kart/internal/media"
	"boba-kart/internal/pricing"
	"boba-kart/internal/repository"
	"boba-kart/internal/router"
	"boba-kart/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger, "api")
	logger.Info().Msg("starting boba-kart API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, pool, logger); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	// Initialize repositories
	productRepo := repository.NewProductRepository(pool, logger)
	toppingRepo := repository.NewToppingRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	userRepo := repository.NewUserRepository(pool, logger)

	// Preset images: S3 when enabled, local directory otherwise
	dirLister := media.NewDirLister(cfg.S3.LocalDir, cfg.S3.Prefix, logger)
	var s3Lister media.Lister
	if cfg.S3.Enabled {
		s3Lister, err = media.NewS3Lister(ctx, cfg.S3.Bucket, cfg.S3.Region, cfg.S3.Prefix, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise S3 lister, falling back to local images only")
		}
	} else {
		logger.Info().Msg("using local directory for preset images (S3 disabled)")
	}
	images := media.NewCatalog(media.NewFallbackLister(s3Lister, dirLister, cfg.S3.Enabled, logger), logger)
	if err := images.Refresh(ctx); err != nil {
		logger.Warn().Err(err).Msg("preset images unavailable, image references will not be checked")
	}

	// Pricing and tokens
	prices := pricing.NewEngine(productRepo, toppingRepo, logger)
	rewards := pricing.Rewards{
		PointsPerUnit: cfg.Rewards.PointsPerUnit,
		BlockSize:     cfg.Rewards.BlockSize,
		BlockValue:    cfg.Rewards.BlockValue,
	}
	issuer := auth.NewIssuer(cfg.Auth)

	// Initialize services
	productService := service.NewProductService(productRepo, images, logger)
	toppingService := service.NewToppingService(toppingRepo, logger)
	orderService := service.NewOrderService(orderRepo, userRepo, prices, rewards, logger)
	authService := service.NewAuthService(userRepo, issuer, cfg.Auth.BcryptCost, logger)

	// Initialize HTTP handlers
	handlers := router.Handlers{
		Health:  handler.NewHealthHandler(pool, logger),
		Product: handler.NewProductHandler(productService, logger),
		Topping: handler.NewToppingHandler(toppingService, logger),
		Order:   handler.NewOrderHandler(orderService, logger),
		Auth:    handler.NewAuthHandler(authService, logger),
		Image:   handler.NewImageHandler(images, logger),
	}

	// Initialize router
	mux := router.New(handlers, issuer, cfg.CORS, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
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
