// Command server runs the URL shortening HTTP service.
//
// Startup flow:
//  1. Load configuration from the environment
//  2. Build the structured logger
//  3. Open the mapping store (and the Redis cache when enabled)
//  4. Mount routes and middleware
//  5. Serve until SIGINT/SIGTERM, then drain in-flight requests
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"shorturl/internal/app"
	"shorturl/internal/config"
	httpHandler "shorturl/internal/handler/http"
	"shorturl/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ========================================================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================================================
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// ========================================================================
	// STEP 2: INITIALIZE STRUCTURED LOGGER
	// ========================================================================
	appLogger := logger.New(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
	})
	appLogger.Info("Starting URL Shortener",
		"environment", cfg.App.Environment,
		"address", cfg.Server.Addr(),
		"storage", cfg.Storage.Driver,
	)

	// ========================================================================
	// STEP 3: OPEN STORE, CACHE AND SERVICE
	// ========================================================================
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize application", "error", err)
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			appLogger.Error("Failed to release resources", "error", err)
		}
	}()

	// ========================================================================
	// STEP 4: ROUTES AND MIDDLEWARE
	// ========================================================================
	handler := httpHandler.NewHandler(application.Service, appLogger, cfg.App.BaseURL)
	router := httpHandler.NewRouter(handler, appLogger, httpHandler.RouterConfig{
		RequestTimeout: cfg.Server.RequestTimeout,
		EnableMetrics:  cfg.App.EnableMetrics,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// ========================================================================
	// STEP 5: SERVE, THEN SHUT DOWN GRACEFULLY
	// ========================================================================
	serveErr := make(chan error, 1)
	go func() {
		appLogger.Info("Server starting", "address", server.Addr, "base_url", cfg.App.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			appLogger.Error("Server failed", "error", err)
			return err
		}
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...", "timeout", cfg.Server.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
		return err
	}

	appLogger.Info("Server exited gracefully")
	return nil
}
