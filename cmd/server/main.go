/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the vehicle-financing service. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse configuration (flags + environment)
  2. Initialize SQLite store and points ledger
  3. Connect the Redis calculation cache (when configured)
  4. Create API handler and seed/load financing plans
  5. Start server with graceful shutdown

CONFIGURATION:
  -a / RUN_ADDRESS     host:port to listen on (default localhost:8080)
  -d / DATABASE_PATH   SQLite database path (":memory:" for ephemeral)
  -r / REDIS_ADDR      Redis address; empty keeps the in-process cache

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (5s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -d="./data/llevatelo.db"

  # Run with in-memory database and a shared cache
  ./server -d=":memory:" -r="localhost:6379"

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rubenbolivar/llevateloexpress.com/api"
	"github.com/rubenbolivar/llevateloexpress.com/config"
	"github.com/rubenbolivar/llevateloexpress.com/points"
	"github.com/rubenbolivar/llevateloexpress.com/store/sqlite"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		sugar.Fatalw("database initialization error", "error", err.Error())
	}
	defer store.Close()

	ledger := points.NewLedger(store, points.DefaultConfig())

	handler := api.NewHandler(store, ledger, logger)
	if cfg.RedisAddr != "" {
		cache := api.NewRedisCache(cfg.RedisAddr)
		defer cache.Close()
		handler.Cache = cache
		sugar.Infow("redis calculation cache enabled", "addr", cfg.RedisAddr)
	}

	if err := handler.LoadPlans(context.Background()); err != nil {
		sugar.Fatalw("failed to load financing plans", "error", err.Error())
	}

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         cfg.RunAddress,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		sugar.Infow("starting financing server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		sugar.Info("server stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
