/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the overtime API server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and environment configuration, validate it
  2. Configure structured logging
  3. Initialize SQLite store (runs migrations)
  4. Create credential service and event publisher
  5. Configure HTTP router
  6. Run server and session sweeper until a signal arrives

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DATABASE_PATH)
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the session sweeper
  4. Close broker and database connections

ENVIRONMENT:
  See config/config.go. JWT_SECRET and JWT_REFRESH_SECRET are required.
  Events are only published when AMQP_URL is set.

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Session sweeper
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MatheSouzaF/horas-extras/api"
	"github.com/MatheSouzaF/horas-extras/auth"
	"github.com/MatheSouzaF/horas-extras/config"
	"github.com/MatheSouzaF/horas-extras/events"
	"github.com/MatheSouzaF/horas-extras/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	// Flags
	port := flag.String("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	flag.Parse()
	cfg.Port = *port
	cfg.DatabasePath = *dbPath

	logger := cfg.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}

	// Initialize store
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("Database ready", "path", cfg.DatabasePath)

	authService := auth.NewService(store, store, cfg.AuthConfig())

	// Events are optional
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		publisher = p
		logger.Info("Publishing events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP_URL not set, events disabled")
	}
	defer publisher.Close()

	handler := api.NewHandler(store, authService, publisher)
	router := api.NewRouter(handler, cfg.CORSOrigins)
	sweeper := api.NewSessionSweeper(authService, cfg.SessionSweepInterval)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting", "addr", server.Addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return sweeper.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}
