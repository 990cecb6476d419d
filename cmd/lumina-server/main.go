package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/startsoft-dev/lumina-client/internal/api"
	"github.com/startsoft-dev/lumina-client/internal/api/admin"
	"github.com/startsoft-dev/lumina-client/internal/api/auth"
	"github.com/startsoft-dev/lumina-client/internal/api/operations"
	"github.com/startsoft-dev/lumina-client/internal/api/records"
	"github.com/startsoft-dev/lumina-client/internal/config"
	"github.com/startsoft-dev/lumina-client/internal/database"
	"github.com/startsoft-dev/lumina-client/internal/seed"
	"github.com/startsoft-dev/lumina-client/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	if err := seed.Seed(ctx, db); err != nil {
		return fmt.Errorf("seed data: %w", err)
	}

	s := store.New(db)

	mux := http.NewServeMux()

	// Session endpoints and the admin API sit outside tenant scope. The
	// literal route segments outrank the generic record wildcards.
	auth.RegisterRoutes(mux, s, cfg.AuthSecret)
	admin.RegisterRoutes(mux, s.DB)
	operations.RegisterRoutes(mux, s)
	records.RegisterRoutes(mux, s)

	// Catch-all: unknown routes get the standard error shape.
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		corrID := api.CorrelationID(r.Context())
		api.WriteError(w, http.StatusNotFound, api.NewNotFoundError(
			fmt.Sprintf("No route found for %s %s", r.Method, r.URL.Path),
			corrID,
		))
	})

	handler := api.Chain(mux,
		api.Recovery(),
		api.RequestID(),
		api.Auth(cfg.AuthSecret, cfg.AuthRequired),
		api.JSONContentType(),
		api.Logging(),
	)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("shutting down server")
		if err := srv.Shutdown(context.Background()); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting lumina server", "addr", cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}

	return nil
}
