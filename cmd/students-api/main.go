// main is the entry point of the Students API server.
//
// STARTUP SEQUENCE:
//  1. Load configuration (.env, then YAML file or environment)
//  2. Initialise the logger and make it the slog default
//  3. Open the configured student store (sqlite, postgres, mongo, memory)
//  4. Build the validator, auth gate, metrics and router
//  5. Start the HTTP server in a separate goroutine
//  6. Block until SIGINT / SIGTERM arrives
//  7. Gracefully shut down: finish in-flight requests, close the store
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-api
package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aanand-mishra/students-api/internal/auth"
	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/http/handlers/docs"
	"github.com/aanand-mishra/students-api/internal/http/router"
	"github.com/aanand-mishra/students-api/internal/logger"
	"github.com/aanand-mishra/students-api/internal/metrics"
	"github.com/aanand-mishra/students-api/internal/storage/backend"
	"github.com/aanand-mishra/students-api/internal/validation"
)

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Every package logs through the slog default, so this is the only
	// place that knows zap is doing the encoding.
	logr, zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()
	slog.SetDefault(logr)

	slog.Info("starting students-api",
		slog.String("env", cfg.Env),
		slog.String("version", cfg.Version),
		slog.String("storage", cfg.Storage.Driver),
	)

	if err := run(cfg); err != nil {
		slog.Error("students-api stopped with error", slog.String("error", err.Error()))
		_ = zl.Sync()
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func run(cfg *config.Config) error {
	// ── 3. Initialise Storage ─────────────────────────────────────────────
	// The rest of the program only sees the storage.Storage interface.
	connectCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := backend.Open(connectCtx, cfg)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	slog.Info("storage initialised", slog.String("driver", cfg.Storage.Driver))

	// ── 4. Wire the HTTP surface ──────────────────────────────────────────
	gate, err := auth.NewService(
		auth.StaticCredentials{Username: cfg.Auth.AdminUsername, Password: cfg.Auth.AdminPassword},
		cfg.Auth.JWTSecret,
		cfg.Auth.ExpiresIn,
	)
	if err != nil {
		return err
	}

	apiDocs, err := docs.New(cfg.Version)
	if err != nil {
		return err
	}

	handler := router.New(router.Deps{
		Config:    cfg,
		Storage:   store,
		Auth:      gate,
		Validator: validation.New(store.ValidID),
		Metrics:   metrics.New(),
		Docs:      apiDocs,
		StartedAt: time.Now(),
	})

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server started", slog.String("address", cfg.Addr))

		// http.ErrServerClosed is the normal result of Shutdown.
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	select {
	case <-done:
		slog.Info("shutdown signal received, stopping server...")
	case err, ok := <-serveErr:
		if ok {
			return err
		}
	}

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}
