// Package main is the entrypoint for the dataforge API server.
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
	"time"

	"github.com/arvindnk/dataforge/internal/api"
	"github.com/arvindnk/dataforge/internal/api/handler"
	mw "github.com/arvindnk/dataforge/internal/api/middleware"
	"github.com/arvindnk/dataforge/internal/auth"
	"github.com/arvindnk/dataforge/internal/cache"
	"github.com/arvindnk/dataforge/internal/config"
	"github.com/arvindnk/dataforge/internal/jobs"
	"github.com/arvindnk/dataforge/internal/store"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config — fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "env", cfg.Server.Env, "workers", cfg.Jobs.Workers)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Create store and services
	pgStore := store.NewPostgresStore(pool)

	hasher := auth.NewHasher()
	tokens := auth.NewTokenIssuer(cfg.Auth.SecretKey, cfg.Auth.TokenTTL)
	authSvc := auth.NewService(pgStore, hasher, tokens)

	// 6. Start the background worker pool. The pool deliberately does
	// not run on the signal context: a SIGTERM must not abandon queued
	// jobs mid-lifecycle, the deferred Stop drains them instead.
	workerPool := jobs.NewPool(cfg.Jobs.Workers)
	workerPool.Start(context.Background())
	defer workerPool.Stop()

	processor := jobs.NewProcessor(pgStore, redisCache, cfg.Jobs.ProcessingDelay, cfg.Jobs.TerminalCacheTTL)
	tracker := jobs.NewTracker(pgStore, redisCache, workerPool, processor)
	slog.Info("worker pool started", "workers", cfg.Jobs.Workers)

	// 7. Build router with dependencies
	deps := api.Dependencies{
		Auth:      mw.NewAuth(tokens),
		RateLimit: mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMin),

		RootHandler:      handler.NewRootHandler(),
		HealthHandler:    handler.NewHealthHandler(),
		ReadinessHandler: handler.NewReadinessHandler(pgStore, redisCache),

		RegisterHandler: handler.NewRegisterHandler(authSvc),
		LoginHandler:    handler.NewLoginHandler(authSvc),

		CreateDatasetHandler:       handler.NewCreateDatasetHandler(pgStore),
		ListDatasetsHandler:        handler.NewListDatasetsHandler(pgStore),
		GetDatasetHandler:          handler.NewGetDatasetHandler(pgStore),
		UpdateDatasetHandler:       handler.NewUpdateDatasetHandler(pgStore),
		DeleteDatasetHandler:       handler.NewDeleteDatasetHandler(pgStore),
		BatchUpdateDatasetsHandler: handler.NewBatchUpdateDatasetsHandler(pgStore),
		BatchDeleteDatasetsHandler: handler.NewBatchDeleteDatasetsHandler(pgStore),

		CreateJobHandler: handler.NewCreateJobHandler(tracker),
		GetJobHandler:    handler.NewGetJobHandler(tracker),
	}

	router := api.NewRouter(deps)

	// 8. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	// The deferred pool.Stop() drains queued jobs after the listener
	// closes, so in-flight work finishes before the process exits.
	slog.Info("server stopped gracefully")
	return nil
}
