// Package main is the entry point for the fanblog API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/pkordes/fanblog/internal/config"
	"github.com/pkordes/fanblog/internal/handler"
	"github.com/pkordes/fanblog/internal/middleware"
	"github.com/pkordes/fanblog/internal/naming"
	"github.com/pkordes/fanblog/internal/repo"
	"github.com/pkordes/fanblog/internal/service"
	"github.com/pkordes/fanblog/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	// log/slog is the stdlib structured logger introduced in Go 1.21.
	// JSON handler writes machine-readable output suitable for log aggregators.
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Migrations -------------------------------------------------------
	// Applied before the pool opens so the first query already sees the
	// current schema. Disable with MIGRATE_ON_START=false when migrations
	// run as a separate deploy step.
	if cfg.MigrateOnStart {
		if err := migrate(context.Background(), cfg.DatabaseURL, logger); err != nil {
			slog.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	// --- Database ---------------------------------------------------------
	// pgxpool manages a pool of Postgres connections.
	// New() does not open connections immediately; the first query does.
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// Verify the DB is reachable before accepting traffic.
	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("database connection established")

	// --- Services ---------------------------------------------------------
	// One Namer is shared by every service so titles and slugs are compared
	// with the same language rules everywhere. Reads go straight to the pool;
	// multi-row writes go through the transactor.
	namer := naming.New(naming.WithLanguage(cfg.TaxonomyLocale))
	taxonomyRepo := repo.NewTaxonomyRepo(pool)
	postRepo := repo.NewPostRepo(pool)

	taxonomies := service.NewTaxonomyService(taxonomyRepo, namer, logger)
	posts := service.NewPostService(postRepo, taxonomyRepo, taxonomies, repo.NewTransactor(pool), namer, logger)
	export := service.NewExportService(postRepo, taxonomyRepo)

	slog.Info("taxonomy naming configured", slog.String("locale", namer.Language().String()))

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	// CORS answers browser preflights before any handler runs.
	// The body limit caps request bodies at MAX_BODY_BYTES.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	// Register every endpoint directly on the root router so the middleware
	// chain above applies to all of them.
	handler.HandlerFromMux(handler.NewServer(taxonomies, posts, export, logger), r)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	// WriteTimeout leaves room for a full CSV export.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// migrate applies every pending migration. goose needs database/sql, so it
// gets its own short-lived connection rather than the pgx pool.
func migrate(ctx context.Context, dsn string, logger *slog.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer db.Close()

	versions, err := migrations.Up(ctx, db)
	if err != nil {
		return err
	}
	logger.Info("migrations applied", slog.Int("count", len(versions)), slog.Any("versions", versions))
	return nil
}
