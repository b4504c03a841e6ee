// Package main is the entry point for the Trip Planner API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/tripplanner/backend/internal/cache"
	"github.com/tripplanner/backend/internal/config"
	"github.com/tripplanner/backend/internal/events"
	"github.com/tripplanner/backend/internal/handler"
	"github.com/tripplanner/backend/internal/middleware"
	"github.com/tripplanner/backend/internal/repo"
	"github.com/tripplanner/backend/internal/service"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default logger before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	logger := config.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	// --- Store ------------------------------------------------------------
	// A store that is unreachable at startup is logged and reported by
	// /health; the server still starts.
	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open trip store", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close(context.Background())

	dbConnected := connect(ctx, store, logger)

	// --- Cache ------------------------------------------------------------
	tripCache, closeCache, err := newCache(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to set up cache", "driver", cfg.CacheDriver, "error", err)
		os.Exit(1)
	}
	defer closeCache()

	// --- Events -----------------------------------------------------------
	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsQueue)
		if err != nil {
			// Events are best effort; the API works without them.
			logger.Warn("trip events disabled", "error", err)
		} else {
			defer p.Close()
			publisher = p
			logger.Info("publishing trip events", "queue", cfg.EventsQueue)
		}
	}

	trips := service.NewTripService(store.Trips,
		service.WithCache(tripCache, cfg.CacheTTL),
		service.WithPublisher(publisher),
		service.WithLogger(logger),
	)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer → CORS → body limit.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP (safe behind a proxy).
	// SlogLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.FrontendURLs))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	handler.NewServer(trips, dbConnected, logger).Routes(r)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         cfg.Addr(),
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
		logger.Info("server starting", "addr", srv.Addr, "store", cfg.StoreDriver, "cache", cfg.CacheDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (*repo.Store, error) {
	if cfg.StoreDriver == config.StorePostgres {
		return repo.OpenPostgres(ctx, cfg.DatabaseURL)
	}
	return repo.OpenMongo(ctx, cfg.MongoURI)
}

// connect pings the store and prepares its schema. It reports whether the
// store is usable; failures are logged, not fatal.
func connect(ctx context.Context, store *repo.Store, logger *slog.Logger) bool {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := store.Ping(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return false
	}
	if err := store.Prepare(ctx); err != nil {
		logger.Error("failed to prepare database schema", "error", err)
		return false
	}
	logger.Info("database connection established")
	return true
}

// newCache builds the configured cache and a func that releases it.
func newCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (cache.Cache, func(), error) {
	switch cfg.CacheDriver {
	case config.CacheMemory:
		c := cache.NewMemory(cfg.CacheSize)
		return c, c.Close, nil
	case config.CacheRedis:
		c, err := cache.NewRedis(cfg.RedisURL, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := c.Ping(ctx); err != nil {
			logger.Warn("redis unreachable at startup", "error", err)
		}
		return c, func() { _ = c.Close() }, nil
	case config.CacheMemcached:
		c := cache.NewMemcached(logger, cfg.MemcachedAddr...)
		if err := c.Ping(ctx); err != nil {
			logger.Warn("memcached unreachable at startup", "error", err)
		}
		return c, func() {}, nil
	default:
		return cache.Nop{}, func() {}, nil
	}
}
