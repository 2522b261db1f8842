// Package main is the entry point for the haul slip API server.
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/haul-slips/internal/cache"
	"github.com/pkordes/haul-slips/internal/clock"
	"github.com/pkordes/haul-slips/internal/config"
	"github.com/pkordes/haul-slips/internal/export"
	"github.com/pkordes/haul-slips/internal/handler"
	"github.com/pkordes/haul-slips/internal/metrics"
	"github.com/pkordes/haul-slips/internal/middleware"
	"github.com/pkordes/haul-slips/internal/repo"
	"github.com/pkordes/haul-slips/internal/service"
	"github.com/pkordes/haul-slips/internal/upstream"
)

func main() {
	// --- Config -----------------------------------------------------------
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// --- Metrics ----------------------------------------------------------
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	// --- Database ---------------------------------------------------------
	store, err := repo.OpenStore(ctx, cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to open slip store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("slip store ready", "backend", store.Backend)

	// --- CSV mirror -------------------------------------------------------
	daily, err := export.NewDailyWriter(cfg.ExportDir, clock.Real{})
	if err != nil {
		slog.Error("failed to prepare export directory", "error", err)
		os.Exit(1)
	}

	// --- Lookup cache -----------------------------------------------------
	var lookupCache cache.Store = cache.NewMemory(clock.Real{})
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		lookupCache = rc
		slog.Info("lookup cache using redis", "addr", cfg.Redis.Addr)
	}

	kimai := upstream.New(upstream.Config{
		BaseURL:  cfg.Kimai.BaseURL,
		Token:    cfg.Kimai.Token,
		Username: cfg.Kimai.Username,
		Mode:     upstream.AuthMode(cfg.Kimai.AuthMode),
	})
	if err := kimai.CheckConfig(); err != nil {
		slog.Warn("client and project lookups disabled", "reason", err)
	}

	// --- Services ---------------------------------------------------------
	slips := service.NewSlipService(store.Slips, daily, logger, m)
	lookups := service.NewLookupService(kimai, lookupCache, cfg.Kimai.CacheTTL, logger, m)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Metrics →
	// Recoverer → CORS → body limit.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(middleware.NewMetricsHandler(m))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	handler.NewServer(slips, lookups, logger).Register(r)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	if info, err := os.Stat(cfg.StaticDir); err == nil && info.IsDir() {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
		slog.Info("serving static assets", "dir", cfg.StaticDir)
	}

	// --- HTTP Server ------------------------------------------------------
	// WriteTimeout must outlast the upstream lookup timeout.
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
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
