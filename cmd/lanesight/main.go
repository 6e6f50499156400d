package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lanesight/lanesight/internal/config"
	logpkg "github.com/lanesight/lanesight/internal/logger"
	"github.com/lanesight/lanesight/internal/metrics"
	"github.com/lanesight/lanesight/internal/transport/httpapi"
	companysearchuc "github.com/lanesight/lanesight/internal/usecase/companysearch"
	shipmentsuc "github.com/lanesight/lanesight/internal/usecase/shipments"
	"github.com/lanesight/lanesight/internal/version"
	"github.com/lanesight/lanesight/internal/warehouse"
	"github.com/lanesight/lanesight/internal/warehouse/duckdb"
	"github.com/lanesight/lanesight/internal/warehouse/rediscache"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lanesight API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("warehouse_path", cfg.Warehouse.Path),
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
	)

	// Register warehouse metrics explicitly (no init())
	metrics.RegisterWarehouseMetrics()

	store, err := duckdb.NewStore(duckdb.Config{
		Path:         cfg.Warehouse.Path,
		MemoryLimit:  cfg.Warehouse.MemoryLimit,
		Threads:      cfg.Warehouse.Threads,
		QueryTimeout: time.Duration(cfg.Warehouse.QueryTimeoutSec) * time.Second,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to open warehouse", zap.Error(err))
	}
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	if cfg.Warehouse.DatasetCSV != "" {
		n, err := store.LoadCSV(ctx, cfg.Warehouse.DatasetCSV)
		if err != nil {
			logger.Fatal("Failed to load dataset", zap.String("path", cfg.Warehouse.DatasetCSV), zap.Error(err))
		}
		logger.Info("Dataset loaded", zap.String("path", cfg.Warehouse.DatasetCSV), zap.Int64("rows", n))
	}

	// Wrap the warehouse in the result cache when configured.
	var runner warehouse.Runner = store
	if cfg.Cache.Enabled {
		cacheStore, err := rediscache.NewStore(rediscache.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to connect result cache", zap.Error(err))
		}
		defer cacheStore.Close()

		if err := cacheStore.Ping(ctx); err != nil {
			logger.Fatal("Result cache not ready", zap.Error(err))
		}
		runner = rediscache.New(store, cacheStore, time.Duration(cfg.Cache.TTLSec)*time.Second, logger)
		logger.Info("Result cache connected", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Create use case services
	searchSvc := companysearchuc.New(runner)
	shipmentsSvc := shipmentsuc.New(runner)

	server := httpapi.NewServer(searchSvc, shipmentsSvc, store, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
