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

	"github.com/moorfield/propsearch/internal/config"
	"github.com/moorfield/propsearch/internal/db"
	dbRedis "github.com/moorfield/propsearch/internal/db/redis"
	logpkg "github.com/moorfield/propsearch/internal/logger"
	"github.com/moorfield/propsearch/internal/metrics"
	ingestrepo "github.com/moorfield/propsearch/internal/repository/ingest"
	searchrepo "github.com/moorfield/propsearch/internal/repository/search"
	chiTransport "github.com/moorfield/propsearch/internal/transport/chi"
	"github.com/moorfield/propsearch/internal/transport/postcodes"
	healthuc "github.com/moorfield/propsearch/internal/usecase/health"
	ingestuc "github.com/moorfield/propsearch/internal/usecase/ingest"
	searchuc "github.com/moorfield/propsearch/internal/usecase/search"
	"github.com/moorfield/propsearch/internal/version"
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

	logger.Info("Starting propsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	// One client per distinct backend config, created lazily under the registry.
	registry := db.NewRegistry(func(c db.ClientConfig) (db.Store, error) {
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    c.Addrs,
			Password: c.Password,
		})
	})
	defer registry.Close()

	store, err := registry.Get(db.ClientConfig{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register ingestion metrics explicitly (no init())
	metrics.RegisterIngestMetrics()

	geocoder, err := postcodes.NewClient(postcodes.Config{
		BaseURL: cfg.Geocoder.BaseURL,
		Timeout: time.Duration(cfg.Geocoder.TimeoutSec) * time.Second,
	})
	if err != nil {
		logger.Fatal("Failed to create geocoder client", zap.Error(err))
	}

	// Create repositories (domain-native, no adapters)
	searchRepo := searchrepo.New(store)
	ingRepo := ingestrepo.New(store)

	// Create use case services
	searchSvc := searchuc.New(searchRepo, store, geocoder)
	ingestSvc := ingestuc.New(ingRepo, geocoder, ingestuc.Config{
		MaxBatchSize:   cfg.Ingest.MaxBatchSize,
		GeocodeWorkers: cfg.Ingest.GeocodeWorkers,
	})
	healthSvc := healthuc.New(store)

	// Index present before the first upload or search.
	if cfg.Ingest.RecreateOnStart {
		if err := ingestSvc.RecreateIndex(ctx); err != nil {
			logger.Fatal("Failed to recreate index", zap.Error(err))
		}
	} else if err := ingestSvc.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure index", zap.Error(err))
	}

	// Create chi server
	server := chiTransport.NewServer(searchSvc, ingestSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Register(r)

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

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			)
		})
	}
}
