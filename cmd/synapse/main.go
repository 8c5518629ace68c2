package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/synapse-finance/synapse-go/internal/config"
	"github.com/synapse-finance/synapse-go/internal/handler"
	"github.com/synapse-finance/synapse-go/internal/infra/cache"
	"github.com/synapse-finance/synapse-go/internal/infra/firestore"
	"github.com/synapse-finance/synapse-go/internal/infra/memstore"
	"github.com/synapse-finance/synapse-go/internal/infra/observability"
	"github.com/synapse-finance/synapse-go/internal/infra/resilience"
	"github.com/synapse-finance/synapse-go/internal/infra/storage"
	"github.com/synapse-finance/synapse-go/internal/port"
	"github.com/synapse-finance/synapse-go/internal/service"
	"github.com/synapse-finance/synapse-go/internal/stream"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Bool("use_firestore", cfg.UseFirestore),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("gate_cache_ttl", cfg.GateCacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("jwt_access_ttl", cfg.JWTAccessTTL),
		zap.Duration("jwt_refresh_ttl", cfg.JWTRefreshTTL),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "synapse-api")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Generation gate cache ---
	gateCache := cache.New[string](cfg.GateCacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("firestore")

	// --- Stores ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var ledgerStore port.LedgerStore
	var authStore port.AuthStore
	var blobStore port.BlobStore

	if cfg.UseFirestore && cfg.FirestoreProjectID != "" {
		logger.Info("using Firestore as document store",
			zap.String("project_id", cfg.FirestoreProjectID),
			zap.String("database", cfg.FirestoreDatabase),
		)
		fsClient := firestore.NewClient(
			httpClient,
			cfg.FirestoreProjectID,
			cfg.FirestoreDatabase,
			cfg.GoogleAPIToken,
			cb,
			resilienceCfg,
			logger,
		)
		ledgerStore = fsClient
		authStore = fsClient
		blobStore = storage.NewClient(httpClient, cfg.StorageBucket, cfg.GoogleAPIToken, resilienceCfg, logger)
	} else {
		logger.Info("using in-memory document store (data is lost on restart)")
		mem := memstore.New()
		ledgerStore = mem
		authStore = mem
		blobStore = mem
	}

	// --- Event hub ---
	hub := stream.NewHub()

	// --- Services ---
	ledgerSvc := service.NewLedgerService(ledgerStore, blobStore, hub, gateCache, metrics, logger)
	authSvc := service.NewAuthService(authStore, cfg.JWTSecret, cfg.JWTAccessTTL, cfg.JWTRefreshTTL, logger)

	// --- Router ---
	router := handler.NewRouter(ledgerSvc, authSvc, hub, metrics, cfg.AllowedOrigins, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE connections stay open; per-handler deadlines instead
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
