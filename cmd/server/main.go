// Package main is the entry point for the INFINITO admin API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"infinito/internal/domain/contribution"
	"infinito/internal/domain/impact"
	"infinito/internal/domain/product"
	v1 "infinito/internal/infrastructure/http/v1"
	"infinito/internal/infrastructure/export"
	"infinito/internal/infrastructure/storage/postgres"
	"infinito/internal/metadata"
	"infinito/pkg/logger"
	"infinito/pkg/numerator"
)

const version = "0.1.0"

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	appEnv := getEnv("APP_ENV", "development")
	logFormat := "json"
	if appEnv == "development" {
		logFormat = "console"
	}
	log, err := logger.New(logger.Config{
		Level:   getEnv("LOG_LEVEL", "info"),
		Format:  getEnv("LOG_FORMAT", logFormat),
		Service: "infinito",
		Version: version,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Infow("starting infinito server", "env", appEnv)

	// --- Storage ---
	poolCfg := postgres.DefaultPoolConfig(os.Getenv("DATABASE_URL"))
	if n := getEnvInt("DB_MAX_CONNS", 0); n > 0 {
		poolCfg.MaxConns = int32(n)
	}
	poolCfg.SlowQuery = getEnvDuration("DB_SLOW_QUERY", poolCfg.SlowQuery)
	store, err := openBackend(ctx, log, poolCfg)
	if err != nil {
		log.Fatalw("failed to open storage", "error", err)
	}
	defer store.close()

	// --- Numerator ---
	trackingPrefix := getEnv("TRACKING_PREFIX", contribution.DefaultTrackingPrefix)
	skuPrefix := getEnv("SKU_PREFIX", product.DefaultSKUPrefix)
	numeratorService := numerator.New(store.sequences)
	if err := syncSequences(ctx, store, numeratorService, trackingPrefix, skuPrefix); err != nil {
		log.Fatalw("failed to sync sequences", "error", err)
	}

	// --- Domain services ---
	calc := impact.NewCalculator()
	contributions := contribution.NewService(contribution.Config{
		Repo:           store.contributions,
		TxManager:      store.txManager,
		Numerator:      numeratorService,
		Calculator:     calc,
		TrackingPrefix: trackingPrefix,
	})
	products := product.NewService(product.Config{
		Repo:          store.products,
		TxManager:     store.txManager,
		Numerator:     numeratorService,
		Contributions: contributions,
		SKUPrefix:     skuPrefix,
	})

	exporter, err := export.NewExporter()
	if err != nil {
		log.Fatalw("failed to create exporter", "error", err)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:           log.WithComponent("http"),
		Database:         store.database,
		Version:          version,
		AllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS"),
		Contributions:    contributions,
		Products:         products,
		Calculator:       calc,
		Exporter:         exporter,
		MetadataRegistry: metadata.NewDefaultRegistry(),
		Debug:            appEnv == "development",
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  getEnvDuration("HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	log.Info("server stopped")
	_ = log.Sync()
}
