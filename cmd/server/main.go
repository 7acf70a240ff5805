// Package main is the entry point for the kardex API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"kardex/internal/domain/fishing"
	"kardex/internal/domain/ledger"
	"kardex/internal/domain/stock"
	v1 "kardex/internal/infrastructure/http/v1"
	"kardex/internal/infrastructure/locking"
	"kardex/internal/infrastructure/storage/postgres"
	"kardex/internal/infrastructure/storage/postgres/fishing_repo"
	"kardex/internal/infrastructure/storage/postgres/ledger_repo"
	"kardex/internal/infrastructure/storage/postgres/movement_repo"
	"kardex/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting kardex server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Key locking ---
	// Without Redis the engine runs unlocked; fine for a single instance.
	var locker ledger.KeyLocker = ledger.NoopLocker{}
	if addr := getEnv("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalw("failed to ping redis", "error", err)
		}
		defer rdb.Close()

		locker = locking.NewRedisLocker(rdb, locking.DefaultOptions())
		log.Infow("redis key locking enabled", "addr", addr)
	}

	// --- Repositories ---
	documentRepo := movement_repo.NewDocumentRepo(txManager)
	conceptRepo := movement_repo.NewConceptRepo(txManager)
	entryRepo := ledger_repo.NewEntryRepo(txManager)
	snapshotRepo := ledger_repo.NewSnapshotRepo(txManager)
	tonnageRepo := fishing_repo.NewRepo(txManager)

	// --- Services ---
	ledgerEngine := ledger.NewEngine(ledger.EngineConfig{
		Documents: documentRepo,
		Concepts:  conceptRepo,
		Entries:   entryRepo,
		Snapshots: snapshotRepo,
		TxManager: txManager,
		Locker:    locker,
	})
	stockService := stock.NewService(snapshotRepo, entryRepo)
	tonnageService := fishing.NewService(tonnageRepo, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		LedgerEngine:   ledgerEngine,
		StockService:   stockService,
		TonnageService: tonnageService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
