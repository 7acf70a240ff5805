// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"kardex/internal/domain/fishing"
	"kardex/internal/domain/ledger"
	"kardex/internal/domain/stock"
	"kardex/internal/infrastructure/http/v1/handlers"
	"kardex/internal/infrastructure/http/v1/middleware"
	"kardex/internal/infrastructure/storage/postgres"
	"kardex/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	LedgerEngine   *ledger.Engine
	StockService   *stock.Service
	TonnageService *fishing.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	ledgerHandler := handlers.NewLedgerHandler(base, cfg.LedgerEngine)
	stockHandler := handlers.NewStockHandler(base, cfg.StockService)
	tonnageHandler := handlers.NewTonnageHandler(base, cfg.TonnageService)

	api := router.Group("/api/v1")
	{
		api.POST("/movements/:id/ledger", ledgerHandler.Generate)

		stockGroup := api.Group("/stock")
		{
			stockGroup.GET("/balance", stockHandler.GetBalance)
			stockGroup.GET("/warehouse", stockHandler.GetWarehouseStock)
			stockGroup.GET("/detailed", stockHandler.GetDetailedStock)
			stockGroup.GET("/ledger", stockHandler.GetLedgerHistory)
		}

		api.POST("/catches/:id/recalculate", tonnageHandler.RecalculateFromCatch)
		api.POST("/trips/:id/recalculate", tonnageHandler.RecalculateTrip)
		api.POST("/seasons/:id/recalculate", tonnageHandler.RecalculateSeason)
	}

	return router
}
