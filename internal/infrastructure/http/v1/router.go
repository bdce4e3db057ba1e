// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"kasirku/internal/core/idempotency"
	"kasirku/internal/core/security"
	"kasirku/internal/domain/inventory"
	"kasirku/internal/domain/product"
	"kasirku/internal/domain/sales"
	"kasirku/internal/infrastructure/http/v1/handlers"
	"kasirku/internal/infrastructure/http/v1/middleware"
	"kasirku/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	Sales     *sales.Service
	Inventory *inventory.Service
	Products  *product.Service

	// Idempotency enables X-Idempotency-Key handling on mutating routes when set.
	Idempotency idempotency.Store

	// HealthChecks are pinged by /health/ready.
	HealthChecks map[string]handlers.Pinger

	Development bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Development {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.HealthChecks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Auth(cfg.JWTValidator))
	if cfg.Idempotency != nil {
		v1.Use(middleware.Idempotency(cfg.Idempotency))
	}

	base := handlers.NewBaseHandler()
	registerTransactionRoutes(v1, handlers.NewTransactionHandler(base, cfg.Sales))
	registerStockRoutes(v1, handlers.NewRestockHandler(base, cfg.Inventory))
	registerProductRoutes(v1, handlers.NewProductHandler(base, cfg.Products))

	return router
}

func registerTransactionRoutes(rg *gin.RouterGroup, h *handlers.TransactionHandler) {
	tx := rg.Group("/transactions")
	{
		tx.POST("", middleware.RequireCapability(security.CapSalesCreate), h.Create)
		tx.GET("", middleware.RequireCapability(security.CapSalesRead), h.List)
		tx.GET("/:id", middleware.RequireCapability(security.CapSalesRead), h.Get)
	}
}

func registerStockRoutes(rg *gin.RouterGroup, h *handlers.RestockHandler) {
	restock := rg.Group("/restock")
	{
		restock.POST("", middleware.RequireCapability(security.CapStockReceive), h.Receive)
		restock.GET("/:productId", middleware.RequireCapability(security.CapStockRead), h.History)
	}
	rg.POST("/products/:id/transfer", middleware.RequireCapability(security.CapStockTransfer), h.Transfer)
}

func registerProductRoutes(rg *gin.RouterGroup, h *handlers.ProductHandler) {
	products := rg.Group("/products")
	{
		products.POST("", middleware.RequireCapability(security.CapProductsManage), h.Create)
		products.GET("", middleware.RequireCapability(security.CapProductsRead), h.List)
		products.GET("/low-stock", middleware.RequireCapability(security.CapProductsRead), h.LowStock)
		products.GET("/:id", middleware.RequireCapability(security.CapProductsRead), h.Get)
	}
}
