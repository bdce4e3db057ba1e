// Package main is the entry point for the Kasirku API server.
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

	"github.com/redis/go-redis/v9"

	"kasirku/internal/config"
	"kasirku/internal/core/idempotency"
	"kasirku/internal/core/tx"
	"kasirku/internal/domain/audit"
	"kasirku/internal/domain/auth"
	"kasirku/internal/domain/inventory"
	"kasirku/internal/domain/product"
	"kasirku/internal/domain/sales"
	"kasirku/internal/infrastructure/cache"
	v1 "kasirku/internal/infrastructure/http/v1"
	"kasirku/internal/infrastructure/http/v1/handlers"
	"kasirku/internal/infrastructure/storage/memory"
	"kasirku/internal/infrastructure/storage/postgres"
	"kasirku/internal/infrastructure/storage/postgres/inventory_repo"
	"kasirku/internal/infrastructure/storage/postgres/product_repo"
	"kasirku/internal/infrastructure/storage/postgres/sales_repo"
	"kasirku/pkg/logger"
)

// storage is the set of repositories behind the three ledgers.
type storage struct {
	txManager   tx.Manager
	products    product.Repository
	stock       product.StockRepository
	movements   inventory.MovementRepository
	orders      sales.Repository
	numberer    sales.ReceiptNumberer
	audit       audit.Recorder
	idempotency idempotency.Store
	checks      map[string]handlers.Pinger
	// cleanup purges expired idempotency keys; nil when the backend expires them itself.
	cleanup func(ctx context.Context) (int64, error)
	close   func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	log.Infow("starting kasirku server", "storage", cfg.Storage, "sale_stock_mode", cfg.Sale.StockMode)

	var store *storage
	switch cfg.Storage {
	case config.StorageMemory:
		store = newMemoryStorage()
		log.Warn("using in-memory storage, data is lost on exit")
	default:
		store, err = newPostgresStorage(ctx, cfg)
		if err != nil {
			log.Fatalw("failed to initialize postgres storage", "error", err)
		}
		log.Info("database connection established")
	}
	defer store.close()

	// --- Receipt cache ---
	var orderCache sales.OrderCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		receiptCache := cache.NewReceiptCache(rdb, cfg.ReceiptCacheTTL)
		if err := receiptCache.Ping(ctx); err != nil {
			log.Warnw("redis unavailable, receipt cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			orderCache = receiptCache
			store.checks["redis"] = receiptCache
			log.Infow("receipt cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.ReceiptCacheTTL)
		}
	}

	// --- Services ---
	inventoryService := inventory.NewService(store.products, store.stock, store.movements, store.txManager, store.audit)
	productService := product.NewService(store.products, store.txManager, inventoryService, store.audit)
	salesService := sales.NewService(sales.Deps{
		Repo:      store.orders,
		Stock:     store.stock,
		Movements: store.movements,
		Numberer:  store.numberer,
		TxManager: store.txManager,
		Audit:     store.audit,
		Cache:     orderCache,
	}, cfg.Sale)

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))

	routerCfg := v1.RouterConfig{
		Logger:       log,
		JWTValidator: jwtService,
		Sales:        salesService,
		Inventory:    inventoryService,
		Products:     productService,
		HealthChecks: store.checks,
		Development:  cfg.IsDevelopment(),
	}
	if cfg.IdempotencyEnabled {
		routerCfg.Idempotency = store.idempotency
		if store.cleanup != nil {
			go runIdempotencyCleanup(ctx, log, store.cleanup)
		}
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func newPostgresStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	txManager := postgres.NewTxManager(pool)
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		pool.Close()
		return nil, err
	}

	idempotencyStore := postgres.NewIdempotencyStore(txManager, idempotency.DefaultTTL)

	return &storage{
		txManager:   txManager,
		products:    product_repo.NewProductRepo(txManager),
		stock:       product_repo.NewStockRepo(txManager),
		movements:   inventory_repo.NewMovementRepo(txManager),
		orders:      sales_repo.NewOrderRepo(txManager),
		numberer:    sales_repo.NewReceiptNumberer(txManager, "TRX"),
		audit:       auditService,
		idempotency: idempotencyStore,
		checks:      map[string]handlers.Pinger{"database": pool},
		cleanup:     idempotencyStore.CleanupExpired,
		close:       pool.Close,
	}, nil
}

func newMemoryStorage() *storage {
	s := memory.New()
	return &storage{
		txManager:   memory.NewTxManager(s),
		products:    memory.NewProductRepo(s),
		stock:       memory.NewStockRepo(s),
		movements:   memory.NewMovementRepo(s),
		orders:      memory.NewSalesRepo(s),
		numberer:    memory.NewReceiptNumberer(s, "TRX"),
		audit:       s,
		idempotency: memory.NewIdempotencyStore(idempotency.DefaultTTL),
		checks:      map[string]handlers.Pinger{"storage": s},
		close:       func() {},
	}
}

func runIdempotencyCleanup(ctx context.Context, log *logger.Logger, cleanup func(ctx context.Context) (int64, error)) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := cleanup(ctx)
			if err != nil {
				log.Warnw("idempotency cleanup failed", "error", err)
				continue
			}
			if n > 0 {
				log.Infow("expired idempotency keys removed", "count", n)
			}
		}
	}
}
