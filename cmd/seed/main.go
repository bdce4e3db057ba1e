// Package main seeds a store with a demo catalog and prints development tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"kasirku/internal/config"
	"kasirku/internal/core/id"
	"kasirku/internal/core/security"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/auth"
	"kasirku/internal/domain/inventory"
	"kasirku/internal/domain/product"
	"kasirku/internal/infrastructure/storage/postgres"
	"kasirku/pkg/logger"
)

type demoProduct struct {
	sku       string
	name      string
	category  string
	price     int64
	cost      int64
	floor     int64
	threshold int64
	policy    product.StockPolicy
}

var demoCatalog = []demoProduct{
	{"KOPI-SUSU", "Kopi Susu Gula Aren", "Minuman", 18000, 7000, 40, 10, product.StockTracked},
	{"TEH-MANIS", "Es Teh Manis", "Minuman", 6000, 1500, 60, 15, product.StockTracked},
	{"AIR-600", "Air Mineral 600ml", "Minuman", 4000, 2500, 48, 12, product.StockTracked},
	{"NASI-GRG", "Nasi Goreng Spesial", "Makanan", 25000, 11000, 0, 0, product.StockUntracked},
	{"MIE-AYAM", "Mie Ayam Bakso", "Makanan", 22000, 9000, 0, 0, product.StockUntracked},
	{"ROTI-BKR", "Roti Bakar Coklat", "Makanan", 15000, 6000, 20, 5, product.StockTracked},
	{"KRPK-SGK", "Keripik Singkong", "Snack", 8000, 4500, 30, 8, product.StockTracked},
}

var productCopyColumns = []string{
	"id", "store_id", "sku", "name", "category", "selling_price",
	"floor_stock", "warehouse_stock", "reorder_threshold", "stock_policy",
	"created_at", "updated_at",
}

var movementCopyColumns = []string{
	"id", "store_id", "product_id", "user_id", "direction", "destination", "cause",
	"quantity", "unit_cost", "total_cost", "reference_id", "created_at",
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalw("invalid configuration", "error", err)
	}
	if cfg.Storage != config.StoragePostgres {
		log.Fatal("seed writes to Postgres; set STORAGE=postgres and DATABASE_URL")
	}

	storeID := id.New()
	if raw := os.Getenv("SEED_STORE_ID"); raw != "" {
		storeID, err = id.Parse(raw)
		if err != nil {
			log.Fatalw("invalid SEED_STORE_ID", "error", err)
		}
	}
	ownerID := id.New()

	ctx := logger.WithLogger(context.Background(), log)

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	txManager := postgres.NewTxManager(pool)
	if err := seedCatalog(ctx, txManager, storeID, ownerID, log); err != nil {
		log.Fatalw("failed to seed catalog", "error", err)
	}
	postgres.LogPoolStats(ctx, pool.Pool)

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	ownerToken, expiresAt, err := jwtService.GenerateAccessToken(auth.Identity{
		UserID:       ownerID,
		StoreID:      storeID,
		Name:         "Pemilik Toko",
		Capabilities: security.OwnerCapabilities(),
		IsOwner:      true,
	})
	if err != nil {
		log.Fatalw("failed to issue owner token", "error", err)
	}
	cashierToken, _, err := jwtService.GenerateAccessToken(auth.Identity{
		UserID:       id.New(),
		StoreID:      storeID,
		Name:         "Kasir 1",
		Capabilities: security.CashierCapabilities(),
	})
	if err != nil {
		log.Fatalw("failed to issue cashier token", "error", err)
	}

	log.Infow("seeding completed successfully", "store_id", storeID, "tokens_expire_at", expiresAt)
	fmt.Printf("STORE_ID=%s\nOWNER_TOKEN=%s\nCASHIER_TOKEN=%s\n", storeID, ownerToken, cashierToken)
}

// seedCatalog copies the demo products and their opening movements in one transaction.
// A store that already has products is left untouched.
func seedCatalog(ctx context.Context, txManager *postgres.TxManager, storeID, ownerID id.ID, log *logger.Logger) error {
	var existing int
	err := txManager.ReadOnly(ctx, func(ctx context.Context) error {
		return txManager.GetQuerier(ctx).QueryRow(ctx,
			`SELECT count(*) FROM products WHERE store_id = $1`, storeID,
		).Scan(&existing)
	})
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if existing > 0 {
		log.Infow("store already has products, skipping catalog", "store_id", storeID, "count", existing)
		return nil
	}

	now := time.Now().UTC()
	productRows := make([][]any, 0, len(demoCatalog))
	movementRows := make([][]any, 0, len(demoCatalog))

	for _, d := range demoCatalog {
		p := product.New(storeID, d.sku, d.name, types.NewMoneyFromInt(d.price), d.policy)
		p.Category = d.category
		p.ReorderThreshold = d.threshold
		p.FloorStock = d.floor
		p.CreatedAt, p.UpdatedAt = now, now

		productRows = append(productRows, []any{
			p.ID, p.StoreID, p.SKU, p.Name, p.Category, p.SellingPrice,
			p.FloorStock, p.WarehouseStock, p.ReorderThreshold, string(p.StockPolicy),
			p.CreatedAt, p.UpdatedAt,
		})

		if d.floor == 0 {
			continue
		}
		m := inventory.NewMovement(storeID, p.ID, inventory.DirectionIn, inventory.DestinationStoreFloor,
			inventory.CauseInitial, d.floor, types.NewMoneyFromInt(d.cost))
		m.UserID = &ownerID
		m.CreatedAt = now
		movementRows = append(movementRows, []any{
			m.ID, m.StoreID, m.ProductID, *m.UserID, string(m.Direction), string(m.Destination), string(m.Cause),
			m.Quantity, m.UnitCost, m.TotalCost, nil, m.CreatedAt,
		})
	}

	inserter := postgres.NewBatchInserter(txManager)
	return txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		n, err := inserter.CopyFromSlice(ctx, "products", productCopyColumns, productRows)
		if err != nil {
			return err
		}
		m, err := inserter.CopyFromSlice(ctx, "stock_movements", movementCopyColumns, movementRows)
		if err != nil {
			return err
		}
		log.Infow("demo catalog loaded", "store_id", storeID, "products", n, "movements", m)
		return nil
	})
}
