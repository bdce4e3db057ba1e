// Package product holds the product catalog and the per-product stock record
// shared by the order and inventory ledgers.
package product

import (
	"fmt"
	"strings"
	"time"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
)

// StockPolicy controls whether ledger operations touch store-floor stock.
type StockPolicy string

const (
	// StockTracked products are decremented on sale and incremented on receipt.
	StockTracked StockPolicy = "TRACKED"
	// StockUntracked products (services, made-to-order items) have unlimited floor stock.
	StockUntracked StockPolicy = "UNTRACKED"
)

// IsValid reports whether p is a known policy.
func (p StockPolicy) IsValid() bool {
	return p == StockTracked || p == StockUntracked
}

// ParseStockPolicy normalizes a policy name. Empty defaults to TRACKED.
func ParseStockPolicy(s string) (StockPolicy, error) {
	if strings.TrimSpace(s) == "" {
		return StockTracked, nil
	}
	p := StockPolicy(strings.ToUpper(strings.TrimSpace(s)))
	if !p.IsValid() {
		return "", apperror.NewValidation(fmt.Sprintf("unknown stock policy %q", s))
	}
	return p, nil
}

// Product is a sellable item together with its stock record.
type Product struct {
	ID               id.ID       `db:"id" json:"id"`
	StoreID          id.ID       `db:"store_id" json:"storeId"`
	SKU              string      `db:"sku" json:"sku"`
	Name             string      `db:"name" json:"name"`
	Category         string      `db:"category" json:"category,omitempty"`
	SellingPrice     types.Money `db:"selling_price" json:"sellingPrice"`
	FloorStock       int64       `db:"floor_stock" json:"floorStock"`
	WarehouseStock   int64       `db:"warehouse_stock" json:"warehouseStock"`
	ReorderThreshold int64       `db:"reorder_threshold" json:"reorderThreshold"`
	StockPolicy      StockPolicy `db:"stock_policy" json:"stockPolicy"`
	CreatedAt        time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time   `db:"updated_at" json:"updatedAt"`
}

// New creates a product with zero stock. Initial stock is posted as a movement.
func New(storeID id.ID, sku, name string, price types.Money, policy StockPolicy) *Product {
	now := time.Now().UTC()
	return &Product{
		ID:           id.New(),
		StoreID:      storeID,
		SKU:          strings.ToUpper(strings.TrimSpace(sku)),
		Name:         strings.TrimSpace(name),
		SellingPrice: price,
		StockPolicy:  policy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks catalog fields. Stock counters are never validated here
// because they are only written by ledger operations.
func (p *Product) Validate() error {
	if id.IsNil(p.StoreID) {
		return apperror.NewValidation("store_id is required")
	}
	if p.SKU == "" {
		return apperror.NewValidation("sku is required")
	}
	if p.Name == "" {
		return apperror.NewValidation("name is required")
	}
	if p.SellingPrice.IsNegative() {
		return apperror.NewValidation("selling_price must not be negative")
	}
	if p.ReorderThreshold < 0 {
		return apperror.NewValidation("reorder_threshold must not be negative")
	}
	if !p.StockPolicy.IsValid() {
		return apperror.NewValidation("stock_policy must be TRACKED or UNTRACKED")
	}
	return nil
}

// IsTracked reports whether floor stock is counted.
func (p *Product) IsTracked() bool {
	return p.StockPolicy == StockTracked
}

// NeedsReorder reports whether a tracked product fell to its reorder threshold.
func (p *Product) NeedsReorder() bool {
	return p.IsTracked() && p.FloorStock <= p.ReorderThreshold
}

// Level returns the current stock counters.
func (p *Product) Level() StockLevel {
	return StockLevel{
		ProductID:      p.ID,
		FloorStock:     p.FloorStock,
		WarehouseStock: p.WarehouseStock,
		StockPolicy:    p.StockPolicy,
	}
}

// StockLevel is a read-only snapshot of the counters returned by stock mutations.
type StockLevel struct {
	ProductID      id.ID       `db:"id" json:"productId"`
	FloorStock     int64       `db:"floor_stock" json:"floorStock"`
	WarehouseStock int64       `db:"warehouse_stock" json:"warehouseStock"`
	StockPolicy    StockPolicy `db:"stock_policy" json:"stockPolicy"`
}

// IsTracked reports whether floor stock is counted.
func (l StockLevel) IsTracked() bool {
	return l.StockPolicy == StockTracked
}
