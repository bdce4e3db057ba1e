package product

import (
	"context"

	"kasirku/internal/core/id"
)

// ListFilter narrows product listings. All fields except StoreID are optional.
type ListFilter struct {
	StoreID      id.ID
	Search       string // matches name or sku, case-insensitive
	LowStockOnly bool   // tracked products with floor stock <= reorder threshold
	Limit        int
	Offset       int
}

// Repository persists the product catalog. Stock counters are written only
// through StockRepository; Create stores them as given (zero for new products).
type Repository interface {
	Create(ctx context.Context, p *Product) error
	// GetByID returns apperror NotFound when the product is absent or belongs to another store.
	GetByID(ctx context.Context, storeID, productID id.ID) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
}

// StockRepository exposes the atomic stock mutations. There is no get/set of
// counters: every write is a single guarded update evaluated by the storage
// backend, so concurrent callers can never lose an update or over-withdraw.
//
// Floor mutations on UNTRACKED products succeed without changing anything.
type StockRepository interface {
	// DecrementFloor subtracts qty from floor stock unconditionally. Floor stock may go negative.
	DecrementFloor(ctx context.Context, storeID, productID id.ID, qty int64) (StockLevel, error)
	// DecrementFloorIfSufficient subtracts qty only when floor stock >= qty,
	// otherwise returns apperror InsufficientStock.
	DecrementFloorIfSufficient(ctx context.Context, storeID, productID id.ID, qty int64) (StockLevel, error)
	IncrementFloor(ctx context.Context, storeID, productID id.ID, qty int64) (StockLevel, error)
	IncrementWarehouse(ctx context.Context, storeID, productID id.ID, qty int64) (StockLevel, error)
	// TransferToFloor moves qty from warehouse to floor when warehouse stock >= qty.
	// Returns InsufficientStock when it does not, and a validation error for UNTRACKED products.
	TransferToFloor(ctx context.Context, storeID, productID id.ID, qty int64) (StockLevel, error)
}
