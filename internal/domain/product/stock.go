package product

import (
	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
)

// Mutation names one of the atomic stock updates. Each mutation has a guard that
// storage backends evaluate in the same step as the write (the WHERE clause of the
// UPDATE in Postgres, the critical section in memory).
type Mutation string

const (
	// MutationDecrementFloor subtracts from floor stock of tracked products. May go negative.
	MutationDecrementFloor Mutation = "decrement_floor"
	// MutationDecrementFloorIfSufficient subtracts only when floor stock covers the quantity.
	MutationDecrementFloorIfSufficient Mutation = "decrement_floor_if_sufficient"
	// MutationIncrementFloor adds to floor stock of tracked products.
	MutationIncrementFloor Mutation = "increment_floor"
	// MutationIncrementWarehouse adds to warehouse stock regardless of policy.
	MutationIncrementWarehouse Mutation = "increment_warehouse"
	// MutationTransferToFloor moves stock from warehouse to floor when the warehouse covers it.
	MutationTransferToFloor Mutation = "transfer_to_floor"
)

// Guard reports whether the mutation may be applied to p.
func (m Mutation) Guard(p *Product, qty int64) bool {
	switch m {
	case MutationDecrementFloor, MutationIncrementFloor:
		return p.IsTracked()
	case MutationDecrementFloorIfSufficient:
		return p.IsTracked() && p.FloorStock >= qty
	case MutationIncrementWarehouse:
		return true
	case MutationTransferToFloor:
		return p.IsTracked() && p.WarehouseStock >= qty
	}
	return false
}

// Apply performs the mutation on p in place when its guard holds.
func (m Mutation) Apply(p *Product, qty int64) bool {
	if !m.Guard(p, qty) {
		return false
	}
	switch m {
	case MutationDecrementFloor, MutationDecrementFloorIfSufficient:
		p.FloorStock -= qty
	case MutationIncrementFloor:
		p.FloorStock += qty
	case MutationIncrementWarehouse:
		p.WarehouseStock += qty
	case MutationTransferToFloor:
		p.WarehouseStock -= qty
		p.FloorStock += qty
	}
	return true
}

// ExplainMiss turns a guarded update that matched nothing into a result.
// current is the product as re-read after the miss, nil when it does not exist
// in the store. Untracked products are a successful no-op for floor mutations.
func (m Mutation) ExplainMiss(productID id.ID, current *Product, qty int64) (StockLevel, error) {
	if current == nil {
		return StockLevel{}, apperror.NewNotFound("product", productID.String())
	}

	switch m {
	case MutationDecrementFloor, MutationIncrementFloor:
		if !current.IsTracked() {
			return current.Level(), nil
		}
	case MutationDecrementFloorIfSufficient:
		if !current.IsTracked() {
			return current.Level(), nil
		}
		return StockLevel{}, apperror.NewInsufficientStock(productID.String(), qty, current.FloorStock)
	case MutationTransferToFloor:
		if !current.IsTracked() {
			return StockLevel{}, apperror.NewValidation("product does not track store-floor stock").
				WithDetail("product_id", productID.String())
		}
		return StockLevel{}, apperror.NewInsufficientStock(productID.String(), qty, current.WarehouseStock)
	}

	// The guard held on re-read: a concurrent writer changed the row between the
	// update and the read. Report the observed level; the caller's write did not apply.
	return StockLevel{}, apperror.NewConflict("stock changed concurrently, retry the operation").
		WithDetail("product_id", productID.String())
}
