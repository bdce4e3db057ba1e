// Package inventory implements the inventory ledger: receiving stock into the
// store floor or warehouse and transferring it from the warehouse to the floor.
package inventory

import (
	"fmt"
	"strings"
	"time"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
)

// Direction of a stock movement.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Destination is the stock location a movement affects.
type Destination string

const (
	DestinationStoreFloor Destination = "STORE_FLOOR"
	DestinationWarehouse  Destination = "WAREHOUSE"
)

// ParseDestination normalizes a destination name. Empty defaults to STORE_FLOOR.
func ParseDestination(s string) (Destination, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	switch Destination(s) {
	case "":
		return DestinationStoreFloor, nil
	case DestinationStoreFloor, DestinationWarehouse:
		return Destination(s), nil
	}
	return "", apperror.NewValidation(fmt.Sprintf("unknown destination %q", s))
}

// Cause records what produced a movement.
type Cause string

const (
	CauseRestock Cause = "RESTOCK"
	CauseInitial Cause = "INITIAL"
	CauseSale    Cause = "SALE"
)

// Movement is an immutable row of the stock movement log.
type Movement struct {
	ID          id.ID       `db:"id" json:"id"`
	StoreID     id.ID       `db:"store_id" json:"storeId"`
	ProductID   id.ID       `db:"product_id" json:"productId"`
	UserID      *id.ID      `db:"user_id" json:"userId,omitempty"`
	Direction   Direction   `db:"direction" json:"direction"`
	Destination Destination `db:"destination" json:"destination"`
	Cause       Cause       `db:"cause" json:"cause"`
	Quantity    int64       `db:"quantity" json:"quantity"`
	UnitCost    types.Money `db:"unit_cost" json:"unitCost"`
	TotalCost   types.Money `db:"total_cost" json:"totalCost"`
	ReferenceID *id.ID      `db:"reference_id" json:"referenceId,omitempty"`
	CreatedAt   time.Time   `db:"created_at" json:"createdAt"`
}

// NewMovement builds a movement with TotalCost = Quantity * UnitCost.
func NewMovement(storeID, productID id.ID, dir Direction, dest Destination, cause Cause, qty int64, unitCost types.Money) *Movement {
	return &Movement{
		ID:          id.New(),
		StoreID:     storeID,
		ProductID:   productID,
		Direction:   dir,
		Destination: dest,
		Cause:       cause,
		Quantity:    qty,
		UnitCost:    unitCost,
		TotalCost:   types.Extend(unitCost, qty),
		CreatedAt:   time.Now().UTC(),
	}
}

// ReceiveStockInput is a goods receipt into one location.
type ReceiveStockInput struct {
	StoreID     id.ID
	ProductID   id.ID
	UserID      id.ID
	Quantity    int64
	UnitCost    types.Money
	Destination Destination
}

// Validate checks the receipt and applies the STORE_FLOOR default.
func (in *ReceiveStockInput) Validate() error {
	if id.IsNil(in.StoreID) {
		return apperror.NewValidation("store_id is required")
	}
	if id.IsNil(in.ProductID) {
		return apperror.NewValidation("product_id is required")
	}
	if in.Quantity <= 0 {
		return apperror.NewValidation("quantity must be positive").WithDetail("quantity", in.Quantity)
	}
	if in.UnitCost.IsNegative() {
		return apperror.NewValidation("unit_cost must not be negative")
	}
	if in.Destination == "" {
		in.Destination = DestinationStoreFloor
	}
	if in.Destination != DestinationStoreFloor && in.Destination != DestinationWarehouse {
		return apperror.NewValidation(fmt.Sprintf("unknown destination %q", in.Destination))
	}
	return nil
}

// HistoryFilter selects a page of one product's movements, newest first.
type HistoryFilter struct {
	StoreID   id.ID
	ProductID id.ID
	Limit     int
	Offset    int
}
