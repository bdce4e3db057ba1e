package sales

import (
	"context"
	"time"

	"kasirku/internal/core/id"
)

// Repository persists orders. Orders and lines are insert-only.
type Repository interface {
	CreateOrder(ctx context.Context, o *Order) error
	InsertLine(ctx context.Context, line *OrderLine) error
	// GetByID returns the order with its lines, or apperror NotFound when it
	// is absent or belongs to another store.
	GetByID(ctx context.Context, storeID, orderID id.ID) (*Order, error)
	// List returns headers only, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Order, error)
}

// ReceiptNumberer issues human-readable receipt numbers. It runs inside the
// sale transaction, so a rolled-back sale does not consume a number.
type ReceiptNumberer interface {
	NextReceiptNumber(ctx context.Context, storeID id.ID, at time.Time) (string, error)
}

// OrderCache is a read-through cache of order details. Orders never change
// after commit, so entries only expire.
type OrderCache interface {
	Get(ctx context.Context, storeID, orderID id.ID) (*Order, bool)
	Set(ctx context.Context, o *Order)
}
