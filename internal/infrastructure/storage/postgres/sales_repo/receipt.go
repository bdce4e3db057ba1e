package sales_repo

import (
	"context"
	"fmt"
	"time"

	"kasirku/internal/core/id"
	"kasirku/internal/infrastructure/storage/postgres"
	"kasirku/pkg/numerator"
)

// ReceiptNumberer implements sales.ReceiptNumberer on top of the strict numerator.
// The sequence row is updated inside the sale transaction, so numbers are
// gap-free per store and year and concurrent sales queue on the row lock.
type ReceiptNumberer struct {
	numerator *numerator.Service
	cfg       numerator.Config
}

// NewReceiptNumberer creates a receipt numberer issuing numbers with prefix.
func NewReceiptNumberer(txManager *postgres.TxManager, prefix string) *ReceiptNumberer {
	return &ReceiptNumberer{
		numerator: numerator.NewWithQuerier(func(ctx context.Context) numerator.Querier {
			return txManager.GetQuerier(ctx)
		}),
		cfg: numerator.DefaultConfig(prefix),
	}
}

// NextReceiptNumber implements sales.ReceiptNumberer.
func (n *ReceiptNumberer) NextReceiptNumber(ctx context.Context, storeID id.ID, at time.Time) (string, error) {
	cfg := n.cfg
	cfg.Scope = storeID.String()
	number, err := n.numerator.GetNextNumber(ctx, cfg, at)
	if err != nil {
		return "", fmt.Errorf("receipt number: %w", err)
	}
	return number, nil
}
