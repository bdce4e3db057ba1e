package inventory

import (
	"context"
)

// MovementRepository is the append-only stock movement log.
// Rows are never updated or deleted.
type MovementRepository interface {
	Append(ctx context.Context, m *Movement) error
	ListByProduct(ctx context.Context, filter HistoryFilter) ([]*Movement, error)
}
