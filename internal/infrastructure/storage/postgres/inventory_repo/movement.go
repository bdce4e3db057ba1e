// Package inventory_repo provides the PostgreSQL stock movement log.
package inventory_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kasirku/internal/domain/inventory"
	"kasirku/internal/infrastructure/storage/postgres"
)

const movementsTable = "stock_movements"

var movementColumns = []string{
	"id", "store_id", "product_id", "user_id", "direction", "destination", "cause",
	"quantity", "unit_cost", "total_cost", "reference_id", "created_at",
}

// MovementRepo implements inventory.MovementRepository.
// The table has no UPDATE or DELETE path.
type MovementRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewMovementRepo creates a new movement repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Append implements inventory.MovementRepository.
func (r *MovementRepo) Append(ctx context.Context, m *inventory.Movement) error {
	sql, args, err := r.appendQuery(m).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("append movement: %w", err)
	}
	return nil
}

func (r *MovementRepo) appendQuery(m *inventory.Movement) squirrel.InsertBuilder {
	return r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(
			m.ID, m.StoreID, m.ProductID, m.UserID, m.Direction, m.Destination, m.Cause,
			m.Quantity, m.UnitCost, m.TotalCost, m.ReferenceID, m.CreatedAt,
		)
}

// ListByProduct implements inventory.MovementRepository.
func (r *MovementRepo) ListByProduct(ctx context.Context, filter inventory.HistoryFilter) ([]*inventory.Movement, error) {
	sql, args, err := r.historyQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	items := make([]*inventory.Movement, 0)
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return items, nil
}

func (r *MovementRepo) historyQuery(filter inventory.HistoryFilter) squirrel.SelectBuilder {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		Where(squirrel.Eq{"store_id": filter.StoreID, "product_id": filter.ProductID}).
		OrderBy("created_at DESC", "id DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}
	return q
}
