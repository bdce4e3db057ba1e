package product_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/domain/product"
	"kasirku/internal/infrastructure/storage/postgres"
)

const levelColumns = "RETURNING id, floor_stock, warehouse_stock, stock_policy"

// StockRepo implements product.StockRepository. Every mutation is one UPDATE whose
// WHERE clause carries the guard, so the check and the write are a single atomic
// step under the row lock. A zero-row update is explained by re-reading the row.
type StockRepo struct {
	txManager *postgres.TxManager
	products  *ProductRepo
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		products:  NewProductRepo(txManager),
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// DecrementFloor implements product.StockRepository.
func (r *StockRepo) DecrementFloor(ctx context.Context, storeID, productID id.ID, qty int64) (product.StockLevel, error) {
	return r.mutate(ctx, storeID, productID, qty, product.MutationDecrementFloor)
}

// DecrementFloorIfSufficient implements product.StockRepository.
func (r *StockRepo) DecrementFloorIfSufficient(ctx context.Context, storeID, productID id.ID, qty int64) (product.StockLevel, error) {
	return r.mutate(ctx, storeID, productID, qty, product.MutationDecrementFloorIfSufficient)
}

// IncrementFloor implements product.StockRepository.
func (r *StockRepo) IncrementFloor(ctx context.Context, storeID, productID id.ID, qty int64) (product.StockLevel, error) {
	return r.mutate(ctx, storeID, productID, qty, product.MutationIncrementFloor)
}

// IncrementWarehouse implements product.StockRepository.
func (r *StockRepo) IncrementWarehouse(ctx context.Context, storeID, productID id.ID, qty int64) (product.StockLevel, error) {
	return r.mutate(ctx, storeID, productID, qty, product.MutationIncrementWarehouse)
}

// TransferToFloor implements product.StockRepository.
func (r *StockRepo) TransferToFloor(ctx context.Context, storeID, productID id.ID, qty int64) (product.StockLevel, error) {
	return r.mutate(ctx, storeID, productID, qty, product.MutationTransferToFloor)
}

func (r *StockRepo) mutate(ctx context.Context, storeID, productID id.ID, qty int64, m product.Mutation) (product.StockLevel, error) {
	q, err := r.updateQuery(m, storeID, productID, qty)
	if err != nil {
		return product.StockLevel{}, err
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return product.StockLevel{}, fmt.Errorf("build update: %w", err)
	}

	var level product.StockLevel
	err = pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &level, sql, args...)
	if err == nil {
		return level, nil
	}
	if !pgxscan.NotFound(err) {
		return product.StockLevel{}, fmt.Errorf("%s: %w", m, err)
	}

	current, err := r.products.GetByID(ctx, storeID, productID)
	if err != nil {
		if !apperror.IsNotFound(err) {
			return product.StockLevel{}, err
		}
		current = nil
	}
	return m.ExplainMiss(productID, current, qty)
}

// updateQuery builds the guarded UPDATE for m. The guards mirror product.Mutation.Guard.
func (r *StockRepo) updateQuery(m product.Mutation, storeID, productID id.ID, qty int64) (squirrel.UpdateBuilder, error) {
	q := r.builder.Update(productsTable).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"store_id": storeID, "id": productID}).
		Suffix(levelColumns)

	tracked := squirrel.Eq{"stock_policy": product.StockTracked}

	switch m {
	case product.MutationDecrementFloor:
		return q.Set("floor_stock", squirrel.Expr("floor_stock - ?", qty)).Where(tracked), nil
	case product.MutationDecrementFloorIfSufficient:
		return q.Set("floor_stock", squirrel.Expr("floor_stock - ?", qty)).
			Where(tracked).
			Where(squirrel.GtOrEq{"floor_stock": qty}), nil
	case product.MutationIncrementFloor:
		return q.Set("floor_stock", squirrel.Expr("floor_stock + ?", qty)).Where(tracked), nil
	case product.MutationIncrementWarehouse:
		return q.Set("warehouse_stock", squirrel.Expr("warehouse_stock + ?", qty)), nil
	case product.MutationTransferToFloor:
		return q.Set("warehouse_stock", squirrel.Expr("warehouse_stock - ?", qty)).
			Set("floor_stock", squirrel.Expr("floor_stock + ?", qty)).
			Where(tracked).
			Where(squirrel.GtOrEq{"warehouse_stock": qty}), nil
	}
	return q, fmt.Errorf("unknown stock mutation %q", m)
}
