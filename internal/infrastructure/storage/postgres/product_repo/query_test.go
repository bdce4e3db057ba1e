package product_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasirku/internal/core/id"
	"kasirku/internal/domain/product"
)

// squirrel.Eq binds driver.Valuer arguments by value, so ids appear as strings.
func TestStockRepo_UpdateQueries(t *testing.T) {
	repo := NewStockRepo(nil)
	storeID, productID := id.New(), id.New()

	tests := []struct {
		name     string
		mutation product.Mutation
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "decrement floor",
			mutation: product.MutationDecrementFloor,
			wantSQL: "UPDATE products SET updated_at = now(), floor_stock = floor_stock - $1 " +
				"WHERE id = $2 AND store_id = $3 AND stock_policy = $4 " +
				"RETURNING id, floor_stock, warehouse_stock, stock_policy",
			wantArgs: []any{int64(7), productID.String(), storeID.String(), product.StockTracked},
		},
		{
			name:     "decrement floor if sufficient",
			mutation: product.MutationDecrementFloorIfSufficient,
			wantSQL: "UPDATE products SET updated_at = now(), floor_stock = floor_stock - $1 " +
				"WHERE id = $2 AND store_id = $3 AND stock_policy = $4 AND floor_stock >= $5 " +
				"RETURNING id, floor_stock, warehouse_stock, stock_policy",
			wantArgs: []any{int64(7), productID.String(), storeID.String(), product.StockTracked, int64(7)},
		},
		{
			name:     "increment warehouse ignores policy",
			mutation: product.MutationIncrementWarehouse,
			wantSQL: "UPDATE products SET updated_at = now(), warehouse_stock = warehouse_stock + $1 " +
				"WHERE id = $2 AND store_id = $3 " +
				"RETURNING id, floor_stock, warehouse_stock, stock_policy",
			wantArgs: []any{int64(7), productID.String(), storeID.String()},
		},
		{
			name:     "transfer is one conditional statement",
			mutation: product.MutationTransferToFloor,
			wantSQL: "UPDATE products SET updated_at = now(), warehouse_stock = warehouse_stock - $1, floor_stock = floor_stock + $2 " +
				"WHERE id = $3 AND store_id = $4 AND stock_policy = $5 AND warehouse_stock >= $6 " +
				"RETURNING id, floor_stock, warehouse_stock, stock_policy",
			wantArgs: []any{int64(7), int64(7), productID.String(), storeID.String(), product.StockTracked, int64(7)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := repo.updateQuery(tt.mutation, storeID, productID, 7)
			require.NoError(t, err)

			sql, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestStockRepo_UnknownMutation(t *testing.T) {
	_, err := NewStockRepo(nil).updateQuery(product.Mutation("teleport"), id.New(), id.New(), 1)
	assert.Error(t, err)
}

func TestProductRepo_ListQuery(t *testing.T) {
	repo := NewProductRepo(nil)
	storeID := id.New()

	sql, args, err := repo.listQuery(product.ListFilter{
		StoreID:      storeID,
		Search:       "kopi",
		LowStockOnly: true,
		Limit:        20,
		Offset:       40,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, store_id, sku, name, category, selling_price, floor_stock, warehouse_stock, reorder_threshold, stock_policy, created_at, updated_at "+
			"FROM products WHERE store_id = $1 AND (name ILIKE $2 OR sku ILIKE $3) AND stock_policy = $4 AND floor_stock <= reorder_threshold "+
			"ORDER BY name, id LIMIT 20 OFFSET 40",
		sql)
	assert.Equal(t, []any{storeID.String(), "%kopi%", "%kopi%", product.StockTracked}, args)
}
