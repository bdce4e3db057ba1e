package inventory_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/inventory"
)

func TestMovementRepo_HistoryQuery(t *testing.T) {
	repo := NewMovementRepo(nil)
	storeID, productID := id.New(), id.New()

	sql, args, err := repo.historyQuery(inventory.HistoryFilter{
		StoreID:   storeID,
		ProductID: productID,
		Limit:     20,
		Offset:    40,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, store_id, product_id, user_id, direction, destination, cause, quantity, unit_cost, total_cost, reference_id, created_at "+
			"FROM stock_movements WHERE product_id = $1 AND store_id = $2 "+
			"ORDER BY created_at DESC, id DESC LIMIT 20 OFFSET 40",
		sql)
	assert.Equal(t, []any{productID.String(), storeID.String()}, args)
}

func TestMovementRepo_AppendQuery(t *testing.T) {
	repo := NewMovementRepo(nil)
	m := inventory.NewMovement(id.New(), id.New(), inventory.DirectionIn, inventory.DestinationWarehouse,
		inventory.CauseRestock, 20, types.NewMoneyFromInt(1000))

	sql, args, err := repo.appendQuery(m).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO stock_movements (id,store_id,product_id,user_id,direction,destination,cause,quantity,unit_cost,total_cost,reference_id,created_at) "+
			"VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)",
		sql)
	require.Len(t, args, 12)
	assert.Equal(t, int64(20), args[7])
	assert.True(t, types.NewMoneyFromInt(20000).Equal(args[9].(types.Money)))
}
