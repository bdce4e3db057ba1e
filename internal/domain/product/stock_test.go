package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
)

func newTestProduct(floor, warehouse int64, policy StockPolicy) *Product {
	p := New(id.New(), "kop-01", "Kopi", types.NewMoneyFromInt(15000), policy)
	p.FloorStock = floor
	p.WarehouseStock = warehouse
	return p
}

func TestMutation_Apply(t *testing.T) {
	tests := []struct {
		name          string
		mutation      Mutation
		policy        StockPolicy
		floor, wh     int64
		qty           int64
		applied       bool
		wantFloor     int64
		wantWarehouse int64
	}{
		{"decrement may go negative", MutationDecrementFloor, StockTracked, 2, 0, 5, true, -3, 0},
		{"decrement skips untracked", MutationDecrementFloor, StockUntracked, 0, 0, 5, false, 0, 0},
		{"conditional decrement covered", MutationDecrementFloorIfSufficient, StockTracked, 5, 0, 5, true, 0, 0},
		{"conditional decrement short", MutationDecrementFloorIfSufficient, StockTracked, 4, 0, 5, false, 4, 0},
		{"increment floor", MutationIncrementFloor, StockTracked, 1, 0, 2, true, 3, 0},
		{"increment floor skips untracked", MutationIncrementFloor, StockUntracked, 0, 0, 2, false, 0, 0},
		{"increment warehouse any policy", MutationIncrementWarehouse, StockUntracked, 0, 1, 2, true, 0, 3},
		{"transfer exact", MutationTransferToFloor, StockTracked, 5, 15, 15, true, 20, 0},
		{"transfer short", MutationTransferToFloor, StockTracked, 5, 14, 15, false, 5, 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProduct(tt.floor, tt.wh, tt.policy)
			assert.Equal(t, tt.applied, tt.mutation.Apply(p, tt.qty))
			assert.Equal(t, tt.wantFloor, p.FloorStock)
			assert.Equal(t, tt.wantWarehouse, p.WarehouseStock)
		})
	}
}

func TestMutation_TransferConservesTotal(t *testing.T) {
	p := newTestProduct(7, 30, StockTracked)
	before := p.FloorStock + p.WarehouseStock

	require.True(t, MutationTransferToFloor.Apply(p, 12))
	assert.Equal(t, before, p.FloorStock+p.WarehouseStock)
}

func TestMutation_ExplainMiss(t *testing.T) {
	productID := id.New()

	_, err := MutationTransferToFloor.ExplainMiss(productID, nil, 3)
	assert.True(t, apperror.IsNotFound(err))

	short := newTestProduct(0, 2, StockTracked)
	_, err = MutationTransferToFloor.ExplainMiss(productID, short, 5)
	require.True(t, apperror.IsInsufficientStock(err))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, int64(5), appErr.Details["requested"])
	assert.Equal(t, int64(2), appErr.Details["available"])
	assert.Equal(t, int64(3), appErr.Details["shortfall"])

	untracked := newTestProduct(0, 10, StockUntracked)
	_, err = MutationTransferToFloor.ExplainMiss(productID, untracked, 5)
	assert.True(t, apperror.IsValidation(err))

	level, err := MutationDecrementFloor.ExplainMiss(untracked.ID, untracked, 5)
	require.NoError(t, err)
	assert.Equal(t, StockUntracked, level.StockPolicy)

	_, err = MutationDecrementFloorIfSufficient.ExplainMiss(productID, newTestProduct(1, 0, StockTracked), 2)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestProduct_Validate(t *testing.T) {
	p := newTestProduct(0, 0, StockTracked)
	require.NoError(t, p.Validate())
	assert.Equal(t, "KOP-01", p.SKU)

	p.SellingPrice = types.NewMoneyFromInt(-1)
	assert.True(t, apperror.IsValidation(p.Validate()))

	p = newTestProduct(0, 0, StockPolicy("SOMETIMES"))
	assert.True(t, apperror.IsValidation(p.Validate()))
}

func TestProduct_NeedsReorder(t *testing.T) {
	p := newTestProduct(3, 50, StockTracked)
	p.ReorderThreshold = 3
	assert.True(t, p.NeedsReorder())

	p.FloorStock = 4
	assert.False(t, p.NeedsReorder())

	svc := newTestProduct(0, 0, StockUntracked)
	svc.ReorderThreshold = 10
	assert.False(t, svc.NeedsReorder())
}

func TestParseStockPolicy(t *testing.T) {
	p, err := ParseStockPolicy("")
	require.NoError(t, err)
	assert.Equal(t, StockTracked, p)

	p, err = ParseStockPolicy(" untracked ")
	require.NoError(t, err)
	assert.Equal(t, StockUntracked, p)

	_, err = ParseStockPolicy("maybe")
	assert.Error(t, err)
}
