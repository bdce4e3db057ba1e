package product_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/inventory"
	"kasirku/internal/domain/product"
	"kasirku/internal/infrastructure/storage/memory"
)

func newService(s *memory.Store) (*product.Service, *inventory.Service) {
	products := memory.NewProductRepo(s)
	txm := memory.NewTxManager(s)
	inv := inventory.NewService(products, memory.NewStockRepo(s), memory.NewMovementRepo(s), txm, s)
	return product.NewService(products, txm, inv, s), inv
}

func TestCreate_PostsInitialStockAsMovement(t *testing.T) {
	s := memory.New()
	svc, inv := newService(s)
	storeID := id.New()
	ctx := context.Background()

	p, err := svc.Create(ctx, product.CreateInput{
		StoreID:          storeID,
		SKU:              "es-teh",
		Name:             "Es Teh",
		SellingPrice:     types.NewMoneyFromInt(5000),
		ReorderThreshold: 5,
		InitialQuantity:  24,
		UnitCost:         types.NewMoneyFromInt(1500),
	})
	require.NoError(t, err)
	assert.Equal(t, "ES-TEH", p.SKU)
	assert.Equal(t, product.StockTracked, p.StockPolicy)
	assert.Equal(t, int64(24), p.FloorStock)

	history, err := inv.History(ctx, inventory.HistoryFilter{StoreID: storeID, ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, inventory.CauseInitial, history[0].Cause)
	assert.True(t, history[0].TotalCost.Equal(types.NewMoneyFromInt(36000)))
}

func TestCreate_InitialStockFailureRollsBackProduct(t *testing.T) {
	s := memory.New()
	svc, _ := newService(s)
	storeID := id.New()
	s.InjectFault(memory.OpAppendMovement, 0, errors.New("disk full"))

	_, err := svc.Create(context.Background(), product.CreateInput{
		StoreID:         storeID,
		SKU:             "kopi",
		Name:            "Kopi",
		SellingPrice:    types.NewMoneyFromInt(8000),
		InitialQuantity: 3,
	})
	require.Error(t, err)

	items, err := svc.List(context.Background(), product.ListFilter{StoreID: storeID})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreate_DuplicateSKU(t *testing.T) {
	s := memory.New()
	svc, _ := newService(s)
	in := product.CreateInput{StoreID: id.New(), SKU: "roti", Name: "Roti", SellingPrice: types.NewMoneyFromInt(3000)}

	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), in)
	assert.True(t, apperror.HasCode(err, apperror.CodeConflict))
}

func TestCreate_Validation(t *testing.T) {
	s := memory.New()
	svc, _ := newService(s)

	_, err := svc.Create(context.Background(), product.CreateInput{StoreID: id.New(), SKU: "", Name: "x"})
	assert.True(t, apperror.IsValidation(err))

	_, err = svc.Create(context.Background(), product.CreateInput{StoreID: id.New(), SKU: "x", Name: "x", InitialQuantity: -1})
	assert.True(t, apperror.IsValidation(err))
}

func TestListAndLowStock(t *testing.T) {
	s := memory.New()
	svc, _ := newService(s)
	storeID := id.New()
	ctx := context.Background()

	create := func(sku, name string, qty, threshold int64, policy product.StockPolicy) {
		_, err := svc.Create(ctx, product.CreateInput{
			StoreID:          storeID,
			SKU:              sku,
			Name:             name,
			SellingPrice:     types.NewMoneyFromInt(1000),
			ReorderThreshold: threshold,
			StockPolicy:      policy,
			InitialQuantity:  qty,
		})
		require.NoError(t, err)
	}
	create("gula", "Gula Pasir", 2, 5, product.StockTracked)
	create("beras", "Beras", 40, 5, product.StockTracked)
	create("jasa", "Jasa Antar", 0, 5, product.StockUntracked)

	all, err := svc.List(ctx, product.ListFilter{StoreID: storeID})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Beras", all[0].Name)

	found, err := svc.List(ctx, product.ListFilter{StoreID: storeID, Search: "GULA"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	low, err := svc.LowStock(ctx, storeID)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "GULA", low[0].SKU)

	other, err := svc.List(ctx, product.ListFilter{StoreID: id.New()})
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newService(memory.New())
	_, err := svc.Get(context.Background(), id.New(), id.New())
	assert.True(t, apperror.IsNotFound(err))
}
