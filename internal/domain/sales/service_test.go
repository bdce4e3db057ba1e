package sales_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasirku/internal/core/apperror"
	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/inventory"
	"kasirku/internal/domain/product"
	"kasirku/internal/domain/sales"
	"kasirku/internal/infrastructure/storage/memory"
)

type fixture struct {
	store     *memory.Store
	products  *memory.ProductRepo
	inventory *inventory.Service
	storeID   id.ID
	cashierID id.ID
}

func newFixture() *fixture {
	s := memory.New()
	products := memory.NewProductRepo(s)
	inv := inventory.NewService(products, memory.NewStockRepo(s), memory.NewMovementRepo(s), memory.NewTxManager(s), s)
	return &fixture{store: s, products: products, inventory: inv, storeID: id.New(), cashierID: id.New()}
}

func (f *fixture) service(opts sales.Options) *sales.Service {
	s := f.store
	return sales.NewService(sales.Deps{
		Repo:      memory.NewSalesRepo(s),
		Stock:     memory.NewStockRepo(s),
		Movements: memory.NewMovementRepo(s),
		Numberer:  memory.NewReceiptNumberer(s, "TRX"),
		TxManager: memory.NewTxManager(s),
		Audit:     s,
	}, opts)
}

func (f *fixture) seed(t *testing.T, floor int64, policy product.StockPolicy) *product.Product {
	t.Helper()
	p := product.New(f.storeID, "SKU-"+id.New().String(), "Nasi Goreng", types.NewMoneyFromInt(2000), policy)
	p.FloorStock = floor
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *fixture) floor(t *testing.T, productID id.ID) int64 {
	t.Helper()
	p, err := f.products.GetByID(context.Background(), f.storeID, productID)
	require.NoError(t, err)
	return p.FloorStock
}

func (f *fixture) sale(lines ...sales.LineInput) sales.RecordSaleInput {
	in := sales.RecordSaleInput{
		StoreID:       f.storeID,
		CashierID:     f.cashierID,
		Lines:         lines,
		PaymentMethod: sales.PaymentCash,
		Discount:      types.Zero(),
	}
	in.Subtotal = in.ComputedSubtotal()
	in.Total = in.Subtotal
	return in
}

func line(productID id.ID, qty, price int64) sales.LineInput {
	return sales.LineInput{ProductID: productID, Quantity: qty, UnitPrice: types.NewMoneyFromInt(price)}
}

func TestRecordSale_DecrementsTrackedStock(t *testing.T) {
	f := newFixture()
	a := f.seed(t, 10, product.StockTracked)
	b := f.seed(t, 4, product.StockTracked)
	svc := f.service(sales.Options{})

	order, err := svc.RecordSale(context.Background(), f.sale(line(a.ID, 2, 5000), line(b.ID, 1, 12000)))
	require.NoError(t, err)

	assert.Regexp(t, `^TRX-\d{4}-00001$`, order.ReceiptNumber)
	require.Len(t, order.Lines, 2)
	assert.Equal(t, 1, order.Lines[0].LineNo)
	assert.True(t, order.Lines[0].LineTotal.Equal(types.NewMoneyFromInt(10000)))
	assert.True(t, order.Total.Equal(types.NewMoneyFromInt(22000)))

	assert.Equal(t, int64(8), f.floor(t, a.ID))
	assert.Equal(t, int64(3), f.floor(t, b.ID))
	assert.Len(t, f.store.AuditEntries(), 1)
}

func TestRecordSale_AtomicOnLastLineFailure(t *testing.T) {
	f := newFixture()
	a := f.seed(t, 10, product.StockTracked)
	b := f.seed(t, 10, product.StockTracked)
	c := f.seed(t, 10, product.StockTracked)
	svc := f.service(sales.Options{})

	f.store.InjectFault(memory.OpInsertLine, 2, errors.New("constraint violation"))

	_, err := svc.RecordSale(context.Background(), f.sale(line(a.ID, 1, 1000), line(b.ID, 2, 1000), line(c.ID, 3, 1000)))
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeDatabase))
	assert.Equal(t, 500, apperror.GetHTTPStatus(err))

	assert.Equal(t, 0, f.store.OrderCount())
	assert.Equal(t, 0, f.store.LineCount())
	assert.Equal(t, int64(10), f.floor(t, a.ID))
	assert.Equal(t, int64(10), f.floor(t, b.ID))
	assert.Equal(t, int64(10), f.floor(t, c.ID))
	assert.Empty(t, f.store.AuditEntries())

	// The rolled-back sale released its receipt number.
	order, err := svc.RecordSale(context.Background(), f.sale(line(a.ID, 1, 1000)))
	require.NoError(t, err)
	assert.Regexp(t, `-00001$`, order.ReceiptNumber)
}

func TestRecordSale_MissingProductRollsBack(t *testing.T) {
	f := newFixture()
	a := f.seed(t, 10, product.StockTracked)
	svc := f.service(sales.Options{})

	_, err := svc.RecordSale(context.Background(), f.sale(line(a.ID, 1, 1000), line(id.New(), 1, 1000)))
	assert.True(t, apperror.IsNotFound(err), "got %v", err)

	assert.Equal(t, 0, f.store.OrderCount())
	assert.Equal(t, int64(10), f.floor(t, a.ID))
}

func TestRecordSale_UntrackedIsStockImmune(t *testing.T) {
	f := newFixture()
	svcItem := f.seed(t, 0, product.StockUntracked)
	svc := f.service(sales.Options{RecordMovements: true})

	order, err := svc.RecordSale(context.Background(), f.sale(line(svcItem.ID, 5, 25000)))
	require.NoError(t, err)
	require.Len(t, order.Lines, 1)

	assert.Equal(t, int64(0), f.floor(t, svcItem.ID))
	assert.Equal(t, 0, f.store.MovementCount(), "untracked lines write no movement")
}

func TestRecordSale_AllowsNegativeByDefault(t *testing.T) {
	f := newFixture()
	p := f.seed(t, 1, product.StockTracked)
	svc := f.service(sales.Options{})

	_, err := svc.RecordSale(context.Background(), f.sale(line(p.ID, 3, 1000)))
	require.NoError(t, err)
	assert.Equal(t, int64(-2), f.floor(t, p.ID))
}

func TestRecordSale_StrictModeRejectsShortage(t *testing.T) {
	f := newFixture()
	a := f.seed(t, 5, product.StockTracked)
	b := f.seed(t, 1, product.StockTracked)
	svc := f.service(sales.Options{StockMode: sales.StockModeStrict})

	_, err := svc.RecordSale(context.Background(), f.sale(line(a.ID, 2, 1000), line(b.ID, 3, 1000)))
	require.True(t, apperror.IsInsufficientStock(err), "got %v", err)

	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, int64(2), appErr.Details["shortfall"])
	assert.Equal(t, int64(5), f.floor(t, a.ID))
	assert.Equal(t, int64(1), f.floor(t, b.ID))
	assert.Equal(t, 0, f.store.OrderCount())
}

func TestRecordSale_SameProductOnTwoLines(t *testing.T) {
	f := newFixture()
	p := f.seed(t, 5, product.StockTracked)
	svc := f.service(sales.Options{StockMode: sales.StockModeStrict})

	_, err := svc.RecordSale(context.Background(), f.sale(line(p.ID, 3, 1000), line(p.ID, 3, 1000)))
	require.True(t, apperror.IsInsufficientStock(err))
	assert.Equal(t, int64(5), f.floor(t, p.ID))

	_, err = svc.RecordSale(context.Background(), f.sale(line(p.ID, 3, 1000), line(p.ID, 2, 1000)))
	require.NoError(t, err)
	assert.Equal(t, int64(0), f.floor(t, p.ID))
}

func TestRecordSale_VerifyTotals(t *testing.T) {
	f := newFixture()
	p := f.seed(t, 5, product.StockTracked)

	in := f.sale(line(p.ID, 2, 1000))
	in.Total = types.NewMoneyFromInt(1)

	// Trusted by default.
	_, err := f.service(sales.Options{}).RecordSale(context.Background(), in)
	require.NoError(t, err)

	_, err = f.service(sales.Options{VerifyTotals: true}).RecordSale(context.Background(), in)
	assert.True(t, apperror.IsValidation(err))

	in.Discount = types.NewMoneyFromInt(500)
	in.Total = types.NewMoneyFromInt(1500)
	_, err = f.service(sales.Options{VerifyTotals: true}).RecordSale(context.Background(), in)
	assert.NoError(t, err)
}

func TestRecordSale_Movements(t *testing.T) {
	f := newFixture()
	p := f.seed(t, 5, product.StockTracked)
	svc := f.service(sales.Options{RecordMovements: true})

	order, err := svc.RecordSale(context.Background(), f.sale(line(p.ID, 2, 3000)))
	require.NoError(t, err)

	history, err := f.inventory.History(context.Background(), inventory.HistoryFilter{StoreID: f.storeID, ProductID: p.ID})
	require.NoError(t, err)
	require.Len(t, history, 1)
	m := history[0]
	assert.Equal(t, inventory.DirectionOut, m.Direction)
	assert.Equal(t, inventory.CauseSale, m.Cause)
	require.NotNil(t, m.ReferenceID)
	assert.Equal(t, order.ID, *m.ReferenceID)
	assert.True(t, m.TotalCost.Equal(types.NewMoneyFromInt(6000)))
}

func TestRecordSale_Validation(t *testing.T) {
	f := newFixture()
	p := f.seed(t, 5, product.StockTracked)
	svc := f.service(sales.Options{})

	tests := []struct {
		name   string
		mutate func(in *sales.RecordSaleInput)
	}{
		{"empty cart", func(in *sales.RecordSaleInput) { in.Lines = nil }},
		{"zero quantity", func(in *sales.RecordSaleInput) { in.Lines[0].Quantity = 0 }},
		{"negative price", func(in *sales.RecordSaleInput) { in.Lines[0].UnitPrice = types.NewMoneyFromInt(-5) }},
		{"unknown payment", func(in *sales.RecordSaleInput) { in.PaymentMethod = "barter" }},
		{"missing cashier", func(in *sales.RecordSaleInput) { in.CashierID = id.ID{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := f.sale(line(p.ID, 1, 1000))
			tt.mutate(&in)
			_, err := svc.RecordSale(context.Background(), in)
			assert.True(t, apperror.IsValidation(err), "got %v", err)
		})
	}
	assert.Equal(t, 0, f.store.OrderCount())
}

func TestRecordSale_PaymentMethodNormalized(t *testing.T) {
	f := newFixture()
	p := f.seed(t, 5, product.StockTracked)

	in := f.sale(line(p.ID, 1, 1000))
	in.PaymentMethod = " QRIS "
	order, err := f.service(sales.Options{}).RecordSale(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, sales.PaymentQRIS, order.PaymentMethod)
}

func TestGetAndList(t *testing.T) {
	f := newFixture()
	p := f.seed(t, 50, product.StockTracked)
	svc := f.service(sales.Options{})
	ctx := context.Background()

	first := f.sale(line(p.ID, 1, 1000))
	first.CustomerName = "Budi"
	o1, err := svc.RecordSale(ctx, first)
	require.NoError(t, err)

	second := f.sale(line(p.ID, 2, 1000))
	second.PaymentMethod = sales.PaymentCard
	o2, err := svc.RecordSale(ctx, second)
	require.NoError(t, err)

	got, err := svc.Get(ctx, f.storeID, o1.ID)
	require.NoError(t, err)
	assert.Equal(t, o1.ReceiptNumber, got.ReceiptNumber)
	require.Len(t, got.Lines, 1)

	_, err = svc.Get(ctx, id.New(), o1.ID)
	assert.True(t, apperror.IsNotFound(err), "orders of other stores are invisible")

	all, err := svc.List(ctx, sales.ListFilter{StoreID: f.storeID})
	require.NoError(t, err)
	require.Len(t, all, 2)

	cards, err := svc.List(ctx, sales.ListFilter{StoreID: f.storeID, PaymentMethod: sales.PaymentCard})
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, o2.ID, cards[0].ID)

	found, err := svc.List(ctx, sales.ListFilter{StoreID: f.storeID, Search: "budi"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, o1.ID, found[0].ID)

	found, err = svc.List(ctx, sales.ListFilter{StoreID: f.storeID, Search: o2.ReceiptNumber})
	require.NoError(t, err)
	require.Len(t, found, 1)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	none, err := svc.List(ctx, sales.ListFilter{StoreID: f.storeID, Date: &tomorrow})
	require.NoError(t, err)
	assert.Empty(t, none)
}

type stubCache struct {
	orders map[id.ID]*sales.Order
	sets   int
}

func (c *stubCache) Get(_ context.Context, _, orderID id.ID) (*sales.Order, bool) {
	o, ok := c.orders[orderID]
	return o, ok
}

func (c *stubCache) Set(_ context.Context, o *sales.Order) {
	c.sets++
	c.orders[o.ID] = o
}

func TestGet_ReadThroughCache(t *testing.T) {
	f := newFixture()
	p := f.seed(t, 5, product.StockTracked)
	cache := &stubCache{orders: make(map[id.ID]*sales.Order)}
	s := f.store
	svc := sales.NewService(sales.Deps{
		Repo:      memory.NewSalesRepo(s),
		Stock:     memory.NewStockRepo(s),
		Numberer:  memory.NewReceiptNumberer(s, "TRX"),
		TxManager: memory.NewTxManager(s),
		Cache:     cache,
	}, sales.Options{})
	ctx := context.Background()

	order, err := svc.RecordSale(ctx, f.sale(line(p.ID, 1, 1000)))
	require.NoError(t, err)

	_, err = svc.Get(ctx, f.storeID, order.ID)
	require.NoError(t, err)
	_, err = svc.Get(ctx, f.storeID, order.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, cache.sets)
}

// Opening 5 on the floor, 20 received into the warehouse at 1000 each, 15
// transferred, then 3 sold at 2000: floor 17, warehouse 5, one movement.
func TestLedgers_EndToEnd(t *testing.T) {
	f := newFixture()
	p := f.seed(t, 5, product.StockTracked)
	svc := f.service(sales.Options{})
	ctx := context.Background()

	m, err := f.inventory.ReceiveStock(ctx, inventory.ReceiveStockInput{
		StoreID:     f.storeID,
		ProductID:   p.ID,
		Quantity:    20,
		UnitCost:    types.NewMoneyFromInt(1000),
		Destination: inventory.DestinationWarehouse,
	})
	require.NoError(t, err)
	assert.True(t, m.TotalCost.Equal(types.NewMoneyFromInt(20000)))

	_, err = f.inventory.TransferToStore(ctx, f.storeID, p.ID, f.cashierID, 15)
	require.NoError(t, err)

	order, err := svc.RecordSale(ctx, f.sale(line(p.ID, 3, 2000)))
	require.NoError(t, err)
	assert.True(t, order.Total.Equal(types.NewMoneyFromInt(6000)))

	got, err := f.products.GetByID(ctx, f.storeID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(17), got.FloorStock)
	assert.Equal(t, int64(5), got.WarehouseStock)
	assert.Equal(t, 1, f.store.MovementCount())
}
