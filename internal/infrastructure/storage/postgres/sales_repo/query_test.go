package sales_repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/sales"
)

func TestOrderRepo_InsertLineQuery(t *testing.T) {
	repo := NewOrderRepo(nil)
	line := &sales.OrderLine{
		ID:        id.New(),
		OrderID:   id.New(),
		LineNo:    2,
		ProductID: id.New(),
		Quantity:  3,
		UnitPrice: types.NewMoneyFromInt(2000),
		LineTotal: types.NewMoneyFromInt(6000),
	}

	sql, args, err := repo.insertLineQuery(line).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"INSERT INTO sales_order_lines (id,order_id,line_no,product_id,quantity,unit_price,line_total) "+
			"SELECT $1::uuid, o.id, $2::int, p.id, $3::bigint, $4::numeric, $5::numeric "+
			"FROM sales_orders o JOIN products p ON p.store_id = o.store_id "+
			"WHERE o.id = $6 AND p.id = $7",
		sql)
	require.Len(t, args, 7)
	assert.Equal(t, line.OrderID.String(), args[5])
	assert.Equal(t, line.ProductID.String(), args[6])
}

func TestOrderRepo_ListQuery(t *testing.T) {
	repo := NewOrderRepo(nil)
	storeID := id.New()
	cashierID := id.New()
	day := time.Date(2026, time.October, 18, 15, 4, 5, 0, time.UTC)

	sql, args, err := repo.listQuery(sales.ListFilter{
		StoreID:       storeID,
		Date:          &day,
		PaymentMethod: sales.PaymentQRIS,
		CashierID:     &cashierID,
		Search:        "TRX-2026",
		Limit:         50,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, store_id, cashier_id, receipt_number, payment_method, customer_name, subtotal, discount, total, created_at "+
			"FROM sales_orders WHERE store_id = $1 AND created_at >= $2 AND created_at < $3 AND payment_method = $4 "+
			"AND cashier_id = $5 AND (receipt_number ILIKE $6 OR customer_name ILIKE $7) "+
			"ORDER BY created_at DESC, receipt_number DESC LIMIT 50",
		sql)
	require.Len(t, args, 7)
	assert.Equal(t, time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC), args[1])
	assert.Equal(t, time.Date(2026, time.October, 19, 0, 0, 0, 0, time.UTC), args[2])
	assert.Equal(t, "%TRX-2026%", args[5])
}
