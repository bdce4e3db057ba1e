package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kasirku/internal/core/id"
	"kasirku/internal/core/types"
	"kasirku/internal/domain/sales"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestReceiptKey(t *testing.T) {
	storeID := id.MustParse("0190a0d0-0000-7000-8000-000000000001")
	orderID := id.MustParse("0190a0d0-0000-7000-8000-000000000002")
	assert.Equal(t,
		"kasirku:receipt:0190a0d0-0000-7000-8000-000000000001:0190a0d0-0000-7000-8000-000000000002",
		ReceiptKey(storeID, orderID))
}

func TestReceiptCache_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	c := NewReceiptCache(client, time.Minute)

	order := &sales.Order{
		ID:            id.New(),
		StoreID:       id.New(),
		CashierID:     id.New(),
		ReceiptNumber: "TRX-2026-00001",
		PaymentMethod: sales.PaymentCash,
		Subtotal:      types.NewMoneyFromInt(6000),
		Discount:      types.Zero(),
		Total:         types.NewMoneyFromInt(6000),
		CreatedAt:     time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC),
		Lines: []sales.OrderLine{{
			ID:        id.New(),
			LineNo:    1,
			ProductID: id.New(),
			Quantity:  3,
			UnitPrice: types.NewMoneyFromInt(2000),
			LineTotal: types.NewMoneyFromInt(6000),
		}},
	}
	t.Cleanup(func() { client.Del(ctx, ReceiptKey(order.StoreID, order.ID)) })

	_, ok := c.Get(ctx, order.StoreID, order.ID)
	assert.False(t, ok)

	c.Set(ctx, order)

	got, ok := c.Get(ctx, order.StoreID, order.ID)
	require.True(t, ok)
	assert.Equal(t, order.ReceiptNumber, got.ReceiptNumber)
	assert.True(t, order.Total.Equal(got.Total))
	require.Len(t, got.Lines, 1)
	assert.Equal(t, int64(3), got.Lines[0].Quantity)

	_, ok = c.Get(ctx, id.New(), order.ID)
	assert.False(t, ok, "other store never sees the entry")

	ttl, err := client.TTL(ctx, ReceiptKey(order.StoreID, order.ID)).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, time.Minute)
}
