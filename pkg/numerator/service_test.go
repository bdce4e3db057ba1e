package numerator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRow struct {
	val int64
	err error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.err != nil {
		return m.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = m.val
		}
	}
	return nil
}

// mockQuerier simulates sys_sequences keyed rows.
type mockQuerier struct {
	mu     sync.Mutex
	values map[string]int64
	calls  int
	err    error
}

func newMockQuerier() *mockQuerier {
	return &mockQuerier{values: make(map[string]int64)}
}

func (m *mockQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return &mockRow{err: m.err}
	}

	key := args[0].(string)
	m.values[key]++
	return &mockRow{val: m.values[key]}
}

func newFixed(q Querier) *Service {
	return NewWithQuerier(func(context.Context) Querier { return q })
}

var period = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

func TestGetNextNumber_Strict(t *testing.T) {
	q := newMockQuerier()
	svc := newFixed(q)
	ctx := context.Background()
	cfg := DefaultConfig("TRX")

	num, err := svc.GetNextNumber(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "TRX-2026-00001", num)

	num, err = svc.GetNextNumber(ctx, cfg, period)
	require.NoError(t, err)
	assert.Equal(t, "TRX-2026-00002", num)
	assert.Equal(t, 2, q.calls)
}

func TestGetNextNumber_ScopesAreIndependent(t *testing.T) {
	q := newMockQuerier()
	svc := newFixed(q)
	ctx := context.Background()

	storeA := DefaultConfig("TRX")
	storeA.Scope = "store-a"
	storeB := DefaultConfig("TRX")
	storeB.Scope = "store-b"

	for i := 0; i < 3; i++ {
		_, err := svc.GetNextNumber(ctx, storeA, period)
		require.NoError(t, err)
	}
	num, err := svc.GetNextNumber(ctx, storeB, period)
	require.NoError(t, err)
	assert.Equal(t, "TRX-2026-00001", num, "scope must not leak into another store's sequence")
	assert.Equal(t, int64(3), q.values["TRX_store-a_2026"])
}

func TestGetNextNumber_YearResets(t *testing.T) {
	q := newMockQuerier()
	svc := newFixed(q)
	ctx := context.Background()
	cfg := DefaultConfig("TRX")

	_, err := svc.GetNextNumber(ctx, cfg, period)
	require.NoError(t, err)

	num, err := svc.GetNextNumber(ctx, cfg, period.AddDate(1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, "TRX-2027-00001", num)
}

func TestGetNextNumber_QuerierError(t *testing.T) {
	q := newMockQuerier()
	q.err = errors.New("connection reset")
	svc := newFixed(q)

	_, err := svc.GetNextNumber(context.Background(), DefaultConfig("TRX"), period)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "strict next")
}

func TestNewWithQuerier_ResolvesPerCall(t *testing.T) {
	first, second := newMockQuerier(), newMockQuerier()
	type ctxKey struct{}

	svc := NewWithQuerier(func(ctx context.Context) Querier {
		if ctx.Value(ctxKey{}) != nil {
			return second
		}
		return first
	})

	_, err := svc.GetNextNumber(context.Background(), DefaultConfig("TRX"), period)
	require.NoError(t, err)
	_, err = svc.GetNextNumber(context.WithValue(context.Background(), ctxKey{}, true), DefaultConfig("TRX"), period)
	require.NoError(t, err)

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestFormat(t *testing.T) {
	cfg := DefaultConfig("TRX")
	assert.Equal(t, "TRX-2026-00042", Format(cfg, period, 42))

	cfg.IncludeYear = false
	cfg.PadWidth = 3
	assert.Equal(t, "TRX-007", Format(cfg, period, 7))
}
