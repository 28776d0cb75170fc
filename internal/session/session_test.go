package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSession() *Session {
	revenue := decimal.NewFromInt(300000)
	return &Session{
		State: "sale_quantity",
		Draft: Draft{Sale: &SaleDraft{
			SKU:         "SP01",
			ProductName: "Áo thun",
			UnitCost:    decimal.NewFromInt(100000),
			Revenue:     &revenue,
		}},
	}
}

func TestMemoryStoreExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, time.March, 5, 8, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Hour)
	store.now = func() time.Time { return clock }

	require.NoError(t, store.Save(ctx, "42", sampleSession()))

	got, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, State("sale_quantity"), got.State)
	assert.Equal(t, clock, got.UpdatedAt)

	clock = clock.Add(time.Hour)
	got, err = store.Load(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreEvict(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2025, time.March, 5, 8, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return clock }

	require.NoError(t, store.Save(ctx, "a", sampleSession()))
	clock = clock.Add(30 * time.Second)
	require.NoError(t, store.Save(ctx, "b", sampleSession()))
	clock = clock.Add(45 * time.Second)

	assert.Equal(t, 1, store.Evict())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	require.NoError(t, store.Save(ctx, "1", sampleSession()))

	got, _ := store.Load(ctx, "1")
	got.State = "changed"

	again, _ := store.Load(ctx, "1")
	assert.Equal(t, State("sale_quantity"), again.State)
}

func TestRedisStoreRoundTripAndClear(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), "", 0, time.Hour)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	missing, err := store.Load(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Save(ctx, "42", sampleSession()))
	assert.Equal(t, time.Hour, mr.TTL(keyPrefix+"42"))

	got, err := store.Load(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Draft.Sale)
	assert.Equal(t, "SP01", got.Draft.Sale.SKU)
	assert.True(t, got.Draft.Sale.Revenue.Equal(decimal.NewFromInt(300000)))
	assert.Nil(t, got.Draft.Debt)

	require.NoError(t, store.Clear(ctx, "42"))
	got, err = store.Load(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisStore(mr.Addr(), "", 0, time.Minute)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "7", sampleSession()))
	mr.FastForward(2 * time.Minute)

	got, err := store.Load(ctx, "7")
	require.NoError(t, err)
	assert.Nil(t, got)
}
