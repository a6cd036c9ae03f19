package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Operaciones-api/internal/application/dto"
	"github.com/jhoicas/Operaciones-api/internal/application/inventory"
	"github.com/jhoicas/Operaciones-api/internal/domain/entity"
	"github.com/jhoicas/Operaciones-api/pkg/config"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *goredislib.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := NewClient(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestNewClient_SinServidor(t *testing.T) {
	_, err := NewClient(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestStockLevelCache_SetGetDelete(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	cache := NewStockLevelCache(rdb, time.Hour, nil)
	ctx := context.Background()

	miss, err := cache.Get(ctx, "X", "A")
	require.NoError(t, err)
	assert.Nil(t, miss)

	computed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, cache.Set(ctx, &entity.StockLevel{
		ItemID: "X", LocationID: "A", Quantity: decimal.RequireFromString("12.5"), Unit: "gal", Postings: 3, ComputedAt: computed,
	}))
	assert.True(t, mr.Exists("stock_level:X:A"))
	assert.Equal(t, time.Hour, mr.TTL("stock_level:X:A"))

	got, err := cache.Get(ctx, "X", "A")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Quantity.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, 3, got.Postings)
	assert.True(t, got.ComputedAt.Equal(computed))

	require.NoError(t, cache.Set(ctx, &entity.StockLevel{ItemID: "X", LocationID: "A", Quantity: decimal.NewFromInt(4)}))
	got, err = cache.Get(ctx, "X", "A")
	require.NoError(t, err)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(4)), "Set sobrescribe la entrada completa")

	require.NoError(t, cache.Delete(ctx, "X", "A"))
	assert.False(t, mr.Exists("stock_level:X:A"))
	require.NoError(t, cache.Delete(ctx, "X", "A"), "borrar una entrada ausente no es error")
}

func TestStockLevelCache_EntradaCorrupta(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	require.NoError(t, mr.Set("stock_level:X:A", "{no-json"))

	_, err := NewStockLevelCache(rdb, 0, nil).Get(context.Background(), "X", "A")
	assert.Error(t, err)
}

func TestStockLevelCache_BreakerSeAbre(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	cache := NewStockLevelCache(rdb, 0, nil)
	mr.Close()

	var err error
	for i := 0; i < 6; i++ {
		_, err = cache.Get(context.Background(), "X", "A")
		require.Error(t, err)
	}
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState), "got %v", err)
}

func TestPairLocker_SerializaPorClave(t *testing.T) {
	_, rdb := setupTestRedis(t)
	locker := NewPairLocker(rdb, DefaultPairLockerOptions(), nil)

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(context.Background(), "lock:stock_level:X:A", func(ctx context.Context) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestPairLocker_ClaveOcupada(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	require.NoError(t, mr.Set("lock:stock_level:X:A", "otro-dueño"))
	locker := NewPairLocker(rdb, PairLockerOptions{Expiry: time.Second, Tries: 2, RetryDelay: 10 * time.Millisecond}, nil)

	ran := false
	err := locker.WithLock(context.Background(), "lock:stock_level:X:A", func(context.Context) error {
		ran = true
		return nil
	})
	assert.Error(t, err)
	assert.False(t, ran)
}

func TestPairLocker_PropagaErrorDeFn(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	locker := NewPairLocker(rdb, DefaultPairLockerOptions(), nil)
	boom := errors.New("boom")

	err := locker.WithLock(context.Background(), "k", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"), "el lock se libera")
}

func TestEventPublisher_Publica(t *testing.T) {
	_, rdb := setupTestRedis(t)
	ctx := context.Background()

	sub := rdb.Subscribe(ctx, inventory.EventTransactionUpdated)
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	tx := &entity.StockTransaction{
		ID: "t1", Type: entity.TransactionTypeReceipt, ItemID: "X", Quantity: decimal.NewFromInt(5),
		DestinationLocationID: "A", Status: entity.StatusApproved, ApprovedBy: "ana", Version: 2,
	}
	require.NoError(t, NewEventPublisher(rdb).Publish(ctx, inventory.EventTransactionUpdated, tx))

	recvCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(recvCtx)
	require.NoError(t, err)
	assert.Equal(t, inventory.EventTransactionUpdated, msg.Channel)

	var ev dto.TransactionEvent
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
	assert.Equal(t, "t1", ev.Transaction.ID)
	assert.Equal(t, "approved", ev.Transaction.Status)
	assert.Equal(t, []string{"posted", "rejected", "void"}, ev.Transaction.AllowedTransitions)
}

func TestStockLevelCache_ConProyector(t *testing.T) {
	_, rdb := setupTestRedis(t)
	cache := NewStockLevelCache(rdb, time.Minute, nil)
	locker := NewPairLocker(rdb, DefaultPairLockerOptions(), nil)
	ctx := context.Background()

	store := newPostedStore()
	p := inventory.NewStockLevelProjector(store, cache, locker, nil)

	level, err := p.Get(ctx, "X", "A")
	require.NoError(t, err)
	assert.True(t, level.Quantity.Equal(decimal.NewFromInt(10)))

	cached, err := cache.Get(ctx, "X", "A")
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.True(t, cached.Quantity.Equal(decimal.NewFromInt(10)))
}
