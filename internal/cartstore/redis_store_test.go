package cartstore

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/khan1-ui/go-storefront/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client), mr
}

func randomCart(ownerID string) *domain.Cart {
	return &domain.Cart{
		OwnerID:      ownerID,
		OwnerStoreID: "s1",
		Lines: []domain.CartLine{{
			ProductID: gofakeit.UUID(),
			StoreID:   "s1",
			Title:     gofakeit.ProductName(),
			Type:      domain.ProductTypePhysical,
			UnitPrice: decimal.NewFromInt(int64(gofakeit.Number(1, 500))),
			Stock:     gofakeit.Number(1, 50),
			Quantity:  gofakeit.Number(1, 5),
		}},
	}
}

func TestRedisStore_SaveLoadRoundTrip(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	cart := randomCart("user-1")
	require.NoError(t, store.Save(ctx, cart))

	loaded, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, cart.OwnerID, loaded.OwnerID)
	assert.Equal(t, cart.OwnerStoreID, loaded.OwnerStoreID)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, cart.Lines[0].ProductID, loaded.Lines[0].ProductID)
	assert.True(t, cart.Lines[0].UnitPrice.Equal(loaded.Lines[0].UnitPrice))
}

func TestRedisStore_LoadMissing(t *testing.T) {
	store, _ := setupTestRedis(t)

	_, err := store.Load(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_CorruptEntryTreatedAsMissing(t *testing.T) {
	store, mr := setupTestRedis(t)

	require.NoError(t, mr.Set(cartKey("user-1"), "{not json"))

	_, err := store.Load(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}

func TestRedisStore_Delete(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, randomCart("user-1")))
	require.NoError(t, store.Delete(ctx, "user-1"))

	_, err := store.Load(ctx, "user-1")
	assert.ErrorIs(t, err, ErrCartNotFound)

	// deleting again is not an error
	require.NoError(t, store.Delete(ctx, "user-1"))
}
