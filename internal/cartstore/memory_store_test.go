package cartstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	cart := randomCart("guest-1")
	require.NoError(t, store.Save(ctx, cart))

	loaded, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, cart.Lines[0].ProductID, loaded.Lines[0].ProductID)

	// mutating the loaded copy must not leak back into the store
	loaded.Lines[0].Quantity = 99
	again, err := store.Load(ctx, "guest-1")
	require.NoError(t, err)
	assert.Equal(t, cart.Lines[0].Quantity, again.Lines[0].Quantity)
}

func TestMemoryStore_MissingAndDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Load(ctx, "nobody")
	assert.ErrorIs(t, err, ErrCartNotFound)

	require.NoError(t, store.Save(ctx, randomCart("guest-1")))
	require.NoError(t, store.Delete(ctx, "guest-1"))

	_, err = store.Load(ctx, "guest-1")
	assert.ErrorIs(t, err, ErrCartNotFound)
}
