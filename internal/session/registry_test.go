package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/khan1-ui/go-storefront/internal/cart"
	"github.com/khan1-ui/go-storefront/internal/cartstore"
	"github.com/khan1-ui/go-storefront/internal/checkout"
	"github.com/khan1-ui/go-storefront/internal/domain"
	"github.com/khan1-ui/go-storefront/internal/notify"
	"github.com/khan1-ui/go-storefront/internal/platform"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(t *testing.T) (*Registry, cartstore.Store) {
	t.Helper()

	store := cartstore.NewMemoryStore()
	factory := func(ownerID string) (*cart.Container, *checkout.Orchestrator) {
		container := cart.NewContainer(ownerID, cart.NewLocalSyncer(store), notify.LogNotifier{})
		return container, checkout.NewOrchestrator(container, nil, notify.LogNotifier{})
	}
	return NewRegistry(testSecret, factory, store), store
}

func testProduct() domain.Product {
	return domain.Product{
		ID:      "p1",
		StoreID: "s1",
		Title:   "product p1",
		Type:    domain.ProductTypePhysical,
		Price:   decimal.NewFromInt(100),
		Stock:   5,
	}
}

func TestAuthenticate_CreatesAndReusesSession(t *testing.T) {
	ctx := context.Background()
	registry, _ := newTestRegistry(t)
	raw := signedToken(t, testSecret, "user-1", "customer", time.Hour)

	s1, err := registry.Authenticate(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", s1.UserID)

	s2, err := registry.Authenticate(ctx, raw)
	require.NoError(t, err)
	assert.Same(t, s1, s2)
}

func TestAuthenticate_RejectsBadToken(t *testing.T) {
	registry, _ := newTestRegistry(t)

	_, err := registry.Authenticate(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_ReloadsPersistedCart(t *testing.T) {
	ctx := context.Background()
	registry, store := newTestRegistry(t)

	// cart left behind by an earlier session of the same user
	seed := cart.NewContainer("user-1", cart.NewLocalSyncer(store), notify.LogNotifier{})
	_, err := seed.AddLine(ctx, testProduct(), 2)
	require.NoError(t, err)

	raw := signedToken(t, testSecret, "user-1", "customer", time.Hour)
	s, err := registry.Authenticate(ctx, raw)
	require.NoError(t, err)

	snapshot := s.Cart.Snapshot()
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 2, snapshot.Lines[0].Quantity)
}

func TestLogout_EmptiesSessionCartOnly(t *testing.T) {
	ctx := context.Background()
	registry, store := newTestRegistry(t)
	raw := signedToken(t, testSecret, "user-1", "customer", time.Hour)

	s, err := registry.Authenticate(ctx, raw)
	require.NoError(t, err)
	_, err = s.Cart.AddLine(ctx, testProduct(), 1)
	require.NoError(t, err)

	registry.Logout("user-1")
	assert.True(t, s.Cart.IsEmpty(), "logout switches to empty immediately")

	// the persisted cart still belongs to the user
	persisted, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, persisted.Lines, 1)

	// a new login starts from the persisted state, not the dropped session
	s2, err := registry.Authenticate(ctx, raw)
	require.NoError(t, err)
	assert.NotSame(t, s, s2)
	assert.Len(t, s2.Cart.Snapshot().Lines, 1)
}

func TestClearCart_LiveSession(t *testing.T) {
	ctx := context.Background()
	registry, store := newTestRegistry(t)
	raw := signedToken(t, testSecret, "user-1", "customer", time.Hour)

	s, err := registry.Authenticate(ctx, raw)
	require.NoError(t, err)
	_, err = s.Cart.AddLine(ctx, testProduct(), 1)
	require.NoError(t, err)

	require.NoError(t, registry.ClearCart(ctx, "user-1"))
	assert.True(t, s.Cart.IsEmpty())

	_, err = store.Load(ctx, "user-1")
	assert.ErrorIs(t, err, cartstore.ErrCartNotFound)
}

func TestClearCart_NoLiveSession(t *testing.T) {
	ctx := context.Background()
	registry, store := newTestRegistry(t)

	seed := cart.NewContainer("user-2", cart.NewLocalSyncer(store), notify.LogNotifier{})
	_, err := seed.AddLine(ctx, testProduct(), 1)
	require.NoError(t, err)

	require.NoError(t, registry.ClearCart(ctx, "user-2"))
	_, err = store.Load(ctx, "user-2")
	assert.ErrorIs(t, err, cartstore.ErrCartNotFound)

	// clearing an unknown owner is fine too
	require.NoError(t, registry.ClearCart(ctx, "stranger"))
}

// newRemoteRegistry wires the registry over a remote syncer talking to the
// given backend, the way the remote deployment mode runs.
func newRemoteRegistry(t *testing.T, backendURL string) *Registry {
	t.Helper()

	store := cartstore.NewMemoryStore()
	api := platform.NewClient(backendURL, 5*time.Second)
	syncer := cart.NewRemoteSyncer(api)
	factory := func(ownerID string) (*cart.Container, *checkout.Orchestrator) {
		container := cart.NewContainer(ownerID, syncer, notify.LogNotifier{})
		return container, checkout.NewOrchestrator(container, api, notify.LogNotifier{})
	}
	return NewRegistry(testSecret, factory, store)
}

func TestAuthenticate_RemoteModeForwardsCredential(t *testing.T) {
	var gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"items": [{"product": {"id": "p1", "store_id": "s1", "title": "Mug", "type": "physical", "price": 100, "stock": 5}, "quantity": 2}]}`))
	}))
	defer backend.Close()

	registry := newRemoteRegistry(t, backend.URL)
	raw := signedToken(t, testSecret, "user-1", "customer", time.Hour)

	s, err := registry.Authenticate(context.Background(), raw)
	require.NoError(t, err)

	// the login-time fetch must carry the caller's token, or the backend
	// answers with the guest cart
	assert.Equal(t, "Bearer "+raw, gotAuth)
	snapshot := s.Cart.Snapshot()
	require.Len(t, snapshot.Lines, 1)
	assert.Equal(t, 2, snapshot.Lines[0].Quantity)
}

func TestClearCart_RemoteModeTouchesNoBackend(t *testing.T) {
	ctx := context.Background()
	var backendCalls int
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		backendCalls++
		w.Write([]byte(`{"items": [{"product": {"id": "p1", "store_id": "s1", "title": "Mug", "type": "physical", "price": 100, "stock": 5}, "quantity": 2}]}`))
	}))
	defer backend.Close()

	registry := newRemoteRegistry(t, backend.URL)
	raw := signedToken(t, testSecret, "user-1", "customer", time.Hour)

	s, err := registry.Authenticate(ctx, raw)
	require.NoError(t, err)
	require.Equal(t, 1, backendCalls, "login fetch only")

	// the confirmation consumer holds no user credential; the clear acts on
	// local state and leaves the backend's cart to the platform
	require.NoError(t, registry.ClearCart(ctx, "user-1"))
	assert.True(t, s.Cart.IsEmpty())
	assert.Equal(t, 1, backendCalls)
}
