package cart

import (
	"context"
	"fmt"

	"github.com/khan1-ui/go-storefront/internal/cartstore"
	"github.com/khan1-ui/go-storefront/internal/domain"
	"golang.org/x/sync/singleflight"
)

type Op string

const (
	// OpUpsert sets the absolute quantity of one line (covers both adding
	// a line and changing its quantity).
	OpUpsert Op = "upsert"
	OpRemove Op = "remove"
	OpClear  Op = "clear"
)

// Mutation describes one cart change in backend terms. Quantity is the
// resulting quantity of the line, after clamping.
type Mutation struct {
	Op        Op
	ProductID string
	Quantity  int
}

// Syncer makes a mutation durable and returns the snapshot the container
// must adopt as its new state. The two implementations are the local-only
// and remote-authoritative persistence strategies; the container's contract
// is the same over both.
type Syncer interface {
	Load(ctx context.Context, ownerID string) (*domain.Cart, error)
	Apply(ctx context.Context, mut Mutation, next *domain.Cart) (*domain.Cart, error)
}

// LocalSyncer writes the full cart to durable local storage after every
// mutation and hands the locally computed state straight back.
type LocalSyncer struct {
	store cartstore.Store
}

func NewLocalSyncer(store cartstore.Store) *LocalSyncer {
	return &LocalSyncer{store: store}
}

func (s *LocalSyncer) Load(ctx context.Context, ownerID string) (*domain.Cart, error) {
	return s.store.Load(ctx, ownerID)
}

func (s *LocalSyncer) Apply(ctx context.Context, mut Mutation, next *domain.Cart) (*domain.Cart, error) {
	if mut.Op == OpClear {
		if err := s.store.Delete(ctx, next.OwnerID); err != nil {
			return nil, fmt.Errorf("clear cart: %w", err)
		}
		return next, nil
	}

	if err := s.store.Save(ctx, next); err != nil {
		return nil, fmt.Errorf("persist cart: %w", err)
	}
	return next, nil
}

// CartAPI is the slice of the platform backend the remote syncer needs.
// Consumers define this interface, not the HTTP client.
type CartAPI interface {
	FetchCart(ctx context.Context) (*domain.Cart, error)
	SetCartItem(ctx context.Context, productID string, quantity int) (*domain.Cart, error)
	RemoveCartItem(ctx context.Context, productID string) (*domain.Cart, error)
	ClearCart(ctx context.Context) (*domain.Cart, error)
}

// RemoteSyncer sends every mutation to the remote cart resource and adopts
// the server's returned snapshot, not an optimistic local merge. If the
// server applies its own clamping or pricing rules, its view wins.
type RemoteSyncer struct {
	api CartAPI
	sfg singleflight.Group // collapses concurrent initial fetches per owner
}

func NewRemoteSyncer(api CartAPI) *RemoteSyncer {
	return &RemoteSyncer{api: api}
}

func (s *RemoteSyncer) Load(ctx context.Context, ownerID string) (*domain.Cart, error) {
	v, err, _ := s.sfg.Do(ownerID, func() (interface{}, error) {
		return s.api.FetchCart(ctx)
	})
	if err != nil {
		return nil, err
	}

	cart := v.(*domain.Cart)
	if cart == nil || cart.IsEmpty() {
		return nil, cartstore.ErrCartNotFound
	}
	return cart, nil
}

func (s *RemoteSyncer) Apply(ctx context.Context, mut Mutation, _ *domain.Cart) (*domain.Cart, error) {
	switch mut.Op {
	case OpUpsert:
		return s.api.SetCartItem(ctx, mut.ProductID, mut.Quantity)
	case OpRemove:
		return s.api.RemoveCartItem(ctx, mut.ProductID)
	case OpClear:
		return s.api.ClearCart(ctx)
	default:
		return nil, fmt.Errorf("unknown cart mutation %q", mut.Op)
	}
}
