package cartstore

import (
	"context"
	"errors"

	"github.com/khan1-ui/go-storefront/internal/domain"
)

// Store is the durable local cart storage. One entry per owner, holding the
// full serialized cart. Consumers define this interface, not the Redis
// implementation.
type Store interface {
	Load(ctx context.Context, ownerID string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Delete(ctx context.Context, ownerID string) error
}

var ErrCartNotFound = errors.New("cart not found")
