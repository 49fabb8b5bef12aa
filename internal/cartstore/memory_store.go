package cartstore

import (
	"context"
	"sync"

	"github.com/khan1-ui/go-storefront/internal/domain"
)

// MemoryStore keeps carts in process memory. Used for guest sessions and
// tests; contents are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]domain.Cart)}
}

func (m *MemoryStore) Load(_ context.Context, ownerID string) (*domain.Cart, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cart, ok := m.carts[ownerID]
	if !ok {
		return nil, ErrCartNotFound
	}
	out := cart.Clone()
	return &out, nil
}

func (m *MemoryStore) Save(_ context.Context, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.carts[cart.OwnerID] = cart.Clone()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.carts, ownerID)
	return nil
}
