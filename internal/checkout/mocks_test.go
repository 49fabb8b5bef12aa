package checkout

import (
	"context"
	"sync"

	"github.com/khan1-ui/go-storefront/internal/domain"
	"github.com/khan1-ui/go-storefront/internal/notify"
	"github.com/khan1-ui/go-storefront/internal/platform"
)

// MockPlatformAPI implements PlatformAPI for testing. Block can be used to
// hold an order creation open while asserting the re-entrancy guard.
type MockPlatformAPI struct {
	mu sync.Mutex

	Order      *domain.Order
	OrderErr   error
	SessionURL string
	SessionErr error
	Block      chan struct{}

	OrderRequests   []platform.OrderRequest
	SessionOrderIDs []string
}

func (m *MockPlatformAPI) CreateOrder(_ context.Context, req platform.OrderRequest) (*domain.Order, error) {
	m.mu.Lock()
	m.OrderRequests = append(m.OrderRequests, req)
	block := m.Block
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	if m.OrderErr != nil {
		return nil, m.OrderErr
	}
	return m.Order, nil
}

func (m *MockPlatformAPI) CreatePaymentSession(_ context.Context, orderID string) (string, error) {
	m.mu.Lock()
	m.SessionOrderIDs = append(m.SessionOrderIDs, orderID)
	m.mu.Unlock()

	if m.SessionErr != nil {
		return "", m.SessionErr
	}
	return m.SessionURL, nil
}

func (m *MockPlatformAPI) orderCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.OrderRequests)
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, notify.Level, string) {}
